package assets

import _ "embed"

// Scripts embedded at compile time

// ClientScript is the script-side runtime of the bridge. It is injected
// before page script and exposes window.webbridge.
//
//go:embed js/webbridge.js
var ClientScript string
