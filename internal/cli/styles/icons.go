package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconBridge    = "\uf0c1" // link
	IconVersion   = "\uf02b" // tag
	IconGitBranch = "\ue725" // git branch
	IconCalendar  = "\uf073" // calendar
	IconGithub    = "\uf09b" // github
	IconHeart     = "\uf004" // heart
	IconGo        = "\ue627" // go gopher

	IconCheck   = "\uf00c" // check
	IconX       = "\uf00d" // x
	IconWarning = "\uf071" // warning
	IconInfo    = "\uf05a" // info

	IconConfig   = "\ue615" // config
	IconDatabase = "\uf1c0" // database
	IconFilter   = "\uf0b0" // filter
	IconCursor   = "\uf054" // chevron-right

	IconSessionStack = "\uf24d" // clone/stack
	IconClock        = "\uf017" // clock
	IconPlay         = "\uf04b" // play (running)
	IconStop         = "\uf04d" // stop (exited)
)
