package logging

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionID(t *testing.T) {
	id := GenerateSessionID()
	assert.Regexp(t, regexp.MustCompile(`^\d{8}_\d{6}_[0-9a-f]{4}$`), id)
	assert.Len(t, ShortSessionID(id), 4)
	assert.Equal(t, "ab", ShortSessionID("ab"))
}

func TestSessionFilenameRoundTrip(t *testing.T) {
	name := SessionFilename("20261016_120000_abcd")
	assert.Equal(t, "session_20261016_120000_abcd.log", name)

	id, ok := ParseSessionFilename(name)
	assert.True(t, ok)
	assert.Equal(t, "20261016_120000_abcd", id)

	for _, bad := range []string{"session_.log", "other.log", "session_x.txt", ""} {
		_, ok := ParseSessionFilename(bad)
		assert.False(t, ok, bad)
	}
}
