package logging

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const (
	sessionFilePrefix = "session_"
	sessionFileSuffix = ".log"
)

// GenerateSessionID creates a unique session identifier.
// Format: YYYYMMDD_HHMMSS_xxxx (timestamp + 4 random hex chars)
// Example: 20251217_205106_a7b3
func GenerateSessionID() string {
	now := time.Now()
	random := make([]byte, 2)
	_, _ = rand.Read(random)
	return now.Format("20060102_150405") + "_" + hex.EncodeToString(random)
}

// ShortSessionID extracts the short ID (last 4 hex chars) from a full session ID.
func ShortSessionID(sessionID string) string {
	if len(sessionID) < 4 {
		return sessionID
	}
	return sessionID[len(sessionID)-4:]
}

// ParseSessionFilename extracts the session ID from a log filename.
// Example: "session_20251217_205106_a7b3.log" -> "20251217_205106_a7b3", true
func ParseSessionFilename(filename string) (sessionID string, ok bool) {
	if len(filename) <= len(sessionFilePrefix)+len(sessionFileSuffix) {
		return "", false
	}
	if !strings.HasPrefix(filename, sessionFilePrefix) || !strings.HasSuffix(filename, sessionFileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(filename, sessionFilePrefix), sessionFileSuffix), true
}

// SessionFilename generates the log filename for a session ID.
func SessionFilename(sessionID string) string {
	return sessionFilePrefix + sessionID + sessionFileSuffix
}
