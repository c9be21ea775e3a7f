//go:build !linux

package mainloop

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentThreadID falls back to the goroutine id where gettid is unavailable.
// The loop goroutine never changes, so ownership checks stay exact.
func currentThreadID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(bytes.TrimPrefix(buf[:n], []byte("goroutine ")))
	if len(fields) == 0 {
		return noOwner
	}
	id, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil {
		return noOwner
	}
	return id
}
