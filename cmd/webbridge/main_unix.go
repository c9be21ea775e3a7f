//go:build linux || darwin

package main

import (
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// enableCrashForensics makes a crash in a bound function or the engine leave
// a full traceback and, where the hard limit allows it, a core dump.
func enableCrashForensics() {
	debug.SetTraceback("crash")

	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &limit); err != nil {
		return
	}
	if limit.Cur >= limit.Max {
		return
	}
	limit.Cur = limit.Max
	_ = unix.Setrlimit(unix.RLIMIT_CORE, &limit)
}
