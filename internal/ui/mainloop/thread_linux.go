//go:build linux

package mainloop

import "golang.org/x/sys/unix"

// currentThreadID returns the kernel thread id of the caller. A goroutine
// locked with runtime.LockOSThread is the only one that can observe it.
func currentThreadID() int64 {
	return int64(unix.Gettid())
}
