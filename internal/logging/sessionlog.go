package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	segmentSeparator = ".log."
	gzipSuffix       = ".gz"
	defaultMaxSizeMB = 10
	logFilePerm      = 0o600
)

// RotationConfig bounds the files a session log leaves behind.
type RotationConfig struct {
	// MaxSizeMB is the size at which the active file becomes a segment.
	MaxSizeMB int
	// MaxBackups is the number of segments kept per session, 0 keeps all.
	MaxBackups int
	// MaxAgeDays removes past sessions whose newest file is older, 0 keeps all.
	MaxAgeDays int
	// Compress gzips segments.
	Compress bool
}

// SessionLog is the io.Writer behind a session's log file. The active file
// is session_<id>.log; once it outgrows MaxSizeMB it is renamed to the next
// numbered segment, session_<id>.log.<n> (.gz when compressed), and a fresh
// active file is started.
type SessionLog struct {
	dir       string
	sessionID string
	cfg       RotationConfig
	maxSize   int64

	mu      sync.Mutex
	file    *os.File
	size    int64
	segment int
}

// OpenSessionLog opens the active file of sessionID in dir for appending.
// Segment numbering continues after any segments already on disk.
func OpenSessionLog(dir, sessionID string, cfg RotationConfig) (*SessionLog, error) {
	if sessionID == "" {
		return nil, errors.New("session log: session id is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultMaxSizeMB
	}

	l := &SessionLog{
		dir:       dir,
		sessionID: sessionID,
		cfg:       cfg,
		maxSize:   int64(cfg.MaxSizeMB) << 20,
	}
	segments, err := l.segments()
	if err != nil {
		return nil, err
	}
	if n := len(segments); n > 0 {
		l.segment = segments[n-1].number
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the active file.
func (l *SessionLog) Path() string {
	return SessionLogPath(l.dir, l.sessionID)
}

// Segments returns the rotated segment paths, oldest first.
func (l *SessionLog) Segments() ([]string, error) {
	segments, err := l.segments()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(segments))
	for i, s := range segments {
		paths[i] = s.path
	}
	return paths, nil
}

func (l *SessionLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		if err := l.open(); err != nil {
			return 0, err
		}
	}
	if l.size > 0 && l.size+int64(len(p)) > l.maxSize {
		if err := l.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := l.file.Write(p)
	l.size += int64(n)
	return n, err
}

// Close closes the active file. A later Write reopens it.
func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *SessionLog) open() error {
	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat session log: %w", err)
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// rotate runs with mu held.
func (l *SessionLog) rotate() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close session log: %w", err)
	}
	l.file = nil

	l.segment++
	segment := filepath.Join(l.dir, SegmentFilename(l.sessionID, l.segment))
	if err := os.Rename(l.Path(), segment); err != nil {
		return fmt.Errorf("rotate session log: %w", err)
	}
	if l.cfg.Compress {
		// an uncompressed segment is still a valid segment
		if err := gzipFile(segment); err != nil {
			fmt.Fprintf(os.Stderr, "webbridge: compress %s: %v\n", segment, err)
		}
	}
	l.pruneSegments()
	return l.open()
}

func (l *SessionLog) pruneSegments() {
	if l.cfg.MaxBackups <= 0 {
		return
	}
	segments, err := l.segments()
	if err != nil {
		return
	}
	for len(segments) > l.cfg.MaxBackups {
		if err := os.Remove(segments[0].path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "webbridge: remove %s: %v\n", segments[0].path, err)
		}
		segments = segments[1:]
	}
}

type segmentFile struct {
	number int
	path   string
}

func (l *SessionLog) segments() ([]segmentFile, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read log directory: %w", err)
	}
	var out []segmentFile
	for _, e := range entries {
		id, n, ok := ParseSegmentFilename(e.Name())
		if !ok || id != l.sessionID || e.IsDir() {
			continue
		}
		out = append(out, segmentFile{number: n, path: filepath.Join(l.dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out, nil
}

// SegmentFilename names the n-th rotated segment of a session, before any
// compression suffix.
func SegmentFilename(sessionID string, n int) string {
	return SessionFilename(sessionID) + "." + strconv.Itoa(n)
}

// ParseSegmentFilename extracts the session id and segment number from a
// segment name, compressed or not.
func ParseSegmentFilename(filename string) (sessionID string, n int, ok bool) {
	name := strings.TrimSuffix(filename, gzipSuffix)
	i := strings.LastIndex(name, segmentSeparator)
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i+len(segmentSeparator):])
	if err != nil || n <= 0 {
		return "", 0, false
	}
	sessionID, ok = ParseSessionFilename(name[:i] + sessionFileSuffix)
	return sessionID, n, ok
}

// PruneSessionLogs removes every file of past sessions whose newest file was
// modified before now-maxAge. activeID is never touched. It returns the
// number of sessions removed.
func PruneSessionLogs(dir, activeID string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log directory: %w", err)
	}

	files := make(map[string][]string)
	newest := make(map[string]time.Time)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := ParseSessionFilename(e.Name())
		if !ok {
			id, _, ok = ParseSegmentFilename(e.Name())
		}
		if !ok || id == activeID {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files[id] = append(files[id], filepath.Join(dir, e.Name()))
		if info.ModTime().After(newest[id]) {
			newest[id] = info.ModTime()
		}
	}

	cutoff := now.Add(-maxAge)
	var removed int
	var errs []error
	for id, paths := range files {
		if !newest[id].Before(cutoff) {
			continue
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
			}
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func gzipFile(path string) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(path+gzipSuffix, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePerm)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	if _, err = io.Copy(zw, in); err == nil {
		err = zw.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path + gzipSuffix)
		return err
	}
	return os.Remove(path)
}
