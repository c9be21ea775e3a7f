package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/logging"
)

var (
	logsFollow bool
	logsLines  int
)

const defaultLogsLines = 50

var logsCmd = &cobra.Command{
	Use:   "logs [session]",
	Short: "View session logs",
	Long: `View webbridge run logs by session.

Without arguments, lists all available session logs.
With a session ID (or partial match), shows logs for that session.

Examples:
  webbridge logs                 # List all sessions
  webbridge logs a7b3            # View logs for session ending in 'a7b3'
  webbridge logs -f a7b3         # Follow logs in real-time
  webbridge logs -n 100 a7b3     # Show last 100 lines`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output in real-time")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", defaultLogsLines, "number of lines to show")
}

// LogSession is a session log file, optionally matched with its recorded run.
type LogSession struct {
	SessionID string
	ShortID   string
	Path      string
	Size      int64
	ModTime   time.Time

	StartedAt time.Time
	EndedAt   *time.Time
	FromDB    bool
}

func runLogs(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	ctx := app.Ctx()
	logDir := app.Config.Logging.LogDir

	var lister sessionLister
	if app.Sessions != nil {
		lister = app.Sessions
	}

	sessions, err := logSessions(ctx, lister, logDir)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		printLogSessions(sessions, app.Theme)
		return nil
	}

	session, err := findLogSession(sessions, args[0])
	if err != nil {
		return err
	}

	if _, err := os.Stat(session.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("log file for session '%s' not found at %s", session.ShortID, session.Path)
		}
		return fmt.Errorf("stat log file: %w", err)
	}

	if logsFollow {
		followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		fmt.Println(app.Theme.Subtle.Render("Following logs... (Ctrl+C to stop)"))
		return followLog(followCtx, session.Path, func(line string) {
			fmt.Println(colorizeLogLine(line, app.Theme))
		})
	}

	lines, err := tailLines(session.Path, logsLines)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(colorizeLogLine(line, app.Theme))
	}
	return nil
}

func printLogSessions(sessions []LogSession, theme *styles.Theme) {
	if len(sessions) == 0 {
		fmt.Println(theme.Subtle.Render("No sessions found. Run 'webbridge run <script>' to create logs."))
		return
	}

	fmt.Println(theme.Title.Render("Sessions (newest first):"))
	fmt.Println()

	for i := range sessions {
		s := &sessions[i]
		status := ""
		if s.FromDB {
			if s.EndedAt == nil {
				status = theme.SuccessStyle.Render("active")
			} else {
				status = theme.Subtle.Render("ended")
			}
		}

		sizeStr := "no log"
		if s.Size > 0 {
			sizeStr = formatSize(s.Size)
		}

		fmt.Printf("  %s  %s  %s  %s\n",
			theme.Highlight.Render(s.ShortID),
			theme.Subtle.Render(logSortTime(*s).Format("2006-01-02 15:04:05")),
			status,
			theme.Subtle.Render(fmt.Sprintf("(%s)", sizeStr)),
		)
	}

	fmt.Println()
	fmt.Println(theme.Subtle.Render("Use 'webbridge logs <id>' to view a session"))
}

// logSessions merges the log files found in logDir with the recorded
// sessions, newest first.
func logSessions(ctx context.Context, sessions sessionLister, logDir string) ([]LogSession, error) {
	fsSessions, err := logFiles(logDir)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		return fsSessions, nil
	}

	recorded, err := sessions.Recent(ctx, recentSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	byID := make(map[string]struct{}, len(recorded))
	merged := make([]LogSession, 0, len(recorded)+len(fsSessions))
	for i := range recorded {
		s := recorded[i].Session
		path := logging.SessionLogPath(logDir, string(s.ID))
		info := LogSession{
			SessionID: string(s.ID),
			ShortID:   s.ShortID(),
			Path:      path,
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			FromDB:    true,
		}
		if stat, statErr := os.Stat(path); statErr == nil {
			info.Size = stat.Size()
			info.ModTime = stat.ModTime()
		}
		byID[info.SessionID] = struct{}{}
		merged = append(merged, info)
	}

	for i := range fsSessions {
		if _, ok := byID[fsSessions[i].SessionID]; ok {
			continue
		}
		merged = append(merged, fsSessions[i])
	}

	sort.Slice(merged, func(i, j int) bool {
		return logSortTime(merged[i]).After(logSortTime(merged[j]))
	})
	return merged, nil
}

// logFiles returns all session log files, sorted by modification time (newest first).
func logFiles(logDir string) ([]LogSession, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var sessions []LogSession
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sessionID, ok := logging.ParseSessionFilename(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, LogSession{
			SessionID: sessionID,
			ShortID:   logging.ShortSessionID(sessionID),
			Path:      filepath.Join(logDir, entry.Name()),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

func logSortTime(s LogSession) time.Time {
	if !s.StartedAt.IsZero() {
		return s.StartedAt
	}
	return s.ModTime
}

// findLogSession finds a session by short id or partial id.
func findLogSession(sessions []LogSession, query string) (*LogSession, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions found")
	}

	q := strings.ToLower(strings.TrimSpace(query))
	for i := range sessions {
		if strings.EqualFold(sessions[i].ShortID, q) {
			return &sessions[i], nil
		}
	}

	var matches []*LogSession
	for i := range sessions {
		if strings.Contains(strings.ToLower(sessions[i].SessionID), q) {
			matches = append(matches, &sessions[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no session matching '%s' found", query)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ShortID)
		}
		return nil, fmt.Errorf("multiple sessions match '%s': %s", query, strings.Join(ids, ", "))
	}
}

// tailLines returns the last n lines of the file at path.
func tailLines(path string, n int) (lines []string, retErr error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close log file: %w", closeErr)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return lines, nil
}

// followLog emits each line appended to path until ctx is done. Existing
// content is skipped.
func followLog(ctx context.Context, path string, emit func(string)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch log file: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch log file: %w", err)
	}

	reader := bufio.NewReader(file)
	pending := ""
	drain := func() error {
		for {
			chunk, err := reader.ReadString('\n')
			pending += chunk
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("read log file: %w", err)
			}
			emit(strings.TrimSuffix(pending, "\n"))
			pending = ""
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return drain()
			}
			if event.Has(fsnotify.Write) {
				if err := drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log file: %w", err)
		}
	}
}

// logEntry represents a parsed JSON log entry.
type logEntry struct {
	Level     string `json:"level"`
	Time      string `json:"time"`
	Message   string `json:"message"`
	Component string `json:"component"`
}

// colorizeLogLine adds color based on log level.
func colorizeLogLine(line string, theme *styles.Theme) string {
	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err == nil && entry.Level != "" {
		return formatJSONLogLine(entry, theme)
	}

	// Console format
	switch {
	case strings.Contains(line, " ERR "), strings.Contains(line, " FTL "):
		return theme.ErrorStyle.Render(line)
	case strings.Contains(line, " WRN "):
		return theme.WarningStyle.Render(line)
	case strings.Contains(line, " DBG "), strings.Contains(line, " TRC "):
		return theme.Subtle.Render(line)
	default:
		return line
	}
}

// formatJSONLogLine formats a parsed JSON log entry with colors.
func formatJSONLogLine(entry logEntry, theme *styles.Theme) string {
	timeStr := entry.Time
	if t, err := time.Parse(time.RFC3339, entry.Time); err == nil {
		timeStr = t.Local().Format("15:04:05")
	}

	var levelStr string
	switch entry.Level {
	case "error", "fatal", "panic":
		levelStr = theme.ErrorStyle.Render("ERR")
	case "warn":
		levelStr = theme.WarningStyle.Render("WRN")
	case "info":
		levelStr = theme.Highlight.Render("INF")
	case "debug":
		levelStr = theme.Subtle.Render("DBG")
	case "trace":
		levelStr = theme.Subtle.Render("TRC")
	default:
		levelStr = entry.Level
	}

	msg := entry.Message
	if entry.Component != "" {
		msg = theme.Subtle.Render(entry.Component+":") + " " + msg
	}
	return fmt.Sprintf("%s %s %s", theme.Subtle.Render(timeStr), levelStr, msg)
}

func formatSize(n int64) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	}
}
