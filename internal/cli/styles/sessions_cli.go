package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// SessionsCLIRenderer renders non-interactive output for `webbridge sessions`.
type SessionsCLIRenderer struct {
	theme *Theme
}

func NewSessionsCLIRenderer(theme *Theme) *SessionsCLIRenderer {
	return &SessionsCLIRenderer{theme: theme}
}

func (r *SessionsCLIRenderer) RenderEmptyList() string {
	return r.theme.Subtle.Render("No host runs recorded.")
}

func (r *SessionsCLIRenderer) RenderList(items []entity.SessionSummary, limit int) string {
	if len(items) == 0 {
		return r.RenderEmptyList()
	}

	var b strings.Builder
	title := fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconSessionStack), r.theme.Title.Render("Sessions"))
	b.WriteString(title)
	if limit > 0 {
		b.WriteString(r.theme.Subtle.Render(fmt.Sprintf(" (showing up to %d)", limit)))
	}
	b.WriteString("\n\n")

	now := time.Now()
	for _, s := range items {
		b.WriteString(r.renderOne(s, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(r.theme.Subtle.Render("Tip: use `webbridge calls --session <id>` to list a run's calls."))
	return b.String()
}

func (r *SessionsCLIRenderer) renderOne(s entity.SessionSummary, now time.Time) string {
	status := r.theme.Subtle.Render(IconStop)
	if s.Session.IsActive() {
		status = r.theme.Highlight.Render(IconPlay)
	}

	id := r.theme.Highlight.Render(string(s.Session.ID))
	calls := r.theme.BadgeMuted.Render(fmt.Sprintf("%d calls", s.Calls))
	failures := r.theme.BadgeMuted.Render(fmt.Sprintf("%d failed", s.Failures))
	if s.Failures > 0 {
		failures = r.theme.ErrorStyle.Render(fmt.Sprintf("%d failed", s.Failures))
	}

	line := fmt.Sprintf("%s %s  %s %s  %s",
		status,
		id,
		calls,
		failures,
		r.theme.Subtle.Render(RelativeTime(s.Session.StartedAt, now)),
	)
	if s.Session.EndedAt != nil {
		line += r.theme.Subtle.Render(", ran " + s.Session.EndedAt.Sub(s.Session.StartedAt).Round(time.Second).String())
	}
	return line
}

func (r *SessionsCLIRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}

// RelativeTime renders t relative to now ("just now", "5m ago", "3d ago").
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
