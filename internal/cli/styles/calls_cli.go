package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// CallsCLIRenderer renders non-interactive output for `webbridge calls`.
type CallsCLIRenderer struct {
	theme *Theme
}

func NewCallsCLIRenderer(theme *Theme) *CallsCLIRenderer {
	return &CallsCLIRenderer{theme: theme}
}

func (r *CallsCLIRenderer) RenderEmptyList() string {
	return r.theme.Subtle.Render("No journaled calls found.")
}

// RenderList renders records oldest first so the newest call ends up next to the prompt.
func (r *CallsCLIRenderer) RenderList(records []entity.CallRecord, limit int) string {
	if len(records) == 0 {
		return r.RenderEmptyList()
	}

	var b strings.Builder
	title := fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconDatabase), r.theme.Title.Render("Calls"))
	b.WriteString(title)
	if limit > 0 {
		b.WriteString(r.theme.Subtle.Render(fmt.Sprintf(" (showing up to %d)", limit)))
	}
	b.WriteString("\n\n")

	failures := 0
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.Status != entity.StatusOK {
			failures++
		}
		b.WriteString(r.renderOne(rec))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("%s calls, %s failed", formatInt(len(records)), formatInt(failures))
	b.WriteString(r.theme.Subtle.Render(summary))
	return b.String()
}

func (r *CallsCLIRenderer) renderOne(rec entity.CallRecord) string {
	ts := r.theme.Subtle.Render(rec.CreatedAt.Local().Format("15:04:05.000"))
	fn := lipgloss.NewStyle().Width(24).Render(r.theme.Highlight.Render(rec.Function))
	mode := r.theme.BadgeMuted.Render(string(rec.Mode))
	status := r.theme.StatusStyle(string(rec.Status)).Render(string(rec.Status))
	dur := r.theme.Subtle.Render(FormatDuration(rec.Duration))

	line := fmt.Sprintf("%s  %s %s  %s  %s", ts, fn, mode, status, dur)
	if rec.Error != "" {
		line += "  " + r.theme.ErrorStyle.Render(rec.Error)
	}
	return line
}

func (r *CallsCLIRenderer) RenderPruned(removed int64, keep int) string {
	return fmt.Sprintf("%s Removed %s calls, keeping the newest %d.",
		r.theme.SuccessStyle.Render(IconCheck),
		r.theme.Highlight.Render(fmt.Sprintf("%d", removed)),
		keep,
	)
}

func (r *CallsCLIRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}
