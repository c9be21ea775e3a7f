package styles

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// NewStyledTable creates a themed table model.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)

	// Apply theme styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.Text).
		Background(theme.SurfaceVariant).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// CallsTableColumns returns columns for the call journal table.
func CallsTableColumns() []table.Column {
	return []table.Column{
		{Title: "Time", Width: 10},
		{Title: "Function", Width: 24},
		{Title: "Mode", Width: 6},
		{Title: "Status", Width: 16},
		{Title: "Duration", Width: 10},
		{Title: "Callback", Width: 10},
	}
}

// CallRow converts a journaled call to a table row.
type CallRow struct {
	Record entity.CallRecord
}

// ToRow converts to table.Row.
func (c CallRow) ToRow() table.Row {
	callback := "-"
	if c.Record.Mode == entity.InvocationAsync {
		callback = strconv.FormatInt(int64(c.Record.CallbackID), 10)
	}
	return table.Row{
		c.Record.CreatedAt.Local().Format("15:04:05"),
		c.Record.Function,
		string(c.Record.Mode),
		string(c.Record.Status),
		FormatDuration(c.Record.Duration),
		callback,
	}
}

// CallRows converts records to table rows, preserving order.
func CallRows(records []entity.CallRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, CallRow{Record: r}.ToRow())
	}
	return rows
}

// FormatDuration renders a call duration with a unit suited to its size.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0"
	case d < time.Millisecond:
		return strconv.FormatInt(d.Microseconds(), 10) + "µs"
	case d < time.Second:
		return formatFloat(float64(d.Microseconds())/1000) + "ms"
	default:
		return formatFloat(d.Seconds()) + "s"
	}
}

// formatInt formats an integer for display.
func formatInt(n int) string {
	switch {
	case n >= 1000000:
		return formatFloat(float64(n)/1000000) + "M"
	case n >= 1000:
		return formatFloat(float64(n)/1000) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// formatFloat formats a float with one decimal.
func formatFloat(f float64) string {
	i := int(f * 10)
	whole := i / 10
	dec := i % 10
	if dec == 0 {
		return strconv.Itoa(whole)
	}
	return strconv.Itoa(whole) + "." + strconv.Itoa(dec)
}
