package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ConfigRenderer renders config status messages with styled output.
type ConfigRenderer struct {
	theme *Theme
}

// NewConfigRenderer creates a new config renderer with the given theme.
func NewConfigRenderer(theme *Theme) *ConfigRenderer {
	return &ConfigRenderer{theme: theme}
}

// RenderConfigInfo renders the config file location.
func (r *ConfigRenderer) RenderConfigInfo(path string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)

	return fmt.Sprintf("\n  %s Config %s\n", iconStyle.Render(IconConfig), r.theme.Subtle.Render(path))
}

// RenderWritten renders the success message after a file was written.
func (r *ConfigRenderer) RenderWritten(what, path string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Success)

	return fmt.Sprintf(
		"\n  %s Wrote %s to %s\n",
		iconStyle.Render(IconCheck),
		r.theme.Highlight.Render(what),
		r.theme.Subtle.Render(path),
	)
}

// RenderExists renders the refusal to overwrite an existing file.
func (r *ConfigRenderer) RenderExists(path string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Warning)

	return fmt.Sprintf(
		"\n  %s Config %s already exists\n  %s\n",
		iconStyle.Render(IconWarning),
		r.theme.Subtle.Render(path),
		r.theme.Subtle.Render("Use --force to replace it with the defaults."),
	)
}

// RenderError renders an error message.
func (r *ConfigRenderer) RenderError(err error) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Error)

	return fmt.Sprintf("\n  %s Config error: %v\n", iconStyle.Render(IconX), err)
}
