package renderer

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown for a terminal of the given width with a
// standard glamour style ("dark", "light", "notty", ...). The markdown is
// returned as is when it cannot be rendered.
func Terminal(md, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return md + "\n"
	}
	out, err := r.Render(md)
	if err != nil {
		return md + "\n"
	}
	return out
}
