package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/acc-hotlaps/internal/render"
	"github.com/Zuo-Peng/acc-hotlaps/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
}

// loadPreviewCmd returns a tea.Cmd that renders the driver card async.
func loadPreviewCmd(r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content := render.Details(r.Entry, render.Options{
			Width: width,
			Query: query,
			Color: true,
		})
		return previewRenderedMsg{key: previewCacheKey(r), content: content}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
