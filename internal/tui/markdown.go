package tui

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// markdownWidth is the word-wrap width of rendered markdown.
const markdownWidth = 100

//nolint:gochecknoglobals // cached renderer
var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

func getMarkdownRenderer() *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		style := glamour.WithAutoStyle()
		if !HasColorSupport() {
			style = glamour.WithStandardStyle("notty")
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(markdownWidth))
		if err == nil {
			markdownRenderer = r
		}
	})
	return markdownRenderer
}

// RenderMarkdown renders markdown for the terminal. When no renderer is
// available, or rendering fails, the source is returned unchanged.
func RenderMarkdown(src string) string {
	r := getMarkdownRenderer()
	if r == nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
