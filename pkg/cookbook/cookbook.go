// Package cookbook serves the built-in guides as rendered terminal
// markdown.
package cookbook

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/machlit/cutler/pkg/errors"
)

//go:embed docs/*.md
var docs embed.FS

// List returns the available guide names, sorted.
func List() []string {
	entries, err := fs.ReadDir(docs, "docs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Render returns the named guide as styled terminal output. Width 0
// auto-detects; when glamour cannot set up a renderer the raw markdown
// is returned instead.
func Render(name string, width int) (string, error) {
	raw, err := docs.ReadFile("docs/" + name + ".md")
	if err != nil {
		return "", errors.Newf(errors.ErrNotFound, "no guide named %q; see `cutler cookbook`", name)
	}

	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return string(raw), nil
	}
	rendered, err := renderer.Render(string(raw))
	if err != nil {
		return string(raw), nil
	}
	return rendered, nil
}
