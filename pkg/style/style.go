// Package style defines the visual styling for cutler's terminal
// output.
//
// All styles use semantic names and adaptive colors, defined in the
// embedded styles.yaml. Renderers look styles up by name through Get,
// so the whole theme lives in one place.
package style

import (
	_ "embed"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/machlit/cutler/pkg/logging"
)

// ColorDef is an adaptive color pair in YAML.
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition in YAML.
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Underline    bool   `yaml:"underline,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	Background   string `yaml:"background,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
	PaddingLeft  int    `yaml:"paddingLeft,omitempty"`
}

// Sheet is the complete styles configuration.
type Sheet struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedSheet []byte

var registry map[string]lipgloss.Style

func init() {
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())

	if err := Load(embeddedSheet); err != nil {
		logger := logging.GetLogger("style")
		logger.Warn().Err(err).Msg("Embedded style sheet unusable, styling disabled")
		registry = map[string]lipgloss.Style{}
	}
}

// Load replaces the registry with the styles defined in a YAML sheet.
func Load(data []byte) error {
	var sheet Sheet
	if err := yaml.Unmarshal(data, &sheet); err != nil {
		return err
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(sheet.Colors))
	for name, def := range sheet.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry = make(map[string]lipgloss.Style, len(sheet.Styles))
	for name, def := range sheet.Styles {
		registry[name] = build(def, colors)
	}
	return nil
}

func build(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	st := lipgloss.NewStyle()
	if def.Bold {
		st = st.Bold(true)
	}
	if def.Italic {
		st = st.Italic(true)
	}
	if def.Underline {
		st = st.Underline(true)
	}
	if c, ok := colors[def.Foreground]; ok {
		st = st.Foreground(c)
	}
	if c, ok := colors[def.Background]; ok {
		st = st.Background(c)
	}
	if def.MarginBottom > 0 {
		st = st.MarginBottom(def.MarginBottom)
	}
	if def.PaddingLeft > 0 {
		st = st.PaddingLeft(def.PaddingLeft)
	}
	return st
}

// Get returns the named style, or a zero style for unknown names so
// callers can render unconditionally.
func Get(name string) lipgloss.Style {
	if st, ok := registry[name]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

// Names lists every style the sheet defines.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
