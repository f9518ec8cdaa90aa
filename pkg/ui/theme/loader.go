package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/cursing/pkg/ui/backend"
)

// StyleSpec is the file representation of one style.
type StyleSpec struct {
	Fg    string   `yaml:"fg"`
	Bg    string   `yaml:"bg"`
	Attrs []string `yaml:"attrs"`
}

// File is the on-disk theme format: state name to style key to spec.
//
//	focused:
//	  border: {fg: "#40ff80", bg: "#262626"}
//	  highlight: {fg: cyan, attrs: [bold, reverse]}
type File map[string]map[string]StyleSpec

// Parse reads a YAML theme. Entries override the built-in theme, so a file
// only needs to list the styles it changes.
func Parse(data []byte) (*Theme, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse theme: %w", err)
	}
	return f.Apply(Default())
}

// Load reads and parses the theme file at path.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	return Parse(data)
}

// Apply returns a copy of base with every entry of f applied.
func (f File) Apply(base *Theme) (*Theme, error) {
	t := base.Clone()
	for stateName, styles := range f {
		state, err := ParseState(stateName)
		if err != nil {
			return nil, err
		}
		for key, spec := range styles {
			if !knownKey(key) {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownStyle, stateName, key)
			}
			style, err := spec.resolve(t.Style(state, key))
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", stateName, key, err)
			}
			t.Set(state, key, style)
		}
	}
	return t, nil
}

func (s StyleSpec) resolve(fallback backend.Style) (backend.Style, error) {
	out := fallback
	if s.Fg != "" {
		c, err := ParseColor(s.Fg)
		if err != nil {
			return out, err
		}
		out = out.Foreground(c)
	}
	if s.Bg != "" {
		c, err := ParseColor(s.Bg)
		if err != nil {
			return out, err
		}
		out = out.Background(c)
	}
	if s.Attrs != nil {
		out.Attrs = 0
		for _, name := range s.Attrs {
			a, err := ParseAttr(name)
			if err != nil {
				return out, err
			}
			out = out.With(a)
		}
	}
	return out, nil
}
