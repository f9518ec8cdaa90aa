package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/cursing/pkg/ui/backend"
)

func TestDefault_CoversEveryKeyAndState(t *testing.T) {
	th := Default()
	for _, state := range []State{StateDefault, StateFocused, StateDisabled} {
		for _, key := range Keys() {
			_, ok := th.sets[state][key]
			assert.True(t, ok, "%s.%s missing", state, key)
		}
	}

	hl := th.Style(StateFocused, Highlight)
	assert.True(t, hl.Has(backend.AttrBold|backend.AttrReverse))
	assert.Equal(t, Cyan, hl.Fg)
	assert.Equal(t, Dark, hl.Bg)
}

func TestStyle_Fallbacks(t *testing.T) {
	th := New()
	text := backend.DefaultStyle().Foreground(backend.ColorGreen)
	th.Set(StateDefault, Text, text)

	assert.Equal(t, text, th.Style(StateFocused, Text))
	assert.Equal(t, text, th.Style(StateDisabled, "no-such-key"))

	var nilTheme *Theme
	assert.Equal(t, backend.DefaultStyle(), nilTheme.Style(StateDefault, Text))
	assert.Equal(t, backend.DefaultStyle(), New().Style(StateDefault, Border))
}

func TestPalette(t *testing.T) {
	r, g, b := Dark.RGB()
	assert.Equal(t, []uint8{38, 38, 38}, []uint8{r, g, b})
	r, g, b = Cyan.RGB()
	assert.Equal(t, []uint8{64, 255, 128}, []uint8{r, g, b})
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    backend.Color
		wantErr bool
	}{
		{"#ff0000", backend.ColorRGB(255, 0, 0), false},
		{"cyan", backend.ColorCyan, false},
		{"Default", backend.ColorDefault, false},
		{"", backend.ColorDefault, false},
		{"208", backend.Palette(208), false},
		{"color42", backend.Palette(42), false},
		{"256", 0, true},
		{"#zzzzzz", 0, true},
		{"chartreuse", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColor_AcceptsString(t *testing.T) {
	for _, c := range []backend.Color{backend.ColorDefault, backend.ColorBlue, backend.Palette(200), backend.ColorRGB(1, 2, 3)} {
		got, err := ParseColor(c.String())
		require.NoError(t, err, c.String())
		assert.Equal(t, c, got)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	th, err := Parse([]byte(`
focused:
  border: {fg: "#ff8800"}
  highlight: {attrs: [underline]}
disabled:
  text: {fg: red, bg: black}
`))
	require.NoError(t, err)

	border := th.Style(StateFocused, Border)
	assert.Equal(t, backend.ColorRGB(0xff, 0x88, 0x00), border.Fg)
	assert.Equal(t, Dark, border.Bg, "unset fields keep the default")

	hl := th.Style(StateFocused, Highlight)
	assert.True(t, hl.Has(backend.AttrUnderline))
	assert.False(t, hl.Has(backend.AttrBold))

	text := th.Style(StateDisabled, Text)
	assert.Equal(t, backend.ColorRed, text.Fg)
	assert.Equal(t, backend.ColorBlack, text.Bg)

	// The built-in theme is untouched.
	assert.Equal(t, Cyan, Default().Style(StateFocused, Border).Fg)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("hovered:\n  text: {fg: red}\n"))
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = Parse([]byte("default:\n  sparkle: {fg: red}\n"))
	assert.ErrorIs(t, err, ErrUnknownStyle)

	_, err = Parse([]byte("default:\n  text: {fg: '#nope'}\n"))
	assert.ErrorIs(t, err, ErrBadColor)

	_, err = Parse([]byte("default:\n  text: {attrs: [shiny]}\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("::"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default:\n  text: {fg: red}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Theme, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(th *Theme, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- th:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("default:\n  text: {fg: blue}\n"), 0o644))

	// A write may be observed mid-truncate, so wait for the final content.
	deadline := time.After(2 * time.Second)
	for reload := true; reload; {
		select {
		case th := <-reloaded:
			reload = th.Style(StateDefault, Text).Fg != backend.ColorBlue
		case <-deadline:
			t.Fatal("theme was not reloaded")
		}
	}

	cancel()
	assert.NoError(t, <-done)
}
