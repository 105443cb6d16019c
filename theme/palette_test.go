package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHex(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#1a2b3c", "#1a2b3c", true},
		{"#1A2B3C", "#1a2b3c", true},
		{"#1a2b3cff", "#1a2b3c", true},
		{"0x1a2b3c", "#1a2b3c", true},
		{"rgb:1a/2b/3c", "#1a2b3c", true},
		{`"#1a2b3c"`, "#1a2b3c", true},
		{"'#1a2b3c'", "#1a2b3c", true},
		{"  #1a2b3c  ", "#1a2b3c", true},
		{"#fff", "", false},
		{"#1a2b3", "", false},
		{"1a2b3c", "", false},
		{"0x1a2b", "", false},
		{"rgb:1a/2b", "", false},
		{"rgb:zz/2b/3c", "", false},
		{"#gg2b3c", "", false},
		{"", "", false},
		{"blue", "", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeHex(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestMixColors(t *testing.T) {
	// t=0 yields the first color, t=1 the second
	assert.Equal(t, "#000000", MixColors("#000000", "#ffffff", 0))
	assert.Equal(t, "#ffffff", MixColors("#000000", "#ffffff", 1))
	assert.Equal(t, "#7f7f7f", MixColors("#000000", "#fefefe", 0.5))

	// Malformed input falls back to the default dark background
	assert.Equal(t, "#8f8f8f", MixColors("nope", "#ffffff", 0.5))
}

func TestPaletteSetSkipsMalformed(t *testing.T) {
	p := Palette{}
	p.Set(KeyBackground, "#1e1e1e")
	p.Set(KeyForeground, "not-a-color")
	p.Set(KeyAccent, "0x3584e4")

	assert.Equal(t, "#1e1e1e", p[KeyBackground])
	assert.Equal(t, "#3584e4", p[KeyAccent])
	_, present := p[KeyForeground]
	assert.False(t, present, "malformed value must be skipped, not zero-filled")
}

func TestPaletteUsable(t *testing.T) {
	assert.False(t, Palette{}.Usable())
	assert.False(t, Palette{KeyBackground: "#000000"}.Usable())
	assert.False(t, Palette{KeyForeground: "#ffffff"}.Usable())
	assert.True(t, Palette{KeyBackground: "#000000", KeyForeground: "#ffffff"}.Usable())
}

func TestPaletteMergeDoesNotOverwrite(t *testing.T) {
	base := Palette{KeyBackground: "#111111"}
	fill := Palette{KeyBackground: "#222222", KeyForeground: "#eeeeee"}

	out := base.Merge(fill)
	assert.Equal(t, "#111111", out[KeyBackground])
	assert.Equal(t, "#eeeeee", out[KeyForeground])

	// Merge returns a copy
	out[KeyAccent] = "#ff0000"
	_, present := base[KeyAccent]
	assert.False(t, present)
}

func TestSpecEqualIgnoresSourceID(t *testing.T) {
	a := Spec{Background: "#000000", Foreground: "#ffffff", SourceID: "alacritty", Mode: ModeLive}
	b := a
	b.SourceID = "kitty"
	assert.True(t, a.Equal(b))

	c := a
	c.Background = "#010101"
	assert.False(t, a.Equal(c))

	d := a
	d.Mode = ModeSystem
	assert.False(t, a.Equal(d))
}

func TestColorKey(t *testing.T) {
	assert.Equal(t, "color0", ColorKey(0))
	assert.Equal(t, "color15", ColorKey(15))
}
