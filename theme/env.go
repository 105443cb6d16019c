package theme

import "fmt"

// Environment variable suffixes mapped to palette keys. Each is
// recognized under both the OMNOTE_ prefix and the legacy MICROPAD_
// prefix; the OMNOTE_ form wins when both are set.
var envKeyMap = map[string]string{
	"BG":     KeyBackground,
	"FG":     KeyForeground,
	"ACCENT": KeyAccent,
	"CARET":  KeyCursor,
	"SEL_BG": KeySelectionBG,
	"SEL_FG": KeySelectionFG,
}

// EnvPalette extracts color overrides from OMNOTE_* (and legacy
// MICROPAD_*) environment variables.
func EnvPalette(getenv func(string) string) Palette {
	pal := Palette{}

	lookup := func(suffix string) string {
		if v := getenv("OMNOTE_" + suffix); v != "" {
			return v
		}
		return getenv("MICROPAD_" + suffix)
	}

	for suffix, key := range envKeyMap {
		if v := lookup(suffix); v != "" {
			pal.Set(key, v)
		}
	}
	for i := 0; i < PaletteSlots; i++ {
		if v := lookup(fmt.Sprintf("COLOR%d", i)); v != "" {
			pal.Set(ColorKey(i), v)
		}
	}
	return pal
}
