// Package theme resolves one consistent color palette from the
// heterogeneous terminal and desktop configuration files a user's
// environment may provide, and keeps it synchronized as those files
// change on disk.
package theme

import (
	"fmt"
	"strings"
)

// Palette keys. A Palette is a partial mapping: a key a source does not
// supply is simply absent, never zero-filled.
const (
	KeyBackground  = "background"
	KeyForeground  = "foreground"
	KeyAccent      = "accent"
	KeyCursor      = "cursor"
	KeySelectionBG = "selection_background"
	KeySelectionFG = "selection_foreground"
	keyColorPrefix = "color" // color0..color15
	PaletteSlots   = 16
)

// ColorKey returns the palette key for ANSI slot n (0-15).
func ColorKey(n int) string {
	return fmt.Sprintf("%s%d", keyColorPrefix, n)
}

// Palette is a partial set of normalized #rrggbb values extracted from
// one source.
type Palette map[string]string

// Set stores a color under key after normalizing it. Malformed values
// are skipped individually so one bad line never discards a source.
func (p Palette) Set(key, raw string) {
	if hex, ok := NormalizeHex(raw); ok {
		p[key] = hex
	}
}

// Usable reports whether the palette supplies the minimum keys needed
// to theme the editor: background and foreground.
func (p Palette) Usable() bool {
	return p[KeyBackground] != "" && p[KeyForeground] != ""
}

// Merge returns a copy of p with missing keys filled from other.
// Existing keys are never overwritten.
func (p Palette) Merge(other Palette) Palette {
	out := make(Palette, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		if out[k] == "" {
			out[k] = v
		}
	}
	return out
}

// Mode describes how the current spec was produced.
type Mode string

const (
	// ModeLive means the spec came from scanning external sources and
	// tracks them via the watcher.
	ModeLive Mode = "live"
	// ModeSystem means no external source was usable and the system
	// default palette applies.
	ModeSystem Mode = "system"
	// ModeForcedSystem means the user explicitly requested the system
	// theme; sources and overrides are bypassed entirely.
	ModeForcedSystem Mode = "forced-system"
)

// Spec is one fully-resolved theme. It is an immutable value: updates
// replace the whole spec, never mutate fields in place. Specs compare
// with == for change detection.
type Spec struct {
	Background  string
	Foreground  string
	Accent      string
	Cursor      string
	SelectionBG string
	SelectionFG string
	Palette     [PaletteSlots]string
	SourceID    string
	Mode        Mode
}

// Equal reports value equality ignoring source identity, so a rewrite
// of a source file that produces identical colors is not a change.
func (s Spec) Equal(other Spec) bool {
	s.SourceID = other.SourceID
	return s == other
}

// NormalizeHex converts the color notations found in terminal configs
// to canonical lowercase #rrggbb form. Accepted inputs: #rrggbb,
// #rrggbbaa (alpha dropped), 0xrrggbb, and rgb:rr/gg/bb.
func NormalizeHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 9):
		s = s[:7]
	case strings.HasPrefix(s, "0x") && len(s) == 8:
		s = "#" + s[2:]
	case strings.HasPrefix(s, "rgb:"):
		parts := strings.Split(s[4:], "/")
		if len(parts) != 3 {
			return "", false
		}
		for _, p := range parts {
			if len(p) != 2 {
				return "", false
			}
		}
		s = "#" + parts[0] + parts[1] + parts[2]
	default:
		return "", false
	}

	for _, c := range s[1:] {
		if !isHexDigit(byte(c)) {
			return "", false
		}
	}
	return strings.ToLower(s), true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// MixColors linearly blends two #rrggbb colors; t=0 yields a, t=1
// yields b. Used to derive selection colors when a source omits them.
func MixColors(a, b string, t float64) string {
	ar, ag, ab, ok := splitRGB(a)
	if !ok {
		ar, ag, ab = 0x1e, 0x1e, 0x1e
	}
	br, bg, bb, ok := splitRGB(b)
	if !ok {
		br, bg, bb = 0xe0, 0xe0, 0xe0
	}
	mix := func(x, y int) int {
		v := int(float64(x)*(1-t) + float64(y)*t + 0.5)
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// isLight reports whether a color reads as a light background.
func isLight(hex string) bool {
	r, g, b, ok := splitRGB(hex)
	if !ok {
		return false
	}
	// Perceived luminance, ITU-R BT.601
	lum := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return lum > 127.5
}

func splitRGB(hex string) (r, g, b int, ok bool) {
	norm, valid := NormalizeHex(hex)
	if !valid {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(norm, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
