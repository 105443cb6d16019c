package theme

import (
	"regexp"
	"strconv"
	"strings"
)

type kittyParser struct{}

var kittyLineRe = regexp.MustCompile(`^\s*([a-z_0-9]+)\s+(\S+)`)

// Parse reads kitty.conf's whitespace-separated `key value` lines.
func (kittyParser) Parse(text string) Palette {
	pal := Palette{}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		m := kittyLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		switch key {
		case "background":
			pal.Set(KeyBackground, value)
		case "foreground":
			pal.Set(KeyForeground, value)
		case "cursor":
			pal.Set(KeyCursor, value)
		case "selection_background":
			pal.Set(KeySelectionBG, value)
		case "selection_foreground":
			pal.Set(KeySelectionFG, value)
		default:
			if n, ok := ansiSlot(key, "color"); ok {
				pal.Set(ColorKey(n), value)
			}
		}
	}
	return pal
}

// ansiSlot parses keys like color0..color15 (kitty) or regular0/bright0
// (foot) into a palette slot index.
func ansiSlot(key, prefix string) (int, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(key[len(prefix):])
	if err != nil || n < 0 || n >= PaletteSlots {
		return 0, false
	}
	return n, true
}
