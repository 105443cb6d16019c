package theme

import (
	"regexp"
	"strings"
)

type footParser struct{}

var footLineRe = regexp.MustCompile(`^\s*([a-z0-9-]+)\s*=\s*(\S+)`)

// Parse reads foot.ini's `key = value` lines. Foot writes bare hex
// values without a # prefix inside the [colors] section, so six-digit
// bare values are accepted there too.
func (footParser) Parse(text string) Palette {
	pal := Palette{}
	inColors := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			inColors = trimmed == "[colors]"
			continue
		}
		m := footLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		if inColors && !strings.HasPrefix(value, "#") && !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "rgb:") && len(value) == 6 {
			value = "#" + value
		}
		switch key {
		case "background":
			pal.Set(KeyBackground, value)
		case "foreground":
			pal.Set(KeyForeground, value)
		case "cursor":
			pal.Set(KeyCursor, value)
		case "selection-background":
			pal.Set(KeySelectionBG, value)
		case "selection-foreground":
			pal.Set(KeySelectionFG, value)
		default:
			if n, ok := ansiSlot(key, "regular"); ok && n < 8 {
				pal.Set(ColorKey(n), value)
			} else if n, ok := ansiSlot(key, "bright"); ok && n < 8 {
				pal.Set(ColorKey(n+8), value)
			}
		}
	}
	return pal
}
