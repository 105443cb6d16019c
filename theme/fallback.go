package theme

// systemPalette is the GTK-default palette used when no external source
// is usable, and the completion source for keys a winning source does
// not supply.
var systemPalette = Palette{
	KeyBackground:  "#1e1e1e",
	KeyForeground:  "#e0e0e0",
	KeyAccent:      "#3584e4",
	KeyCursor:      "#e0e0e0",
	KeySelectionBG: "#3a3a3a",
	KeySelectionFG: "#e0e0e0",
	"color0":       "#1e1e1e",
	"color1":       "#cc575d",
	"color2":       "#73d216",
	"color3":       "#f6d32d",
	"color4":       "#3584e4",
	"color5":       "#9141ac",
	"color6":       "#2190a4",
	"color7":       "#e0e0e0",
	"color8":       "#5e5c64",
	"color9":       "#f66151",
	"color10":      "#8ff0a4",
	"color11":      "#f9f06b",
	"color12":      "#62a0ea",
	"color13":      "#dc8add",
	"color14":      "#93ddc2",
	"color15":      "#ffffff",
}

// SystemPalette returns a copy of the system default palette.
func SystemPalette() Palette {
	out := make(Palette, len(systemPalette))
	for k, v := range systemPalette {
		out[k] = v
	}
	return out
}
