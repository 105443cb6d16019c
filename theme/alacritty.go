package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// alacrittyDoc mirrors the colors section shared by Alacritty's TOML
// and legacy YAML formats.
type alacrittyDoc struct {
	Colors struct {
		Primary struct {
			Background string `toml:"background" yaml:"background"`
			Foreground string `toml:"foreground" yaml:"foreground"`
		} `toml:"primary" yaml:"primary"`
		Cursor struct {
			Cursor string `toml:"cursor" yaml:"cursor"`
			Text   string `toml:"text" yaml:"text"`
		} `toml:"cursor" yaml:"cursor"`
		Selection struct {
			Background string `toml:"background" yaml:"background"`
			Text       string `toml:"text" yaml:"text"`
			Foreground string `toml:"foreground" yaml:"foreground"`
		} `toml:"selection" yaml:"selection"`
		Normal map[string]string `toml:"normal" yaml:"normal"`
		Bright map[string]string `toml:"bright" yaml:"bright"`
	} `toml:"colors" yaml:"colors"`
}

// ansiNames maps Alacritty's named colors to ANSI slots 0-7; the bright
// variants occupy 8-15.
var ansiNames = []string{"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white"}

type alacrittyParser struct{}

// Parse tries structured TOML first, then YAML, then a line-oriented
// regex scan for config fragments neither parser accepts.
func (alacrittyParser) Parse(text string) Palette {
	var doc alacrittyDoc
	if err := toml.Unmarshal([]byte(text), &doc); err != nil || docEmpty(doc) {
		doc = alacrittyDoc{}
		if err := yaml.Unmarshal([]byte(text), &doc); err != nil || docEmpty(doc) {
			return alacrittyRegexScan(text)
		}
	}

	pal := Palette{}
	pal.Set(KeyBackground, doc.Colors.Primary.Background)
	pal.Set(KeyForeground, doc.Colors.Primary.Foreground)
	pal.Set(KeyCursor, doc.Colors.Cursor.Cursor)
	pal.Set(KeySelectionBG, doc.Colors.Selection.Background)
	if doc.Colors.Selection.Text != "" {
		pal.Set(KeySelectionFG, doc.Colors.Selection.Text)
	} else {
		pal.Set(KeySelectionFG, doc.Colors.Selection.Foreground)
	}
	for i, name := range ansiNames {
		pal.Set(ColorKey(i), doc.Colors.Normal[name])
		pal.Set(ColorKey(i+8), doc.Colors.Bright[name])
	}
	return pal
}

func docEmpty(doc alacrittyDoc) bool {
	return doc.Colors.Primary.Background == "" &&
		doc.Colors.Primary.Foreground == "" &&
		len(doc.Colors.Normal) == 0 &&
		len(doc.Colors.Bright) == 0
}

// hexValuePattern matches the color notations seen in the wild:
// #rrggbb(aa), 0xrrggbb, rgb:rr/gg/bb.
const hexValuePattern = `(?:#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|0x[0-9a-fA-F]{6}|rgb:[0-9a-fA-F]{2}/[0-9a-fA-F]{2}/[0-9a-fA-F]{2})`

func blockKeyRe(block, key string) *regexp.Regexp {
	return regexp.MustCompile(`(?mis)^\s*(?:colors\.\s*)?` + block + `\s*[:=].*?^\s*` + key + `\s*[:=]\s*['"]?(` + hexValuePattern + `)`)
}

var (
	alaPrimaryBG   = blockKeyRe("primary", "background")
	alaPrimaryFG   = blockKeyRe("primary", "foreground")
	alaSelectionBG = blockKeyRe("selection", "background")
	alaSelectionFG = blockKeyRe("selection", "text")
	alaCursor      = blockKeyRe("cursor", "cursor")
)

// alacrittyRegexScan extracts a palette from YAML/TOML-ish text that
// structured parsing rejected, e.g. fragments assembled from legacy
// import chains.
func alacrittyRegexScan(text string) Palette {
	pal := Palette{}
	grab := func(re *regexp.Regexp, key string) {
		if m := re.FindStringSubmatch(text); m != nil {
			pal.Set(key, m[1])
		}
	}
	grab(alaPrimaryBG, KeyBackground)
	grab(alaPrimaryFG, KeyForeground)
	grab(alaSelectionBG, KeySelectionBG)
	grab(alaSelectionFG, KeySelectionFG)
	grab(alaCursor, KeyCursor)
	return pal
}

var importLineRe = regexp.MustCompile(`(?mi)^\s*imports?\s*:\s*(.*)$`)
var quotedPathRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
var dashedItemRe = regexp.MustCompile(`^\s*-\s*(?:"([^"]+)"|'([^']+)'|(\S+))\s*$`)

const maxImportDepth = 8

// readAlacrittyText reads an Alacritty config file and appends the text
// of any legacy YAML import chain it references. Depth-bounded and
// cycle-safe; unreadable imports are skipped.
func readAlacrittyText(path string) (string, error) {
	visited := make(map[string]bool)
	return collectImports(path, visited, 0)
}

func collectImports(path string, visited map[string]bool, depth int) (string, error) {
	if depth > maxImportDepth {
		return "", nil
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if visited[path] {
		return "", nil
	}
	visited[path] = true

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(data)

	var combined []string
	baseDir := filepath.Dir(path)

	for _, m := range importLineRe.FindAllStringSubmatch(text, -1) {
		for _, imported := range importTargets(m[1], text) {
			matches, _ := filepath.Glob(imported)
			if len(matches) == 0 {
				matches = []string{imported}
			}
			for _, target := range matches {
				if !filepath.IsAbs(target) {
					target = filepath.Join(baseDir, target)
				}
				sub, err := collectImports(target, visited, depth+1)
				if err == nil && sub != "" {
					combined = append(combined, sub)
				}
			}
		}
	}

	combined = append(combined, text)
	return strings.Join(combined, "\n"), nil
}

// importTargets extracts the file paths referenced by one import line,
// handling both inline `import: ["a", "b"]` and dashed list items on
// following lines.
func importTargets(inline, fullText string) []string {
	var out []string
	for _, qm := range quotedPathRe.FindAllStringSubmatch(inline, -1) {
		if p := firstNonEmpty(qm[1], qm[2]); p != "" {
			out = append(out, expandUserPath(p))
		}
	}
	if len(out) > 0 {
		return out
	}

	trimmed := strings.TrimSpace(inline)
	if trimmed != "" && trimmed != "|" && trimmed != ">" && !strings.HasSuffix(trimmed, ":") {
		return out
	}

	// Dashed list form: scan the lines after the import key
	idx := importLineRe.FindStringIndex(fullText)
	if idx == nil {
		return out
	}
	for _, line := range strings.Split(fullText[idx[1]:], "\n") {
		dm := dashedItemRe.FindStringSubmatch(line)
		if dm == nil {
			if strings.TrimSpace(line) != "" {
				break
			}
			continue
		}
		if p := firstNonEmpty(dm[1], dm[2], dm[3]); p != "" {
			out = append(out, expandUserPath(p))
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func expandUserPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
