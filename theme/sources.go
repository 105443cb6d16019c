package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ParserKind selects the parsing strategy for a source.
type ParserKind string

const (
	ParserAlacritty ParserKind = "alacritty"
	ParserKitty     ParserKind = "kitty"
	ParserFoot      ParserKind = "foot"
	ParserEnv       ParserKind = "env"
	ParserFallback  ParserKind = "fallback"
)

// SourceDescriptor names one candidate configuration source, where it
// lives, how to parse it, and its position in the priority order.
// Descriptors are immutable after registry construction.
type SourceDescriptor struct {
	ID   string
	Path string // empty for the env and fallback pseudo-sources
	Kind ParserKind
	Rank int
}

// Registry is an ordered snapshot of candidate sources. Build a fresh
// one before each resolution: the set of existing files (and the active
// Omarchy theme) may have changed since the last scan.
type Registry struct {
	descriptors []SourceDescriptor
	// extra holds paths that are not sources themselves but whose
	// changes redirect source discovery, e.g. the Omarchy current-theme
	// marker and symlink locations.
	extra []string
}

// Descriptors returns the sources in strict priority order.
func (r *Registry) Descriptors() []SourceDescriptor {
	return r.descriptors
}

// WatchPaths returns every filesystem location whose change should
// trigger re-resolution: each candidate file that exists, plus the
// parent directory of each that does not, so a higher-priority source
// appearing for the first time is still noticed.
func (r *Registry) WatchPaths() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, e := range r.extra {
		if _, err := os.Stat(e); err == nil {
			add(e)
		}
	}

	for _, d := range r.descriptors {
		if d.Path == "" {
			continue
		}
		if _, err := os.Stat(d.Path); err == nil {
			add(d.Path)
			add(filepath.Dir(d.Path))
		} else {
			// Watch the nearest existing ancestor so creation is seen
			dir := filepath.Dir(d.Path)
			for dir != "/" && dir != "." {
				if _, err := os.Stat(dir); err == nil {
					add(dir)
					break
				}
				dir = filepath.Dir(dir)
			}
		}
	}
	return out
}

// RegistryOptions controls candidate discovery. Zero value uses the
// real home directory and process environment.
type RegistryOptions struct {
	// Home overrides the user home directory (tests).
	Home string
	// Getenv overrides environment lookup (tests). Defaults to os.Getenv.
	Getenv func(string) string
}

func (o *RegistryOptions) home() string {
	if o.Home != "" {
		return o.Home
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return ""
}

func (o *RegistryOptions) getenv(key string) string {
	if o.Getenv != nil {
		return o.Getenv(key)
	}
	return os.Getenv(key)
}

// NewRegistry builds the ordered source snapshot:
// Omarchy theme files, then Alacritty, Kitty, Foot, then the env and
// system-fallback pseudo-sources.
func NewRegistry(opts RegistryOptions) *Registry {
	home := opts.home()
	rank := 0
	var descs []SourceDescriptor
	add := func(id, path string, kind ParserKind) {
		descs = append(descs, SourceDescriptor{ID: id, Path: path, Kind: kind, Rank: rank})
		rank++
	}

	omarchyDir := filepath.Join(home, ".config", "omarchy")
	extra := []string{omarchyDir, filepath.Join(omarchyDir, "current"), filepath.Join(omarchyDir, "themes")}

	if themeDir := omarchyCurrentDir(home); themeDir != "" {
		add("omarchy-alacritty", filepath.Join(themeDir, "alacritty.toml"), ParserAlacritty)
		add("omarchy-alacritty-yaml", filepath.Join(themeDir, "alacritty.yml"), ParserAlacritty)
		add("omarchy-kitty", filepath.Join(themeDir, "kitty.conf"), ParserKitty)
		add("omarchy-foot", filepath.Join(themeDir, "foot.ini"), ParserFoot)
	} else {
		// Still watch the omarchy config root so a theme appearing later
		// triggers a rescan
		add("omarchy-current", filepath.Join(home, ".config", "omarchy", "current", "theme"), ParserKitty)
	}

	if envPath := opts.getenv("ALACRITTY_CONFIG"); envPath != "" {
		add("alacritty-env", expandHome(envPath, home), ParserAlacritty)
	}
	add("alacritty", filepath.Join(home, ".config", "alacritty", "alacritty.toml"), ParserAlacritty)
	add("alacritty-yml", filepath.Join(home, ".config", "alacritty", "alacritty.yml"), ParserAlacritty)
	add("alacritty-yaml", filepath.Join(home, ".config", "alacritty", "alacritty.yaml"), ParserAlacritty)
	add("alacritty-legacy", filepath.Join(home, ".alacritty.yml"), ParserAlacritty)

	add("kitty", filepath.Join(home, ".config", "kitty", "kitty.conf"), ParserKitty)
	add("foot", filepath.Join(home, ".config", "foot", "foot.ini"), ParserFoot)

	add("env", "", ParserEnv)
	add("fallback", "", ParserFallback)

	return &Registry{descriptors: descs, extra: extra}
}

var hyprOmarchySourceRe = regexp.MustCompile(`(?mi)^\s*(?:source|include)\s*=\s*(.+omarchy/.+?/themes/([^/]+)/hyprland\.conf)\s*$`)

// omarchyCurrentDir locates the active Omarchy theme directory.
// Detection chain, most direct first: the current/theme directory, a
// themes/current symlink, marker files naming a theme, and finally a
// sourced theme path in the user's hyprland.conf.
func omarchyCurrentDir(home string) string {
	if home == "" {
		return ""
	}
	omarchyDir := filepath.Join(home, ".config", "omarchy")
	themesDir := filepath.Join(omarchyDir, "themes")

	current := filepath.Join(omarchyDir, "current", "theme")
	if info, err := os.Stat(current); err == nil && info.IsDir() {
		return current
	}

	if resolved, err := filepath.EvalSymlinks(filepath.Join(themesDir, "current")); err == nil {
		if info, err := os.Stat(resolved); err == nil && info.IsDir() {
			return resolved
		}
	}

	for _, marker := range []string{"current-theme", "theme", "selected-theme"} {
		data, err := os.ReadFile(filepath.Join(omarchyDir, marker))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(data))
		if name == "" {
			continue
		}
		dir := filepath.Join(themesDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	hyprConf := filepath.Join(home, ".config", "hypr", "hyprland.conf")
	if data, err := os.ReadFile(hyprConf); err == nil {
		if m := hyprOmarchySourceRe.FindStringSubmatch(string(data)); m != nil {
			dir := filepath.Join(themesDir, m[2])
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}

	return ""
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") && home != "" {
		return filepath.Join(home, path[2:])
	}
	return path
}
