package theme

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/omnote/core/errors"
	"github.com/omnote/core/logging"
)

// Resolver computes one Spec from an ordered source registry. Output is
// a pure function of the registry snapshot, the candidate file
// contents, the environment, and the forced-system flag. The resolver
// reads only the files the registry names.
type Resolver struct {
	// Getenv overrides environment lookup (tests). Defaults to os.Getenv.
	// Must be set before the first Resolve.
	Getenv func(string) string

	// forcedSystem bypasses source scanning and overrides entirely,
	// yielding the system default palette. Guarded by mu: mode switches
	// arrive from the UI thread while a resolution is in flight.
	mu           sync.Mutex
	forcedSystem bool

	logger *logrus.Entry
}

// NewResolver creates a resolver. forcedSystem typically comes from the
// --system-theme flag.
func NewResolver(forcedSystem bool) *Resolver {
	return &Resolver{
		forcedSystem: forcedSystem,
		logger:       logging.NewLogger("theme-resolver"),
	}
}

// SetForcedSystem toggles the forced-system bypass. Safe to call while
// a resolution is running on another goroutine.
func (r *Resolver) SetForcedSystem(forced bool) {
	r.mu.Lock()
	r.forcedSystem = forced
	r.mu.Unlock()
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}

// forcedSystemRequested reports whether the environment demands the
// system theme regardless of available sources.
func (r *Resolver) forcedSystemRequested() bool {
	r.mu.Lock()
	forced := r.forcedSystem
	r.mu.Unlock()
	if forced {
		return true
	}
	mode := r.getenv("OMNOTE_THEME_MODE")
	if mode == "" {
		mode = r.getenv("MICROPAD_THEME_MODE")
	}
	return strings.EqualFold(mode, "system")
}

// Resolve scans the registry in priority order and returns the first
// usable source, completed from derived and system-default values, with
// per-key environment overrides applied on top.
func (r *Resolver) Resolve(reg *Registry) Spec {
	if r.forcedSystemRequested() {
		return specFromPalette(SystemPalette(), "system", ModeForcedSystem)
	}

	winner, id, mode := r.scan(reg)
	completed := complete(winner)

	// Per-key env overrides beat file-derived values in both live and
	// system modes
	for k, v := range EnvPalette(r.getenv) {
		completed[k] = v
	}

	return specFromPalette(completed, id, mode)
}

// scan returns the highest-priority usable palette, its source ID, and
// the resulting mode.
func (r *Resolver) scan(reg *Registry) (Palette, string, Mode) {
	for _, desc := range reg.Descriptors() {
		switch desc.Kind {
		case ParserEnv:
			pal := EnvPalette(r.getenv)
			if pal.Usable() {
				r.logger.Debugf("environment variables supply a full palette")
				return pal, desc.ID, ModeLive
			}

		case ParserFallback:
			return SystemPalette(), desc.ID, ModeSystem

		default:
			pal, ok := r.parseFile(desc)
			if ok {
				r.logger.Debugf("source %s won resolution (%s)", desc.ID, desc.Path)
				return pal, desc.ID, ModeLive
			}
		}
	}
	// The fallback descriptor always terminates the scan; this is only
	// reachable with a custom registry that omits it
	return SystemPalette(), "fallback", ModeSystem
}

// parseFile reads and parses one file-backed source. A missing file, an
// unparsable file, and a file yielding no usable keys are all treated
// the same: the source is skipped.
func (r *Resolver) parseFile(desc SourceDescriptor) (Palette, bool) {
	var text string
	var err error
	if desc.Kind == ParserAlacritty {
		text, err = readAlacrittyText(desc.Path)
	} else {
		var data []byte
		data, err = os.ReadFile(desc.Path)
		text = string(data)
	}
	if err != nil {
		r.logger.Debugf("%v", errors.SourceUnavailable(desc.ID, desc.Path).WithDetail("cause", err.Error()))
		return nil, false
	}

	parser := parserFor(desc.Kind)
	if parser == nil {
		return nil, false
	}
	pal := parser.Parse(text)
	if !pal.Usable() {
		if len(pal) == 0 {
			r.logger.Debugf("%v", errors.SourceMalformed(desc.ID, fmt.Errorf("no recognizable colors in %s", desc.Path)))
		} else {
			r.logger.Debugf("%v", errors.SourceMalformed(desc.ID, fmt.Errorf("missing background/foreground in %s", desc.Path)))
		}
		return nil, false
	}
	return pal, true
}

// complete fills the keys a winning source did not supply: first by
// derivation from the colors it did supply, then from the system
// default palette.
func complete(pal Palette) Palette {
	out := pal.Merge(nil)
	bg := out[KeyBackground]
	fg := out[KeyForeground]

	if out[KeySelectionBG] == "" && bg != "" && fg != "" {
		// Light backgrounds need a subtler mix to stay readable
		t := 0.15
		if isLight(bg) {
			t = 0.12
		}
		out[KeySelectionBG] = MixColors(bg, fg, t)
	}
	if out[KeySelectionFG] == "" && fg != "" {
		out[KeySelectionFG] = fg
	}
	if out[KeyCursor] == "" {
		switch {
		case out[ColorKey(15)] != "":
			out[KeyCursor] = out[ColorKey(15)]
		case out[ColorKey(7)] != "":
			out[KeyCursor] = out[ColorKey(7)]
		case fg != "":
			out[KeyCursor] = fg
		}
	}
	if out[KeyAccent] == "" && out[ColorKey(4)] != "" {
		out[KeyAccent] = out[ColorKey(4)]
	}

	return out.Merge(systemPalette)
}

func specFromPalette(pal Palette, sourceID string, mode Mode) Spec {
	spec := Spec{
		Background:  pal[KeyBackground],
		Foreground:  pal[KeyForeground],
		Accent:      pal[KeyAccent],
		Cursor:      pal[KeyCursor],
		SelectionBG: pal[KeySelectionBG],
		SelectionFG: pal[KeySelectionFG],
		SourceID:    sourceID,
		Mode:        mode,
	}
	for i := 0; i < PaletteSlots; i++ {
		spec.Palette[i] = pal[ColorKey(i)]
	}
	return spec
}
