package theme

// A Parser extracts a partial palette from one source's raw text.
// Parsers are lenient: unknown keys are ignored, malformed values are
// skipped individually, and an empty result means the source was
// unusable, not that parsing errored.
type Parser interface {
	Parse(text string) Palette
}

// parserFor returns the parser implementation for a descriptor kind.
// The env and fallback pseudo-sources are handled by the resolver
// directly and return nil here.
func parserFor(kind ParserKind) Parser {
	switch kind {
	case ParserAlacritty:
		return alacrittyParser{}
	case ParserKitty:
		return kittyParser{}
	case ParserFoot:
		return footParser{}
	default:
		return nil
	}
}
