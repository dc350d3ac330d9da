package langdef

import "strings"

// ParseArgType parses a type word followed by a width literal, such as
// int32, skip6 or float0x20. The type word is matched by longest prefix.
func ParseArgType(text string) (ArgumentDef, error) {
	var (
		match ArgType
		word  string
	)
	for _, t := range ArgTypes {
		w := t.String()
		if strings.HasPrefix(text, w) && len(w) > len(word) {
			match, word = t, w
		}
	}
	if word == "" {
		return ArgumentDef{}, newError(UnknownArgtype, noPos, "unknown argument type %q", text)
	}

	rest := text[len(word):]
	if rest == "" {
		return ArgumentDef{}, newError(UnspecifiedSize, noPos, "no width given for %q", text)
	}

	width, err := ParseUint(rest)
	if err != nil {
		return ArgumentDef{}, Wrap(err, noPos, "invalid width in %q", text)
	}
	if width > 1<<32-1 || !match.ValidateSize(uint(width)) {
		return ArgumentDef{}, newError(DisallowedSize, noPos, "width %d is not allowed for %s", width, match)
	}

	return ArgumentDef{Type: match, Bits: uint(width)}, nil
}
