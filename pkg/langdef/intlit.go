package langdef

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ssargent/binscript/pkg/sexpr"
)

var noPos sexpr.Pos

// ParseInt parses a decimal, 0x hexadecimal or 0b binary literal with an
// optional leading sign.
func ParseInt(text string) (int64, error) {
	neg, mag, err := parseMagnitude(text)
	if err != nil {
		return 0, err
	}
	if neg {
		if mag > 1<<63 {
			return 0, newError(formatCode(text), noPos, "%q is out of range", text)
		}
		return -int64(mag), nil
	}
	if mag > 1<<63-1 {
		return 0, newError(formatCode(text), noPos, "%q is out of range", text)
	}
	return int64(mag), nil
}

// ParseUint parses an integer literal that may not carry a minus sign.
func ParseUint(text string) (uint64, error) {
	neg, mag, err := parseMagnitude(text)
	if err != nil {
		return 0, err
	}
	if neg {
		return 0, newError(IllegalSign, noPos, "%q must not be negative", text)
	}
	return mag, nil
}

func splitLiteral(text string) (neg bool, base int, digits string) {
	s := text
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return neg, 16, s[2:]
	case strings.HasPrefix(lower, "0b"):
		return neg, 2, s[2:]
	}
	return neg, 10, s
}

// formatCode picks the digit error matching the literal's prefix.
func formatCode(text string) ErrorCode {
	_, base, _ := splitLiteral(text)
	switch base {
	case 16:
		return BadHexFormat
	case 2:
		return BadBinaryFormat
	}
	return BadDecimalFormat
}

func parseMagnitude(text string) (bool, uint64, error) {
	neg, base, digits := splitLiteral(text)
	if base == 10 && (digits == "" || digits[0] < '0' || digits[0] > '9') {
		return false, 0, newError(UnknownIntFormat, noPos, "%q is not an integer literal", text)
	}

	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			return false, 0, newError(formatCode(text), noPos, "%q is out of range", text)
		}
		return false, 0, newError(formatCode(text), noPos, "%q is not a valid base %d literal", text, base)
	}
	return neg, mag, nil
}
