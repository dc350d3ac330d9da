package langdef

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ssargent/binscript/pkg/sexpr"
)

// ErrorCode is the primitive cause of a parse failure. ErrorCode values are
// errors themselves, so errors.Is(err, DisallowedSize) matches a ParseError
// chain carrying that code at any depth.
type ErrorCode uint16

const (
	NoError ErrorCode = iota

	// integer literals
	UnknownIntFormat
	BadDecimalFormat
	BadHexFormat
	BadBinaryFormat
	IllegalSign

	// argument types
	UnknownArgtype
	UnspecifiedSize
	DisallowedSize

	// function definitions
	MissingDef
	MissingBinname
	MalformedBinname
	FunctionBinnamePrecision
	FunctionBinnameSize
	MissingName
	MalformedArgument
	DuplicateFunction

	// metadata
	MisplacedMetadataBlock
	UnknownMetadataAttribute
	MalformedMetadataAttribute
	DuplicateMetadataAttribute

	// source text
	MalformedSource
	UnexpectedRootNode

	// calls
	UnknownFunctionName
	MalformedCall
	ArgumentValue
	MissingArgument
	LeftoverArgument
)

// String returns the code's identifier as shown in reports.
func (c ErrorCode) String() string {
	switch c {
	case NoError:
		return "NO_ERROR"
	case UnknownIntFormat:
		return "UNKNOWN_INT_FORMAT"
	case BadDecimalFormat:
		return "BAD_DECIMAL_FORMAT"
	case BadHexFormat:
		return "BAD_HEX_FORMAT"
	case BadBinaryFormat:
		return "BAD_BINARY_FORMAT"
	case IllegalSign:
		return "ILLEGAL_SIGN"
	case UnknownArgtype:
		return "UNKNOWN_ARGTYPE"
	case UnspecifiedSize:
		return "UNSPECIFIED_SIZE"
	case DisallowedSize:
		return "DISALLOWED_SIZE"
	case MissingDef:
		return "MISSING_DEF"
	case MissingBinname:
		return "MISSING_BINNAME"
	case MalformedBinname:
		return "MALFORMED_BINNAME"
	case FunctionBinnamePrecision:
		return "FUNCTION_BINNAME_PRECISION"
	case FunctionBinnameSize:
		return "FUNCTION_BINNAME_SIZE"
	case MissingName:
		return "MISSING_NAME"
	case MalformedArgument:
		return "MALFORMED_ARGUMENT"
	case DuplicateFunction:
		return "DUPLICATE_FUNCTION"
	case MisplacedMetadataBlock:
		return "MISPLACED_METADATA_BLOCK"
	case UnknownMetadataAttribute:
		return "UNKNOWN_METADATA_ATTRIBUTE"
	case MalformedMetadataAttribute:
		return "MALFORMED_METADATA_ATTRIBUTE"
	case DuplicateMetadataAttribute:
		return "DUPLICATE_METADATA_ATTRIBUTE"
	case MalformedSource:
		return "MALFORMED_SOURCE"
	case UnexpectedRootNode:
		return "UNEXPECTED_ROOT_NODE"
	case UnknownFunctionName:
		return "UNKNOWN_FUNCTION_NAME"
	case MalformedCall:
		return "MALFORMED_CALL"
	case ArgumentValue:
		return "ARGUMENT_VALUE"
	case MissingArgument:
		return "MISSING_ARGUMENT"
	case LeftoverArgument:
		return "LEFTOVER_ARGUMENT"
	}
	return fmt.Sprintf("ERROR_CODE(%d)", uint16(c))
}

func (c ErrorCode) Error() string {
	switch c {
	case NoError:
		return "no error"
	case UnknownIntFormat:
		return "unknown integer format"
	case BadDecimalFormat:
		return "bad decimal digit"
	case BadHexFormat:
		return "bad hexadecimal digit"
	case BadBinaryFormat:
		return "bad binary digit"
	case IllegalSign:
		return "sign not allowed here"
	case UnknownArgtype:
		return "unknown argument type"
	case UnspecifiedSize:
		return "argument width not specified"
	case DisallowedSize:
		return "width not allowed for type"
	case MissingDef:
		return "missing def keyword"
	case MissingBinname:
		return "missing opcode"
	case MalformedBinname:
		return "malformed opcode"
	case FunctionBinnamePrecision:
		return "opcode loses bits when shifted"
	case FunctionBinnameSize:
		return "opcode too wide for name width"
	case MissingName:
		return "missing function name"
	case MalformedArgument:
		return "malformed argument declaration"
	case DuplicateFunction:
		return "duplicate opcode"
	case MisplacedMetadataBlock:
		return "metadata block must come first"
	case UnknownMetadataAttribute:
		return "unknown metadata attribute"
	case MalformedMetadataAttribute:
		return "malformed metadata attribute"
	case DuplicateMetadataAttribute:
		return "duplicate metadata attribute"
	case MalformedSource:
		return "malformed source text"
	case UnexpectedRootNode:
		return "unexpected root level form"
	case UnknownFunctionName:
		return "unknown function"
	case MalformedCall:
		return "malformed call"
	case ArgumentValue:
		return "bad argument value"
	case MissingArgument:
		return "missing argument"
	case LeftoverArgument:
		return "too many arguments"
	}
	return c.String()
}

// ParseError is one link of a chained parse failure.
type ParseError struct {
	Code  ErrorCode
	Msg   string
	Pos   sexpr.Pos
	Cause error
}

func newError(code ErrorCode, pos sexpr.Pos, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

// Errorf builds a ParseError for callers outside this package that report
// against the same taxonomy.
func Errorf(code ErrorCode, pos sexpr.Pos, format string, args ...any) *ParseError {
	return newError(code, pos, format, args...)
}

// Wrap adds context to err. The new link carries the code of the ParseError
// it wraps, or MalformedSource when err is not a ParseError.
func Wrap(err error, pos sexpr.Pos, format string, args ...any) *ParseError {
	code := CodeOf(err)
	if code == NoError {
		code = MalformedSource
	}
	e := newError(code, pos, format, args...)
	e.Cause = err
	return e
}

func (e *ParseError) because(cause error) *ParseError {
	e.Cause = cause
	return e
}

// at fills in pos when the error does not carry a location yet.
func at(err error, pos sexpr.Pos) error {
	var pe *ParseError
	if errors.As(err, &pe) && !pe.Pos.IsValid() {
		pe.Pos = pos
	}
	return err
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	if e.Msg != "" {
		sb.WriteString(e.Msg)
	} else {
		sb.WriteString(e.Code.Error())
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func (e *ParseError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// Chain returns the ParseError links from outermost to innermost.
func (e *ParseError) Chain() []*ParseError {
	var links []*ParseError
	var err error = e
	for err != nil {
		pe, ok := err.(*ParseError)
		if !ok {
			break
		}
		links = append(links, pe)
		err = pe.Cause
	}
	return links
}

// Root returns the innermost error in the chain, which need not be a ParseError.
func (e *ParseError) Root() error {
	var err error = e
	for {
		pe, ok := err.(*ParseError)
		if !ok || pe.Cause == nil {
			return err
		}
		err = pe.Cause
	}
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[1;31m"
	ansiCyan  = "\x1b[36m"
	ansiDim   = "\x1b[2m"
)

// Report writes the chain one link per line, outermost first.
func (e *ParseError) Report(w io.Writer, color bool) {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	links := e.Chain()
	for i, link := range links {
		severity := paint(ansiRed, "error:")
		indent := ""
		if i > 0 {
			severity = paint(ansiCyan, "caused by:")
			indent = strings.Repeat("  ", i)
		}
		msg := link.Msg
		if msg == "" {
			msg = link.Code.Error()
		}
		fmt.Fprintf(w, "%s%s %s %s %s\n", indent, paint(ansiDim, link.Pos.String()), severity, msg, paint(ansiDim, "["+link.Code.String()+"]"))
	}

	if last := links[len(links)-1]; last.Cause != nil {
		indent := strings.Repeat("  ", len(links))
		fmt.Fprintf(w, "%s%s %v\n", indent, paint(ansiCyan, "caused by:"), last.Cause)
	}
}

// CodeOf returns the code of the first ParseError in err's chain.
func CodeOf(err error) ErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return NoError
}
