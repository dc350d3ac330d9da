// Package codec translates between binary records and function calls for a
// language parsed by package langdef.
//
// # Wire Format
//
// A call is the function's opcode followed by its arguments, packed MSB-first
// with no padding between fields:
//
//	[Opcode(namewidth)][Arg1(bits)][Arg2(bits)]...[zero fill to a byte]
//
// The opcode field holds the stored opcode, which is the literal from the
// definition shifted right by the language's name shift. A call always
// occupies whole bytes: ceil((namewidth + sum of argument widths) / 8).
//
// Argument encodings:
//   - int: sign-magnitude. The first bit is the sign, the remaining bits
//     the magnitude, so int4 0b1011 is -3. Negative zero decodes to 0.
//   - uint: plain binary.
//   - float: IEEE 754 binary16, binary32 or binary64.
//   - str: bits/8 bytes, the last of which is reserved for the terminator.
//     Content stops at the first null byte.
//   - raw_str: exactly bits/8 bytes, copied verbatim.
//   - skip: zero bits on encode, ignored on decode.
//
// In little endian languages, int, uint and float fields whose width is a
// multiple of eight are stored with their bytes reversed. Other widths are
// always packed MSB-first.
//
// # Text Form
//
// A call prints as
//
//	name(arg, arg, ...)
//
// with integers in decimal, floats with six decimals and strings quoted.
// Skip arguments are omitted. ParseCall and ScriptReader read the same form
// back, also accepting plain (name arg arg) lists and spaces in place of
// commas. Floats are not bit exact through the text form.
//
// # Usage
//
//	lang, err := langdef.ParseFile("game.def")
//	if err != nil {
//		return err
//	}
//	c := codec.New(lang)
//
//	call, n, err := c.Decode(data)
//	if err != nil {
//		return err
//	}
//	fmt.Println(call) // test(128, 777.770020)
//
//	data, err = c.Encode(call)
//
// # Errors
//
// Value and lookup failures are *langdef.ParseError values with codes such
// as UnknownFunctionName, ArgumentValue, MissingArgument and
// LeftoverArgument. Running out of input is reported as
// bitbuf.ErrOutOfBounds.
package codec
