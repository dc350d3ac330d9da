// Package langdef holds the in-memory model of a binary language definition
// and the parser that builds one from source text.
//
// # Definition Format
//
//	(meta (endian big) (namewidth 6) (nameshift 2))
//
//	(def 0x08 test
//	    skip2
//	    uint32(intarg)
//	    float32(floatarg))
//
// The optional meta block must come first. Recognized attributes are
// endian/endianness (big or little), namewidth/functionwidth/funcwidth (bits
// in the opcode field, default 8) and nameshift (default 0).
//
// Each def form gives an opcode literal, a function name and the arguments.
// Opcode literals are decimal, 0x hexadecimal or 0b binary. The literal is
// shifted right by nameshift to obtain the stored opcode, which is what
// occupies the namewidth-bit opcode field on the wire. A literal that loses
// set bits in that shift, or whose shifted value needs more than namewidth
// bits, is rejected.
//
// Arguments are a type word immediately followed by a width literal, either
// bare (int32) or paired with a display name ((int32 count), or int32(count)
// in call syntax). Type words are raw_str, str, int, uint, float and skip.
// Strings need a width that is a multiple of 8 and floats one of 16, 32 or
// 64.
//
// # Errors
//
// Every failure is a *ParseError carrying an ErrorCode, a message and the
// source position of the offending node. Context is added by wrapping, so a
// bad width inside a function reads
//
//	lang.def:3:1: error parsing function definition: lang.def:4:5: error parsing argument 2 of test: lang.def:4:5: width 30 is not allowed for float
//
// and errors.Is(err, DisallowedSize) holds for the whole chain.
package langdef
