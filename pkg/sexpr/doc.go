// Package sexpr reads parenthesized source text into a tree of Atom and
// List nodes, each tagged with the file, line and column it started at.
//
// Grammar:
//
//	<node>     :: <list> | <call> | <quoted> | <atom> ;
//	<list>     :: "(" <node>* ")" ;
//	<call>     :: <atom> "(" <node>* ")" ;   no space before "(", reads as (<atom> <node>*)
//	<quoted>   :: "\"" ( <char> | <escape> )* "\"" ;
//	<escape>   :: "\\" ( "\\" | "\"" | "n" | "r" | "t" | "v" | "f" | "0" | "x" <hex> <hex> ) ;
//	<atom>     :: <atom-char>+ ;
//
// Space, tab, newline, carriage return, vertical tab, form feed and comma
// separate nodes. A ";" starts a comment that runs to the end of the line.
// Quoted strings may not contain raw newlines.
package sexpr
