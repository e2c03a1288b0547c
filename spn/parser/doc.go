// Package parser implements lexical analysis and recursive descent
// parsing for Sparkling, a small C-style dynamically-typed scripting
// language. Given the source text of one translation unit it produces
// an abstract syntax tree for the compiler to consume, or reports a
// syntax error pinned to a source line.
//
// # Usage
//
//	tree, err := parser.Parse(src)
//	if err != nil {
//	    var serr *parser.SyntaxError
//	    errors.As(err, &serr) // serr.Line, serr.Msg
//	    return err
//	}
//	for _, stmt := range tree.Stmts() {
//	    ...
//	}
//
// A Parser value can be reused across translation units and configured
// with options; see New and WithErrorSink.
//
// # The tree
//
// Nodes are uniform binary-tree records discriminated by a NodeKind
// tag, with per-kind conventions for which of the Left/Right/Name/Value
// slots are populated (see Node). Statement sequences are linearized
// through Compound nodes whose top is rewritten in place to Program or
// Block; Stmts undoes this for consumers that want a flat list.
//
// # Expressions
//
// The expression grammar is a precedence ladder of one function per
// level, assignments, conditionals and prefix operators associating to
// the right, everything else to the left. Postfix operators (subscript, call,
// member access, increment, decrement) are folded iteratively so that
// chains like f(x)[i].m nest left-to-right. The `.' and `->' member
// operators deliberately produce the same node kind; downstream code
// must not try to distinguish them.
//
// # Errors
//
// The first failure aborts the parse. The diagnostic is written as one
// line to the error sink (stderr by default) and retained on the
// parser, formatted as
//
//	Sparkling: syntax error near line N: <message>
package parser
