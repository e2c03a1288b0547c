package parser

import (
	"io"
	"math"
	"os"
)

type Option func(*Parser)

// WithErrorSink redirects the one-line diagnostics the parser emits on
// failure. The default sink is stderr.
func WithErrorSink(w io.Writer) Option {
	return func(p *Parser) {
		p.errw = w
	}
}

// Parser holds the read cursor into the source, the one-token lookahead
// and the line counter. A Parser is single-owner: concurrent parses
// require independent Parser values. It may be reused for any number of
// translation units; each Parse resets the state.
type Parser struct {
	src  []byte
	pos  int
	line int
	cur  Token
	eof  bool
	err  *SyntaxError
	errw io.Writer
}

func New(opts ...Option) *Parser {
	p := &Parser{line: 1, errw: os.Stderr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses one translation unit with a throwaway Parser.
func Parse(src []byte) (*Node, error) {
	return New().Parse(src)
}

// Reset re-initializes the parser for a new source text.
func (p *Parser) Reset(src []byte) {
	p.src = src
	p.pos = 0
	p.line = 1
	p.cur = Token{}
	p.eof = false
	p.err = nil
}

// Parse parses src as a translation unit. On success it returns the
// root Program node. On failure it returns a *SyntaxError pinned to a
// source line, after writing the same diagnostic to the error sink.
func (p *Parser) Parse(src []byte) (*Node, error) {
	p.Reset(src)

	tree := p.parseProgram()
	if tree == nil {
		if p.err == nil {
			p.errorf("unexpected end of input")
		}
		return nil, p.err
	}
	return tree, nil
}

func (p *Parser) parseProgram() *Node {
	var tree *Node

	if p.Advance() { // there are tokens
		tree = p.parseProgramNonempty()
		if tree == nil {
			return nil
		}
	} else {
		if p.err != nil {
			return nil
		}
		return &Node{Kind: KindProgram, Line: p.line}
	}

	if p.eof { // if EOF after parsing, then all went fine
		return tree
	}

	if p.err == nil {
		p.errorf("garbage after input")
	}
	return nil
}

func (p *Parser) parseProgramNonempty() *Node {
	sub := p.parseStmt(true)
	if sub == nil {
		return nil
	}

	for !p.eof {
		right := p.parseStmt(true)
		if right == nil {
			return nil
		}
		sub = &Node{Kind: KindCompound, Line: p.line, Left: sub, Right: right}
	}

	// Same rewrite as parseBlock; see there.
	if sub.Kind == KindCompound {
		sub.Kind = KindProgram
		return sub
	}

	return &Node{Kind: KindProgram, Line: p.line, Left: sub}
}

// Statement lists appear in block statements, so loop until `}'.
func (p *Parser) parseStmtList() *Node {
	ast := p.parseStmt(false)
	if ast == nil {
		return nil
	}

	for p.cur.Kind != TokenRBrace {
		right := p.parseStmt(false)
		if right == nil {
			return nil
		}
		ast = &Node{Kind: KindCompound, Line: p.line, Left: ast, Right: right}
	}

	return ast
}

func (p *Parser) parseStmt(isGlobal bool) *Node {
	switch p.cur.Kind {
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenDo:
		return p.parseDo()
	case TokenFor:
		return p.parseFor()
	case TokenForeach:
		return p.parseForeach()
	case TokenBreak:
		return p.parseBreak()
	case TokenContinue:
		return p.parseContinue()
	case TokenReturn:
		return p.parseReturn()
	case TokenSemicolon:
		return p.parseEmpty()
	case TokenLBrace:
		return p.parseBlock()
	case TokenVar:
		return p.parseVardecl()
	case TokenFunction:
		if isGlobal {
			// function statement at file scope
			return p.parseFunction(true)
		}
		// function expression at local scope
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseFunction(isStmt bool) *Node {
	if !p.Accept(TokenFunction) {
		p.errorf("internal error, expected `function'")
		return nil
	}

	kind := KindFuncExpr
	name := ""
	if isStmt {
		// named global function statement
		if p.cur.Kind != TokenIdent {
			p.errorf("expected function name in function statement")
			return nil
		}
		kind = KindFuncStmt
		name = p.cur.Val.Str
		p.Advance()
	}

	if !p.Accept(TokenLParen) {
		p.errorf("expected `(' in function header")
		return nil
	}

	ast := &Node{Kind: kind, Line: p.line, Name: name}

	if !p.Accept(TokenRParen) {
		arglist := p.parseDeclArgs()
		if arglist == nil {
			return nil
		}
		ast.Left = arglist

		if !p.Accept(TokenRParen) {
			p.errorf("expected `)' after function argument list")
			return nil
		}
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	ast.Right = body
	return ast
}

func (p *Parser) parseBlock() *Node {
	if !p.Accept(TokenLBrace) {
		p.errorf("expected `{' in block statement")
		return nil
	}

	if p.Accept(TokenRBrace) { // empty block
		return &Node{Kind: KindEmpty, Line: p.line}
	}

	list := p.parseStmtList()
	if list == nil {
		return nil
	}

	if !p.Accept(TokenRBrace) {
		p.errorf("expected `}' at end of block statement")
		return nil
	}

	// parseStmtList may return multiple levels of nested Compounds, but
	// only the top-level node is marked as the block: either rewrite the
	// Compound head in place, or wrap a lone statement in a fresh Block.
	if list.Kind == KindCompound {
		list.Kind = KindBlock
		return list
	}

	return &Node{Kind: KindBlock, Line: p.line, Left: list}
}

func (p *Parser) parseExpr() *Node {
	return p.parseAssignment()
}

var (
	assignToks = []TokenKind{
		TokenAssign,
		TokenPlusEq,
		TokenMinusEq,
		TokenMulEq,
		TokenDivEq,
		TokenModEq,
		TokenAndEq,
		TokenOrEq,
		TokenXorEq,
		TokenShlEq,
		TokenShrEq,
		TokenDotDotEq,
	}
	assignNodes = []NodeKind{
		KindAssign,
		KindAssignAdd,
		KindAssignSub,
		KindAssignMul,
		KindAssignDiv,
		KindAssignMod,
		KindAssignAnd,
		KindAssignOr,
		KindAssignXor,
		KindAssignShl,
		KindAssignShr,
		KindAssignConcat,
	}
)

func (p *Parser) parseAssignment() *Node {
	return p.parseBinexprRightAssoc(assignToks, assignNodes, (*Parser).parseConcat)
}

var (
	concatToks  = []TokenKind{TokenDotDot}
	concatNodes = []NodeKind{KindConcat}
)

func (p *Parser) parseConcat() *Node {
	return p.parseBinexprLeftAssoc(concatToks, concatNodes, (*Parser).parseCondExpr)
}

func (p *Parser) parseCondExpr() *Node {
	ast := p.parseLogicalOr()
	if ast == nil {
		return nil
	}

	if !p.Accept(TokenQMark) {
		return ast
	}

	brTrue := p.parseExpr()
	if brTrue == nil {
		return nil
	}

	if !p.Accept(TokenColon) {
		p.errorf("expected `:' in conditional expression")
		return nil
	}

	// the false branch nests conditionals to the right
	brFalse := p.parseCondExpr()
	if brFalse == nil {
		return nil
	}

	branches := &Node{Kind: KindBranches, Line: p.line, Left: brTrue, Right: brFalse}
	return &Node{Kind: KindCondExpr, Line: p.line, Left: ast, Right: branches}
}

// Binary expression levels in ascending precedence order.

var (
	logOrToks  = []TokenKind{TokenLogOr}
	logOrNodes = []NodeKind{KindLogOr}
)

func (p *Parser) parseLogicalOr() *Node {
	return p.parseBinexprLeftAssoc(logOrToks, logOrNodes, (*Parser).parseLogicalAnd)
}

var (
	logAndToks  = []TokenKind{TokenLogAnd}
	logAndNodes = []NodeKind{KindLogAnd}
)

func (p *Parser) parseLogicalAnd() *Node {
	return p.parseBinexprLeftAssoc(logAndToks, logAndNodes, (*Parser).parseComparison)
}

var (
	comparisonToks = []TokenKind{
		TokenEqual,
		TokenNotEq,
		TokenLess,
		TokenGreater,
		TokenLEq,
		TokenGEq,
	}
	comparisonNodes = []NodeKind{
		KindEqual,
		KindNotEq,
		KindLess,
		KindGreater,
		KindLEq,
		KindGEq,
	}
)

func (p *Parser) parseComparison() *Node {
	return p.parseBinexprLeftAssoc(comparisonToks, comparisonNodes, (*Parser).parseBitwiseOr)
}

var (
	bitOrToks  = []TokenKind{TokenBitOr}
	bitOrNodes = []NodeKind{KindBitOr}
)

func (p *Parser) parseBitwiseOr() *Node {
	return p.parseBinexprLeftAssoc(bitOrToks, bitOrNodes, (*Parser).parseBitwiseXor)
}

var (
	bitXorToks  = []TokenKind{TokenBitXor}
	bitXorNodes = []NodeKind{KindBitXor}
)

func (p *Parser) parseBitwiseXor() *Node {
	return p.parseBinexprLeftAssoc(bitXorToks, bitXorNodes, (*Parser).parseBitwiseAnd)
}

var (
	bitAndToks  = []TokenKind{TokenBitAnd}
	bitAndNodes = []NodeKind{KindBitAnd}
)

func (p *Parser) parseBitwiseAnd() *Node {
	return p.parseBinexprLeftAssoc(bitAndToks, bitAndNodes, (*Parser).parseShift)
}

var (
	shiftToks  = []TokenKind{TokenShl, TokenShr}
	shiftNodes = []NodeKind{KindShl, KindShr}
)

func (p *Parser) parseShift() *Node {
	return p.parseBinexprLeftAssoc(shiftToks, shiftNodes, (*Parser).parseAdditive)
}

var (
	additiveToks  = []TokenKind{TokenPlus, TokenMinus}
	additiveNodes = []NodeKind{KindAdd, KindSub}
)

func (p *Parser) parseAdditive() *Node {
	return p.parseBinexprLeftAssoc(additiveToks, additiveNodes, (*Parser).parseMultiplicative)
}

var (
	multiplicativeToks  = []TokenKind{TokenMul, TokenDiv, TokenMod}
	multiplicativeNodes = []NodeKind{KindMul, KindDiv, KindMod}
)

func (p *Parser) parseMultiplicative() *Node {
	return p.parseBinexprLeftAssoc(multiplicativeToks, multiplicativeNodes, (*Parser).parsePrefix)
}

var (
	prefixToks = []TokenKind{
		TokenIncr,
		TokenDecr,
		TokenPlus,
		TokenMinus,
		TokenLogNot,
		TokenBitNot,
		TokenSizeof,
		TokenTypeof,
		TokenHash,
	}
	prefixNodes = []NodeKind{
		KindPreIncr,
		KindPreDecr,
		KindUnPlus,
		KindUnMinus,
		KindLogNot,
		KindBitNot,
		KindSizeOf,
		KindTypeOf,
		KindNthArg,
	}
)

func (p *Parser) parsePrefix() *Node {
	idx := p.AcceptAny(prefixToks)
	if idx < 0 {
		return p.parsePostfix()
	}

	// right recursion for right-associative operators
	operand := p.parsePrefix()
	if operand == nil {
		return nil
	}

	return &Node{Kind: prefixNodes[idx], Line: p.line, Left: operand}
}

var (
	postfixToks = []TokenKind{
		TokenIncr,
		TokenDecr,
		TokenLBracket,
		TokenLParen,
		TokenDot,
		TokenArrow,
	}
	postfixNodes = []NodeKind{
		KindPostIncr,
		KindPostDecr,
		KindArrSub,
		KindFuncCall,
		KindMemberOf,
		KindMemberOf,
	}
)

func (p *Parser) parsePostfix() *Node {
	ast := p.parseTerm()
	if ast == nil {
		return nil
	}

	// iteration instead of left recursion - we want to terminate
	for idx := p.AcceptAny(postfixToks); idx >= 0; idx = p.AcceptAny(postfixToks) {
		tmp := &Node{Kind: postfixNodes[idx], Line: p.line}

		switch tmp.Kind {
		case KindPostIncr, KindPostDecr:
			tmp.Left = ast

		case KindArrSub:
			expr := p.parseExpr()
			if expr == nil {
				return nil
			}
			tmp.Left = ast
			tmp.Right = expr

			if !p.Accept(TokenRBracket) {
				p.errorf("expected `]' after expression in array subscript")
				return nil
			}

		case KindMemberOf:
			// `.' and `->' collapse to the same node kind
			if p.cur.Kind != TokenIdent {
				p.errorf("expected identifier after . or -> operator")
				return nil
			}

			ident := p.parseTerm()
			if ident == nil {
				return nil
			}
			tmp.Left = ast
			tmp.Right = ident

		case KindFuncCall:
			tmp.Left = ast

			if p.cur.Kind != TokenRParen {
				arglist := p.parseCallArgs()
				if arglist == nil {
					return nil
				}
				tmp.Right = arglist
			}

			if !p.Accept(TokenRParen) {
				p.errorf("expected `)' after expression in function call")
				return nil
			}
		}

		ast = tmp
	}

	return ast
}

func (p *Parser) parseTerm() *Node {
	switch p.cur.Kind {
	case TokenLParen:
		p.Advance()

		ast := p.parseExpr()
		if ast == nil {
			return nil
		}

		if !p.Accept(TokenRParen) {
			p.errorf("expected `)' after parenthesized expression")
			return nil
		}
		return ast

	case TokenFunction:
		// only allow function expressions in an expression
		return p.parseFunction(false)

	case TokenIdent:
		ast := &Node{Kind: KindIdent, Line: p.cur.Line, Name: p.cur.Val.Str}
		p.Advance()
		if p.err != nil {
			return nil
		}
		return ast

	case TokenTrue:
		return p.literalTerm(BoolValue(true))
	case TokenFalse:
		return p.literalTerm(BoolValue(false))
	case TokenNil:
		return p.literalTerm(NilValue())
	case TokenNan:
		return p.literalTerm(FloatValue(math.NaN()))
	case TokenInt, TokenFloat, TokenString:
		return p.literalTerm(p.cur.Val)

	default:
		p.errorf("unexpected token %d", int(p.cur.Kind))
		return nil
	}
}

func (p *Parser) literalTerm(val Value) *Node {
	ast := &Node{Kind: KindLiteral, Line: p.cur.Line, Value: &val}
	p.Advance()
	if p.err != nil {
		return nil
	}
	return ast
}

func (p *Parser) parseDeclArgs() *Node {
	name := p.cur.Val.Str
	if !p.Accept(TokenIdent) {
		p.errorf("expected identifier in function argument list")
		return nil
	}

	head := &Node{Kind: KindDeclArgs, Line: p.line, Name: name}
	tail := head

	for p.Accept(TokenComma) {
		name := p.cur.Val.Str
		if !p.Accept(TokenIdent) {
			p.errorf("expected identifier in function argument list")
			return nil
		}

		arg := &Node{Kind: KindDeclArgs, Line: p.line, Name: name}
		tail.Right = arg
		tail = arg
	}

	return head
}

func (p *Parser) parseCallArgs() *Node {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	ast := &Node{Kind: KindCallArgs, Line: p.line, Right: expr}

	for p.Accept(TokenComma) {
		right := p.parseExpr()
		if right == nil {
			return nil
		}
		// grow at the head: Left holds the arguments so far
		ast = &Node{Kind: KindCallArgs, Line: p.line, Left: ast, Right: right}
	}

	return ast
}

func (p *Parser) parseBinexprRightAssoc(toks []TokenKind, nodes []NodeKind, subexpr func(*Parser) *Node) *Node {
	ast := subexpr(p)
	if ast == nil {
		return nil
	}

	idx := p.AcceptAny(toks)
	if idx < 0 {
		return ast
	}

	// apply right recursion
	right := p.parseBinexprRightAssoc(toks, nodes, subexpr)
	if right == nil {
		return nil
	}

	return &Node{Kind: nodes[idx], Line: p.line, Left: ast, Right: right}
}

func (p *Parser) parseBinexprLeftAssoc(toks []TokenKind, nodes []NodeKind, subexpr func(*Parser) *Node) *Node {
	ast := subexpr(p)
	if ast == nil {
		return nil
	}

	// iteration instead of left recursion (which wouldn't terminate)
	for idx := p.AcceptAny(toks); idx >= 0; idx = p.AcceptAny(toks) {
		right := subexpr(p)
		if right == nil {
			return nil
		}
		ast = &Node{Kind: nodes[idx], Line: p.line, Left: ast, Right: right}
	}

	return ast
}

func (p *Parser) parseIf() *Node {
	// skip `if'
	if !p.Advance() {
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	brThen := p.parseBlock()
	if brThen == nil {
		return nil
	}

	// `else' is optional, and may be followed by either a block or
	// another if statement: blocks are enforced everywhere, but
	// requiring each `else if' to be wrapped in its own block would be
	// intolerable.
	var brElse *Node
	if p.Accept(TokenElse) {
		switch p.cur.Kind {
		case TokenLBrace:
			brElse = p.parseBlock()
		case TokenIf:
			brElse = p.parseIf()
		default:
			p.errorf("expected block or 'if' after 'else'")
			return nil
		}

		if brElse == nil {
			return nil
		}
	}

	br := &Node{Kind: KindBranches, Line: p.line, Left: brThen, Right: brElse}
	return &Node{Kind: KindIf, Line: p.line, Left: cond, Right: br}
}

func (p *Parser) parseWhile() *Node {
	// skip `while'
	if !p.Advance() {
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &Node{Kind: KindWhile, Line: p.line, Left: cond, Right: body}
}

func (p *Parser) parseDo() *Node {
	// skip `do'
	if !p.Advance() {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	if !p.Accept(TokenWhile) {
		p.errorf("expected `while' after body of do-while statement")
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after condition of do-while statement")
		return nil
	}

	// the condition is the left child, like in While
	return &Node{Kind: KindDo, Line: p.line, Left: cond, Right: body}
}

func (p *Parser) parseFor() *Node {
	// skip `for'
	if !p.Advance() {
		return nil
	}

	init := p.parseExpr()
	if init == nil {
		return nil
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after initialization of for loop")
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after condition of for loop")
		return nil
	}

	incr := p.parseExpr()
	if incr == nil {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	// linked list for the loop header
	h3 := &Node{Kind: KindForHeader, Line: p.line, Left: incr}
	h2 := &Node{Kind: KindForHeader, Line: p.line, Left: cond, Right: h3}
	h1 := &Node{Kind: KindForHeader, Line: p.line, Left: init, Right: h2}

	return &Node{Kind: KindFor, Line: p.line, Left: h1, Right: body}
}

func (p *Parser) parseForeach() *Node {
	// skip `foreach'
	if !p.Advance() {
		return nil
	}

	name := p.cur.Val.Str
	keyLine := p.cur.Line
	if !p.Accept(TokenIdent) {
		p.errorf("key in foreach loop must be a variable")
		return nil
	}
	key := &Node{Kind: KindIdent, Line: keyLine, Name: name}

	if !p.Accept(TokenAs) {
		p.errorf("expected `as' after key in foreach loop")
		return nil
	}

	name = p.cur.Val.Str
	valLine := p.cur.Line
	if !p.Accept(TokenIdent) {
		p.errorf("value in foreach loop must be a variable")
		return nil
	}
	val := &Node{Kind: KindIdent, Line: valLine, Name: name}

	if !p.Accept(TokenIn) {
		p.errorf("expected `in' after value in foreach loop")
		return nil
	}

	arr := p.parseExpr()
	if arr == nil {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	// linked list for the loop header
	h3 := &Node{Kind: KindForHeader, Line: p.line, Left: arr}
	h2 := &Node{Kind: KindForHeader, Line: p.line, Left: val, Right: h3}
	h1 := &Node{Kind: KindForHeader, Line: p.line, Left: key, Right: h2}

	return &Node{Kind: KindForeach, Line: p.line, Left: h1, Right: body}
}

func (p *Parser) parseBreak() *Node {
	// skip `break'
	if !p.Advance() {
		return nil
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after `break'")
		return nil
	}

	return &Node{Kind: KindBreak, Line: p.line}
}

func (p *Parser) parseContinue() *Node {
	// skip `continue'
	if !p.Advance() {
		return nil
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after `continue'")
		return nil
	}

	return &Node{Kind: KindContinue, Line: p.line}
}

func (p *Parser) parseReturn() *Node {
	// skip `return'
	if !p.Advance() {
		return nil
	}

	if p.Accept(TokenSemicolon) {
		// return without a value
		return &Node{Kind: KindReturn, Line: p.line}
	}

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if p.Accept(TokenSemicolon) {
		return &Node{Kind: KindReturn, Line: p.line, Left: expr}
	}

	p.errorf("expected `;' after expression in return statement")
	return nil
}

// parseVardecl builds a chain of comma-separated variable declarations,
// linked through Right.
func (p *Parser) parseVardecl() *Node {
	var head, tail *Node

	// skip `var' keyword
	p.Advance()

	for {
		name := p.cur.Val.Str
		if !p.Accept(TokenIdent) {
			p.errorf("expected identifier in declaration")
			return nil
		}

		var init *Node
		if p.Accept(TokenAssign) {
			init = p.parseExpr()
			if init == nil {
				return nil
			}
		}

		decl := &Node{Kind: KindVarDecl, Line: p.line, Name: name, Left: init}
		if head == nil {
			head = decl
		} else {
			tail.Right = decl
		}
		tail = decl

		if !p.Accept(TokenComma) {
			break
		}
	}

	if !p.Accept(TokenSemicolon) {
		p.errorf("expected `;' after variable initialization")
		return nil
	}

	return head
}

func (p *Parser) parseExprStmt() *Node {
	ast := p.parseExpr()
	if ast == nil {
		return nil
	}

	if p.Accept(TokenSemicolon) {
		return ast
	}

	p.errorf("expected `;' after expression")
	return nil
}

func (p *Parser) parseEmpty() *Node {
	// skip semicolon
	p.Advance()
	if p.err != nil {
		return nil
	}

	return &Node{Kind: KindEmpty, Line: p.line}
}
