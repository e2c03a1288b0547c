package parser

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	p := New(WithErrorSink(io.Discard))
	p.Reset([]byte(input))
	var toks []Token
	for p.Advance() {
		toks = append(toks, p.Current())
	}
	require.NoError(t, p.Err(), "lexing %q", input)
	return toks
}

func lexKinds(t *testing.T, input string) []TokenKind {
	t.Helper()
	var kinds []TokenKind
	for _, tok := range lexAll(t, input) {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func TestLexTokenKinds(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", nil},
		{"   \t\r\n", nil},
		{"/* just a comment */", nil},
		{"x", []TokenKind{TokenIdent}},
		{"if else while do for foreach as in", []TokenKind{
			TokenIf, TokenElse, TokenWhile, TokenDo, TokenFor, TokenForeach, TokenAs, TokenIn,
		}},
		{"break continue return function var", []TokenKind{
			TokenBreak, TokenContinue, TokenReturn, TokenFunction, TokenVar,
		}},
		{"true false nil nan sizeof typeof", []TokenKind{
			TokenTrue, TokenFalse, TokenNil, TokenNan, TokenSizeof, TokenTypeof,
		}},
		{"( ) { } [ ] ; , : ? .", []TokenKind{
			TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket,
			TokenRBracket, TokenSemicolon, TokenComma, TokenColon, TokenQMark, TokenDot,
		}},
		{"@[ @{", []TokenKind{TokenAtBracket, TokenAtBrace}},
		{"+ - * / %", []TokenKind{TokenPlus, TokenMinus, TokenMul, TokenDiv, TokenMod}},
		{"& | ^ ~ << >>", []TokenKind{
			TokenBitAnd, TokenBitOr, TokenBitXor, TokenBitNot, TokenShl, TokenShr,
		}},
		{"&& || !", []TokenKind{TokenLogAnd, TokenLogOr, TokenLogNot}},
		{"== != < > <= >=", []TokenKind{
			TokenEqual, TokenNotEq, TokenLess, TokenGreater, TokenLEq, TokenGEq,
		}},
		{"= += -= *= /= %= &= |= ^= <<= >>= ..=", []TokenKind{
			TokenAssign, TokenPlusEq, TokenMinusEq, TokenMulEq, TokenDivEq, TokenModEq,
			TokenAndEq, TokenOrEq, TokenXorEq, TokenShlEq, TokenShrEq, TokenDotDotEq,
		}},
		{"++ -- .. # ->", []TokenKind{
			TokenIncr, TokenDecr, TokenDotDot, TokenHash, TokenArrow,
		}},
		{"ifx", []TokenKind{TokenIdent}},
		{"_foo1", []TokenKind{TokenIdent}},
		{"a+b", []TokenKind{TokenIdent, TokenPlus, TokenIdent}},
		{"x-->y", []TokenKind{TokenIdent, TokenDecr, TokenGreater, TokenIdent}},
		{"1..2", []TokenKind{TokenInt, TokenDotDot, TokenInt}},
		{"1e5", []TokenKind{TokenInt, TokenIdent}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, lexKinds(t, tt.input))
		})
	}
}

func TestLexKeywordAliases(t *testing.T) {
	assert.Equal(t, []TokenKind{TokenLogAnd, TokenLogOr, TokenLogNot, TokenNil},
		lexKinds(t, "and or not null"))
}

func TestLexIntegerLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"7", 7},
		{"42", 42},
		{"9223372036854775807", 9223372036854775807},
		{"0x2A", 42},
		{"0X2a", 42},
		{"0xdeadBEEF", 0xdeadbeef},
		{"0777", 511},
		{"010", 8},
		{"'A'", 65},
		{"'ab'", 0x6162},
		{"'\\n'", 10},
		{"'\\x41'", 65},
		{"'abcdefgh'", 0x6162636465666768},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			require.Len(t, toks, 1)
			require.Equal(t, TokenInt, toks[0].Kind)
			assert.Equal(t, tt.expected, toks[0].Val.Int)
		})
	}
}

func TestLexFloatLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"3.14", 3.14},
		{".5", 0.5},
		{"2.", 2.0},
		{"1.5e3", 1500.0},
		{"2.5e-1", 0.25},
		{"1.e2", 100.0},
		{"0.0", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			require.Len(t, toks, 1)
			require.Equal(t, TokenFloat, toks[0].Kind)
			assert.Equal(t, tt.expected, toks[0].Val.Float)
		})
	}
}

func TestLexStringLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\tb"`, "a\tb"},
		{`"\\"`, `\`},
		{`"\/"`, "/"},
		{`"\""`, `"`},
		{`"\'"`, "'"},
		{`"\a\b\f\n\r\t"`, "\a\b\f\n\r\t"},
		{`"\0"`, "\x00"},
		{`"\x41\x62"`, "Ab"},
		{`"héllo"`, "héllo"}, // non-ASCII bytes pass through verbatim
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := lexAll(t, tt.input)
			require.Len(t, toks, 1)
			require.Equal(t, TokenString, toks[0].Kind)
			assert.Equal(t, tt.expected, toks[0].Val.Str)
		})
	}
}

func TestLexIdentifierPayload(t *testing.T) {
	toks := lexAll(t, "foo bar_2")
	require.Len(t, toks, 2)
	assert.Equal(t, "foo", toks[0].Val.Str)
	assert.Equal(t, "bar_2", toks[1].Val.Str)
}

func TestLexLineNumbers(t *testing.T) {
	toks := lexAll(t, "a\nb /* multi\nline\ncomment */ c\n\"str\nwith newline\" d")
	require.Len(t, toks, 5)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 4, toks[2].Line)
	assert.Equal(t, 5, toks[3].Line) // the string starts on line 5
	assert.Equal(t, 6, toks[4].Line)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		line  int
	}{
		{"unterminated string", "\n\"abc", "unterminated string literal", 2},
		{"unterminated comment", "/* abc", "unterminated comment", 1},
		{"unterminated char", "'ab", "unterminated character literal", 1},
		{"bad escape", `"\q"`, "invalid escape sequence", 1},
		{"one hex digit", `"\x4"`, "expected two hex digits after \\x", 1},
		{"no hex digits", `"\xzz"`, "expected two hex digits after \\x", 1},
		{"decimal overflow", "9223372036854775808", "integer literal too large", 1},
		{"hex overflow", "0x10000000000000000", "integer literal too large", 1},
		{"bad octal", "08", "invalid digit in octal literal", 1},
		{"empty hex", "0x", "expected digits in hexadecimal literal", 1},
		{"empty char", "''", "empty character literal", 1},
		{"char too long", "'abcdefghi'", "character literal longer than 8 characters", 1},
		{"bad exponent", "1.5e+", "malformed floating-point literal", 1},
		{"unexpected char", "$", "unexpected character `$'", 1},
		{"lone at sign", "@x", "unexpected character `@'", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithErrorSink(io.Discard))
			p.Reset([]byte(tt.input))
			for p.Advance() {
			}
			require.Error(t, p.Err())
			var serr *SyntaxError
			require.ErrorAs(t, p.Err(), &serr)
			assert.Contains(t, serr.Msg, tt.want)
			assert.Equal(t, tt.line, serr.Line)
		})
	}
}

func TestAcceptReleasesNothingOnMismatch(t *testing.T) {
	p := New(WithErrorSink(io.Discard))
	p.Reset([]byte("foo bar"))
	require.True(t, p.Advance())

	assert.False(t, p.Accept(TokenInt))
	assert.Equal(t, "foo", p.Current().Val.Str, "failed Accept must not advance")

	assert.True(t, p.Accept(TokenIdent))
	assert.Equal(t, "bar", p.Current().Val.Str)
}

func TestAcceptAny(t *testing.T) {
	p := New(WithErrorSink(io.Discard))
	p.Reset([]byte("+ -"))
	require.True(t, p.Advance())

	kinds := []TokenKind{TokenMinus, TokenPlus}
	assert.Equal(t, 1, p.AcceptAny(kinds))
	assert.Equal(t, 0, p.AcceptAny(kinds))
	assert.Equal(t, -1, p.AcceptAny(kinds))
}
