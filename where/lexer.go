package where

import (
	"fmt"
	"strings"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenIllegal TokenType = iota
	TokenEOF

	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenIs
	TokenNull
	TokenLike
	TokenTrue
	TokenFalse

	TokenEqual        // = ==
	TokenNotEqual     // != <>
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	TokenComma
	TokenLParen
	TokenRParen
	TokenDot
)

var tokenNames = map[TokenType]string{
	TokenIllegal:      "ILLEGAL",
	TokenEOF:          "EOF",
	TokenIdent:        "IDENT",
	TokenInt:          "INT",
	TokenFloat:        "FLOAT",
	TokenString:       "STRING",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenIn:           "IN",
	TokenIs:           "IS",
	TokenNull:         "NULL",
	TokenLike:         "LIKE",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenComma:        ",",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenDot:          ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Column  int
}

var keywords = map[string]TokenType{
	"AND":   TokenAnd,
	"OR":    TokenOr,
	"NOT":   TokenNot,
	"IN":    TokenIn,
	"IS":    TokenIs,
	"NULL":  TokenNull,
	"LIKE":  TokenLike,
	"TRUE":  TokenTrue,
	"FALSE": TokenFalse,
}

// Lexer splits a where expression into tokens. Expressions are single line,
// so positions are tracked as a column only.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, TokenType) {
	start := l.position
	tokenType := TokenInt
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		tokenType = TokenFloat
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], tokenType
}

// readString reads a quoted literal, resolving backslash escapes. ok is
// false when the input ends before the closing quote.
func (l *Lexer) readString(delimiter byte) (string, bool) {
	var b strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return b.String(), false
		case delimiter:
			return b.String(), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return b.String(), false
			}
		}
		b.WriteByte(l.ch)
	}
}

func (l *Lexer) two(t TokenType) Token {
	col := l.position + 1
	lit := l.input[l.position : l.position+2]
	l.readChar()
	return Token{Type: t, Literal: lit, Column: col}
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	col := l.position + 1
	single := func(t TokenType) Token { return Token{Type: t, Literal: string(l.ch), Column: col} }

	var tok Token
	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			tok = l.two(TokenEqual)
		} else {
			tok = single(TokenEqual)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.two(TokenNotEqual)
		} else {
			tok = single(TokenNot)
		}
	case '<':
		switch l.peekChar() {
		case '=':
			tok = l.two(TokenLessEqual)
		case '>':
			tok = l.two(TokenNotEqual)
		default:
			tok = single(TokenLess)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.two(TokenGreaterEqual)
		} else {
			tok = single(TokenGreater)
		}
	case '&':
		if l.peekChar() == '&' {
			tok = l.two(TokenAnd)
		} else {
			tok = single(TokenIllegal)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.two(TokenOr)
		} else {
			tok = single(TokenIllegal)
		}
	case ',':
		tok = single(TokenComma)
	case '(':
		tok = single(TokenLParen)
	case ')':
		tok = single(TokenRParen)
	case '.':
		tok = single(TokenDot)
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		if !ok {
			return Token{Type: TokenIllegal, Literal: "unterminated string", Column: col}
		}
		tok = Token{Type: TokenString, Literal: lit, Column: col}
	case 0:
		return Token{Type: TokenEOF, Column: col}
	default:
		switch {
		case isLetter(l.ch):
			lit := l.readIdentifier()
			return Token{Type: lookupIdent(lit), Literal: lit, Column: col}
		case isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())):
			lit, t := l.readNumber()
			return Token{Type: t, Literal: lit, Column: col}
		default:
			tok = single(TokenIllegal)
		}
	}

	l.readChar()
	return tok
}

func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return TokenIdent
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
