package where

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rediwo/redi-datasource/types"
)

// ErrSyntax is returned (wrapped) for any malformed expression.
var ErrSyntax = errors.New("where: syntax error")

// Parser turns a where expression into a condition tree. The grammar:
//
//	expr       = or
//	or         = and { ("or" | "||") and }
//	and        = not { ("and" | "&&") not }
//	not        = ("not" | "!") not | primary
//	primary    = "(" expr ")" | "true" | "false" | comparison
//	comparison = path [ "." method "(" args ")" | op value | ["not"] "in" list
//	             | ["not"] "like" string | "is" ["not"] "null" ]
type Parser struct {
	lexer *Lexer

	curToken  Token
	peekToken Token

	errors []string
}

func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse is shorthand for NewParser(input).Parse().
func Parse(input string) (types.Condition, error) {
	return NewParser(input).Parse()
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("column %d: %s", p.curToken.Column, msg))
}

func (p *Parser) expectToken(t TokenType) bool {
	if p.curToken.Type == t {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.describe()))
	return false
}

func (p *Parser) describe() string {
	if p.curToken.Type == TokenIllegal {
		return fmt.Sprintf("illegal %q", p.curToken.Literal)
	}
	if p.curToken.Literal != "" {
		return fmt.Sprintf("%s %q", p.curToken.Type, p.curToken.Literal)
	}
	return p.curToken.Type.String()
}

// Parse parses the whole input. An empty expression is an error; callers
// skip blank where clauses themselves.
func (p *Parser) Parse() (types.Condition, error) {
	cond := p.parseOr()
	if len(p.errors) == 0 && p.curToken.Type != TokenEOF {
		p.addError("unexpected " + p.describe())
	}
	if len(p.errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, strings.Join(p.errors, "; "))
	}
	return cond, nil
}

func (p *Parser) parseOr() types.Condition {
	left := p.parseAnd()
	for p.curToken.Type == TokenOr && len(p.errors) == 0 {
		p.nextToken()
		left = types.Or(left, p.parseAnd())
	}
	return left
}

func (p *Parser) parseAnd() types.Condition {
	left := p.parseNot()
	for p.curToken.Type == TokenAnd && len(p.errors) == 0 {
		p.nextToken()
		left = types.And(left, p.parseNot())
	}
	return left
}

func (p *Parser) parseNot() types.Condition {
	if p.curToken.Type == TokenNot {
		p.nextToken()
		inner := p.parseNot()
		if inner == nil {
			return nil
		}
		return types.Not(inner)
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() types.Condition {
	switch p.curToken.Type {
	case TokenLParen:
		p.nextToken()
		expr := p.parseOr()
		if !p.expectToken(TokenRParen) {
			return nil
		}
		return expr
	case TokenTrue:
		p.nextToken()
		return types.True()
	case TokenFalse:
		p.nextToken()
		return types.False()
	case TokenIdent:
		return p.parseComparison()
	}
	p.addError("expected field name, got " + p.describe())
	return nil
}

// parseComparison reads a field path and whatever follows it.
func (p *Parser) parseComparison() types.Condition {
	path := []string{p.curToken.Literal}
	p.nextToken()

	for p.curToken.Type == TokenDot {
		p.nextToken()
		if p.curToken.Type != TokenIdent {
			p.addError("expected member name after '.', got " + p.describe())
			return nil
		}
		name := p.curToken.Literal
		p.nextToken()
		if p.curToken.Type == TokenLParen {
			return p.parseMethod(path, name)
		}
		path = append(path, name)
	}

	field := types.Field(path...)
	negate := false

	switch p.curToken.Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		op := p.curToken.Type
		p.nextToken()
		value, ok := p.parseValue()
		if !ok {
			return nil
		}
		return compare(field, op, value)
	case TokenIs:
		p.nextToken()
		if p.curToken.Type == TokenNot {
			negate = true
			p.nextToken()
		}
		if !p.expectToken(TokenNull) {
			return nil
		}
		if negate {
			return field.IsNotNull()
		}
		return field.IsNull()
	case TokenNot:
		negate = true
		p.nextToken()
		if p.curToken.Type != TokenIn && p.curToken.Type != TokenLike {
			p.addError("expected IN or LIKE after NOT, got " + p.describe())
			return nil
		}
	}

	var cond types.Condition
	switch p.curToken.Type {
	case TokenIn:
		p.nextToken()
		values, ok := p.parseList()
		if !ok {
			return nil
		}
		cond = field.In(values...)
	case TokenLike:
		p.nextToken()
		if p.curToken.Type != TokenString {
			p.addError("LIKE requires a string pattern, got " + p.describe())
			return nil
		}
		cond = p.like(field, p.curToken.Literal)
		p.nextToken()
	default:
		if negate {
			return nil
		}
		// a bare path is a boolean member test
		return field.Equals(true)
	}

	if cond == nil {
		return nil
	}
	if negate {
		return cond.Not()
	}
	return cond
}

func compare(field *types.FieldRef, op TokenType, value any) types.Condition {
	if value == nil {
		switch op {
		case TokenEqual:
			return field.IsNull()
		case TokenNotEqual:
			return field.IsNotNull()
		}
	}
	switch op {
	case TokenEqual:
		return field.Equals(value)
	case TokenNotEqual:
		return field.NotEquals(value)
	case TokenLess:
		return field.LessThan(value)
	case TokenLessEqual:
		return field.LessThanOrEqual(value)
	case TokenGreater:
		return field.GreaterThan(value)
	default:
		return field.GreaterThanOrEqual(value)
	}
}

// like maps the three LIKE shapes onto string operators. Other wildcard
// placements have no portable equivalent and are rejected.
func (p *Parser) like(field *types.FieldRef, pattern string) types.Condition {
	lead := strings.HasPrefix(pattern, "%")
	trail := strings.HasSuffix(pattern, "%") && len(pattern) > 1
	core := strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
	if strings.ContainsAny(core, "%_") {
		p.addError(fmt.Sprintf("unsupported LIKE pattern %q", pattern))
		return nil
	}
	switch {
	case lead && trail:
		return field.Contains(core)
	case lead:
		return field.EndsWith(core)
	case trail:
		return field.StartsWith(core)
	}
	return field.Equals(core)
}

var methods = map[string]func(*types.FieldRef, string) types.Condition{
	"startswith": (*types.FieldRef).StartsWith,
	"endswith":   (*types.FieldRef).EndsWith,
	"contains":   (*types.FieldRef).Contains,
}

// parseMethod handles Name.StartsWith("x") style calls. curToken is '('.
func (p *Parser) parseMethod(path []string, name string) types.Condition {
	build, ok := methods[strings.ToLower(name)]
	if !ok {
		p.addError(fmt.Sprintf("unknown method %s", name))
		return nil
	}
	p.nextToken()
	if p.curToken.Type != TokenString {
		p.addError(fmt.Sprintf("%s requires a string argument, got %s", name, p.describe()))
		return nil
	}
	arg := p.curToken.Literal
	p.nextToken()
	if !p.expectToken(TokenRParen) {
		return nil
	}
	return build(types.Field(path...), arg)
}

func (p *Parser) parseValue() (any, bool) {
	tok := p.curToken
	switch tok.Type {
	case TokenString:
		p.nextToken()
		return tok.Literal, true
	case TokenInt:
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid integer: %s", tok.Literal))
			return nil, false
		}
		p.nextToken()
		return n, true
	case TokenFloat:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid float: %s", tok.Literal))
			return nil, false
		}
		p.nextToken()
		return f, true
	case TokenTrue, TokenFalse:
		p.nextToken()
		return tok.Type == TokenTrue, true
	case TokenNull:
		p.nextToken()
		return nil, true
	}
	p.addError("expected a literal value, got " + p.describe())
	return nil, false
}

func (p *Parser) parseList() ([]any, bool) {
	if !p.expectToken(TokenLParen) {
		return nil, false
	}
	var values []any
	for p.curToken.Type != TokenRParen {
		v, ok := p.parseValue()
		if !ok {
			return nil, false
		}
		values = append(values, v)
		if p.curToken.Type != TokenComma {
			break
		}
		p.nextToken()
	}
	if !p.expectToken(TokenRParen) {
		return nil, false
	}
	return values, true
}
