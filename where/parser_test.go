package where

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/redi-datasource/types"
)

func TestLexer(t *testing.T) {
	input := `Company.Name == "A\"cme" && Age >= -3.5 || !IsActive <> x`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenIdent, "Company"},
		{TokenDot, "."},
		{TokenIdent, "Name"},
		{TokenEqual, "=="},
		{TokenString, `A"cme`},
		{TokenAnd, "&&"},
		{TokenIdent, "Age"},
		{TokenGreaterEqual, ">="},
		{TokenFloat, "-3.5"},
		{TokenOr, "||"},
		{TokenNot, "!"},
		{TokenIdent, "IsActive"},
		{TokenNotEqual, "<>"},
		{TokenIdent, "x"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, want := range expected {
		tok := l.NextToken()
		assert.Equal(t, want.typ, tok.Type, "token %d", i)
		assert.Equal(t, want.lit, tok.Literal, "token %d", i)
	}
}

func TestLexerKeywordsAreCaseInsensitive(t *testing.T) {
	l := NewLexer("and Or NOT is Null LIKE true")
	for _, want := range []TokenType{TokenAnd, TokenOr, TokenNot, TokenIs, TokenNull, TokenLike, TokenTrue, TokenEOF} {
		assert.Equal(t, want, l.NextToken().Type)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"equality", `FirstName == "Steve"`, `FirstName = "Steve"`},
		{"single equals", `Age = 30`, `Age = 30`},
		{"float", `Score < 2.5`, `Score < 2.5`},
		{"dotted path", `Company.Name != 'Acme'`, `Company.Name != "Acme"`},
		{"null equality", `DeletedAt == null`, `DeletedAt IS NULL`},
		{"null inequality", `DeletedAt != null`, `DeletedAt IS NOT NULL`},
		{"is not null", `DeletedAt is not null`, `DeletedAt IS NOT NULL`},
		{"bool literal", `IsActive = false`, `IsActive = false`},
		{"bare member", `IsActive`, `IsActive = true`},
		{"method", `Name.StartsWith("St")`, `Name STARTS WITH "St"`},
		{"nested method", `Company.Name.Contains("cm")`, `Company.Name CONTAINS "cm"`},
		{"in", `Status in (1, 2)`, `Status IN (1, 2)`},
		{"not in", `Status not in (1)`, `NOT (Status IN (1))`},
		{"like prefix", `Name like 'St%'`, `Name STARTS WITH "St"`},
		{"like suffix", `Name like '%son'`, `Name ENDS WITH "son"`},
		{"like contains", `Name not like '%eve%'`, `NOT (Name CONTAINS "eve")`},
		{"precedence", `A = 1 or B = 2 and C = 3`, `(A = 1) OR ((B = 2) AND (C = 3))`},
		{"parens", `(A = 1 || B = 2) && C = 3`, `((A = 1) OR (B = 2)) AND (C = 3)`},
		{"not", `!(A = 1)`, `NOT (A = 1)`},
		{"double not", `not not A = 1`, `A = 1`},
		{"constant", `true`, `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.String())
		})
	}
}

func TestParseBuildsFieldConditions(t *testing.T) {
	cond, err := Parse(`Company.Id >= 5`)
	require.NoError(t, err)

	fc, ok := cond.(*types.FieldCondition)
	require.True(t, ok)
	assert.Equal(t, []string{"Company", "Id"}, fc.Path)
	assert.Equal(t, types.OpGreaterEqual, fc.Operator)
	assert.Equal(t, int64(5), fc.Value)
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"Name ==",
		`Name == "unterminated`,
		"Name.Explode()",
		"Name.StartsWith(3)",
		"(A = 1",
		"A = 1 B = 2",
		"A = B",
		"Status in 1, 2",
		"Name like '%a%b%'",
		"A not = 1",
		"A & B",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}
