package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Tokenize(t *testing.T) {
	testData := []struct {
		Content string
		Types   []TokenType
		Values  []string
	}{
		{
			Content: "int a;",
			Types:   []TokenType{IntTP, IdentifierTP, SemiColonTP},
			Values:  []string{"int", "a", ";"},
		},
		{
			Content: "a <= b >= c == d != e && f || !g",
			Types: []TokenType{IdentifierTP, LessEqualTP, IdentifierTP, GreaterEqualTP, IdentifierTP, EqualTP,
				IdentifierTP, NotEqualTP, IdentifierTP, AndTP, IdentifierTP, OrTP, NotTP, IdentifierTP},
		},
		{
			Content: "x = 0x1F + 12 % 3.5 / 1.E3;",
			Types: []TokenType{IdentifierTP, AssignTP, IntConstantTP, AddTP, IntConstantTP, ModTP,
				DoubleConstantTP, DivideTP, DoubleConstantTP, SemiColonTP},
			Values: []string{"x", "=", "0x1F", "+", "12", "%", "3.5", "/", "1.E3", ";"},
		},
		{
			Content: "Print(\"hello world\", NewArray(3, int));",
			Types: []TokenType{PrintTP, LeftParentThesesTP, StringConstantTP, CommaTP, NewArrayTP, LeftParentThesesTP,
				IntConstantTP, CommaTP, IntTP, RightParentThesesTP, RightParentThesesTP, SemiColonTP},
			Values: []string{"Print", "(", "hello world", ",", "NewArray", "(", "3", ",", "int", ")", ")", ";"},
		},
		{
			Content: "a // comment\n/* multi\n line */ b /* one */ c",
			Types:   []TokenType{IdentifierTP, IdentifierTP, IdentifierTP},
			Values:  []string{"a", "b", "c"},
		},
		{
			Content: "class A extends B implements I { }",
			Types:   []TokenType{ClassTP, IdentifierTP, ExtendsTP, IdentifierTP, ImplementsTP, IdentifierTP, LeftBraceTP, RightBraceTP},
		},
		{
			Content: "a[i].length()",
			Types: []TokenType{IdentifierTP, LeftSquareBracketTP, IdentifierTP, RightSquareBracketTP, DotTP, IdentifierTP,
				LeftParentThesesTP, RightParentThesesTP},
		},
	}

	for _, data := range testData {
		tokenizer := &Tokenizer{}
		tokens, err := tokenizer.Tokenize(strings.NewReader(data.Content))
		assert.Nil(t, err, data.Content)
		var types []TokenType
		var values []string
		for _, token := range tokens {
			types = append(types, token.tp)
			values = append(values, token.content)
		}

		assert.Equal(t, data.Types, types, data.Content)
		if data.Values != nil {
			assert.Equal(t, data.Values, values, data.Content)
		}
	}
}

func TestTokenizer_Positions(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(strings.NewReader("int a;\n  /* x\n */ b = 1;"))
	assert.Nil(t, err)
	assert.Len(t, tokens, 7)
	assert.Equal(t, 1, tokens[1].line)
	assert.Equal(t, 4, tokens[1].startPos)
	assert.Equal(t, 3, tokens[3].line)
	assert.Equal(t, 4, tokens[3].startPos)
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []struct {
		Content string
		Line    int
	}{
		{Content: "a = \"unterminated;", Line: 1},
		{Content: "a;\nb = #;", Line: 2},
		{Content: "a; /* never closed\n b", Line: 1},
	}

	for _, data := range testData {
		tokenizer := &Tokenizer{currentFile: "x.decaf"}
		_, err := tokenizer.Tokenize(strings.NewReader(data.Content))
		assert.NotNil(t, err, data.Content)
		serr, ok := err.(*SyntaxError)
		if assert.True(t, ok, data.Content) {
			assert.Equal(t, data.Line, serr.Pos.Line, data.Content)
			assert.Equal(t, "x.decaf", serr.File)
		}
	}
}
