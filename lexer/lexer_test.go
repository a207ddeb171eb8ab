package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeLiterals(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []Kind
	}{
		{"null", "null", []Kind{KwNull, EOF}},
		{"bools", "true false", []Kind{KwTrue, KwFalse, EOF}},
		{"int", "42", []Kind{Int, EOF}},
		{"float", "4.2", []Kind{Float, EOF}},
		{"string", `"hi"`, []Kind{String, EOF}},
		{"path", "event.a[0].b", []Kind{Ident, Dot, Ident, LBracket, Int, RBracket, Dot, Ident, EOF}},
		{"comment skipped", "1 # trailing\n2", []Kind{Int, Int, EOF}},
		{"module call", "aggr::stats::sum(event.c)", []Kind{Ident, DColon, Ident, DColon, Ident, LParen, Ident, Dot, Ident, RParen, EOF}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := New("test.tremor", tt.src).Tokenize()
			require.NoError(t, err)
			require.Equal(t, tt.expected, kinds(toks))
		})
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := New("t", `"a\nb\"c"`).Tokenize()
	require.NoError(t, err)
	require.Equal(t, "a\nb\"c", toks[0].Text)
}

func TestSpanTracksLineAndColumn(t *testing.T) {
	toks, err := New("t.tremor", "let a = 1\nlet b = event.foo").Tokenize()
	require.NoError(t, err)

	// find "foo" token
	var foo Token
	for _, tok := range toks {
		if tok.Kind == Ident && tok.Text == "foo" {
			foo = tok
		}
	}
	require.Equal(t, 2, foo.Span.Line)
}

func TestUnterminatedStringErrors(t *testing.T) {
	_, err := New("t", `"abc`).Tokenize()
	require.Error(t, err)
}
