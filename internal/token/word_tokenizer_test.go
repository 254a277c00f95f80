package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordTokenizer_Tokenize(t *testing.T) {
	tokens := NewWordTokenizer().Tokenize("Storm hits U.K. coast")

	expected := []Token{
		{Type: WORD, Value: "storm"},
		{Type: WORD, Value: "hits"},
		{Type: WORD, Value: "u"},
		{Type: WORD, Value: "k"},
		{Type: WORD, Value: "coast"},
		{Type: EOF},
	}
	assert.Equal(t, expected, tokens)
}

func TestTerms(t *testing.T) {
	tk := NewWordTokenizer()

	assert.Equal(t, []string{"élection", "2025", "results"}, Terms(tk, "  Élection-2025: results!"))
	assert.Nil(t, Terms(tk, " ... "))
	assert.Nil(t, Terms(tk, ""))
}
