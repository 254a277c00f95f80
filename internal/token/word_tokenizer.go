package token

import (
	"strings"
	"unicode"
)

// WordTokenizer splits text into lowercased runs of letters and digits,
// the same way the title field is analyzed by the standard analyzer.
type WordTokenizer struct {
	input []rune
	pos   int
}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{}
}

// Tokenize converts the input string into a slice of Tokens ending with EOF.
// Example: Input: `Storm hits U.K. coast` yields storm, hits, u, k, coast.
func (t *WordTokenizer) Tokenize(input string) []Token {
	t.input = []rune(input)
	t.pos = 0

	var tokens []Token
	for t.pos < len(t.input) {
		if isWordChar(t.input[t.pos]) {
			tokens = append(tokens, t.readWord())
			continue
		}
		t.pos++
	}

	return append(tokens, Token{Type: EOF})
}

func (t *WordTokenizer) readWord() Token {
	start := t.pos
	for t.pos < len(t.input) && isWordChar(t.input[t.pos]) {
		t.pos++
	}
	return Token{Type: WORD, Value: strings.ToLower(string(t.input[start:t.pos]))}
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// Terms returns the WORD values of tokenizing s.
func Terms(tk Tokenizer, s string) []string {
	var out []string
	for _, tok := range tk.Tokenize(s) {
		if tok.Type == WORD {
			out = append(out, tok.Value)
		}
	}
	return out
}
