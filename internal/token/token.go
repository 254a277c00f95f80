package token

type Type int

const (
	EOF Type = iota
	WORD
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "EOF"
	case WORD:
		return "WORD"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token with its type and literal value.
type Token struct {
	Type  Type
	Value string
}
