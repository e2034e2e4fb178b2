package parser

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokAssign
	tokPlus
	tokStar
	tokLParen
	tokRParen
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokName:
		return "name"
	case tokAssign:
		return "'='"
	case tokPlus:
		return "'+'"
	case tokStar:
		return "'*'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	default:
		return "unknown token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokName {
		return fmt.Sprintf("name %q", t.text)
	}
	return t.kind.String()
}

var punctuation = map[byte]tokenKind{
	'=': tokAssign,
	'+': tokPlus,
	'*': tokStar,
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
}

// lex splits src into tokens. Names are runs of ASCII letters.
func lex(src string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isLetter(c):
			start := i
			for i < len(src) && isLetter(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokName, text: src[start:i], pos: start})
		default:
			kind, ok := punctuation[c]
			if !ok {
				return nil, newSyntaxError(src, i, fmt.Sprintf("unexpected character %q", c))
			}
			tokens = append(tokens, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(src)}), nil
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
