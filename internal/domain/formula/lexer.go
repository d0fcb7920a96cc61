package formula

import (
	"strings"

	"github.com/shopspring/decimal"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  decimal.Decimal
	op   byte
	pos  int
}

// tokenize recorre la expresión una sola vez. Solo admite dígitos, punto decimal,
// operadores + - * /, paréntesis, identificadores y espacios.
func tokenize(expr string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			start := i
			dots := 0
			for i < len(expr) && (isDigit(expr[i]) || expr[i] == '.') {
				if expr[i] == '.' {
					dots++
				}
				i++
			}
			lit := expr[start:i]
			if dots > 1 || lit == "." {
				return nil, invalidf("número mal formado %q en la posición %d", lit, start)
			}
			if strings.HasPrefix(lit, ".") {
				lit = "0" + lit
			}
			lit = strings.TrimSuffix(lit, ".")
			n, err := decimal.NewFromString(lit)
			if err != nil {
				return nil, invalidf("número mal formado %q en la posición %d", expr[start:i], start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: expr[start:i], num: n, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentPart(expr[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: expr[start:i], pos: start})
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokOp, op: c, text: string(c), pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, invalidf("carácter no permitido %q en la posición %d", c, i)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(expr)})
	return tokens, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
