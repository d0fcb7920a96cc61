package formula

import "github.com/shopspring/decimal"

// maxDepth limita el anidamiento de paréntesis y signos unarios.
const maxDepth = 64

// Node es un nodo del árbol sintáctico.
type Node interface {
	eval(bindings map[string]decimal.Decimal) (decimal.Decimal, error)
}

// Number literal decimal.
type Number struct {
	Value decimal.Decimal
}

// Variable referencia a un atributo; se resuelve al evaluar.
type Variable struct {
	Name string
}

// Negate signo menos unario.
type Negate struct {
	Operand Node
}

// BinaryOp operación aritmética + - * /.
type BinaryOp struct {
	Op          byte
	Left, Right Node
}

func (n Number) eval(map[string]decimal.Decimal) (decimal.Decimal, error) {
	return n.Value, nil
}

func (v Variable) eval(bindings map[string]decimal.Decimal) (decimal.Decimal, error) {
	val, ok := bindings[v.Name]
	if !ok {
		return decimal.Zero, &MissingVariablesError{Names: []string{v.Name}}
	}
	return val, nil
}

func (n Negate) eval(bindings map[string]decimal.Decimal) (decimal.Decimal, error) {
	v, err := n.Operand.eval(bindings)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

func (b BinaryOp) eval(bindings map[string]decimal.Decimal) (decimal.Decimal, error) {
	l, err := b.Left.eval(bindings)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := b.Right.eval(bindings)
	if err != nil {
		return decimal.Zero, err
	}
	switch b.Op {
	case '+':
		return l.Add(r), nil
	case '-':
		return l.Sub(r), nil
	case '*':
		return l.Mul(r), nil
	case '/':
		if r.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return l.Div(r), nil
	}
	return decimal.Zero, invalidf("operador desconocido %q", b.Op)
}

// parser descendente recursivo:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | identifier | '(' expr ')'
type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: t.op, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/') {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: t.op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.op == '-' || t.op == '+') {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		p.depth--
		if err != nil {
			return nil, err
		}
		if t.op == '-' {
			return Negate{Operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return Number{Value: t.num}, nil
	case tokIdent:
		if IsReservedName(t.text) {
			return nil, invalidf("las funciones no están soportadas (%s en la posición %d)", t.text, t.pos)
		}
		return Variable{Name: t.text}, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		p.depth--
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, invalidf("se esperaba ')' en la posición %d", closing.pos)
		}
		return inner, nil
	case tokEOF:
		return nil, invalidf("expresión incompleta")
	default:
		return nil, invalidf("token inesperado %q en la posición %d", t.text, t.pos)
	}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return invalidf("anidamiento excesivo (máximo %d)", maxDepth)
	}
	return nil
}
