package symbolic

import "strings"

type opKind int

const (
	opAdd opKind = iota
	opSub
	opNeg
	opMul
	opDiv
	opPow
	opTranspose
)

type fixity int

const (
	infix fixity = iota
	prefix
	postfix
)

// opInfo describes how an operator prints. assoc[i] is false when a child of
// equal priority on side i must be parenthesized.
type opInfo struct {
	name     string
	symbol   string
	fixity   fixity
	priority Priority
	assoc    [2]bool
}

func (k opKind) info() opInfo {
	switch k {
	case opAdd:
		return opInfo{"add", "+", infix, PriorityAdd, [2]bool{true, true}}
	case opSub:
		return opInfo{"sub", "-", infix, PriorityAdd, [2]bool{true, false}}
	case opNeg:
		return opInfo{"neg", "-", prefix, PriorityUnary, [2]bool{true, true}}
	case opMul:
		return opInfo{"mul", "*", infix, PriorityMul, [2]bool{true, true}}
	case opDiv:
		return opInfo{"div", "/", infix, PriorityMul, [2]bool{true, false}}
	case opPow:
		return opInfo{"pow", "**", infix, PriorityPow, [2]bool{false, true}}
	case opTranspose:
		return opInfo{"tns", "ᵀ", postfix, PriorityUnary, [2]bool{false, false}}
	default:
		panic("symbolic: unknown operator kind")
	}
}

// Operation is a unary or binary operator applied to simplified operands.
type Operation struct {
	kind     opKind
	operands []Term
}

func (o *Operation) term()              {}
func (o *Operation) Name() string       { return o.kind.info().name }
func (o *Operation) Priority() Priority { return o.kind.info().priority }

// Operands returns a copy of the operand list.
func (o *Operation) Operands() []Term {
	return append([]Term(nil), o.operands...)
}

// Equal reports structural equality. Binary operands match in either order.
func (o *Operation) Equal(other Term) bool {
	p, ok := other.(*Operation)
	if !ok || p.kind != o.kind || len(p.operands) != len(o.operands) {
		return false
	}
	if len(o.operands) == 1 {
		return o.operands[0].Equal(p.operands[0])
	}
	a, b := o.operands[0], o.operands[1]
	c, d := p.operands[0], p.operands[1]
	return (a.Equal(c) && b.Equal(d)) || (a.Equal(d) && b.Equal(c))
}

func (o *Operation) String() string {
	info := o.kind.info()
	parts := make([]string, len(o.operands))
	for i, child := range o.operands {
		s := child.String()
		if needsParens(info, child, i) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}

	switch info.fixity {
	case prefix:
		return info.symbol + parts[0]
	case postfix:
		return parts[0] + info.symbol
	default:
		return strings.Join(parts, " "+info.symbol+" ")
	}
}

func needsParens(parent opInfo, child Term, side int) bool {
	p := child.Priority()
	if p < parent.priority {
		return true
	}
	return p == parent.priority && !parent.assoc[side]
}

func unary(kind opKind, x Term) Term {
	return &Operation{kind: kind, operands: []Term{x}}
}

func binary(kind opKind, a, b Term) Term {
	return &Operation{kind: kind, operands: []Term{a, b}}
}

func constValue(t Term) (float64, bool) {
	c, ok := t.(*Constant)
	if !ok {
		return 0, false
	}
	return c.value, true
}

// Add returns a + b.
func Add(a, b Term) Term {
	switch {
	case IsEmpty(a):
		return b
	case IsEmpty(b):
		return a
	case a.Equal(Zero):
		return b
	case b.Equal(Zero):
		return a
	case a.Equal(b):
		return Mul(Two, a)
	}
	return binary(opAdd, a, b)
}

// Sub returns a - b.
func Sub(a, b Term) Term {
	switch {
	case IsEmpty(a):
		return Neg(b)
	case IsEmpty(b):
		return a
	case a.Equal(Zero):
		return Neg(b)
	case b.Equal(Zero):
		return a
	case a.Equal(b):
		return Zero
	}
	return binary(opSub, a, b)
}

// Neg returns -x.
func Neg(x Term) Term {
	if IsEmpty(x) {
		return Empty
	}
	if v, ok := constValue(x); ok {
		return Num(-v)
	}
	if o, ok := x.(*Operation); ok && o.kind == opNeg {
		return o.operands[0]
	}
	return unary(opNeg, x)
}

// Mul returns a * b. For matrices this is the matrix product, so operand
// order is kept as given.
func Mul(a, b Term) Term {
	if IsEmpty(a) || IsEmpty(b) {
		return Empty
	}
	av, aConst := constValue(a)
	bv, bConst := constValue(b)
	switch {
	case aConst && bConst:
		return Num(av * bv)
	case aConst && av == 0, bConst && bv == 0:
		return Zero
	case aConst && av == 1:
		return b
	case bConst && bv == 1:
		return a
	}
	return binary(opMul, a, b)
}

// Div returns a / b.
func Div(a, b Term) Term {
	if IsEmpty(a) || IsEmpty(b) {
		return Empty
	}
	if b.Equal(One) {
		return a
	}
	return binary(opDiv, a, b)
}

// Pow returns a ** b.
func Pow(a, b Term) Term {
	if IsEmpty(a) || IsEmpty(b) {
		return Empty
	}
	switch {
	case b.Equal(Zero):
		return One
	case a.Equal(Zero):
		return Zero
	case a.Equal(One):
		return One
	case b.Equal(One):
		return a
	}
	return binary(opPow, a, b)
}

// Transpose returns xᵀ. No reduction is applied, so double transposes are
// kept as written.
func Transpose(x Term) Term {
	if IsEmpty(x) {
		return Empty
	}
	return unary(opTranspose, x)
}

func rebuild(kind opKind, operands []Term) Term {
	switch kind {
	case opAdd:
		return Add(operands[0], operands[1])
	case opSub:
		return Sub(operands[0], operands[1])
	case opNeg:
		return Neg(operands[0])
	case opMul:
		return Mul(operands[0], operands[1])
	case opDiv:
		return Div(operands[0], operands[1])
	case opPow:
		return Pow(operands[0], operands[1])
	case opTranspose:
		return Transpose(operands[0])
	default:
		panic("symbolic: unknown operator kind")
	}
}
