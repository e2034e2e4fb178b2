package symbolic

import "strconv"

// Priority orders terms for parenthesization. Higher binds tighter.
type Priority int

// Priority levels, loosest first.
const (
	PriorityAdd Priority = iota
	PriorityMul
	PriorityPow
	PriorityUnary
	PriorityFunction
	PriorityElement
)

// Term is a node of a symbolic expression.
type Term interface {
	// Name identifies the term kind: the variable name, "const", "empty"
	// or the operator name.
	Name() string

	// Priority is the display priority used by the printer.
	Priority() Priority

	// Equal reports structural equality, treating the operands of binary
	// operators as interchangeable.
	Equal(other Term) bool

	// String renders the term. It panics for Empty.
	String() string

	term()
}

// Variable is a named placeholder.
type Variable struct {
	name string
}

// Var creates a variable term.
func Var(name string) *Variable {
	return &Variable{name: name}
}

func (v *Variable) term()              {}
func (v *Variable) Name() string       { return v.name }
func (v *Variable) Priority() Priority { return PriorityElement }
func (v *Variable) String() string     { return v.name }

// Equal reports whether other is a variable with the same name.
func (v *Variable) Equal(other Term) bool {
	o, ok := other.(*Variable)
	return ok && o.name == v.name
}

// Constant is a numeric literal.
type Constant struct {
	value float64
}

// Num creates a constant term. Negative zero is stored as 0.
func Num(value float64) *Constant {
	if value == 0 {
		value = 0
	}
	return &Constant{value: value}
}

// Common constants.
var (
	Zero = Num(0)
	One  = Num(1)
	Two  = Num(2)
)

func (c *Constant) term()              {}
func (c *Constant) Name() string       { return "const" }
func (c *Constant) Priority() Priority { return PriorityElement }
func (c *Constant) Value() float64     { return c.value }

// Equal reports whether other is a constant with the same value.
func (c *Constant) Equal(other Term) bool {
	o, ok := other.(*Constant)
	return ok && o.value == c.value
}

func (c *Constant) String() string {
	return strconv.FormatFloat(c.value, 'f', -1, 64)
}

type emptyTerm struct{}

// Empty is the "no contribution yet" term.
var Empty Term = emptyTerm{}

func (emptyTerm) term()              {}
func (emptyTerm) Name() string       { return "empty" }
func (emptyTerm) Priority() Priority { return PriorityElement }

// Equal reports whether other is Empty as well.
func (emptyTerm) Equal(other Term) bool {
	return IsEmpty(other)
}

func (emptyTerm) String() string {
	panic("symbolic: Empty has no string form")
}

// IsEmpty reports whether t is Empty.
func IsEmpty(t Term) bool {
	_, ok := t.(emptyTerm)
	return ok
}

// Format renders t, or returns "" for Empty.
func Format(t Term) string {
	if t == nil || IsEmpty(t) {
		return ""
	}
	return t.String()
}
