package ops

import (
	"fmt"
	"slices"
	"strings"
)

// Registry maps operator symbols to operators.
type Registry struct {
	operators map[string]*Operator
}

// NewRegistry creates a registry holding the built-in operators.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()

	r.mustRegister(plusOperator())
	r.mustRegister(addOperator())
	r.mustRegister(hadamardOperator())
	r.mustRegister(tanhOperator())
	r.mustRegister(matMulOperator())

	return r
}

// NewEmptyRegistry creates a registry without any operator.
func NewEmptyRegistry() *Registry {
	return &Registry{operators: make(map[string]*Operator)}
}

// Register adds an operator. It fails if the symbol is taken or the operator
// is missing a behaviour.
func (r *Registry) Register(op Operator) error {
	if err := validate(&op); err != nil {
		return err
	}
	if _, ok := r.operators[op.Symbol]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateOperator, op.Symbol)
	}
	r.operators[op.Symbol] = &op
	return nil
}

func (r *Registry) mustRegister(op Operator) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

func validate(op *Operator) error {
	switch {
	case op.Symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrIncompleteOperator)
	case op.Forward == nil:
		return fmt.Errorf("%w: %q has no forward rule", ErrIncompleteOperator, op.Symbol)
	case op.Backward == nil:
		return fmt.Errorf("%w: %q has no backward rule", ErrIncompleteOperator, op.Symbol)
	case op.Symbolic == nil:
		return fmt.Errorf("%w: %q has no symbolic rule", ErrIncompleteOperator, op.Symbol)
	case op.Arity == 0 || op.Arity < Variadic:
		return fmt.Errorf("%w: %q has invalid arity %d", ErrIncompleteOperator, op.Symbol, op.Arity)
	case op.Fixity == Infix && op.Arity != 2:
		return fmt.Errorf("%w: infix %q must be binary", ErrIncompleteOperator, op.Symbol)
	case (op.Fixity == Prefix || op.Fixity == Postfix) && op.Arity != 1:
		return fmt.Errorf("%w: %s %q must be unary", ErrIncompleteOperator, op.Fixity, op.Symbol)
	}
	return nil
}

// Get returns the operator registered for symbol.
func (r *Registry) Get(symbol string) (*Operator, bool) {
	op, ok := r.operators[symbol]
	return op, ok
}

// MustGet is like Get but panics on unknown symbols.
func (r *Registry) MustGet(symbol string) *Operator {
	op, ok := r.operators[symbol]
	if !ok {
		panic(fmt.Sprintf("ops: unknown operator %q", symbol))
	}
	return op
}

// Symbols returns the registered symbols in sorted order.
func (r *Registry) Symbols() []string {
	symbols := make([]string, 0, len(r.operators))
	for s := range r.operators {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// IsFunction reports whether symbol is a registered function-call operator.
func (r *Registry) IsFunction(symbol string) bool {
	op, ok := r.operators[symbol]
	return ok && op.Fixity == Function
}

// IsInfix reports whether symbol is a registered infix operator.
func (r *Registry) IsInfix(symbol string) bool {
	op, ok := r.operators[symbol]
	return ok && op.Fixity == Infix
}

// Format renders an application of symbol to already rendered operands.
// Unknown symbols use the function-call form.
func (r *Registry) Format(symbol string, operands []string) string {
	fixity := Function
	if op, ok := r.operators[symbol]; ok {
		fixity = op.Fixity
	}

	switch fixity {
	case Infix:
		return strings.Join(operands, " "+symbol+" ")
	case Prefix:
		return symbol + strings.Join(operands, "")
	case Postfix:
		return strings.Join(operands, "") + symbol
	default:
		return symbol + "(" + strings.Join(operands, ", ") + ")"
	}
}
