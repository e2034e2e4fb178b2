package symbolic

import "strings"

// NamedOperation is an n-ary function application printed as name(a, b, ...).
type NamedOperation struct {
	name     string
	operands []Term
}

// Named builds a named operation. Nested applications of the same name are
// flattened and Empty operands are dropped; if nothing remains the result is
// Empty.
func Named(name string, operands ...Term) Term {
	flat := make([]Term, 0, len(operands))
	for _, op := range operands {
		if IsEmpty(op) {
			continue
		}
		if inner, ok := op.(*NamedOperation); ok && inner.name == name {
			flat = append(flat, inner.operands...)
			continue
		}
		flat = append(flat, op)
	}
	if len(flat) == 0 {
		return Empty
	}
	return &NamedOperation{name: name, operands: flat}
}

func (n *NamedOperation) term()              {}
func (n *NamedOperation) Name() string       { return n.name }
func (n *NamedOperation) Priority() Priority { return PriorityFunction }

// Operands returns a copy of the operand list.
func (n *NamedOperation) Operands() []Term {
	return append([]Term(nil), n.operands...)
}

// Equal compares operands as a multiset.
func (n *NamedOperation) Equal(other Term) bool {
	o, ok := other.(*NamedOperation)
	if !ok || o.name != n.name || len(o.operands) != len(n.operands) {
		return false
	}
	used := make([]bool, len(o.operands))
outer:
	for _, a := range n.operands {
		for j, b := range o.operands {
			if !used[j] && a.Equal(b) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func (n *NamedOperation) String() string {
	parts := make([]string, len(n.operands))
	for i, op := range n.operands {
		parts[i] = op.String()
	}
	return n.name + "(" + strings.Join(parts, ", ") + ")"
}
