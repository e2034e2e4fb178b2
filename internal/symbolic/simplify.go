package symbolic

// Simplify rebuilds t bottom-up through the smart constructors. Terms built
// by this package are already simplified, so Simplify returns a term equal to
// its argument for them.
func Simplify(t Term) Term {
	switch v := t.(type) {
	case *Operation:
		operands := make([]Term, len(v.operands))
		for i, op := range v.operands {
			operands[i] = Simplify(op)
		}
		return rebuild(v.kind, operands)
	case *NamedOperation:
		operands := make([]Term, len(v.operands))
		for i, op := range v.operands {
			operands[i] = Simplify(op)
		}
		return Named(v.name, operands...)
	default:
		return t
	}
}
