package graph

// Source is a node of the front-end program handed to Build. It is one of
// *Variable, *Operation or *Rule.
//
// Sources are compared by identity: an operand refers to a source that
// appears earlier in the list passed to Build.
type Source interface {
	source()
}

// Variable references an input by name.
type Variable struct {
	Name string
}

// Operation applies a registered operator to earlier sources.
type Operation struct {
	Symbol   string
	Operands []Source
}

// Rule binds a name to the node of its content.
type Rule struct {
	Name    string
	Content Source
}

func (*Variable) source()  {}
func (*Operation) source() {}
func (*Rule) source()      {}
