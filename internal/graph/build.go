package graph

import (
	"fmt"
	"slices"

	"github.com/born-ml/gradgraph/internal/ops"
)

// Option configures Build.
type Option func(*builder)

// WithScalar builds a scalar graph: every value is 1×1 and scalar-unsafe
// operators are rejected.
func WithScalar() Option {
	return func(b *builder) {
		b.scalar = true
	}
}

type builder struct {
	registry *ops.Registry
	scalar   bool
	nodes    []Node
	index    map[Source]int
	rules    []RuleInfo
	names    map[string]int
}

// Build materializes sources in order. Every operand must appear earlier in
// sources than the source using it. Any error aborts construction.
func Build(sources []Source, registry *ops.Registry, opts ...Option) (*Graph, error) {
	b := &builder{
		registry: registry,
		index:    make(map[Source]int, len(sources)),
		names:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(b)
	}

	for pos, src := range sources {
		if err := b.add(pos, src); err != nil {
			return nil, err
		}
	}

	for i := range b.rules {
		b.rules[i].Members = b.members(b.rules[i].Index)
	}

	return &Graph{
		nodes:     b.nodes,
		rules:     b.rules,
		terminals: terminals(b.nodes),
		names:     b.names,
		registry:  registry,
		scalar:    b.scalar,
	}, nil
}

func (b *builder) add(pos int, src Source) error {
	switch s := src.(type) {
	case *Variable:
		b.index[s] = b.addVariable(s.Name)
		return nil
	case *Operation:
		idx, err := b.addOperation(pos, s)
		if err != nil {
			return err
		}
		b.index[s] = idx
		return nil
	case *Rule:
		idx, err := b.addRule(pos, s)
		if err != nil {
			return err
		}
		b.index[s] = idx
		return nil
	default:
		return NewNodeError(pos, fmt.Sprintf("%T", src), ErrUnsupportedNode)
	}
}

func (b *builder) addVariable(name string) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Index:       idx,
		Kind:        KindVariable,
		Name:        name,
		DisplayName: name,
		expr:        name,
	})
	if _, taken := b.names[name]; !taken {
		b.names[name] = idx
	}
	return idx
}

func (b *builder) addOperation(pos int, s *Operation) (int, error) {
	op, ok := b.registry.Get(s.Symbol)
	if !ok {
		return 0, NewNodeError(pos, s.Symbol, ErrUnknownOperation)
	}
	if !op.AcceptsArity(len(s.Operands)) {
		return 0, NewNodeError(pos, s.Symbol,
			fmt.Errorf("%w: %q takes %s, got %d", ErrArity, s.Symbol, arityText(op.Arity), len(s.Operands)))
	}
	if b.scalar && op.ScalarUnsafe {
		return 0, NewNodeError(pos, s.Symbol, ErrScalarUnsupported)
	}

	children := make([]int, len(s.Operands))
	labels := make([]string, len(s.Operands))
	for i, operand := range s.Operands {
		child, ok := b.index[operand]
		if !ok {
			return 0, NewNodeError(pos, s.Symbol, ErrOperandOrder)
		}
		children[i] = child
		labels[i] = b.operandText(op, child)
	}

	expr := b.registry.Format(s.Symbol, labels)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		Index:       idx,
		Kind:        KindOperation,
		Name:        s.Symbol,
		DisplayName: expr,
		Children:    children,
		expr:        expr,
		op:          op,
	})
	return idx, nil
}

// operandText renders a child inside its parent's expression. Named nodes
// print by name; anonymous infix children are parenthesized unless the
// parent is a function call or binds less tightly.
func (b *builder) operandText(parent *ops.Operator, child int) string {
	n := &b.nodes[child]
	if len(n.Rules) > 0 {
		return n.Rules[0]
	}
	if n.Kind == KindOperation && n.op.Fixity == ops.Infix && parent.Fixity != ops.Function {
		if parent.Fixity != ops.Infix || n.op.Precedence < parent.Precedence {
			return "(" + n.expr + ")"
		}
	}
	return n.expr
}

func (b *builder) addRule(pos int, s *Rule) (int, error) {
	idx, ok := b.index[s.Content]
	if !ok {
		return 0, NewNodeError(pos, s.Name, ErrOperandOrder)
	}
	n := &b.nodes[idx]
	if n.Kind == KindVariable {
		return 0, NewNodeError(pos, s.Name, ErrRuleOnVariable)
	}

	n.Rules = append(n.Rules, s.Name)
	n.DisplayName = s.Name + " = " + n.expr
	b.names[s.Name] = idx
	b.rules = append(b.rules, RuleInfo{Name: s.Name, Index: idx})
	return idx, nil
}

// members returns every node reachable from root, root included, sorted.
func (b *builder) members(root int) []int {
	seen := map[int]bool{root: true}
	stack := []int{root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range b.nodes[i].Children {
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}

	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

func arityText(arity int) string {
	switch arity {
	case ops.Variadic:
		return "one or more operands"
	case 1:
		return "1 operand"
	default:
		return fmt.Sprintf("%d operands", arity)
	}
}
