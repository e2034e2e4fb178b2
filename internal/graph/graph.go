// Package graph turns an ordered list of front-end sources into a flat,
// index-addressed computation graph.
//
// Variables become leaf nodes and operations become interior nodes whose
// children are indices of earlier nodes. Rules are metadata: a rule shares
// the node of its content and only renames it.
package graph

import (
	"slices"

	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// Kind tells variable nodes from operation nodes.
type Kind int

// Node kinds.
const (
	KindVariable Kind = iota
	KindOperation
)

func (k Kind) String() string {
	if k == KindVariable {
		return "variable"
	}
	return "operation"
}

// Node is one graph element.
type Node struct {
	Index int
	Kind  Kind

	// Name is the variable name or the operator symbol.
	Name string

	// DisplayName is the expression text, prefixed with "<rule> = " when a
	// rule is bound to the node.
	DisplayName string

	Children []int

	// Rules lists the rule names bound to the node in declaration order.
	Rules []string

	expr string
	op   *ops.Operator
}

// Label is the short name used for placeholders and seeds: the first rule
// name, the variable name, or the parenthesized expression.
func (n *Node) Label() string {
	switch {
	case len(n.Rules) > 0:
		return n.Rules[0]
	case n.Kind == KindVariable:
		return n.Name
	default:
		return "(" + n.expr + ")"
	}
}

// Expr is the expression text without any rule prefix.
func (n *Node) Expr() string {
	return n.expr
}

// RuleInfo describes a rule and the nodes its content depends on.
type RuleInfo struct {
	Name    string
	Index   int
	Members []int
}

// Graph is an immutable computation graph.
type Graph struct {
	nodes     []Node
	rules     []RuleInfo
	terminals []int
	names     map[string]int
	registry  *ops.Registry
	scalar    bool
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of node i.
func (g *Graph) Node(i int) Node {
	n := g.nodes[i]
	n.Children = slices.Clone(n.Children)
	n.Rules = slices.Clone(n.Rules)
	return n
}

// Nodes returns copies of all nodes in creation order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = g.Node(i)
	}
	return out
}

// Operator returns the operator of node i, or nil for variables.
func (g *Graph) Operator(i int) *ops.Operator {
	return g.nodes[i].op
}

// Registry returns the registry the graph was built with.
func (g *Graph) Registry() *ops.Registry {
	return g.registry
}

// Scalar reports whether the graph was built in scalar mode.
func (g *Graph) Scalar() bool {
	return g.scalar
}

// Lookup finds a node by rule name, falling back to variable name.
func (g *Graph) Lookup(name string) (int, bool) {
	i, ok := g.names[name]
	return i, ok
}

// Rules returns the rules in declaration order.
func (g *Graph) Rules() []RuleInfo {
	out := make([]RuleInfo, len(g.rules))
	for i, r := range g.rules {
		r.Members = slices.Clone(r.Members)
		out[i] = r
	}
	return out
}

// Terminals returns the indices of nodes that no other node consumes.
func (g *Graph) Terminals() []int {
	return slices.Clone(g.terminals)
}

// IsTerminal reports whether node i is terminal.
func (g *Graph) IsTerminal(i int) bool {
	_, found := slices.BinarySearch(g.terminals, i)
	return found
}

// Label returns the label of node i.
func (g *Graph) Label(i int) string {
	return g.nodes[i].Label()
}

// Placeholder returns the symbolic stand-in for node i. Anonymous function
// calls print bare since they bind as tightly as a name; anonymous infix
// expressions keep their parentheses.
func (g *Graph) Placeholder(i int) symbolic.Term {
	n := &g.nodes[i]
	if len(n.Rules) == 0 && n.Kind == KindOperation && n.op.Fixity == ops.Function {
		return symbolic.Var(n.expr)
	}
	return symbolic.Var(n.Label())
}
