// Package parser reads the expression language and produces the ordered
// sources consumed by the graph builder.
//
// Grammar:
//
//	program   := rule+
//	rule      := name '=' sum
//	sum       := product ('+' sum)?
//	product   := component ('*' product)?
//	component := name | '(' sum ')' | name '(' sum (',' sum)* ')'
//	name      := [A-Za-z]+
//
// '+' and '*' are right associative. A bare name that matches an earlier
// rule stands for that rule's content. Structurally identical subtrees are
// shared, so "f = x + x" yields a single x.
package parser

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/ops"
)

// Program is the parsed input.
type Program struct {
	// Sources lists every node before its users, rules after their content.
	Sources []graph.Source

	// Rules lists the rule names in declaration order.
	Rules []string
}

type parser struct {
	src      string
	tokens   []token
	pos      int
	registry *ops.Registry
	nodes    *interner
	rules    map[string]int
	vars     map[string]bool
	current  string
	program  *Program
}

// Parse parses src. Function names are resolved through registry.
func Parse(src string, registry *ops.Registry) (*Program, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:      src,
		tokens:   tokens,
		registry: registry,
		nodes:    newInterner(),
		rules:    make(map[string]int),
		vars:     make(map[string]bool),
		program:  &Program{},
	}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "expected at least one rule")
	}
	for p.peek().kind != tokEOF {
		if err := p.rule(); err != nil {
			return nil, err
		}
	}
	return p.program, nil
}

// Compile parses src and builds its graph.
func Compile(src string, registry *ops.Registry, opts ...graph.Option) (*graph.Graph, error) {
	prog, err := Parse(src, registry)
	if err != nil {
		return nil, err
	}
	return graph.Build(prog.Sources, registry, opts...)
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, t)
	}
	return t, nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return newSyntaxError(p.src, t.pos, fmt.Sprintf(format, args...))
}

func (p *parser) rule() error {
	name, err := p.expect(tokName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokAssign); err != nil {
		return err
	}
	if _, taken := p.rules[name.text]; taken {
		return p.errorf(name, "rule %q redefined", name.text)
	}
	if p.vars[name.text] {
		return p.errorf(name, "rule %q shadows a variable", name.text)
	}

	p.current = name.text
	content, err := p.sum()
	if err != nil {
		return err
	}

	p.rules[name.text] = content
	p.program.Rules = append(p.program.Rules, name.text)
	p.program.Sources = append(p.program.Sources, &graph.Rule{
		Name:    name.text,
		Content: p.nodes.source(content),
	})
	return nil
}

func (p *parser) sum() (int, error) {
	return p.binary(tokPlus, "+", p.product)
}

func (p *parser) product() (int, error) {
	return p.binary(tokStar, "*", p.component)
}

// binary parses operand (op binary)?, building right-nested applications.
func (p *parser) binary(op tokenKind, symbol string, operand func() (int, error)) (int, error) {
	left, err := operand()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != op {
		return left, nil
	}
	p.next()
	right, err := p.binary(op, symbol, operand)
	if err != nil {
		return 0, err
	}
	return p.operation(symbol, []int{left, right}), nil
}

func (p *parser) component() (int, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.sum()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return 0, err
		}
		return inner, nil
	case tokName:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		if content, ok := p.rules[t.text]; ok {
			return content, nil
		}
		if t.text == p.current {
			return 0, p.errorf(t, "rule %q refers to itself", t.text)
		}
		return p.variable(t.text), nil
	default:
		return 0, p.errorf(t, "unexpected %s", t)
	}
}

func (p *parser) call(name token) (int, error) {
	if !p.registry.IsFunction(name.text) {
		return 0, p.errorf(name, "unknown function %q", name.text)
	}
	p.next()

	var args []int
	for {
		arg, err := p.sum()
		if err != nil {
			return 0, err
		}
		args = append(args, arg)

		t := p.next()
		if t.kind == tokRParen {
			break
		}
		if t.kind != tokComma {
			return 0, p.errorf(t, "expected ',' or ')', found %s", t)
		}
	}
	return p.operation(name.text, args), nil
}

func (p *parser) variable(name string) int {
	id, created := p.nodes.intern(kindVariable, name, nil)
	if created {
		p.vars[name] = true
		p.program.Sources = append(p.program.Sources, p.nodes.source(id))
	}
	return id
}

func (p *parser) operation(symbol string, children []int) int {
	id, created := p.nodes.intern(kindOperation, symbol, children)
	if created {
		p.program.Sources = append(p.program.Sources, p.nodes.source(id))
	}
	return id
}
