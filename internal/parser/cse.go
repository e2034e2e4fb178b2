package parser

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/born-ml/gradgraph/internal/graph"
)

type nodeKind byte

const (
	kindVariable  nodeKind = 'v'
	kindOperation nodeKind = 'o'
)

// entry is an interned source node.
type entry struct {
	kind     nodeKind
	symbol   string
	children []int
	source   graph.Source
}

// interner deduplicates structurally identical subtrees. Nodes are keyed by
// an xxhash of (kind, symbol, child ids); a hash hit is only reused after a
// structural comparison.
type interner struct {
	entries []entry
	buckets map[uint64][]int
}

func newInterner() *interner {
	return &interner{buckets: make(map[uint64][]int)}
}

func structuralHash(kind nodeKind, symbol string, children []int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	_, _ = d.Write([]byte{byte(kind)})
	_, _ = d.WriteString(symbol)
	_, _ = d.Write([]byte{0})
	for _, c := range children {
		binary.LittleEndian.PutUint64(buf[:], uint64(c))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// intern returns the id of the node and whether it was created.
func (in *interner) intern(kind nodeKind, symbol string, children []int) (int, bool) {
	h := structuralHash(kind, symbol, children)
	for _, id := range in.buckets[h] {
		e := &in.entries[id]
		if e.kind == kind && e.symbol == symbol && slices.Equal(e.children, children) {
			return id, false
		}
	}

	id := len(in.entries)
	var src graph.Source
	if kind == kindVariable {
		src = &graph.Variable{Name: symbol}
	} else {
		operands := make([]graph.Source, len(children))
		for i, c := range children {
			operands[i] = in.entries[c].source
		}
		src = &graph.Operation{Symbol: symbol, Operands: operands}
	}
	in.entries = append(in.entries, entry{kind: kind, symbol: symbol, children: children, source: src})
	in.buckets[h] = append(in.buckets[h], id)
	return id, true
}

func (in *interner) source(id int) graph.Source {
	return in.entries[id].source
}
