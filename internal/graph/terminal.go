package graph

// terminals returns, in ascending order, the indices of nodes that are not
// an operand of any other node. One sweep in reverse index order marks every
// child; what stays unmarked is terminal.
func terminals(nodes []Node) []int {
	reached := make([]bool, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, child := range nodes[i].Children {
			reached[child] = true
		}
	}

	var out []int
	for i, r := range reached {
		if !r {
			out = append(out, i)
		}
	}
	return out
}
