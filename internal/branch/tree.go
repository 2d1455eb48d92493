// Package branch reconstructs conditional structure from instruction order.
//
// A SenseFoodAhead at index i is followed by its "then" branch and then its
// "else" branch. Each branch is a single instruction unless it is itself a
// SenseFoodAhead, in which case it spans that conditional's whole subtree.
package branch

import "anttrail/internal/program"

const (
	thenChild = 0
	elseChild = 1
)

// Node is one position in the tree. A node whose Index is past the end of the
// sequence is empty and covers nothing.
type Node struct {
	Index    int
	Empty    bool
	Children []int
}

// Tree is an arena of nodes rooted at node 0.
type Tree struct {
	nodes []Node
}

func Build(seq program.Sequence, root int) Tree {
	t := Tree{nodes: make([]Node, 0, 8)}
	t.build(seq, root)
	return t
}

func (t *Tree) build(seq program.Sequence, index int) int {
	id := len(t.nodes)
	if index >= len(seq) {
		t.nodes = append(t.nodes, Node{Index: index, Empty: true})
		return id
	}
	t.nodes = append(t.nodes, Node{Index: index})
	if seq[index].Kind != program.SenseFoodAhead {
		return id
	}

	then := t.build(seq, index+1)
	otherwise := t.build(seq, t.end(then)+1)
	t.nodes[id].Children = []int{then, otherwise}
	return id
}

// end is the highest index reached by the subtree, following the last child
// chain. Empty subtrees report their own position.
func (t *Tree) end(id int) int {
	for {
		children := t.nodes[id].Children
		if len(children) == 0 {
			return t.nodes[id].Index
		}
		id = children[len(children)-1]
	}
}

func (t Tree) Len() int {
	return len(t.nodes)
}

func (t Tree) Node(id int) Node {
	return t.nodes[id]
}

func (t Tree) Root() Node {
	return t.nodes[0]
}

// IsConditional reports whether the root has then and else branches.
func (t Tree) IsConditional() bool {
	return len(t.nodes[0].Children) == 2
}

// Covered lists the sequence indices under the node in depth-first order.
func (t Tree) Covered(id int) []int {
	var out []int
	stack := []int{id}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if n.Empty {
			continue
		}
		out = append(out, n.Index)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// Then returns the indices of the branch taken when food is ahead.
func (t Tree) Then() []int {
	return t.child(thenChild)
}

// Else returns the indices of the branch taken when no food is ahead.
func (t Tree) Else() []int {
	return t.child(elseChild)
}

func (t Tree) child(which int) []int {
	root := t.nodes[0]
	if len(root.Children) != 2 {
		return nil
	}
	return t.Covered(root.Children[which])
}

// Resolve returns the indices to skip for the conditional at index: the else
// branch when food is ahead, the then branch otherwise.
func Resolve(seq program.Sequence, index int, foodAhead bool) []int {
	tree := Build(seq, index)
	if foodAhead {
		return tree.Else()
	}
	return tree.Then()
}
