package radix

import (
	"fmt"

	"github.com/nats-io/nats-server/v2/server/avl"
)

// A node is an edge of the tree together with the subtree below it.
type node struct {
	// key is the first byte of the edge from parent to this node.
	key byte

	// label is the edge of an internal node. A leaf's edge is open ended:
	// it always runs to the end of the window, so it is read from the
	// window instead (see Index.label).
	label []byte

	// depth is the length of the path from the root through label.
	// Leaves do not keep it.
	depth int

	// children are keyed by the first byte of their labels.
	children map[byte]*node

	parent *node

	// support holds the absolute window offsets homed in this subtree.
	support *avl.SequenceSet
}

func newNode(key byte, label []byte) *node {
	return &node{
		key:     key,
		label:   label,
		support: new(avl.SequenceSet),
	}
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

func (n *node) addChild(c *node) {
	if n.children == nil {
		n.children = make(map[byte]*node)
	}
	n.children[c.key] = c
	c.parent = n
}

// min returns the smallest offset in n's support. For a leaf this is its
// owner, the offset whose suffix spells the leaf's whole path.
func (n *node) min() uint64 {
	if n.support.IsEmpty() {
		panic(fmt.Errorf("%w: node %q has empty support", ErrCorruptIndex, []byte{n.key}))
	}
	lo, _ := n.support.MinMax()
	return lo
}

// homeChild returns the child whose subtree holds offset k, or nil.
func (n *node) homeChild(k uint64) *node {
	for _, c := range n.children {
		if c.support.Exists(k) {
			return c
		}
	}
	return nil
}

// firstChild returns the child with the smallest key, or nil for a leaf.
func (n *node) firstChild() *node {
	var first *node
	for _, c := range n.children {
		if first == nil || c.key < first.key {
			first = c
		}
	}
	return first
}

// onlyChild returns the single child of n.
func (n *node) onlyChild() *node {
	for _, c := range n.children {
		return c
	}
	return nil
}
