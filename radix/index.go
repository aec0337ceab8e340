// Package radix implements a substring index over a sliding window of bytes,
// for use by LZ77 match finders.
//
// The index is a path-compressed trie holding every substring of the window.
// Each window offset is homed in exactly one leaf whose path starts with the
// suffix beginning at that offset, and every node carries the set of offsets
// homed below it. The window slides one byte at a time with PushBack and
// PopFront, without rebuilding the tree.
//
// An Index is not safe for concurrent use. Callers that share one must
// serialize mutations, and may only run queries concurrently while no
// mutation is in flight.
package radix

import "github.com/nats-io/nats-server/v2/server/avl"

// An Index answers substring queries about the window of bytes it holds.
// Offsets returned by its methods are relative to the oldest byte still in
// the window.
type Index struct {
	root *node

	// The window covers absolute offsets [start, end).
	start, end uint64

	// Offsets in [start, active) own their leaves: the suffix at each of
	// them occurs nowhere else in the window. The suffixes at [active, end)
	// occur again earlier and end somewhere inside the tree. Only those
	// need walking when the window grows.
	active uint64

	// window[i] is the byte at absolute offset base+i. Bytes before start
	// are dropped lazily.
	window []byte
	base   uint64
}

const minTrim = 4096

// New returns an Index over an empty window.
func New() *Index {
	return &Index{root: newNode(0, nil)}
}

// Build returns an Index whose window holds seed.
func Build(seed []byte) (*Index, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidInput
	}
	x := New()
	x.window = append(x.window, seed...)
	x.end = uint64(len(seed))
	x.active = x.end
	x.build(seed)
	return x, nil
}

// Len returns the number of bytes in the window.
func (x *Index) Len() int {
	return int(x.end - x.start)
}

// Start returns the absolute offset of the oldest byte in the window.
// It starts at zero and grows by one with each PopFront.
func (x *Index) Start() int {
	return int(x.start)
}

// End returns the absolute offset one past the newest byte in the window.
func (x *Index) End() int {
	return int(x.end)
}

// Bytes returns the contents of the window. The slice is only valid until
// the next mutation.
func (x *Index) Bytes() []byte {
	return x.window[x.start-x.base:]
}

// label returns the edge leading to n. A leaf's path is the suffix of the
// window starting at its owner, so its edge is cut from the window.
func (x *Index) label(n *node) []byte {
	if n == x.root || !n.isLeaf() {
		return n.label
	}
	from := n.min() + uint64(n.parent.depth)
	return x.window[from-x.base : x.end-x.base]
}

// path returns the bytes spelled out from the root down to n.
func (x *Index) path(n *node) []byte {
	var edges [][]byte
	size := 0
	for ; n != x.root; n = n.parent {
		l := x.label(n)
		edges = append(edges, l)
		size += len(l)
	}
	p := make([]byte, 0, size)
	for i := len(edges) - 1; i >= 0; i-- {
		p = append(p, edges[i]...)
	}
	return p
}

func (x *Index) at(abs uint64) byte {
	return x.window[abs-x.base]
}

// relative converts an absolute offset to a window-relative one.
func (x *Index) relative(abs uint64) int {
	return int(abs - x.start)
}

// trim drops evicted bytes from the front of the window buffer once they
// make up most of it.
func (x *Index) trim() {
	dead := int(x.start - x.base)
	if dead < minTrim || dead < len(x.window)/2 {
		return
	}
	n := copy(x.window, x.window[dead:])
	x.window = x.window[:n]
	x.base = x.start
}

// propagate recomputes the support of every internal node below n as the
// union of its children's supports. Leaf supports are left alone.
func (x *Index) propagate(n *node) *avl.SequenceSet {
	if n.isLeaf() {
		return n.support
	}
	sets := make([]*avl.SequenceSet, 0, len(n.children))
	for _, c := range n.children {
		sets = append(sets, x.propagate(c))
	}
	n.support = avl.Union(sets...)
	return n.support
}
