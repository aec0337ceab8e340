package radix

import "fmt"

// PushBack appends c to the window.
//
// Every suffix of the window grows by c, and c itself becomes a new suffix.
// A suffix that owns its leaf grows with the window for free, since leaf
// edges run to the end of the window. Only the repeated suffixes, which end
// inside the tree, are walked: each either already continues with c or
// branches off where it ends. The cost of a push is therefore proportional
// to the length of the longest repeated suffix times the depth it is
// found at. That is small for text, but grows with the length of a run of
// one byte.
func (x *Index) PushBack(c byte) {
	old := x.end
	x.window = append(x.window, c)
	x.end++
	x.root.support.Insert(old)

	active := x.end
	for k := x.active; k <= old; k++ {
		if !x.extend(k, old, c) && active == x.end {
			active = k
		}
	}
	x.active = active
}

// extend makes room for the suffix at k, which used to end at oldEnd inside
// the tree, to continue with c. It reports whether k now owns a leaf.
func (x *Index) extend(k, oldEnd uint64, c byte) bool {
	e, pos := x.point(k, oldEnd)
	label := x.label(e)
	switch {
	case pos < len(label):
		if label[pos] == c {
			return false
		}
		x.split(e, pos, c, k)
		return true
	case e != x.root && e.isLeaf():
		panic(fmt.Errorf("%w: repeated suffix at %d ends at the bottom of a leaf", ErrCorruptIndex, k))
	}

	if child := e.children[c]; child != nil {
		x.rehome(e, child, k)
		return false
	}
	x.unhome(e, k)
	leaf := newNode(c, nil)
	leaf.support.Insert(k)
	e.addChild(leaf)
	return true
}

// point finds where the bytes at absolute offsets [k, end) end in the tree:
// pos bytes into the edge leading to n. The bytes must be present, so only
// the first byte of each edge is looked at.
func (x *Index) point(k, end uint64) (n *node, pos int) {
	n = x.root
	for i := k; i < end; {
		child := n.children[x.at(i)]
		if child == nil {
			panic(fmt.Errorf("%w: suffix at %d is missing from the tree", ErrCorruptIndex, k))
		}
		size := uint64(len(x.label(child)))
		if rest := end - i; rest < size {
			return child, int(rest)
		}
		i += size
		n = child
	}
	return n, len(x.label(n))
}

// split breaks the edge leading to e before pos. The new branch node keeps
// the first pos bytes and gets e and a new leaf c (owned by k) as its
// children.
func (x *Index) split(e *node, pos int, c byte, k uint64) {
	label := x.label(e)
	p := e.parent
	branch := newNode(e.key, append([]byte(nil), label[:pos]...))
	branch.depth = p.depth + pos
	branch.support = e.support.Clone()
	e.key = label[pos]
	if !e.isLeaf() {
		e.label = append([]byte(nil), label[pos:]...)
	}

	p.addChild(branch)
	branch.addChild(e)
	x.unhome(branch, k)

	leaf := newNode(c, nil)
	leaf.support.Insert(k)
	branch.addChild(leaf)
	printf("radix: split %q for offset %d", branch.label, k)
}

// unhome removes k from every support strictly below n.
func (x *Index) unhome(n *node, k uint64) {
	for c := n.homeChild(k); c != nil; c = c.homeChild(k) {
		c.support.Delete(k)
	}
}

// rehome moves k from wherever it lives below n into the subtree of child.
func (x *Index) rehome(n, child *node, k uint64) {
	if child.support.Exists(k) {
		return
	}
	x.unhome(n, k)
	descend(child, k)
}

// descend adds ks to n and to the supports on the way down to a leaf. The
// offsets must be repeated suffixes, so the leaf keeps its owner.
func descend(n *node, ks ...uint64) {
	for ; n != nil; n = n.firstChild() {
		for _, k := range ks {
			n.support.Insert(k)
		}
	}
}

// PopFront evicts the oldest byte from the window.
func (x *Index) PopFront() error {
	if x.start == x.end {
		return ErrEmptyWindow
	}
	k := x.start
	x.root.support.Delete(k)
	leaf := x.root
	for c := leaf.homeChild(k); c != nil; c = c.homeChild(k) {
		c.support.Delete(k)
		leaf = c
	}
	if leaf == x.root || !leaf.isLeaf() {
		panic(fmt.Errorf("%w: offset %d has no leaf", ErrCorruptIndex, k))
	}

	x.start++
	x.retire(leaf)
	x.trim()
	return nil
}

// retire fixes up the leaf that the evicted offset owned. Its remaining
// offsets are all shorter suffixes of the same path.
func (x *Index) retire(leaf *node) {
	if leaf.support.IsEmpty() {
		x.prune(leaf)
		return
	}

	// The longest remaining suffix occurred only at the evicted offset
	// and here. If it still reaches into the leaf's edge it takes the leaf
	// over, which cuts the edge back to where that suffix ends.
	owner := leaf.min()
	if x.end-owner > uint64(leaf.parent.depth) {
		x.active = owner + 1
		return
	}

	// None of the remaining suffixes reach this leaf's edge. They all end
	// at or above its parent, so any leaf under the parent can hold them.
	var orphans []uint64
	leaf.support.Range(func(k uint64) bool {
		orphans = append(orphans, k)
		return true
	})
	p := leaf.parent
	n := x.prune(leaf)
	if n == p {
		n = p.firstChild()
	}
	if n == nil {
		panic(fmt.Errorf("%w: orphaned offsets %v", ErrCorruptIndex, orphans))
	}
	descend(n, orphans...)
}

// prune removes n from its parent. A parent other than the root that is left
// with a single child is merged into it. prune returns the node standing
// where the parent was.
func (x *Index) prune(n *node) *node {
	p := n.parent
	delete(p.children, n.key)
	n.parent = nil
	printf("radix: pruned %q", []byte{n.key})
	if p == x.root || len(p.children) != 1 {
		return p
	}
	return x.merge(p)
}

// merge replaces p, which has exactly one child, with that child. The
// child's path is unchanged, so only an internal child needs its stored
// label extended.
func (x *Index) merge(p *node) *node {
	only := p.onlyChild()
	if !only.isLeaf() {
		label := make([]byte, 0, len(p.label)+len(only.label))
		label = append(label, p.label...)
		only.label = append(label, only.label...)
	}
	only.key = p.key
	p.parent.addChild(only)
	p.children = nil
	p.parent = nil
	printf("radix: merged into %q", []byte{only.key})
	return only
}
