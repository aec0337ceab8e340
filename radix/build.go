package radix

// build constructs the tree for seq one substring length at a time.
//
// At level L every start offset i with i+L <= len(seq) extends the node for
// seq[i:i+L-1] (its frontier node) by seq[i+L-1]. A node's children are all
// known once its level is done, so a node with exactly one child absorbs that
// child right away: its label grows in place and it becomes the frontier for
// the longer substring. Chains of single-child nodes never form.
func (x *Index) build(seq []byte) {
	n := len(seq)
	frontier := make([]*node, n)
	for i := range frontier {
		frontier[i] = x.root
	}

	// ends[i] is the node at which the suffix seq[i:] ends.
	ends := make([]*node, n)

	var grown []*node
	absorbed := make(map[*node]*node)

	for level := 1; level <= n; level++ {
		grown = grown[:0]
		for i := 0; i+level <= n; i++ {
			p := frontier[i]
			c := seq[i+level-1]
			child := p.children[c]
			if child == nil {
				if p.isLeaf() {
					grown = append(grown, p)
				}
				child = newNode(c, []byte{c})
				p.addChild(child)
			}
			frontier[i] = child
		}

		for k := range absorbed {
			delete(absorbed, k)
		}
		for _, p := range grown {
			if p == x.root || len(p.children) != 1 {
				continue
			}
			only := p.onlyChild()
			p.label = append(p.label, only.label...)
			p.children = nil
			only.parent = nil
			absorbed[only] = p
		}

		for i := 0; i+level <= n; i++ {
			if p, ok := absorbed[frontier[i]]; ok {
				frontier[i] = p
			}
			if i+level == n {
				ends[i] = frontier[i]
			}
		}
	}

	// Every leaf is the end of exactly one suffix, its owner. A suffix that
	// ends above a leaf is homed in the leaf reached through the smallest
	// keys; the first of those marks where the repeated suffixes begin.
	for i, e := range ends {
		for !e.isLeaf() {
			e = e.firstChild()
		}
		e.support.Insert(uint64(i))
		if x.active == x.end && e.min() != uint64(i) {
			x.active = uint64(i)
		}
	}
	x.propagate(x.root)
	x.finish(x.root)
	printf("radix: built %d-byte window", n)
}

// finish records the depth of every internal node below n and drops the
// stored labels of leaves, whose edges are read from the window from now on.
func (x *Index) finish(n *node) {
	for _, c := range n.children {
		if c.isLeaf() {
			c.label = nil
			continue
		}
		c.depth = n.depth + len(c.label)
		x.finish(c)
	}
}
