package radix

import (
	"bytes"
	"fmt"
)

// Check verifies the structural invariants of the tree. It walks the whole
// tree and is meant for tests and debugging. Any violation is reported as an
// error wrapping ErrCorruptIndex.
func (x *Index) Check() error {
	if len(x.root.label) != 0 || x.root.parent != nil || x.root.depth != 0 {
		return fmt.Errorf("%w: malformed root", ErrCorruptIndex)
	}
	if x.active < x.start || x.active > x.end {
		return fmt.Errorf("%w: repeated suffixes start at %d, outside [%d, %d]", ErrCorruptIndex, x.active, x.start, x.end)
	}
	size := int(x.end - x.start)
	if x.root.support.Size() != size {
		return fmt.Errorf("%w: root holds %d offsets, window has %d", ErrCorruptIndex, x.root.support.Size(), size)
	}
	if size > 0 {
		if x.root.isLeaf() {
			return fmt.Errorf("%w: root has no children", ErrCorruptIndex)
		}
		lo, hi := x.root.support.MinMax()
		if lo != x.start || hi != x.end-1 {
			return fmt.Errorf("%w: root holds [%d, %d], window is [%d, %d)", ErrCorruptIndex, lo, hi, x.start, x.end)
		}
	}
	return x.check(x.root)
}

func (x *Index) check(n *node) error {
	if n != x.root && !n.isLeaf() {
		if len(n.children) < 2 {
			return fmt.Errorf("%w: node %q has a single child", ErrCorruptIndex, n.label)
		}
		if n.depth != n.parent.depth+len(n.label) {
			return fmt.Errorf("%w: node %q is %d deep, its parent %d", ErrCorruptIndex, n.label, n.depth, n.parent.depth)
		}
	}

	if n.isLeaf() {
		if n == x.root {
			return nil
		}
		return x.checkLeaf(n)
	}

	var seen [256]bool
	total := 0
	for key, c := range n.children {
		if c.parent != n {
			return fmt.Errorf("%w: child %q has a stale parent", ErrCorruptIndex, []byte{key})
		}
		if c.support.IsEmpty() {
			return fmt.Errorf("%w: child %q has empty support", ErrCorruptIndex, []byte{key})
		}
		if c.isLeaf() && x.end-c.min() <= uint64(n.depth) {
			return fmt.Errorf("%w: leaf %q has an empty edge", ErrCorruptIndex, []byte{key})
		}
		label := x.label(c)
		if len(label) == 0 {
			return fmt.Errorf("%w: empty label below the root", ErrCorruptIndex)
		}
		if seen[label[0]] {
			return fmt.Errorf("%w: siblings share first byte %q", ErrCorruptIndex, label[0])
		}
		seen[label[0]] = true
		if label[0] != key || c.key != key {
			return fmt.Errorf("%w: child %q filed under %q", ErrCorruptIndex, label, key)
		}

		var missing bool
		c.support.Range(func(k uint64) bool {
			missing = !n.support.Exists(k)
			return !missing
		})
		if missing {
			return fmt.Errorf("%w: node %q holds offsets its parent lacks", ErrCorruptIndex, label)
		}
		total += c.support.Size()
	}
	// Children are subsets of n, so equal sizes means n is their disjoint
	// union.
	if total != n.support.Size() {
		return fmt.Errorf("%w: node %q holds %d offsets, children hold %d", ErrCorruptIndex, n.label, n.support.Size(), total)
	}

	for _, c := range n.children {
		if err := x.check(c); err != nil {
			return err
		}
	}
	return nil
}

// checkLeaf verifies that the leaf's owner is a unique suffix, and that
// every other offset homed there is a repeated suffix running along the
// leaf's path.
func (x *Index) checkLeaf(n *node) error {
	path := x.path(n)
	owner := n.min()
	if owner >= x.active {
		return fmt.Errorf("%w: leaf %q is owned by repeated suffix %d", ErrCorruptIndex, path, owner)
	}
	var err error
	n.support.Range(func(k uint64) bool {
		if k < x.start || k >= x.end {
			err = fmt.Errorf("%w: offset %d outside the window", ErrCorruptIndex, k)
			return false
		}
		if k != owner && k < x.active {
			err = fmt.Errorf("%w: unique suffix %d shares leaf %q with %d", ErrCorruptIndex, k, path, owner)
			return false
		}
		if !bytes.HasPrefix(path, x.window[k-x.base:]) {
			err = fmt.Errorf("%w: suffix at %d does not follow leaf %q", ErrCorruptIndex, k, path)
			return false
		}
		return true
	})
	return err
}
