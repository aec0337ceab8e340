package radix

import "bytes"

// Locate returns the offset of the first occurrence of sub in the window.
// The empty slice is found at offset 0 of any non-empty window.
func (x *Index) Locate(sub []byte) (offset int, ok bool) {
	if x.start == x.end {
		return 0, false
	}
	n := x.root
	for len(sub) > 0 {
		c := n.children[sub[0]]
		if c == nil {
			return 0, false
		}
		label := x.label(c)
		if len(sub) <= len(label) {
			if !bytes.HasPrefix(label, sub) {
				return 0, false
			}
			return x.relative(c.min()), true
		}
		if !bytes.Equal(label, sub[:len(label)]) {
			return 0, false
		}
		sub = sub[len(label):]
		n = c
	}
	return x.relative(n.min()), true
}

// LongestMatch finds the longest prefix of buf that occurs in the window. It
// returns the offset of its first occurrence and its length. A length of 0
// means that not even buf[0] is in the window.
func (x *Index) LongestMatch(buf []byte) (offset, length int) {
	var last *node
	n := x.root
	for length < len(buf) {
		c := n.children[buf[length]]
		if c == nil {
			break
		}
		last = c
		label := x.label(c)
		l := commonPrefix(label, buf[length:])
		length += l
		if l < len(label) {
			break
		}
		n = c
	}
	if last == nil {
		return 0, 0
	}
	return x.relative(last.min()), length
}

// commonPrefix returns the length of the longest common prefix of a and b.
func commonPrefix(a, b []byte) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return len(a)
}
