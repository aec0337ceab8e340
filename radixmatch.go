package pack

import (
	"encoding/binary"
	"math/bits"
	"runtime"

	"github.com/koda-lz/pack/radix"
)

// RadixMatchFinder is an implementation of the MatchFinder interface that
// keeps a radix.Index over the last MaxDistance bytes of input. At each
// position the parser asks about, it looks up the longest prefix of the
// lookahead that occurs in that window.
type RadixMatchFinder struct {
	// MaxDistance is the size of the window to look back in.
	// The default is 1024.
	MaxDistance int

	// MaxLength is the limit on the length of matches.
	// The default is 258.
	MaxLength int

	ChainBlocks bool // Should it find matches in the previous block?

	// Parser chooses which matches to use. The default is a GreedyParser.
	// It must ask about positions in increasing order.
	Parser Parser

	// Dictionary is data that is treated as coming before the start of the
	// stream. Matches may refer back into it.
	Dictionary []byte

	index   *radix.Index
	history []byte

	// base is the stream offset of history[0]. Stream offsets are the
	// offsets used by index, with the dictionary starting at 0.
	base int
}

// minTrim is how much history can pile up ahead of the window before it is
// discarded.
const minTrim = 1 << 16

func (q *RadixMatchFinder) Reset() {
	q.index = nil
	q.history = q.history[:0]
	q.base = 0
}

func (q *RadixMatchFinder) init() {
	if q.MaxDistance == 0 {
		q.MaxDistance = 1024
	}
	if q.MaxLength == 0 {
		q.MaxLength = 258
	}
	if q.Parser == nil {
		q.Parser = &GreedyParser{}
	}
	if q.index != nil {
		return
	}

	dict := q.Dictionary
	if len(dict) > q.MaxDistance {
		dict = dict[len(dict)-q.MaxDistance:]
	}
	q.history = append(q.history[:0], dict...)
	q.base = 0
	if len(dict) == 0 {
		q.index = radix.New()
		return
	}
	x, err := radix.Build(dict)
	if err != nil {
		panic(err)
	}
	q.index = x
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *RadixMatchFinder) FindMatches(dst []Match, src []byte) []Match {
	if !q.ChainBlocks {
		q.Reset()
	}
	q.init()

	// Drop history that has slid out of the window.
	if delta := q.index.Start() - q.base; delta > minTrim {
		copy(q.history, q.history[delta:])
		q.history = q.history[:len(q.history)-delta]
		q.base += delta
	}

	nextEmit := len(q.history)
	q.history = append(q.history, src...)
	return q.Parser.Parse(dst, q, nextEmit, len(q.history))
}

// sync slides the window forward so that it ends just before pos.
func (q *RadixMatchFinder) sync(pos int) {
	for i := q.index.End() - q.base; i < pos; i++ {
		q.index.PushBack(q.history[i])
		for q.index.Len() > q.MaxDistance {
			if err := q.index.PopFront(); err != nil {
				panic(err)
			}
		}
	}
}

// Search looks for the longest match at pos. pos is an index into the
// history buffer, and must not be less than in the previous call.
func (q *RadixMatchFinder) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	if pos+q.base < q.index.End() {
		return dst
	}
	q.sync(pos)

	limit := max
	if pos+q.MaxLength < limit {
		limit = pos + q.MaxLength
	}
	if limit <= pos {
		return dst
	}
	off, n := q.index.LongestMatch(q.history[pos:limit])
	if n == 0 {
		return dst
	}
	match := q.index.Start() + off - q.base

	// The window ends at pos, so the match can only run past n by
	// overlapping the bytes being matched.
	end := extendMatch(q.history[:limit], match+n, pos+n)

	start := pos
	for start > min && match > 0 && end-start < q.MaxLength && q.history[start-1] == q.history[match-1] {
		start--
		match--
	}

	return append(dst, AbsoluteMatch{
		Start: start,
		End:   end,
		Match: match,
	})
}

// extendMatch returns the largest k such that k <= len(src) and that
// src[i:i+k-j] and src[j:k] have the same contents.
//
// It assumes that:
//
//	0 <= i && i < j && j <= len(src)
func extendMatch(src []byte, i, j int) int {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		for j+8 < len(src) {
			iBytes := binary.LittleEndian.Uint64(src[i:])
			jBytes := binary.LittleEndian.Uint64(src[j:])
			if iBytes != jBytes {
				// The lowest set bit of the XOR is in the first byte that
				// differs.
				return j + bits.TrailingZeros64(iBytes^jBytes)>>3
			}
			i, j = i+8, j+8
		}
	case "386":
		for j+4 < len(src) {
			iBytes := binary.LittleEndian.Uint32(src[i:])
			jBytes := binary.LittleEndian.Uint32(src[j:])
			if iBytes != jBytes {
				return j + bits.TrailingZeros32(iBytes^jBytes)>>3
			}
			i, j = i+4, j+4
		}
	}
	for ; j < len(src) && src[i] == src[j]; i, j = i+1, j+1 {
	}
	return j
}
