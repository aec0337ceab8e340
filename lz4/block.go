package lz4

import (
	"encoding/binary"

	"github.com/koda-lz/pack"
)

const (
	minMatch    = 4
	maxDistance = 65535

	// A block ends with at least lastLiterals literal bytes, and its last
	// match starts at least mfLimit bytes before the end.
	lastLiterals = 5
	mfLimit      = 12
)

// A BlockEncoder implements the pack.Encoder interface, writing in the LZ4
// block format. Matches that LZ4 cannot express (shorter than 4 bytes, or
// more than 65535 bytes back) are written as literals.
type BlockEncoder struct {
	folded []pack.Match
}

func (e *BlockEncoder) Reset() {}

// fold merges the matches LZ4 cannot express into the literals around them.
func fold(dst, matches []pack.Match) []pack.Match {
	pending := 0
	for _, m := range matches {
		if m.Length < minMatch || m.Distance > maxDistance {
			pending += m.Unmatched + m.Length
			continue
		}
		m.Unmatched += pending
		pending = 0
		dst = append(dst, m)
	}
	if pending > 0 {
		dst = append(dst, pack.Match{Unmatched: pending})
	}
	return dst
}

func (e *BlockEncoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	e.folded = fold(e.folded[:0], matches)
	matches = e.folded

	tail := 0
	for len(matches) > 0 {
		last := matches[len(matches)-1]
		if tail >= lastLiterals && tail+last.Length >= mfLimit {
			break
		}
		matches = matches[:len(matches)-1]
		tail += last.Unmatched + last.Length
	}

	pos := 0
	for _, m := range matches {
		dst = append(dst, nibble(m.Unmatched)<<4|nibble(m.Length-minMatch))
		dst = appendExtra(dst, m.Unmatched)
		dst = append(dst, src[pos:pos+m.Unmatched]...)
		dst = binary.LittleEndian.AppendUint16(dst, uint16(m.Distance))
		dst = appendExtra(dst, m.Length-minMatch)
		pos += m.Unmatched + m.Length
	}

	dst = append(dst, nibble(tail)<<4)
	dst = appendExtra(dst, tail)
	return append(dst, src[pos:]...)
}

// nibble returns the 4-bit token field for n. 15 means more follows.
func nibble(n int) byte {
	if n >= 15 {
		return 15
	}
	return byte(n)
}

// appendExtra appends what n's token field could not hold, as a run of 255s
// closed by a smaller byte.
func appendExtra(dst []byte, n int) []byte {
	if n < 15 {
		return dst
	}
	for n -= 15; n >= 255; n -= 255 {
		dst = append(dst, 255)
	}
	return append(dst, byte(n))
}
