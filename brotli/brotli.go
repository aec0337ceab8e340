// Package brotli writes brotli streams using the match finders in package
// pack and the entropy coder from github.com/andybalholm/brotli.
package brotli

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/andybalholm/brotli/matchfinder"
	"github.com/koda-lz/pack"
)

// An Encoder implements the pack.Encoder interface, writing in Brotli format.
type Encoder struct {
	enc     brotli.Encoder
	matches []matchfinder.Match
}

func (e *Encoder) Reset() {
	e.enc.Reset()
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	e.matches = e.matches[:0]
	for _, m := range matches {
		e.matches = append(e.matches, matchfinder.Match(m))
	}
	return e.enc.Encode(dst, src, e.matches, lastBlock)
}

// MatchFinder lets a pack.MatchFinder drive a matchfinder.Writer.
type MatchFinder struct {
	pack.MatchFinder
	matches []pack.Match
}

func (m *MatchFinder) FindMatches(dst []matchfinder.Match, src []byte) []matchfinder.Match {
	m.matches = m.MatchFinder.FindMatches(m.matches[:0], src)
	for _, x := range m.matches {
		dst = append(dst, matchfinder.Match(x))
	}
	return dst
}

// NewWriter returns a pack.Writer that compresses to dst, finding matches
// with a radix index over the last window bytes of the stream. 0 selects
// RadixMatchFinder's default window.
func NewWriter(dst io.Writer, window int) *pack.Writer {
	return &pack.Writer{
		Dest: dst,
		MatchFinder: &pack.RadixMatchFinder{
			MaxDistance: window,
			ChainBlocks: true,
		},
		Encoder:   &Encoder{},
		BlockSize: 1 << 16,
	}
}
