package pack

import (
	"errors"
	"io"
)

// ErrClosed is returned by Write after the Writer has been closed.
var ErrClosed = errors.New("pack: write to closed Writer")

// A Writer uses MatchFinder and Encoder to write compressed data to Dest.
type Writer struct {
	Dest        io.Writer
	MatchFinder MatchFinder
	Encoder     Encoder

	// BlockSize is the number of bytes to compress at a time.
	// The default is 64 KiB.
	BlockSize int

	err     error
	inBuf   []byte
	outBuf  []byte
	matches []Match
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.BlockSize <= 0 {
		w.BlockSize = 1 << 16
	}

	for {
		var overflow []byte
		if len(w.inBuf)+len(p) > w.BlockSize {
			overflow = p[w.BlockSize-len(w.inBuf):]
			p = p[:w.BlockSize-len(w.inBuf)]
		}
		w.inBuf = append(w.inBuf, p...)
		n += len(p)
		if overflow == nil {
			return n, nil
		}

		if err := w.writeBlock(false); err != nil {
			return n, err
		}
		p = overflow
	}
}

func (w *Writer) writeBlock(lastBlock bool) error {
	w.outBuf = w.outBuf[:0]
	w.matches = w.MatchFinder.FindMatches(w.matches[:0], w.inBuf)
	w.outBuf = w.Encoder.Encode(w.outBuf, w.inBuf, w.matches, lastBlock)
	_, w.err = w.Dest.Write(w.outBuf)
	w.inBuf = w.inBuf[:0]
	return w.err
}

// Close flushes the last block. Further writes fail with ErrClosed.
func (w *Writer) Close() error {
	if w.err != nil {
		if w.err == ErrClosed {
			return nil
		}
		return w.err
	}
	if err := w.writeBlock(true); err != nil {
		return err
	}
	w.err = ErrClosed
	return nil
}

// Reset discards the Writer's state and makes it equivalent to the result
// of its original state, but writing to newDest.
func (w *Writer) Reset(newDest io.Writer) {
	w.Dest = newDest
	w.err = nil
	w.inBuf = w.inBuf[:0]
	w.outBuf = w.outBuf[:0]
	w.matches = w.matches[:0]
	w.MatchFinder.Reset()
	w.Encoder.Reset()
}
