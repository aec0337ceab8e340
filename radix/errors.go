package radix

import "errors"

var (
	// ErrInvalidInput is returned by Build when the seed is empty.
	ErrInvalidInput = errors.New("radix: empty seed")

	// ErrEmptyWindow is returned by PopFront when the window holds no offsets.
	ErrEmptyWindow = errors.New("radix: pop from an empty window")

	// ErrCorruptIndex reports a broken tree invariant. It indicates a bug in
	// the index itself; mutations panic with it rather than return it.
	ErrCorruptIndex = errors.New("radix: corrupt index")
)
