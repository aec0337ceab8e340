package lz4

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/koda-lz/pack"
	"github.com/pierrec/xxHash/xxHash32"
)

const frameMagic = 0x184D2204

// A FrameEncoder implements the pack.Encoder interface,
// writing in the LZ4 frame format.
//
// Each block is encoded on its own, so the frame is marked as having
// independent blocks; the MatchFinder must not refer back across blocks.
type FrameEncoder struct {
	hasher      hash.Hash32
	block       BlockEncoder
	blockBuffer []byte
}

func (f *FrameEncoder) Reset() {
	f.hasher = nil
}

func (f *FrameEncoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if f.hasher == nil {
		f.hasher = xxHash32.New(0)
		dst = binary.LittleEndian.AppendUint32(dst, frameMagic)
		// Version 01, independent blocks, content checksum; 4-MB blocks.
		descriptor := []byte{0x64, 0x70}
		dst = append(dst, descriptor...)
		dst = append(dst, byte(xxHash32.Checksum(descriptor, 0)>>8))
	}

	if len(src) > 0 {
		f.blockBuffer = f.block.Encode(f.blockBuffer[:0], src, matches, lastBlock)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(f.blockBuffer)))
		dst = append(dst, f.blockBuffer...)
		f.hasher.Write(src)
	}

	if lastBlock {
		dst = append(dst, 0, 0, 0, 0)
		dst = binary.LittleEndian.AppendUint32(dst, f.hasher.Sum32())
	}

	return dst
}

// NewWriter returns a pack.Writer that writes an LZ4 frame to dst, finding
// matches with a radix index over the last window bytes of each block.
// window is capped at 65535; 0 selects RadixMatchFinder's default.
func NewWriter(dst io.Writer, window int) *pack.Writer {
	if window > maxDistance {
		window = maxDistance
	}
	return &pack.Writer{
		Dest:        dst,
		MatchFinder: &pack.RadixMatchFinder{MaxDistance: window},
		Encoder:     &FrameEncoder{},
		BlockSize:   1 << 16,
	}
}
