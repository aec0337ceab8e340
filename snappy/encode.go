package snappy

import (
	"fmt"
	"hash/crc32"
	"io"

	"github.com/koda-lz/pack"
)

// An Encoder implements the pack.Encoder interface, writing the snappy
// framing format. Each block becomes one chunk, and chunks are decoded
// independently, so matches must not refer back across blocks.
type Encoder struct {
	wroteHeader bool
}

const (
	chunkCompressed   = 0x00
	chunkUncompressed = 0x01

	// maxBlock is the most uncompressed data one chunk may carry.
	maxBlock = 65536

	// maxOffset is the farthest back a two-byte offset can reach.
	maxOffset = 65535
)

var streamHeader = []byte("\xff\x06\x00\x00sNaPpY")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// maskedCRC returns the masked CRC-32C that every data chunk carries.
func maskedCRC(b []byte) uint32 {
	c := crc32.Update(0, castagnoli, b)
	return uint32(c>>15|c<<17) + 0xa282ead8
}

func (e *Encoder) Reset() {
	e.wroteHeader = false
}

func (e *Encoder) Encode(dst []byte, src []byte, matches []pack.Match, lastBlock bool) []byte {
	if len(src) > maxBlock {
		panic(fmt.Sprintf("snappy: %d-byte block exceeds %d", len(src), maxBlock))
	}
	if !e.wroteHeader {
		dst = append(dst, streamHeader...)
		e.wroteHeader = true
	}

	// Chunk header: type, 3-byte length, then the checksum of src.
	head := len(dst)
	sum := maskedCRC(src)
	dst = append(dst, chunkCompressed, 0, 0, 0,
		byte(sum), byte(sum>>8), byte(sum>>16), byte(sum>>24))
	body := len(dst)

	dst = appendUvarint(dst, uint64(len(src)))
	pos := 0
	for _, m := range matches {
		if m.Unmatched > 0 {
			dst = appendLiteral(dst, src[pos:pos+m.Unmatched])
			pos += m.Unmatched
		}
		if m.Length > 0 {
			dst = appendCopy(dst, m.Length, m.Distance)
			pos += m.Length
		}
	}
	if pos < len(src) {
		dst = appendLiteral(dst, src[pos:])
	}

	// Store the block raw unless the copies saved at least an eighth.
	if len(dst)-body > len(src)-len(src)/8-1 {
		dst = append(dst[:body], src...)
		dst[head] = chunkUncompressed
	}

	n := len(dst) - body + 4
	dst[head+1] = byte(n)
	dst[head+2] = byte(n >> 8)
	dst[head+3] = byte(n >> 16)
	return dst
}

const (
	tagLiteral = 0x00
	tagCopy1   = 0x01
	tagCopy2   = 0x02
)

func appendLiteral(dst, lit []byte) []byte {
	n := len(lit) - 1
	switch {
	case n < 60:
		dst = append(dst, byte(n)<<2|tagLiteral)
	case n < 1<<8:
		dst = append(dst, 60<<2|tagLiteral, byte(n))
	default:
		dst = append(dst, 61<<2|tagLiteral, byte(n), byte(n>>8))
	}
	return append(dst, lit...)
}

// copy2 appends a three-byte copy of 1 to 64 bytes.
func copy2(dst []byte, length, offset int) []byte {
	return append(dst, byte(length-1)<<2|tagCopy2, byte(offset), byte(offset>>8))
}

// appendCopy appends a copy of length bytes from offset back. Long copies
// are cut into 64-byte pieces, leaving a tail of 5 to 67 bytes. A tail over
// 64 is cut at 60 so the rest still fits a two-byte copy.
func appendCopy(dst []byte, length, offset int) []byte {
	for ; length >= 68; length -= 64 {
		dst = copy2(dst, 64, offset)
	}
	if length > 64 {
		dst = copy2(dst, 60, offset)
		length -= 60
	}
	// A two-byte copy holds lengths 4 to 11 and offsets under 2048.
	if length < 4 || length > 11 || offset >= 2048 {
		return copy2(dst, length, offset)
	}
	return append(dst, byte(offset>>8)<<5|byte(length-4)<<2|tagCopy1, byte(offset))
}

func appendUvarint(dst []byte, x uint64) []byte {
	for ; x >= 0x80; x >>= 7 {
		dst = append(dst, byte(x)|0x80)
	}
	return append(dst, byte(x))
}

// NewWriter returns a pack.Writer that writes snappy-framed data to dst,
// finding matches with a radix index over the last window bytes of each
// block. window is capped at 65535; 0 selects RadixMatchFinder's default.
func NewWriter(dst io.Writer, window int) *pack.Writer {
	if window > maxOffset {
		window = maxOffset
	}
	return &pack.Writer{
		Dest:        dst,
		MatchFinder: &pack.RadixMatchFinder{MaxDistance: window},
		Encoder:     &Encoder{},
		BlockSize:   maxBlock,
	}
}
