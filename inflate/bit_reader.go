// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

// The bitReader decodes bits in LSB order from an in-memory buffer.
//
// Reading past the end of the buffer does not fail immediately. Instead, the
// missing bytes read as zero and BitsLeft turns negative, which the block loop
// checks once per symbol and the stream driver checks once per block. This
// keeps the hot path free of bounds checks on every refill. To guarantee that
// a corrupted stream cannot spin on virtual zero bytes, the reader panics
// with ErrCorrupt once it has fed more than maxOverread bytes past the end.

const maxOverread = 8

type bitReader struct {
	buf     []byte
	off     int    // Offset of the next byte to feed into bufBits
	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits
}

func (br *bitReader) Init(buf []byte) {
	*br = bitReader{buf: buf}
}

// BitsRead reports the number of bits consumed so far.
func (br *bitReader) BitsRead() int64 {
	return 8*int64(br.off) - int64(br.numBits)
}

// BitsLeft reports the number of unread bits in the buffer.
// It is negative if the reader consumed bits beyond the end of the buffer.
func (br *bitReader) BitsLeft() int64 {
	return 8*int64(len(br.buf)) - br.BitsRead()
}

// FeedBits ensures that at least nb bits exist in the bit buffer.
// The bit buffer is filled with as many whole bytes as fit, padding with zero
// bytes past the end of the input.
func (br *bitReader) FeedBits(nb uint) {
	if br.numBits >= nb {
		return
	}
	for br.numBits <= 56 {
		var c byte
		if br.off < len(br.buf) {
			c = br.buf[br.off]
		} else if br.numBits >= nb {
			break // Avoid needless overreads
		} else if br.off >= len(br.buf)+maxOverread {
			panic(ErrCorrupt)
		}
		br.bufBits |= uint64(c) << br.numBits
		br.numBits += 8
		br.off++
	}
}

// PeekBits returns the next nb bits without consuming them.
func (br *bitReader) PeekBits(nb uint) uint {
	br.FeedBits(nb)
	return uint(br.bufBits & uint64(1<<nb-1))
}

// ReadBits reads nb bits in LSB order.
func (br *bitReader) ReadBits(nb uint) uint {
	br.FeedBits(nb)
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadBit reads a single bit.
func (br *bitReader) ReadBit() bool {
	return br.ReadBits(1) == 1
}

// SkipBits discards nb bits.
func (br *bitReader) SkipBits(nb uint) {
	for nb > 32 {
		br.ReadBits(32)
		nb -= 32
	}
	br.ReadBits(nb)
}

// ReadPads reads 0-7 bits from the bit buffer to achieve byte-alignment.
func (br *bitReader) ReadPads() uint {
	nb := br.numBits % 8
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadOffset reads an offset value using the provided rangeCodes indexed by
// the given symbol.
func (br *bitReader) ReadOffset(sym uint, rcs []rangeCode) uint {
	rc := rcs[sym]
	return uint(rc.base) + br.ReadBits(uint(rc.bits))
}

// ReadAligned copies up to len(buf) bytes from a byte-aligned position.
// It returns the number of bytes actually available in the input.
func (br *bitReader) ReadAligned(buf []byte) int {
	if br.numBits%8 != 0 {
		panic(Error("non-aligned bit buffer"))
	}

	// Return buffered bytes to the input.
	br.off -= int(br.numBits / 8)
	br.bufBits, br.numBits = 0, 0
	if br.off >= len(br.buf) {
		return 0
	}
	cnt := copy(buf, br.buf[br.off:])
	br.off += cnt
	return cnt
}

// ReadSymbol reads the next prefix symbol using the provided prefixDecoder.
func (br *bitReader) ReadSymbol(pd *prefixDecoder) uint {
	if len(pd.chunks) == 0 {
		panic(ErrCorrupt) // Decode with empty tree
	}

	br.FeedBits(uint(pd.maxBits))
	chunk := pd.chunks[uint32(br.bufBits)&pd.chunkMask]
	nb := uint(chunk & prefixCountMask)
	if nb > uint(pd.chunkBits) {
		linkIdx := chunk >> prefixCountBits
		chunk = pd.links[linkIdx][uint32(br.bufBits>>pd.chunkBits)&pd.linkMask]
		nb = uint(chunk & prefixCountMask)
	}
	br.bufBits >>= nb
	br.numBits -= nb
	return uint(chunk >> prefixCountBits)
}
