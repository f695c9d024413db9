// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

const (
	prefixCountBits = 4
	prefixCountMask = (1 << prefixCountBits) - 1

	prefixMaxChunkBits = 10 // Codes longer than this go through a link table
)

// prefixDecoder is a two-level lookup table for a canonical prefix code.
//
// Each entry holds a symbol in the upper bits and a bit count in the lower
// prefixCountBits bits. In the chunks table, a count larger than chunkBits
// marks a link: the upper bits then index into links, which is addressed with
// the bits that follow the first chunkBits bits of the code.
type prefixDecoder struct {
	chunks    []uint32   // First-level lookup map
	links     [][]uint32 // Second-level lookup map
	chunkMask uint32     // Mask the width of the chunks table
	linkMask  uint32     // Mask the width of the link table
	chunkBits uint8      // Bit-width of the chunks table
	maxBits   uint8      // Length of the longest code
	numSyms   int        // Number of symbols with a code
	maxSym    int        // Largest symbol with a code, -1 if none
}

// Init builds a canonical prefix decoder where lens[sym] is the bit-length of
// the code for sym, or zero if sym is unused. The backing tables of any
// previous code are reused.
//
// The lengths must describe a complete prefix code, with one exception:
// a single code of length 1 is allowed, in which case the unused code word is
// mapped to the out-of-range symbol maxSym+1 so that callers can reject it.
// An all-zero lens produces an empty decoder that fails on any use.
func (pd *prefixDecoder) Init(lens []uint8) {
	var bitCnts [maxPrefixBits + 1]uint
	var maxBits uint8
	numSyms, maxSym := 0, -1
	for sym, n := range lens {
		if n == 0 {
			continue
		}
		corruptIf(n > maxPrefixBits)
		if maxBits < n {
			maxBits = n
		}
		bitCnts[n]++
		numSyms++
		maxSym = sym
	}

	// Check that the code space is neither over- nor under-subscribed while
	// computing the first code of each bit-length (RFC section 3.2.2).
	var nextCodes [maxPrefixBits + 1]uint32
	var code uint32
	avail := uint(2)
	for n := 1; n <= maxPrefixBits; n++ {
		corruptIf(bitCnts[n] > avail)
		avail = 2 * (avail - bitCnts[n])
		code = (code + uint32(bitCnts[n-1])) << 1
		nextCodes[n] = code
	}

	*pd = prefixDecoder{
		chunks:  pd.chunks[:0],
		links:   pd.links[:0],
		maxBits: maxBits,
		numSyms: numSyms,
		maxSym:  maxSym,
	}
	switch {
	case numSyms == 0:
		return // Empty tree (should panic if used later)
	case numSyms == 1:
		corruptIf(bitCnts[1] != 1)
		pd.chunkBits, pd.chunkMask = 1, 1
		pd.chunks = append(pd.chunks,
			uint32(maxSym)<<prefixCountBits|1,
			uint32(maxSym+1)<<prefixCountBits|1,
		)
		return
	default:
		corruptIf(avail > 0)
	}

	// Allocate chunks table.
	pd.chunkBits = maxBits
	if pd.chunkBits > prefixMaxChunkBits {
		pd.chunkBits = prefixMaxChunkBits
	}
	numChunks := 1 << pd.chunkBits
	pd.chunks = extendUint32s(pd.chunks, numChunks)
	pd.chunkMask = uint32(numChunks - 1)

	// Allocate links tables. Since the code is complete, every chunk prefix
	// not claimed by a short code leads to a link table.
	if pd.chunkBits < maxBits {
		numLinks := 1 << (maxBits - pd.chunkBits)
		pd.linkMask = uint32(numLinks - 1)

		baseCode := nextCodes[pd.chunkBits+1] >> 1
		pd.links = extendSliceUint32s(pd.links, numChunks-int(baseCode))
		for linkIdx := range pd.links {
			code := reverseBits(baseCode+uint32(linkIdx), uint(pd.chunkBits))
			pd.links[linkIdx] = extendUint32s(pd.links[linkIdx], numLinks)
			pd.chunks[code] = uint32(linkIdx)<<prefixCountBits | uint32(pd.chunkBits+1)
		}
	}

	// Assign codes in symbol order and fill out the tables.
	for sym, n := range lens {
		if n == 0 {
			continue
		}
		chunk := uint32(sym)<<prefixCountBits | uint32(n)
		val := reverseBits(nextCodes[n], uint(n))
		nextCodes[n]++

		if n <= pd.chunkBits {
			skip := 1 << n
			for i := int(val); i < len(pd.chunks); i += skip {
				pd.chunks[i] = chunk
			}
		} else {
			linkIdx := pd.chunks[val&pd.chunkMask] >> prefixCountBits
			links := pd.links[linkIdx]
			skip := 1 << (n - pd.chunkBits)
			for i := int(val >> pd.chunkBits); i < len(links); i += skip {
				links[i] = chunk
			}
		}
	}
}

// Decode returns the symbol and the code length for the given bits, where the
// first bit of the code is the least-significant bit of v.
func (pd *prefixDecoder) Decode(v uint32) (sym, nb uint) {
	if len(pd.chunks) == 0 {
		panic(ErrCorrupt)
	}
	chunk := pd.chunks[v&pd.chunkMask]
	if uint(chunk&prefixCountMask) > uint(pd.chunkBits) {
		chunk = pd.links[chunk>>prefixCountBits][(v>>pd.chunkBits)&pd.linkMask]
	}
	return uint(chunk >> prefixCountBits), uint(chunk & prefixCountMask)
}
