// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

const maxPrefixBits = 15

const (
	maxNumCLenSyms = 19
	maxNumLitSyms  = 286
	maxNumDistSyms = 30

	numFixedLitSyms  = 288
	numFixedDistSyms = 32
)

var (
	lenLUT  [maxNumLitSyms - 257]rangeCode // RFC section 3.2.5
	distLUT [maxNumDistSyms]rangeCode      // RFC section 3.2.5
)

type rangeCode struct {
	base uint32 // Starting base offset of the range
	bits uint32 // Bit-width of a subsequent integer to add to base offset
}

var (
	// RFC section 3.2.7.
	// Order in which the code-length alphabet lengths are transmitted.
	clenLens = [maxNumCLenSyms]uint{
		16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
	}
)

func init() {
	// These come from the RFC section 3.2.5.
	for i, base := 0, 3; i < len(lenLUT)-1; i++ {
		nb := uint(i/4 - 1)
		if i < 4 {
			nb = 0
		}
		lenLUT[i] = rangeCode{base: uint32(base), bits: uint32(nb)}
		base += 1 << nb
	}
	lenLUT[len(lenLUT)-1] = rangeCode{base: 258, bits: 0}

	// These come from the RFC section 3.2.5.
	for i, base := 0, 1; i < len(distLUT); i++ {
		nb := uint(i/2 - 1)
		if i < 2 {
			nb = 0
		}
		distLUT[i] = rangeCode{base: uint32(base), bits: uint32(nb)}
		base += 1 << nb
	}
}

// initFixedTrees builds the literal/length and distance decoders of
// RFC section 3.2.6.
//
// Symbols 286 and 287 of the literal/length alphabet and symbols 30 and 31 of
// the distance alphabet take part in the code but never appear in valid data,
// so maxSym is lowered to exclude them.
func initFixedTrees(lit, dist *prefixDecoder) {
	var litLens [numFixedLitSyms]uint8
	for i := range litLens {
		switch {
		case i < 144:
			litLens[i] = 8
		case i < 256:
			litLens[i] = 9
		case i < 280:
			litLens[i] = 7
		default:
			litLens[i] = 8
		}
	}
	lit.Init(litLens[:])
	lit.maxSym = maxNumLitSyms - 1

	var distLens [numFixedDistSyms]uint8
	for i := range distLens {
		distLens[i] = 5
	}
	dist.Init(distLens[:])
	dist.maxSym = maxNumDistSyms - 1
}
