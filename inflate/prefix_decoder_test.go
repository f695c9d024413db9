// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dsnet/rasterflate/internal/testutil"
)

func initDecoder(pd *prefixDecoder, lens []uint8) (err error) {
	defer errRecover(&err)
	pd.Init(lens)
	return nil
}

func decodeSym(pd *prefixDecoder, v uint32) (sym, nb uint, err error) {
	defer errRecover(&err)
	sym, nb = pd.Decode(v)
	return sym, nb, nil
}

// canonicalCodes assigns codes to lens as in RFC section 3.2.2.
func canonicalCodes(lens []uint8) []uint32 {
	var bitCnts, nextCodes [maxPrefixBits + 1]uint32
	for _, n := range lens {
		if n > 0 {
			bitCnts[n]++
		}
	}
	var code uint32
	for n := 1; n <= maxPrefixBits; n++ {
		code = (code + bitCnts[n-1]) << 1
		nextCodes[n] = code
	}
	codes := make([]uint32, len(lens))
	for sym, n := range lens {
		if n > 0 {
			codes[sym] = nextCodes[n]
			nextCodes[n]++
		}
	}
	return codes
}

// checkCanonical verifies that every code of lens decodes to its symbol,
// regardless of the bits that follow it.
func checkCanonical(t *testing.T, desc string, pd *prefixDecoder, lens []uint8) {
	t.Helper()
	codes := canonicalCodes(lens)
	for sym, n := range lens {
		if n == 0 {
			continue
		}
		v := reverseBits(codes[sym], uint(n))
		for _, junk := range []uint32{0, 0x7fff} {
			gotSym, gotBits := pd.Decode(v | junk<<n&0x7fff)
			if gotSym != uint(sym) || gotBits != uint(n) {
				t.Errorf("%s, symbol %d: Decode(%0*b) = (%d, %d), want (%d, %d)",
					desc, sym, int(n), codes[sym], gotSym, gotBits, sym, n)
			}
		}
	}
}

// randomLens returns the lengths of a random complete prefix code over a
// random subset of numSyms symbols.
func randomLens(r *testutil.Rand, numSyms, numCodes int) []uint8 {
	leaves := []uint8{1, 1}
	for len(leaves) < numCodes {
		i := r.Intn(len(leaves))
		if leaves[i] == maxPrefixBits {
			continue
		}
		leaves[i]++
		leaves = append(leaves, leaves[i])
	}

	lens := make([]uint8, numSyms)
	for _, n := range leaves {
		for {
			if sym := r.Intn(numSyms); lens[sym] == 0 {
				lens[sym] = n
				break
			}
		}
	}
	return lens
}

func repeatLens(n uint8, cnt int) []uint8 {
	lens := make([]uint8, cnt)
	for i := range lens {
		lens[i] = n
	}
	return lens
}

func TestPrefixDecoder(t *testing.T) {
	ladder := make([]uint8, 16)
	for i := range ladder[:15] {
		ladder[i] = uint8(i + 1)
	}
	ladder[15] = 15

	var vectors = []struct {
		desc    string
		lens    []uint8
		numSyms int
		maxSym  int
		err     error
	}{{
		desc:   "empty",
		lens:   make([]uint8, 19),
		maxSym: -1,
	}, {
		desc:    "two codes",
		lens:    []uint8{0, 0, 0, 1, 0, 0, 0, 1},
		numSyms: 2,
		maxSym:  7,
	}, {
		desc:    "single code of length 1",
		lens:    []uint8{0, 0, 0, 0, 0, 1},
		numSyms: 1,
		maxSym:  5,
	}, {
		desc: "single code of length 2",
		lens: []uint8{0, 2},
		err:  ErrCorrupt,
	}, {
		desc: "over-subscribed",
		lens: []uint8{1, 1, 1},
		err:  ErrCorrupt,
	}, {
		desc: "over-subscribed at longer lengths",
		lens: []uint8{1, 2, 3, 3, 3},
		err:  ErrCorrupt,
	}, {
		desc: "under-subscribed",
		lens: []uint8{1, 2},
		err:  ErrCorrupt,
	}, {
		desc: "length too long",
		lens: []uint8{1, 16},
		err:  ErrCorrupt,
	}, {
		desc:    "lengths 1 through 15",
		lens:    ladder,
		numSyms: 16,
		maxSym:  15,
	}, {
		desc:    "all codes of length 8",
		lens:    repeatLens(8, 256),
		numSyms: 256,
		maxSym:  255,
	}}

	for i, v := range vectors {
		var pd prefixDecoder
		err := initDecoder(&pd, v.lens)
		if err != v.err {
			t.Errorf("test %d, %s\nerror mismatch: got %v, want %v", i, v.desc, err, v.err)
			continue
		}
		if err != nil {
			continue
		}
		if pd.numSyms != v.numSyms || pd.maxSym != v.maxSym {
			t.Errorf("test %d, %s\nsymbols mismatch: got (%d, %d), want (%d, %d)",
				i, v.desc, pd.numSyms, pd.maxSym, v.numSyms, v.maxSym)
		}
		if pd.numSyms > 1 {
			checkCanonical(t, v.desc, &pd, v.lens)
		}
	}
}

func TestPrefixDecoderDegenerate(t *testing.T) {
	var pd prefixDecoder
	if err := initDecoder(&pd, []uint8{0, 0, 0, 0, 0, 1}); err != nil {
		t.Fatalf("unexpected Init error: %v", err)
	}

	type result struct{ Sym, Bits uint }
	var got []result
	for _, v := range []uint32{0, 1, 2, 3} {
		sym, nb := pd.Decode(v)
		got = append(got, result{sym, nb})
	}
	want := []result{{5, 1}, {6, 1}, {5, 1}, {6, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefixDecoderEmpty(t *testing.T) {
	var pd prefixDecoder
	if err := initDecoder(&pd, make([]uint8, 30)); err != nil {
		t.Fatalf("unexpected Init error: %v", err)
	}
	if _, _, err := decodeSym(&pd, 0); err != ErrCorrupt {
		t.Errorf("mismatching Decode error: got %v, want %v", err, ErrCorrupt)
	}

	var br bitReader
	br.Init([]byte{0xff})
	err := func() (err error) {
		defer errRecover(&err)
		br.ReadSymbol(&pd)
		return nil
	}()
	if err != ErrCorrupt {
		t.Errorf("mismatching ReadSymbol error: got %v, want %v", err, ErrCorrupt)
	}
}

func TestPrefixDecoderRandom(t *testing.T) {
	r := testutil.NewRand(0)
	var pd prefixDecoder
	for i := 0; i < 200; i++ {
		numSyms := 2 + r.Intn(287)
		numCodes := 2 + r.Intn(numSyms-1)
		lens := randomLens(r, numSyms, numCodes)
		if err := initDecoder(&pd, lens); err != nil {
			t.Fatalf("test %d, unexpected Init error: %v", i, err)
		}
		if pd.numSyms != numCodes {
			t.Errorf("test %d, numSyms mismatch: got %d, want %d", i, pd.numSyms, numCodes)
		}
		checkCanonical(t, "random", &pd, lens)
	}
}

func TestFixedTrees(t *testing.T) {
	var lit, dist prefixDecoder
	initFixedTrees(&lit, &dist)

	if lit.maxSym != 285 || dist.maxSym != 29 {
		t.Errorf("maxSym mismatch: got (%d, %d), want (285, 29)", lit.maxSym, dist.maxSym)
	}

	// Codes as listed in RFC section 3.2.6, most-significant bit first.
	var vectors = []struct {
		sym  uint
		code uint32
		nb   uint
	}{
		{0, 0x30, 8}, {143, 0xbf, 8},
		{144, 0x190, 9}, {255, 0x1ff, 9},
		{256, 0x00, 7}, {279, 0x17, 7},
		{280, 0xc0, 8}, {287, 0xc7, 8},
	}
	for _, v := range vectors {
		sym, nb := lit.Decode(reverseBits(v.code, v.nb))
		if sym != v.sym || nb != v.nb {
			t.Errorf("literal %d: got (%d, %d), want (%d, %d)", v.sym, sym, nb, v.sym, v.nb)
		}
	}
	for i := uint32(0); i < numFixedDistSyms; i++ {
		sym, nb := dist.Decode(reverseBits(i, 5))
		if sym != uint(i) || nb != 5 {
			t.Errorf("distance %d: got (%d, %d), want (%d, 5)", i, sym, nb, i)
		}
	}
}

func TestPrefixDecoderReuse(t *testing.T) {
	ladder := []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 15}
	var pd prefixDecoder
	if err := initDecoder(&pd, ladder); err != nil {
		t.Fatalf("unexpected Init error: %v", err)
	}
	chunks := cap(pd.chunks)

	short := []uint8{0, 2, 1, 2}
	if err := initDecoder(&pd, short); err != nil {
		t.Fatalf("unexpected Init error: %v", err)
	}
	if cap(pd.chunks) != chunks {
		t.Errorf("chunks not reused: got capacity %d, want %d", cap(pd.chunks), chunks)
	}
	if len(pd.links) != 0 {
		t.Errorf("stale links: got %d, want 0", len(pd.links))
	}
	checkCanonical(t, "reuse", &pd, short)
}
