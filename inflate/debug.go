// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build debug
// +build debug

package inflate

import (
	"fmt"
	"math/bits"
	"strings"
)

func (rc rangeCode) String() string {
	if rc.bits == 0 {
		return fmt.Sprintf("{bits: 0, base: %d}", rc.base)
	}
	return fmt.Sprintf("{bits: %d, base: %d-%d}", rc.bits, rc.base, rc.base+1<<rc.bits-1)
}

// writeEntries renders one lookup table with its index in binary.
// Entries whose length exceeds direct are links into the second level.
func writeEntries(sb *strings.Builder, name string, tbl []uint32, idxBits int, direct uint32) {
	fmt.Fprintf(sb, "\t%s: {\n", name)
	for i, e := range tbl {
		kind := "sym"
		if e&prefixCountMask > direct {
			kind = "idx"
		}
		idx := ""
		if idxBits > 0 {
			idx = fmt.Sprintf("%0*b", idxBits, i)
		}
		fmt.Fprintf(sb, "\t\t%*s:  {%s: %3d, len: %2d},\n",
			idxBits, idx, kind, e>>prefixCountBits, e&prefixCountMask)
	}
	sb.WriteString("\t},\n")
}

func (pd prefixDecoder) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	if len(pd.chunks) > 0 {
		writeEntries(&sb, "chunks", pd.chunks, int(pd.chunkBits), uint32(pd.chunkBits))
		linkBits := bits.Len32(pd.linkMask)
		for j, links := range pd.links {
			writeEntries(&sb, fmt.Sprintf("links[%d]", j), links, linkBits, prefixCountMask)
		}
	}
	fmt.Fprintf(&sb, "\tchunkMask: %b,\n\tlinkMask: %b,\n", pd.chunkMask, pd.linkMask)
	fmt.Fprintf(&sb, "\tchunkBits: %d,\n\tmaxBits: %d,\n", pd.chunkBits, pd.maxBits)
	fmt.Fprintf(&sb, "\tnumSyms: %d,\n\tmaxSym: %d,\n}", pd.numSyms, pd.maxSym)
	return sb.String()
}

func (d *Decoder) String() string {
	return fmt.Sprintf("{pos: (%d, %d), raster: %dx%d/%d, bitsRead: %d, bitsLeft: %d, fixedInit: %v}",
		d.x, d.y, d.dst.Width, d.dst.Height, d.dst.Stride,
		d.rd.BitsRead(), d.rd.BitsLeft(), d.fixedInit)
}
