// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "image"

// Decoder decodes DEFLATE streams into rasters.
//
// A Decoder may be reused for any number of streams. The fixed prefix codes of
// RFC section 3.2.6 are built the first time a fixed block is seen and are
// kept for the lifetime of the Decoder. A Decoder must not be used by
// multiple goroutines at the same time.
type Decoder struct {
	InputOffset  int64 // Number of input bytes consumed by the last Decode
	OutputOffset int64 // Number of pixels written by the last Decode
	Blocks       int   // Number of blocks fully decoded by the last Decode

	rd   bitReader // Input source
	dst  Raster    // Output destination
	x, y int       // Write cursor, persisted across blocks

	fixedInit   bool
	fixedBuilds int
	fixedLit    prefixDecoder // Fixed literal and length symbol prefix decoder
	fixedDist   prefixDecoder // Fixed backward distance symbol prefix decoder

	litTree  prefixDecoder // Literal and length symbol prefix decoder
	distTree prefixDecoder // Backward distance symbol prefix decoder
	clenTree prefixDecoder // Code-lengths prefix decoder
}

// NewDecoder returns a ready to use Decoder.
func NewDecoder() *Decoder {
	return new(Decoder)
}

// Reset discards the cached fixed prefix codes so that they are rebuilt by
// the next fixed block. The backing tables are kept for reuse.
func (d *Decoder) Reset() {
	d.fixedInit = false
	d.x, d.y = 0, 0
}

// Position reports the write cursor as left by the last Decode.
// After a failed Decode, this is where decoding stopped.
func (d *Decoder) Position() (x, y int) {
	return d.x, d.y
}

// FixedBuilds reports how many times the fixed prefix codes were built.
func (d *Decoder) FixedBuilds() int {
	return d.fixedBuilds
}

// Decode decompresses src into dst, which it fills in row-major order
// starting at the top-left corner. The stream may be raw DEFLATE or carry a
// zlib header, in which case the 4-byte trailer that follows the final block
// is skipped without being verified.
//
// It returns the number of bytes of src that make up the stream. Any error
// is ErrRaster for an invalid dst or ErrCorrupt for a malformed or truncated
// stream, including one that would write beyond the end of dst.
func (d *Decoder) Decode(src []byte, dst Raster) (n int, err error) {
	if !dst.valid() {
		return 0, ErrRaster
	}
	d.dst = dst
	d.x, d.y = 0, 0
	d.Blocks = 0
	d.rd.Init(src)
	defer func() {
		d.OutputOffset = int64(d.y*d.dst.Width + d.x)
		d.InputOffset = d.rd.BitsRead() / 8
		if d.InputOffset > int64(len(src)) {
			d.InputOffset = int64(len(src))
		}
	}()
	defer errRecover(&err)

	wrapped := d.readZlibHeader()
	for last := false; !last; {
		last = d.readBlockHeader()
		d.Blocks++
		corruptIf(d.rd.BitsLeft() < 0)
	}

	d.rd.ReadPads()
	if wrapped {
		corruptIf(d.rd.BitsLeft() < 8*zlibTrailerSize)
		d.rd.SkipBits(8 * zlibTrailerSize)
	}
	return int(d.rd.BitsRead() / 8), nil
}

// Decode decompresses src into dst using a new Decoder.
func Decode(src []byte, dst Raster) (int, error) {
	return NewDecoder().Decode(src, dst)
}

// DecodeGray decompresses src into the pixels of img.
func DecodeGray(src []byte, img *image.Gray) (int, error) {
	if img.Bounds().Empty() {
		return 0, ErrRaster
	}
	return NewDecoder().Decode(src, RasterFromGray(img))
}

// readZlibHeader skips the 2-byte header of RFC 1950 section 2.2 if present.
// Both the compression method and the header check must match, so raw
// DEFLATE data is left untouched.
func (d *Decoder) readZlibHeader() bool {
	if d.rd.BitsLeft() < 16 {
		return false
	}
	hdr := d.rd.PeekBits(16)
	cm, cinfo := hdr&0x0f, hdr>>4&0x0f
	if cm != 8 || cinfo > 7 || (hdr<<8&0xff00|hdr>>8)%31 != 0 {
		return false
	}
	d.rd.SkipBits(16)
	return true
}

// readBlockHeader reads the block header according to RFC section 3.2.3 and
// decodes the block that follows. It reports whether this was the last block.
func (d *Decoder) readBlockHeader() (last bool) {
	last = d.rd.ReadBit()
	switch d.rd.ReadBits(2) {
	case 0:
		// Raw block (RFC section 3.2.4).
		d.readRawData()
	case 1:
		// Fixed prefix block (RFC section 3.2.6).
		if !d.fixedInit {
			initFixedTrees(&d.fixedLit, &d.fixedDist)
			d.fixedInit = true
			d.fixedBuilds++
		}
		d.readBlock(&d.fixedLit, &d.fixedDist)
	case 2:
		// Dynamic prefix block (RFC section 3.2.7).
		d.readPrefixCodes()
		d.readBlock(&d.litTree, &d.distTree)
	default:
		// Reserved block (RFC section 3.2.3).
		panic(ErrCorrupt)
	}
	return last
}

// readRawData reads raw data according to RFC section 3.2.4.
func (d *Decoder) readRawData() {
	d.rd.ReadPads()
	n := uint16(d.rd.ReadBits(16))
	nn := uint16(d.rd.ReadBits(16))
	corruptIf(n^nn != 0xffff)

	for cnt := int(n); cnt > 0; {
		corruptIf(d.y >= d.dst.Height)
		buf := d.dst.Row(d.y)[d.x:]
		if len(buf) > cnt {
			buf = buf[:cnt]
		}
		m := d.rd.ReadAligned(buf)
		if d.x += m; d.x == d.dst.Width {
			d.x, d.y = 0, d.y+1
		}
		cnt -= m
		corruptIf(m < len(buf))
	}
}

// readBlock reads literals and (length, distance) pairs according to
// RFC section 3.2.5 until the end-of-block symbol.
//
// A back-reference is copied as a series of moves, each bounded by the end of
// the destination row, the end of the source row, and the distance between
// the two cursors. The last bound ensures that no chunk reads bytes that the
// same chunk writes, so overlapping copies repeat earlier output as RFC
// section 3.2.3 requires.
func (d *Decoder) readBlock(lit, dist *prefixDecoder) {
	ras := d.dst
	x, y := d.x, d.y
	defer func() { d.x, d.y = x, y }()

	for {
		corruptIf(d.rd.BitsLeft() < 0)
		litSym := d.rd.ReadSymbol(lit)
		corruptIf(int(litSym) > lit.maxSym)
		switch {
		case litSym < endBlockSym:
			corruptIf(y >= ras.Height)
			ras.Pix[ras.Offset(x, y)] = byte(litSym)
			if x++; x == ras.Width {
				x, y = 0, y+1
			}
			continue
		case litSym == endBlockSym:
			return
		}

		// Decode the copy length.
		corruptIf(litSym-257 >= uint(len(lenLUT)) || dist.maxSym < 0)
		cnt := int(d.rd.ReadOffset(litSym-257, lenLUT[:]))

		// Decode the copy distance.
		distSym := d.rd.ReadSymbol(dist)
		corruptIf(int(distSym) > dist.maxSym || distSym >= maxNumDistSyms)
		pos := y*ras.Width + x
		off := pos - int(d.rd.ReadOffset(distSym, distLUT[:]))
		corruptIf(off < 0 || cnt > ras.Size()-pos)

		// Perform a backwards copy according to RFC section 3.2.3.
		sx, sy := off%ras.Width, off/ras.Width
		for cnt > 0 {
			n := ras.Width - x
			if m := ras.Width - sx; n > m {
				n = m
			}
			if n > cnt {
				n = cnt
			}
			gap := sx - x
			if gap < 0 {
				gap = -gap
			}
			if m := gap + (y-sy)*ras.Width; n > m {
				n = m
			}

			i, j := ras.Offset(x, y), ras.Offset(sx, sy)
			copy(ras.Pix[i:i+n], ras.Pix[j:j+n])
			cnt -= n

			if x += n; x == ras.Width {
				x, y = 0, y+1
			}
			if sx += n; sx == ras.Width {
				sx, sy = 0, sy+1
			}
		}
	}
}

// readPrefixCodes reads the literal and distance prefix codes according to
// RFC section 3.2.7.
func (d *Decoder) readPrefixCodes() {
	br := &d.rd
	numLitSyms := br.ReadBits(5) + 257
	numDistSyms := br.ReadBits(5) + 1
	numCLenSyms := br.ReadBits(4) + 4
	corruptIf(numLitSyms > maxNumLitSyms || numDistSyms > maxNumDistSyms)

	// Read the code-lengths prefix table.
	var clens [maxNumCLenSyms]uint8
	for _, sym := range clenLens[:numCLenSyms] {
		clens[sym] = uint8(br.ReadBits(3))
	}
	d.clenTree.Init(clens[:])
	corruptIf(d.clenTree.maxSym < 0)

	// Use code-lengths table to decode HLIT and HDIST prefix tables.
	var lens [maxNumLitSyms + maxNumDistSyms]uint8
	for sym, maxSyms := uint(0), numLitSyms+numDistSyms; sym < maxSyms; {
		clen := br.ReadSymbol(&d.clenTree)
		corruptIf(int(clen) > d.clenTree.maxSym)

		repCnt := uint(1)
		switch clen {
		case 16:
			corruptIf(sym == 0)
			clen = uint(lens[sym-1])
			repCnt = 3 + br.ReadBits(2)
		case 17:
			clen = 0
			repCnt = 3 + br.ReadBits(3)
		case 18:
			clen = 0
			repCnt = 11 + br.ReadBits(7)
		}
		corruptIf(repCnt > maxSyms-sym)

		for symEnd := sym + repCnt; sym < symEnd; sym++ {
			lens[sym] = uint8(clen)
		}
	}

	// Every block must be terminated by an end-of-block symbol.
	corruptIf(lens[endBlockSym] == 0)

	d.litTree.Init(lens[:numLitSyms])
	d.distTree.Init(lens[numLitSyms : numLitSyms+numDistSyms])
}
