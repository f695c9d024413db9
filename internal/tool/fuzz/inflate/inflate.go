// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// +build gofuzz

package inflate

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/klauspost/compress/flate"

	rinflate "github.com/dsnet/rasterflate/inflate"
)

const (
	maxOutput = 1 << 20
	padByte   = 0xa5
)

func Fuzz(data []byte) int {
	if len(data) == 0 {
		return -1
	}
	width := 1 + int(data[0]%61)
	data = data[1:]

	want, ok := testDecoder(data, width)
	if ok {
		for i := flate.NoCompression; i <= flate.BestCompression; i++ {
			testEncoder(want, width, i)
		}
		return 1 // Favor valid inputs
	}
	return 0
}

// testDecoder checks that the raster decoder agrees with a stream decoder
// on the input. Both failing is acceptable, since it means that they both
// agree that the input is bad.
func testDecoder(data []byte, width int) ([]byte, bool) {
	payload, wrapped := data, hasZlibHeader(data)
	if wrapped {
		payload = data[2:]
	}
	fr := flate.NewReader(bytes.NewReader(payload))
	want, ferr := ioutil.ReadAll(io.LimitReader(fr, maxOutput+1))
	if len(want) > maxOutput {
		return nil, false
	}

	dst := newRaster(width, len(want))
	n, err := rinflate.Decode(data, dst)
	switch {
	case err == nil && ferr == nil:
		checkRaster(dst, want)
		if n > len(data) {
			panic("consumed beyond input")
		}
		return want, true
	case err == nil && ferr != nil:
		panic(ferr)
	case err != nil && ferr == nil:
		if wrapped {
			return nil, false // Possibly a truncated trailer
		}
		panic(err)
	default:
		return nil, false
	}
}

// testEncoder compresses data and checks that the raster decoder recovers it.
func testEncoder(data []byte, width, level int) {
	bb := new(bytes.Buffer)
	fw, err := flate.NewWriter(bb, level)
	if err != nil {
		panic(err)
	}
	if _, err := fw.Write(data); err != nil {
		panic(err)
	}
	if err := fw.Close(); err != nil {
		panic(err)
	}

	dst := newRaster(width, len(data))
	n, err := rinflate.Decode(bb.Bytes(), dst)
	if err != nil {
		panic(err)
	}
	if n != bb.Len() {
		panic("mismatching input offset")
	}
	checkRaster(dst, data)
}

// newRaster returns a raster with a stride wider than width that can hold
// at least n pixels.
func newRaster(width, n int) rinflate.Raster {
	height := (n + width - 1) / width
	if height == 0 {
		height = 1
	}
	stride := width + 3
	pix := bytes.Repeat([]byte{padByte}, height*stride)
	r, err := rinflate.NewRaster(pix, width, height, stride)
	if err != nil {
		panic(err)
	}
	return r
}

// checkRaster verifies that the raster starts with want and that no other
// byte was touched.
func checkRaster(r rinflate.Raster, want []byte) {
	for y := 0; y < r.Height; y++ {
		row := r.Pix[r.Offset(0, y) : r.Offset(0, y)+r.Stride]
		for x, c := range row {
			i := y*r.Width + x
			switch {
			case x < r.Width && i < len(want):
				if c != want[i] {
					panic("mismatching bytes")
				}
			case c != padByte:
				panic("write outside of output")
			}
		}
	}
}

func hasZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return data[0]&0x0f == 8 && data[0]>>4 <= 7 && (uint(data[0])<<8|uint(data[1]))%31 == 0
}
