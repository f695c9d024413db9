// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil is a collection of testing helper methods.
package testutil

import (
	"bytes"
	"encoding/hex"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// ResizeData resizes the input. If n < 0, then the original input will be
// returned as is. If n <= len(input), then the input slice will be truncated.
// However, if n > len(input), then the input will be replicated to fill in
// the missing bytes, but each replicated string will be XORed by some byte
// mask to avoid favoring algorithms with large LZ77 windows.
//
// If n > len(input), then len(input) must be > 0.
func ResizeData(input []byte, n int) []byte {
	if n < 0 {
		return input
	}
	if len(input) >= n {
		return input[:n]
	}
	if len(input) == 0 {
		panic("unable to replicate an empty string")
	}

	var mask byte
	output := make([]byte, n)
	for i := range output {
		idx := i % len(input)
		output[i] = input[idx] ^ mask
		if idx == len(input)-1 {
			mask++
		}
	}
	return output
}

// MustDecodeHex must decode a hexadecimal string or else panics.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeBitGen must decode a BitGen formatted string or else panics.
func MustDecodeBitGen(s string) []byte {
	b, err := DecodeBitGen(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustCompressFlate compresses input as a raw DEFLATE stream at the given
// compression level or else panics.
func MustCompressFlate(input []byte, level int) []byte {
	var bb bytes.Buffer
	zw, err := flate.NewWriter(&bb, level)
	if err != nil {
		panic(err)
	}
	if _, err := zw.Write(input); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return bb.Bytes()
}

// MustCompressZlib compresses input as a zlib stream at the given
// compression level or else panics.
func MustCompressZlib(input []byte, level int) []byte {
	var bb bytes.Buffer
	zw, err := zlib.NewWriterLevel(&bb, level)
	if err != nil {
		panic(err)
	}
	if _, err := zw.Write(input); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return bb.Bytes()
}

// Pack lays out the rows of a width-wide image stored contiguously in pix
// into a buffer with the given stride. Padding bytes are set to pad.
func Pack(pix []byte, width, stride int, pad byte) []byte {
	height := len(pix) / width
	out := bytes.Repeat([]byte{pad}, height*stride)
	for y := 0; y < height; y++ {
		copy(out[y*stride:], pix[y*width:(y+1)*width])
	}
	return out
}
