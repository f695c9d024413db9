// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package inflate implements a DEFLATE decoder, described in RFC 1951, that
// writes its output directly into a two-dimensional raster instead of a flat
// byte stream. An optional zlib wrapper, described in RFC 1950, is detected
// and skipped.
//
// The decoder is meant for codecs that store image planes as DEFLATE data:
// the caller owns the raster, knows its geometry, and wants the decoded bytes
// laid out row by row with the proper stride.
package inflate

import (
	"runtime"

	"github.com/dsnet/golib/errs"

	"github.com/dsnet/rasterflate/internal"
)

const (
	endBlockSym = 256

	zlibTrailerSize = 4 // Adler-32 checksum, not verified
)

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "inflate: " + string(e) }

var (
	// ErrCorrupt reports a malformed or truncated stream.
	ErrCorrupt error = Error("stream is corrupted")

	// ErrRaster reports a destination raster with an invalid geometry.
	ErrRaster error = Error("invalid raster geometry")
)

// errRecover converts a panicked error back into a returned one.
// Runtime errors are programmer bugs and are propagated as is.
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// corruptIf panics with ErrCorrupt when cond holds.
func corruptIf(cond bool) {
	errs.Assert(!cond, ErrCorrupt)
}

// reverseBits reverses the lower n bits of v.
func reverseBits(v uint32, n uint) uint32 {
	return internal.ReverseUint32N(v, n)
}

// extendUint32s returns a slice with length n, reusing s if possible.
func extendUint32s(s []uint32, n int) []uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([]uint32, n-cap(s))...)
}

// extendSliceUint32s returns a slice with length n, reusing s if possible.
func extendSliceUint32s(s [][]uint32, n int) [][]uint32 {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([][]uint32, n-cap(s))...)
}
