// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dsnet/rasterflate/internal"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string into a DEFLATE bit-stream.
//
// BitGen scripts a bit-stream from a series of whitespace separated tokens so
// that test vectors can be written by hand and annotated. Any text following
// a '#' on a line is a comment.
//
// The first token must be "<<<", declaring that bits are packed starting
// with the least-significant bit of each byte, as DEFLATE requires.
//
// Tokens are:
//
//	<, >           Set the parsing mode for the tokens that follow to
//	               little-endian or big-endian.
//	[01]{1,64}     A bit-string. In little-endian mode the right-most bit is
//	               written first; in big-endian mode the left-most bit is.
//	               Big-endian suits prefix codes, which RFC 1951 transmits
//	               starting with the most-significant bit.
//	D<n>:<dec>     An n-bit decimal value, least-significant bit first in
//	H<n>:<hex>     little-endian mode. H is the hexadecimal equivalent.
//	X:<hex>        Literal bytes. The stream must be byte-aligned.
//
// A leading "<" or ">" on a bit-string or numeric token applies to that token
// only. A trailing "*<n>" repeats the token n times.
// The stream is padded with zero bits to the next byte boundary.
//
// Example:
//
//	<<<
//	< 0 00 0*5                 # Non-last, raw block, padding
//	< H16:0004 H16:fffb        # RawSize: 4
//	X:deadcafe                 # Raw data
//	< 1 01                     # Last, fixed block
//	> 0000000                  # EOB marker
func DecodeBitGen(str string) ([]byte, error) {
	toks := tokenize(str)
	if len(toks) == 0 || toks[0] != "<<<" {
		return nil, errors.New("testutil: missing little-endian packing mode")
	}

	var bb bitBuffer
	var bigEndian bool
	for _, t := range toks[1:] {
		// Check for local and global bit-parsing mode modifiers.
		be := bigEndian
		if t[0] == '<' || t[0] == '>' {
			be, t = t[0] == '>', t[1:]
			if len(t) == 0 {
				bigEndian = be
				continue
			}
		}

		// Check for quantifier decorators.
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			n, err := strconv.Atoi(t[i+1:])
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = t[:i], n
		}

		v, n, err := parseBits(t)
		switch {
		case err != nil:
			return nil, err
		case n >= 0:
			if be {
				v = internal.ReverseUint64N(v, uint(n))
			}
			for i := 0; i < rep; i++ {
				bb.WriteBits64(v, uint(n))
			}
		default:
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			if _, err := bb.Write(bytes.Repeat(b, rep)); err != nil {
				return nil, err
			}
		}
	}
	return bb.Bytes(), nil
}

// tokenize splits str into tokens, dropping comments.
func tokenize(str string) (toks []string) {
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		toks = append(toks, strings.Fields(s)...)
	}
	return toks
}

// parseBits parses a bit-string or numeric token into a value of n bits,
// where the first bit to write is the least-significant one.
// It returns n < 0 for a raw bytes token.
func parseBits(t string) (v uint64, n int, err error) {
	switch {
	case reBin.MatchString(t):
		for _, b := range t {
			v = v<<1 | uint64(b-'0')
		}
		return v, len(t), nil
	case reDec.MatchString(t) || reHex.MatchString(t):
		i := strings.IndexByte(t, ':')
		base := 10
		if t[0] == 'H' {
			base = 16
		}
		n, err1 := strconv.Atoi(t[1:i])
		v, err2 := strconv.ParseUint(t[i+1:], base, 64)
		if err1 != nil || err2 != nil || n > 64 {
			return 0, 0, errors.New("testutil: invalid numeric token: " + t)
		}
		if n < 64 && v&(1<<uint(n)-1) != v {
			return 0, 0, errors.New("testutil: integer overflow on token: " + t)
		}
		return v, n, nil
	case reRaw.MatchString(t):
		return 0, -1, nil
	default:
		return 0, 0, errors.New("testutil: invalid token: " + t)
	}
}

// bitBuffer is a minimal LSB-first bit writer.
type bitBuffer struct {
	b []byte
	m byte
}

func (b *bitBuffer) Write(buf []byte) (int, error) {
	if b.m != 0x00 {
		return 0, errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return len(buf), nil
}

func (b *bitBuffer) WriteBits64(v uint64, n uint) {
	for i := uint(0); i < n; i++ {
		if b.m == 0x00 {
			b.m = 0x01
			b.b = append(b.b, 0x00)
		}
		if v&(1<<i) != 0 {
			b.b[len(b.b)-1] |= b.m
		}
		b.m <<= 1
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
