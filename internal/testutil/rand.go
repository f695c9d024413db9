// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand implements a deterministic pseudo-random number generator.
// This differs from the math.Rand in that the exact output will be consistent
// across different versions of Go.
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

func (r *Rand) Int() int {
	r.Encrypt(r.blk[:], r.blk[:])
	return int(binary.LittleEndian.Uint32(r.blk[:]) >> 1)
}

func (r *Rand) Intn(n int) int {
	return r.Int() % n
}

// Bytes returns n uniformly random bytes, which are incompressible.
func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	bb := b
	for len(bb) > 0 {
		r.Encrypt(r.blk[:], r.blk[:])
		cnt := copy(bb, r.blk[:])
		bb = bb[cnt:]
	}
	return b
}

// Image returns n bytes resembling a natural image plane: runs of slowly
// drifting values, occasional flat areas, and repetition of earlier content,
// which exercises literals, short matches, and long overlapping matches.
func (r *Rand) Image(n int) []byte {
	b := make([]byte, 0, n)
	v := byte(r.Int())
	for len(b) < n {
		switch r.Intn(4) {
		case 0: // Flat run
			for i := r.Intn(300); i > 0; i-- {
				b = append(b, v)
			}
		case 1: // Gradient
			for i := r.Intn(64); i > 0; i-- {
				v += byte(r.Intn(3)) - 1
				b = append(b, v)
			}
		case 2: // Repeat of earlier content
			if len(b) > 0 {
				i := r.Intn(len(b))
				m := r.Intn(200)
				for j := 0; j < m; j++ {
					b = append(b, b[i+j%(len(b)-i)])
				}
			}
		default: // Noise
			b = append(b, r.Bytes(r.Intn(16))...)
		}
	}
	return b[:n]
}
