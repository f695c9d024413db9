// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package inflate

import "image"

const maxInt = int(^uint(0) >> 1)

// Raster is a row-major two-dimensional byte buffer.
//
// The byte at (x, y) is Pix[y*Stride+x]. Bytes between the end of one row and
// the start of the next are padding and are never read or written.
type Raster struct {
	Pix    []byte
	Width  int // Number of bytes in each row
	Height int // Number of rows
	Stride int // Distance in bytes between the starts of two adjacent rows
}

// NewRaster returns a Raster over pix, reporting ErrRaster if pix cannot hold
// height rows of width bytes spaced stride bytes apart.
func NewRaster(pix []byte, width, height, stride int) (Raster, error) {
	r := Raster{Pix: pix, Width: width, Height: height, Stride: stride}
	if !r.valid() {
		return Raster{}, ErrRaster
	}
	return r, nil
}

// RasterFromGray returns a Raster that aliases the pixels of img.
func RasterFromGray(img *image.Gray) Raster {
	b := img.Bounds()
	return Raster{
		Pix:    img.Pix[img.PixOffset(b.Min.X, b.Min.Y):],
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: img.Stride,
	}
}

func (r Raster) valid() bool {
	if r.Width <= 0 || r.Height <= 0 || r.Stride < r.Width {
		return false
	}
	if r.Height-1 > (maxInt-r.Width)/r.Stride {
		return false // Overflow
	}
	return len(r.Pix) >= (r.Height-1)*r.Stride+r.Width
}

// Size reports the number of pixels in the raster.
func (r Raster) Size() int { return r.Width * r.Height }

// Offset returns the index of the byte at (x, y) in Pix.
func (r Raster) Offset(x, y int) int { return y*r.Stride + x }

// At returns the byte at (x, y).
func (r Raster) At(x, y int) byte { return r.Pix[r.Offset(x, y)] }

// Row returns the Width bytes of row y.
func (r Raster) Row(y int) []byte {
	i := r.Offset(0, y)
	return r.Pix[i : i+r.Width : i+r.Width]
}
