// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command rasterinflate decodes a DEFLATE or zlib compressed image plane,
// as stored by image codecs that compress each plane separately, and writes
// it out as a PGM, PNG, or raw 8-bit image.
//
// Example usage:
//	$ rasterinflate -i plane.z -W 640 -H 480 -o plane.png -f png
//
// Every flag may also be set through an environment variable with the
// RASTERINFLATE_ prefix, such as RASTERINFLATE_WIDTH=640, which may in turn
// be listed in a .env file in the working directory.
package main

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	strconv "github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dsnet/rasterflate/inflate"
)

func main() {
	cli, err := NewConfig()
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	if cli.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	displayConfig(cli)

	if err := run(cli); err != nil {
		logrus.Errorf("unable to decode %s: %s", cli.Input, err)
		os.Exit(1)
	}
}

func displayConfig(cli *CLI) {
	logrus.Debug("rasterinflate settings:")
	logrus.Debugf("  version: %s", VERSION)
	logrus.Debugf("  input: %s", cli.Input)
	logrus.Debugf("  output: %s", cli.Output)
	logrus.Debugf("  geometry: %dx%d, stride %d", cli.Width, cli.Height, cli.Stride)
	logrus.Debugf("  offset: %d", cli.ByteOffset)
	logrus.Debugf("  format: %s", cli.Format)
}

func run(cli *CLI) error {
	src, err := os.ReadFile(cli.Input)
	if err != nil {
		return errors.Wrap(err, "error reading input")
	}

	if cli.ByteOffset > int64(len(src)) {
		return errors.Errorf("offset %d is beyond the input size %d", cli.ByteOffset, len(src))
	}

	img, err := decodePlane(src[cli.ByteOffset:], cli.Width, cli.Height, cli.Stride)
	if err != nil {
		return err
	}

	if cli.Output == "" {
		return writeOutput(os.Stdout, img, cli.Format)
	}

	f, err := os.Create(cli.Output)
	if err != nil {
		return errors.Wrap(err, "error creating output")
	}
	if err := writeOutput(f, img, cli.Format); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "error closing output")
}

func writeOutput(w io.Writer, img *image.Gray, format string) error {
	bw := bufio.NewWriter(w)
	if err := writeImage(bw, img, format); err != nil {
		return errors.Wrapf(err, "error writing %s output", format)
	}
	return errors.Wrap(bw.Flush(), "error flushing output")
}

// decodePlane decodes src into a new gray image of the given geometry.
func decodePlane(src []byte, width, height, stride int) (*image.Gray, error) {
	img := &image.Gray{
		Pix:    make([]byte, (height-1)*stride+width),
		Stride: stride,
		Rect:   image.Rect(0, 0, width, height),
	}

	d := inflate.NewDecoder()
	n, err := d.Decode(src, inflate.RasterFromGray(img))
	if err != nil {
		x, y := d.Position()
		return nil, errors.Wrapf(err, "decoding stopped at pixel (%d, %d) after %d blocks", x, y, d.Blocks)
	}

	logrus.Infof("decoded %sB of input into %sB of pixels in %d blocks",
		strconv.FormatPrefix(float64(n), strconv.Base1024, 2),
		strconv.FormatPrefix(float64(d.OutputOffset), strconv.Base1024, 2),
		d.Blocks,
	)
	if n < len(src) {
		logrus.Debugf("ignoring %d trailing bytes", len(src)-n)
	}
	if size := int64(width * height); d.OutputOffset < size {
		logrus.Warnf("stream filled only %d of %d pixels", d.OutputOffset, size)
	}
	return img, nil
}

func writeImage(w io.Writer, img *image.Gray, format string) error {
	switch format {
	case "pgm":
		return writePGM(w, img)
	case "png":
		return png.Encode(w, img)
	case "raw":
		return writeRaw(w, img)
	default:
		return errors.Errorf("unknown format %s", format)
	}
}

// writePGM writes img as a binary Netpbm graymap.
func writePGM(w io.Writer, img *image.Gray) error {
	b := img.Bounds()
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}
	return writeRaw(w, img)
}

// writeRaw writes the rows of img without padding.
func writeRaw(w io.Writer, img *image.Gray) error {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[i : i+b.Dx()]); err != nil {
			return err
		}
	}
	return nil
}
