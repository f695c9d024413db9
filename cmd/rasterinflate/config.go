// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"math"

	"github.com/alecthomas/kong"
	strconv "github.com/dsnet/golib/unitconv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvVarPrefix = "RASTERINFLATE"

	DefaultFormat = "pgm"

	MaxDimension = 1 << 16
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"

	validFormats = map[string]struct{}{
		"pgm": {},
		"png": {},
		"raw": {},
	}
)

type CLI struct {
	Input  string `kong:"help='Path to the compressed plane',type='existingfile',short='i',required"`
	Output string `kong:"help='Path to write the decoded plane to, stdout if empty',short='o'"`
	Width  int    `kong:"help='Raster width in pixels',short='W',required"`
	Height int    `kong:"help='Raster height in rows',short='H',required"`
	Stride int    `kong:"help='Distance in bytes between rows, the width if zero',short='s'"`
	Offset string `kong:"help='Byte offset of the stream within the input, such as 512 or 4Ki',default='0'"`
	Format string `kong:"help='Output format (pgm, png, raw)',default='pgm',enum='pgm,png,raw',short='f'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`

	// Internal bits
	Ctx        *kong.Context `kong:"-"`
	ByteOffset int64         `kong:"-"`
}

func NewConfig() (*CLI, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	cli := &CLI{}
	cli.Ctx = kong.Parse(cli, kongOptions()...)

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("rasterinflate"),
		kong.Description("Decode a DEFLATE or zlib compressed image plane into a raster"),
		kong.UsageOnError(),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		},
	}
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	if cli.Width <= 0 || cli.Width > MaxDimension {
		return errors.Errorf("width must be between 1 and %d", MaxDimension)
	}

	if cli.Height <= 0 || cli.Height > MaxDimension {
		return errors.Errorf("height must be between 1 and %d", MaxDimension)
	}

	if cli.Stride == 0 {
		cli.Stride = cli.Width
	}

	if cli.Stride < cli.Width {
		return errors.Errorf("stride %d is smaller than width %d", cli.Stride, cli.Width)
	}

	if _, ok := validFormats[cli.Format]; !ok {
		return errors.Errorf("format %s is invalid", cli.Format)
	}

	off, err := strconv.ParsePrefix(cli.Offset, strconv.AutoParse)
	if err != nil {
		return errors.Wrapf(err, "unable to parse offset %q", cli.Offset)
	}

	if off < 0 || off != math.Trunc(off) || off > math.MaxInt32 {
		return errors.Errorf("offset %s is not a valid byte offset", cli.Offset)
	}

	cli.ByteOffset = int64(off)

	return nil
}
