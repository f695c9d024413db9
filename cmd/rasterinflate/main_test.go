// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/flate"

	"github.com/dsnet/rasterflate/internal/testutil"
)

func parseArgs(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kongOptions()...)
	if err != nil {
		t.Fatalf("unexpected kong.New error: %v", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	if err := validateCLIArgs(cli); err != nil {
		return nil, err
	}
	return cli, nil
}

func writeInput(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plane.z")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("unexpected WriteFile error: %v", err)
	}
	return path
}

func TestConfig(t *testing.T) {
	input := writeInput(t, nil)

	var vectors = []struct {
		desc   string
		args   []string
		env    map[string]string
		stride int
		offset int64
		format string
		fail   bool
	}{{
		desc:   "defaults",
		args:   []string{"-i", input, "-W", "64", "-H", "32"},
		stride: 64,
		format: "pgm",
	}, {
		desc:   "explicit stride and offset",
		args:   []string{"-i", input, "-W", "64", "-H", "32", "-s", "80", "--offset", "4Ki", "-f", "png"},
		stride: 80,
		offset: 4096,
		format: "png",
	}, {
		desc:   "environment",
		args:   []string{"-i", input},
		env:    map[string]string{"RASTERINFLATE_WIDTH": "10", "RASTERINFLATE_HEIGHT": "5", "RASTERINFLATE_FORMAT": "raw"},
		stride: 10,
		format: "raw",
	}, {
		desc: "stride below width",
		args: []string{"-i", input, "-W", "64", "-H", "32", "-s", "63"},
		fail: true,
	}, {
		desc: "zero height",
		args: []string{"-i", input, "-W", "64", "-H", "0"},
		fail: true,
	}, {
		desc: "bad offset",
		args: []string{"-i", input, "-W", "64", "-H", "32", "--offset", "1.5"},
		fail: true,
	}, {
		desc: "missing input",
		args: []string{"-i", input + ".missing", "-W", "64", "-H", "32"},
		fail: true,
	}}

	for i, v := range vectors {
		t.Run(v.desc, func(t *testing.T) {
			for k, val := range v.env {
				t.Setenv(k, val)
			}
			cli, err := parseArgs(t, v.args...)
			if v.fail {
				if err == nil {
					t.Errorf("test %d, %s: unexpected success", i, v.desc)
				}
				return
			}
			if err != nil {
				t.Fatalf("test %d, %s: unexpected error: %v", i, v.desc, err)
			}
			if cli.Stride != v.stride || cli.ByteOffset != v.offset || cli.Format != v.format {
				t.Errorf("test %d, %s: got (%d, %d, %s), want (%d, %d, %s)", i, v.desc,
					cli.Stride, cli.ByteOffset, cli.Format, v.stride, v.offset, v.format)
			}
		})
	}
}

func TestRun(t *testing.T) {
	const width, height, stride = 37, 23, 40
	data := testutil.NewRand(0).Image(width * height)
	input := testutil.MustCompressZlib(data, flate.DefaultCompression)
	prefixed := append(bytes.Repeat([]byte{0xff}, 100), input...)

	for _, format := range []string{"pgm", "png", "raw"} {
		t.Run(format, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "plane."+format)
			cli := &CLI{
				Input:      writeInput(t, prefixed),
				Output:     output,
				Width:      width,
				Height:     height,
				Stride:     stride,
				Format:     format,
				ByteOffset: 100,
			}
			if err := run(cli); err != nil {
				t.Fatalf("unexpected run error: %v", err)
			}

			got, err := os.ReadFile(output)
			if err != nil {
				t.Fatalf("unexpected ReadFile error: %v", err)
			}
			switch format {
			case "pgm":
				header := []byte("P5\n37 23\n255\n")
				if !bytes.HasPrefix(got, header) {
					t.Fatalf("missing PGM header: %q", got[:len(header)])
				}
				got = got[len(header):]
			case "png":
				img, err := png.Decode(bytes.NewReader(got))
				if err != nil {
					t.Fatalf("unexpected png.Decode error: %v", err)
				}
				gray, ok := img.(*image.Gray)
				if !ok {
					t.Fatalf("decoded image is %T, want *image.Gray", img)
				}
				got = gray.Pix
			}
			if diff := cmp.Diff(data, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunCorrupt(t *testing.T) {
	data := testutil.NewRand(1).Image(100)
	input := testutil.MustCompressFlate(data, flate.BestSpeed)

	cli := &CLI{
		Input:  writeInput(t, input[:len(input)/2]),
		Output: filepath.Join(t.TempDir(), "plane.raw"),
		Width:  10,
		Height: 10,
		Stride: 10,
		Format: "raw",
	}
	if err := run(cli); err == nil {
		t.Errorf("unexpected success decoding a truncated stream")
	}

	cli.Input = writeInput(t, input)
	cli.ByteOffset = int64(len(input) + 1)
	if err := run(cli); err == nil {
		t.Errorf("unexpected success with an offset beyond the input")
	}
}
