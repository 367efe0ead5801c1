/*
Copyright 2024 The Siddar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package volume

import (
	"compress/bzip2"
	"compress/gzip"
	"io"

	bz2 "github.com/dsnet/compress/bzip2"

	"github.com/2e8/siddar/pkg/errors"
)

// Codec selects the compression applied to each volume of a set
type Codec uint8

const (
	// Plain is an uncompressed tar volume
	Plain Codec = iota
	// Gzip compresses each volume with gzip
	Gzip
	// Bzip2 compresses each volume with bzip2
	Bzip2
)

// Codecs lists all supported codecs
func Codecs() []Codec {
	return []Codec{Plain, Gzip, Bzip2}
}

// ParseCodec parses a compression tag as accepted on the command line
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "tar":
		return Plain, nil
	case "gz":
		return Gzip, nil
	case "bz2":
		return Bzip2, nil
	}
	return Plain, &errors.PreconditionError{Reason: "unknown compression " + s + ", expected one of: tar, gz, bz2"}
}

func (c Codec) String() string {
	switch c {
	case Gzip:
		return "gz"
	case Bzip2:
		return "bz2"
	default:
		return "tar"
	}
}

// Extension returns the volume filename extension for the codec
func (c Codec) Extension() string {
	switch c {
	case Gzip:
		return ".tar.gz"
	case Bzip2:
		return ".tar.bz2"
	default:
		return ".tar"
	}
}

// Reader wraps r with the codec's decompressor
func (c Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewReader(r)
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Writer wraps w with the codec's compressor.
// The standard library cannot write bzip2, so that side comes from
// github.com/dsnet/compress
func (c Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Bzip2:
		return bz2.NewWriter(w, nil)
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
