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

// Package volume streams file bodies into a sequence of size-bounded tar
// volumes and reads them back.
//
// A file too large for the space left in the current volume is split at
// the payload level: it becomes several tar members in successive
// volumes, all carrying the same member name. This is a deliberate
// non-standard extension of tar; a standard extractor cannot reassemble
// the fragments, only the matching Reader in this package can
package volume

import (
	"archive/tar"
	"fmt"
	"io"
	"os"

	"github.com/2e8/siddar/pkg/errors"
)

const (
	// BlockSize is the tar block size
	BlockSize = 512
	// RecordSize is the tar record size, volumes are sized in records
	RecordSize = 20 * BlockSize
)

// Writer streams tar members into the volume sequence
// `{prefix}.1{ext}`, `{prefix}.2{ext}`, ... keeping every volume's
// pre-compression byte count within the configured bound
type Writer struct {
	// prefix is `{repository}/{basename}`
	prefix      string
	maxPartSize int64
	codec       Codec

	ordinal int
	file    *os.File
	comp    io.WriteCloser
	tw      *tar.Writer
	// partSize counts the bytes committed to the current tar stream,
	// excluding the trailing footer blocks
	partSize int64
	closed   bool
}

// NewWriter returns a Writer for the volume set rooted at prefix.
// maxPartSize is rounded down to a multiple of the tar record size and
// must leave room for at least one record
func NewWriter(prefix string, maxPartSize int64, codec Codec) (*Writer, error) {
	maxPartSize -= maxPartSize % RecordSize
	if maxPartSize < RecordSize {
		return nil, &errors.PreconditionError{
			Reason: fmt.Sprintf("part size must be at least %d bytes", RecordSize),
		}
	}
	return &Writer{
		prefix:      prefix,
		maxPartSize: maxPartSize,
		codec:       codec,
	}, nil
}

// MaxPartSize returns the bound actually applied, after rounding
func (w *Writer) MaxPartSize() int64 {
	return w.maxPartSize
}

// VolumeCount returns how many volumes have been opened so far
func (w *Writer) VolumeCount() int {
	return w.ordinal
}

func (w *Writer) volumePath(ordinal int) string {
	return fmt.Sprintf("%s.%d%s", w.prefix, ordinal, w.codec.Extension())
}

func (w *Writer) openNext() error {
	w.ordinal++
	path := w.volumePath(w.ordinal)
	f, err := os.Create(path)
	if err != nil {
		return &errors.IOError{Path: path, Err: err}
	}
	comp, err := w.codec.Writer(f)
	if err != nil {
		_ = f.Close()
		return &errors.TarError{Err: err}
	}
	w.file = f
	w.comp = comp
	w.tw = tar.NewWriter(comp)
	w.partSize = 0
	return nil
}

func (w *Writer) closeVolume() error {
	if w.tw == nil {
		return nil
	}
	terr := w.tw.Close()
	cerr := w.comp.Close()
	ferr := w.file.Close()
	path := w.file.Name()
	w.tw = nil
	w.comp = nil
	w.file = nil
	if terr != nil {
		return &errors.TarError{Err: terr}
	}
	if cerr != nil {
		return &errors.TarError{Err: cerr}
	}
	if ferr != nil {
		return &errors.IOError{Path: path, Err: ferr}
	}
	return nil
}

// writeMember writes one tar member of the given size, consuming the next
// size bytes of src
func (w *Writer) writeMember(info os.FileInfo, name string, src io.Reader, srcPath string, size int64) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return &errors.TarError{Err: err}
	}
	hdr.Name = name
	hdr.Size = size
	if err := w.tw.WriteHeader(hdr); err != nil {
		return &errors.TarError{Err: err}
	}
	// copy by hand so read failures and write failures stay apart:
	// the engine retries them differently
	buf := make([]byte, 64*1024)
	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		read, rerr := io.ReadFull(src, buf[:n])
		if rerr != nil {
			return &errors.IOError{Path: srcPath, Err: rerr}
		}
		if _, werr := w.tw.Write(buf[:read]); werr != nil {
			return &errors.TarError{Err: werr}
		}
		remaining -= int64(read)
	}
	return nil
}

func roundUpBlock(n int64) int64 {
	return (n + BlockSize - 1) / BlockSize * BlockSize
}

// Add streams the file at filePath into the volume set as a tar member
// named memberName, opening and closing volumes as needed to keep each
// one within the size bound.
// The member is split across consecutive volumes when it cannot fit in
// the space left in the current one; every fragment carries the same
// member name
func (w *Writer) Add(filePath, memberName string) error {
	if w.closed {
		return errors.New("volume writer is closed")
	}
	if w.tw == nil {
		if err := w.openNext(); err != nil {
			return err
		}
	}
	f, err := os.Open(filePath)
	if err != nil {
		return &errors.IOError{Path: filePath, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return &errors.IOError{Path: filePath, Err: err}
	}
	remaining := info.Size()

	// while the file plus one header and two footer blocks overflows the
	// current volume, fill the volume with a fragment and roll over
	for w.partSize+remaining+3*BlockSize > w.maxPartSize {
		chunk := w.maxPartSize - w.partSize - 3*BlockSize
		if err := w.writeMember(info, memberName, f, filePath, chunk); err != nil {
			return err
		}
		w.partSize += BlockSize + chunk
		if w.partSize+2*BlockSize != w.maxPartSize {
			return errors.Errorf("volume accounting out of balance after split: %d of %d", w.partSize, w.maxPartSize)
		}
		if err := w.closeVolume(); err != nil {
			return err
		}
		if err := w.openNext(); err != nil {
			return err
		}
		remaining -= chunk
	}

	if err := w.writeMember(info, memberName, f, filePath, remaining); err != nil {
		return err
	}
	w.partSize += BlockSize + roundUpBlock(remaining)
	if w.partSize+2*BlockSize > w.maxPartSize {
		return errors.Errorf("volume accounting out of balance: %d of %d", w.partSize, w.maxPartSize)
	}
	// no room left for another header plus footer, seal the volume now
	if w.partSize+3*BlockSize >= w.maxPartSize {
		return w.closeVolume()
	}
	return nil
}

// Close flushes and closes the current volume, if one is open
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeVolume()
}
