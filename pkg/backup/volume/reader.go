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
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/2e8/siddar/pkg/errors"
)

// Reader locates members in a volume set and reconstructs their bytes,
// following payload splits across consecutive volumes
type Reader struct {
	// prefix is `{repository}/{basename}`
	prefix   string
	basename string
	codec    Codec
}

// NewReader probes for `{basename}.1.tar`, `.tar.gz`, `.tar.bz2` in that
// order under dir to fix the volume set's codec. Absence of all three
// means the volume set is missing
func NewReader(dir, basename string) (*Reader, error) {
	prefix := filepath.Join(dir, basename)
	for _, codec := range Codecs() {
		first := fmt.Sprintf("%s.1%s", prefix, codec.Extension())
		if _, err := os.Stat(first); err == nil {
			return &Reader{prefix: prefix, basename: basename, codec: codec}, nil
		}
	}
	return nil, &errors.IOError{
		Path: prefix + ".1.*",
		Err:  os.ErrNotExist,
	}
}

// Codec returns the codec the volume set was written with
func (r *Reader) Codec() Codec {
	return r.codec
}

func (r *Reader) volumePath(ordinal int) string {
	return fmt.Sprintf("%s.%d%s", r.prefix, ordinal, r.codec.Extension())
}

// copyMember streams the current tar member's body to dst in tar-block
// sized reads
func copyMember(dst io.Writer, src io.Reader, destPath string) error {
	buf := make([]byte, BlockSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return &errors.IOError{Path: destPath, Err: werr}
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return &errors.TarError{Err: rerr}
		}
	}
}

// Extract reconstructs the member's bytes into destPath.
// Volumes are scanned from ordinal 1 upward for the first one holding
// the member; from there the member's fragments are concatenated from
// consecutive volumes until one no longer carries the name.
// If no volume holds the member the destination file is never created
// and a NotFoundError is returned
func (r *Reader) Extract(memberName, destPath string) error {
	var out *os.File
	started := false
	for ordinal := 1; ; ordinal++ {
		exists, found, err := r.probeAndExtract(ordinal, memberName, &out, destPath)
		if err != nil {
			if out != nil {
				_ = out.Close()
			}
			return err
		}
		if !exists {
			break
		}
		if started && !found {
			break
		}
		started = started || found
	}
	if !started {
		return &errors.NotFoundError{Member: memberName, Basename: r.basename}
	}
	if err := out.Close(); err != nil {
		return &errors.IOError{Path: destPath, Err: err}
	}
	return nil
}

// probeAndExtract lazily creates the destination file the first time the
// member is located, then delegates to extractFromVolume
func (r *Reader) probeAndExtract(ordinal int, memberName string, out **os.File, destPath string) (exists, found bool, err error) {
	path := r.volumePath(ordinal)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, false, nil
		}
		return false, false, &errors.IOError{Path: path, Err: err}
	}
	defer f.Close()
	cr, err := r.codec.Reader(f)
	if err != nil {
		return true, false, &errors.TarError{Err: err}
	}
	defer cr.Close()
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return true, false, nil
		}
		if err != nil {
			return true, false, &errors.TarError{Err: err}
		}
		if hdr.Name != memberName {
			continue
		}
		if *out == nil {
			created, cerr := os.Create(destPath)
			if cerr != nil {
				return true, true, &errors.IOError{Path: destPath, Err: cerr}
			}
			*out = created
		}
		if err := copyMember(*out, tr, destPath); err != nil {
			return true, true, err
		}
		return true, true, nil
	}
}
