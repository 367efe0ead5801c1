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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/2e8/siddar/pkg/errors"
	"github.com/2e8/siddar/pkg/internal/assert"
)

// writeSource writes a deterministic test file of the given size
func writeSource(t *testing.T, dir, name string, size int) string {
	t.Helper()
	content := make([]byte, size)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}

// tarMembers returns name->size for every member of a plain tar volume
func tarMembers(t *testing.T, path string) map[string]int64 {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open volume: %v", err)
	}
	defer f.Close()
	members := map[string]int64{}
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return members
		}
		if err != nil {
			t.Fatalf("failed to read volume: %v", err)
		}
		members[hdr.Name] = hdr.Size
	}
}

func TestWriterSingleVolume(t *testing.T) {
	dir := t.TempDir()
	repo := t.TempDir()
	a := writeSource(t, dir, "a", 6)
	b := writeSource(t, dir, "b", 700)

	w, err := NewWriter(filepath.Join(repo, "S"), 1024*1024, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Add(a, "member-a"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Add(b, "member-b"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	members := tarMembers(t, filepath.Join(repo, "S.1.tar"))
	assert.DeepEqual(t, map[string]int64{"member-a": 6, "member-b": 700}, members)
	if _, err := os.Stat(filepath.Join(repo, "S.2.tar")); !os.IsNotExist(err) {
		t.Errorf("expected no second volume")
	}
}

func TestWriterRoundsPartSize(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "S"), 1048576, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.IntEqual(t, 1044480, w.MaxPartSize())

	_, err = NewWriter(filepath.Join(t.TempDir(), "S"), RecordSize-1, Plain)
	assert.ExpectError(t, true, err)
}

func TestWriterNeverOpensWithoutAdd(t *testing.T) {
	repo := t.TempDir()
	w, err := NewWriter(filepath.Join(repo, "E"), 1048576, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	entries, err := os.ReadDir(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected an empty repository, got %d entries", len(entries))
	}
}

func TestWriterSealsFullVolume(t *testing.T) {
	dir := t.TempDir()
	repo := t.TempDir()
	// one record of space: a 8704 byte member fills it to the block
	full := writeSource(t, dir, "full", 8704)
	next := writeSource(t, dir, "next", 10)

	w, err := NewWriter(filepath.Join(repo, "S"), RecordSize, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Add(full, "member-full"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Add(next, "member-next"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	first := tarMembers(t, filepath.Join(repo, "S.1.tar"))
	second := tarMembers(t, filepath.Join(repo, "S.2.tar"))
	assert.DeepEqual(t, map[string]int64{"member-full": 8704}, first)
	assert.DeepEqual(t, map[string]int64{"member-next": 10}, second)
}

func TestSplitAcrossVolumes(t *testing.T) {
	dir := t.TempDir()
	repo := t.TempDir()
	const fileSize = 3000000
	source := writeSource(t, dir, "big", fileSize)

	w, err := NewWriter(filepath.Join(repo, "S"), 1048576, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Add(source, "member-big"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	// exactly three volumes, each within the bound, every fragment
	// under the same member name
	var total int64
	for n := 1; n <= 3; n++ {
		path := filepath.Join(repo, fmt.Sprintf("S.%d.tar", n))
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected volume %d: %v", n, err)
		}
		if info.Size() > 1044480 {
			t.Errorf("volume %d exceeds the bound: %d", n, info.Size())
		}
		members := tarMembers(t, path)
		size, ok := members["member-big"]
		assert.BoolEqual(t, true, ok)
		if len(members) != 1 {
			t.Errorf("volume %d holds %d members, expected 1", n, len(members))
		}
		total += size
	}
	if _, err := os.Stat(filepath.Join(repo, "S.4.tar")); !os.IsNotExist(err) {
		t.Errorf("expected no fourth volume")
	}
	assert.IntEqual(t, fileSize, total)

	// the reader reassembles the original bytes
	r, err := NewReader(repo, "S")
	if err != nil {
		t.Fatalf("unexpected reader error: %v", err)
	}
	dest := filepath.Join(dir, "restored")
	if err := r.Extract("member-big", dest); err != nil {
		t.Fatalf("unexpected extract error: %v", err)
	}
	want, _ := os.ReadFile(source)
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read restored file: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Errorf("restored bytes differ from the original")
	}
}

func TestReaderProbesExtensions(t *testing.T) {
	for _, codec := range []Codec{Plain, Gzip, Bzip2} {
		codec := codec
		t.Run(codec.String(), func(t *testing.T) {
			dir := t.TempDir()
			repo := t.TempDir()
			source := writeSource(t, dir, "a", 4096)

			w, err := NewWriter(filepath.Join(repo, "B"), 1048576, codec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := w.Add(source, "member-a"); err != nil {
				t.Fatalf("unexpected add error: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("unexpected close error: %v", err)
			}

			r, err := NewReader(repo, "B")
			if err != nil {
				t.Fatalf("unexpected reader error: %v", err)
			}
			assert.BoolEqual(t, true, r.Codec() == codec)
			dest := filepath.Join(dir, "restored")
			if err := r.Extract("member-a", dest); err != nil {
				t.Fatalf("unexpected extract error: %v", err)
			}
			want, _ := os.ReadFile(source)
			got, _ := os.ReadFile(dest)
			if !bytes.Equal(want, got) {
				t.Errorf("restored bytes differ from the original")
			}
		})
	}
}

func TestReaderMissingVolumeSet(t *testing.T) {
	_, err := NewReader(t.TempDir(), "missing")
	assert.ExpectError(t, true, err)
}

func TestExtractNotFound(t *testing.T) {
	dir := t.TempDir()
	repo := t.TempDir()
	source := writeSource(t, dir, "a", 10)

	w, err := NewWriter(filepath.Join(repo, "S"), 1048576, Plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Add(source, "member-a"); err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	r, err := NewReader(repo, "S")
	if err != nil {
		t.Fatalf("unexpected reader error: %v", err)
	}
	dest := filepath.Join(dir, "never-created")
	err = r.Extract("member-missing", dest)
	assert.ExpectError(t, true, err)
	if _, ok := err.(*errors.NotFoundError); !ok {
		t.Errorf("expected a NotFoundError, got %T", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("destination file should not have been created")
	}
}
