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

// Package catalogue implements the backup catalogue: a snapshot of a file
// tree (FileList) paired with a mapping from file content to the volume
// set that physically stores it (HashList), plus the textual codec that
// persists both
package catalogue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/2e8/siddar/pkg/errors"
)

// FileInfo describes one entry of a FileList.
// For files, Size and Hash stay at their sentinel values (-1, "") until
// the file has been inspected on disk or matched against a reference
type FileInfo struct {
	IsDir bool
	// MTime is whole seconds, truncated
	MTime int64
	Size  int64
	Hash  string
	// Marked is transient state used by the include filter passes,
	// it is never serialized
	Marked bool
}

// NewDirInfo returns a FileInfo for a directory with the given mtime
func NewDirInfo(mtime int64) *FileInfo {
	return &FileInfo{IsDir: true, MTime: mtime, Size: -1}
}

// NewFileInfo returns a FileInfo for a regular file whose metadata has
// not been read yet
func NewFileInfo() *FileInfo {
	return &FileInfo{Size: -1}
}

// Inspected returns true once the entry's size and hash are populated
func (fi *FileInfo) Inspected() bool {
	return !fi.IsDir && fi.Size >= 0 && fi.Hash != ""
}

// ContentKey returns the entry's content key `{hash}.{size}`, the
// deduplication identity of the file's bytes.
// It fails with a HashNameError for directories and entries that have not
// been inspected yet
func (fi *FileInfo) ContentKey(key string) (string, error) {
	if !fi.Inspected() {
		return "", &errors.HashNameError{Path: key}
	}
	return ContentKey(fi.Hash, fi.Size), nil
}

// ContentKey builds a content key from a hash and a size
func ContentKey(hash string, size int64) string {
	return fmt.Sprintf("%s.%d", hash, size)
}

// FileList is a mapping from relative path keys (strings beginning with
// `/`) to FileInfo. Lexicographic key order is the canonical iteration
// order everywhere
type FileList struct {
	entries map[string]*FileInfo
}

// NewFileList returns a new empty FileList
func NewFileList() *FileList {
	return &FileList{entries: map[string]*FileInfo{}}
}

// Put stores info under key, replacing any previous entry
func (l *FileList) Put(key string, info *FileInfo) {
	l.entries[key] = info
}

// Get returns the entry for key, if any
func (l *FileList) Get(key string) (*FileInfo, bool) {
	info, ok := l.entries[key]
	return info, ok
}

// Has returns true if key is present
func (l *FileList) Has(key string) bool {
	_, ok := l.entries[key]
	return ok
}

// Delete removes the entry for key, if any
func (l *FileList) Delete(key string) {
	delete(l.entries, key)
}

// Len returns the number of entries
func (l *FileList) Len() int {
	return len(l.entries)
}

// Keys returns all keys in lexicographic order
func (l *FileList) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HashList maps content keys to the basename of the backup whose volumes
// hold the bytes
type HashList map[string]string

// NewHashList returns a new empty HashList
func NewHashList() HashList {
	return HashList{}
}

// Copy returns an independent copy of the list, used to carry a reference
// backup's content keys forward into a differential run
func (h HashList) Copy() HashList {
	out := make(HashList, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Keys returns all content keys in lexicographic order
func (h HashList) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitContentKey splits a content key back into hash and size
func SplitContentKey(key string) (hash string, size int64, err error) {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return "", 0, errors.Errorf("malformed content key %q", key)
	}
	size, err = strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return "", 0, errors.Wrapf(err, "malformed content key %q", key)
	}
	return key[:i], size, nil
}
