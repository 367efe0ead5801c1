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

package filter

import (
	"testing"

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/internal/assert"
)

func testList() *catalogue.FileList {
	files := catalogue.NewFileList()
	files.Put("/x", catalogue.NewDirInfo(100))
	files.Put("/x/y", catalogue.NewDirInfo(200))
	files.Put("/x/y/z.txt", catalogue.NewFileInfo())
	files.Put("/x/q.txt", catalogue.NewFileInfo())
	files.Put("/top.txt", catalogue.NewFileInfo())
	return files
}

func TestInclude(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{
			name:     "empty patterns keep everything",
			patterns: nil,
			expected: []string{"/top.txt", "/x", "/x/q.txt", "/x/y", "/x/y/z.txt"},
		},
		{
			name:     "plain include drops unmatched keys and ancestors",
			patterns: []string{"/x/y/*"},
			expected: []string{"/x/y/z.txt"},
		},
		{
			name:     "multiple patterns",
			patterns: []string{"/top.txt", "/x/q.txt"},
			expected: []string{"/top.txt", "/x/q.txt"},
		},
		{
			name:     "no match empties the list",
			patterns: []string{"/nothing/*"},
			expected: []string{},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			files := testList()
			err := Include(files, tc.patterns)
			assert.ExpectError(t, false, err)
			assert.DeepEqual(t, tc.expected, files.Keys())
		})
	}
}

func TestIncludeHierarchy(t *testing.T) {
	files := testList()
	err := IncludeHierarchy(files, []string{"/x/y/*"})
	assert.ExpectError(t, false, err)
	assert.DeepEqual(t, []string{"/x", "/x/y", "/x/y/z.txt"}, files.Keys())
}

func TestExclude(t *testing.T) {
	files := testList()
	err := Exclude(files, []string{"/x/y/*", "/top.txt"})
	assert.ExpectError(t, false, err)
	assert.DeepEqual(t, []string{"/x", "/x/q.txt", "/x/y"}, files.Keys())
}

func TestIncludeThenExclude(t *testing.T) {
	files := testList()
	if err := IncludeHierarchy(files, []string{"/x/*"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Exclude(files, []string{"/x/q.txt"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.DeepEqual(t, []string{"/x", "/x/y"}, files.Keys())
}

func TestBadPattern(t *testing.T) {
	files := testList()
	assert.ExpectError(t, true, Include(files, []string{"[unclosed"}))
	assert.ExpectError(t, true, Exclude(files, []string{"[unclosed"}))
}

func TestFixHierarchy(t *testing.T) {
	files := catalogue.NewFileList()
	files.Put("/a/b/c.txt", &catalogue.FileInfo{MTime: 1700000000, Size: 1, Hash: "x"})
	FixHierarchy(files)
	assert.DeepEqual(t, []string{"/a", "/a/b", "/a/b/c.txt"}, files.Keys())
	// synthesized directories take the triggering descendant's mtime
	info, ok := files.Get("/a/b")
	assert.BoolEqual(t, true, ok)
	assert.BoolEqual(t, true, info.IsDir)
	assert.IntEqual(t, 1700000000, info.MTime)
}

func TestFixHierarchyKeepsExisting(t *testing.T) {
	files := catalogue.NewFileList()
	files.Put("/a", catalogue.NewDirInfo(42))
	files.Put("/a/b/c.txt", &catalogue.FileInfo{MTime: 1700000000, Size: 1, Hash: "x"})
	FixHierarchy(files)
	info, _ := files.Get("/a")
	assert.IntEqual(t, 42, info.MTime)
}
