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

package catalogue

import (
	"strings"
	"testing"

	"github.com/2e8/siddar/pkg/internal/assert"
)

const testHash = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

func TestFileListKeysSorted(t *testing.T) {
	files := NewFileList()
	files.Put("/b", NewDirInfo(10))
	files.Put("/a/c", NewFileInfo())
	files.Put("/a", NewDirInfo(10))
	assert.DeepEqual(t, []string{"/a", "/a/c", "/b"}, files.Keys())
}

func TestContentKey(t *testing.T) {
	tests := []struct {
		name          string
		info          *FileInfo
		expected      string
		expectedError bool
	}{
		{
			name:     "inspected file",
			info:     &FileInfo{MTime: 1700000000, Size: 6, Hash: testHash},
			expected: testHash + ".6",
		},
		{
			name:          "directory",
			info:          NewDirInfo(1700000000),
			expectedError: true,
		},
		{
			name:          "file not yet inspected",
			info:          NewFileInfo(),
			expectedError: true,
		},
		{
			name:          "file with size but no hash",
			info:          &FileInfo{Size: 6},
			expectedError: true,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			key, err := tc.info.ContentKey("/some/file")
			assert.ExpectError(t, tc.expectedError, err)
			if err == nil {
				assert.StringEqual(t, tc.expected, key)
			}
		})
	}
}

func TestSplitContentKey(t *testing.T) {
	hash, size, err := SplitContentKey(testHash + ".6")
	assert.ExpectError(t, false, err)
	assert.StringEqual(t, testHash, hash)
	assert.IntEqual(t, 6, size)

	_, _, err = SplitContentKey("nodotanywhere")
	assert.ExpectError(t, true, err)
}

func TestHashListCopy(t *testing.T) {
	original := HashList{testHash + ".6": "monday"}
	copied := original.Copy()
	copied[strings.Repeat("0", 64)+".1"] = "tuesday"
	if len(original) != 1 {
		t.Errorf("copy should not alias the original, original now has %d entries", len(original))
	}
}
