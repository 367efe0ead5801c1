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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/internal/assert"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		contents      string
		expected      *Defaults
		expectedError bool
	}{
		{
			name:     "no file yields built-in defaults",
			contents: "",
			expected: &Defaults{Compression: "tar", PartSize: backup.DefaultMaxPartSize},
		},
		{
			name:     "file overrides both values",
			contents: "compression: bz2\npartSize: 20480\n",
			expected: &Defaults{Compression: "bz2", PartSize: 20480},
		},
		{
			name:     "partial file keeps remaining defaults",
			contents: "compression: gz\n",
			expected: &Defaults{Compression: "gz", PartSize: backup.DefaultMaxPartSize},
		},
		{
			name:          "unknown compression",
			contents:      "compression: zip\n",
			expectedError: true,
		},
		{
			name:          "part size below one record",
			contents:      "partSize: 100\n",
			expectedError: true,
		},
		{
			name:          "malformed yaml",
			contents:      "compression: [",
			expectedError: true,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			repo := t.TempDir()
			if tc.contents != "" {
				if err := os.WriteFile(filepath.Join(repo, FileName), []byte(tc.contents), 0o644); err != nil {
					t.Fatalf("failed to write defaults file: %v", err)
				}
			}
			defaults, err := Load(repo)
			assert.ExpectError(t, tc.expectedError, err)
			if err == nil {
				assert.DeepEqual(t, tc.expected, defaults)
			}
		})
	}
}
