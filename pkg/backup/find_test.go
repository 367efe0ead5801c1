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

package backup

import (
	"bytes"
	"testing"

	"github.com/2e8/siddar/pkg/internal/assert"
	"github.com/2e8/siddar/pkg/log"
)

func TestFind(t *testing.T) {
	source, repo := t.TempDir(), t.TempDir()
	writeTree(t, source, map[string]string{
		"/x/y/z.txt": "z\n",
		"/x/q.txt":   "q\n",
	})
	for _, name := range []string{"monday", "tuesday"} {
		err := Create(log.NoopLogger{}, CancelPolicy(), CreateOptions{
			Source: source, Repository: repo, Name: name,
		})
		assert.ExpectError(t, false, err)
	}

	tests := []struct {
		name     string
		opts     FindOptions
		expected string
	}{
		{
			name: "glob matches every catalogue",
			opts: FindOptions{Repository: repo, NamePattern: "*day"},
			expected: "monday: /x\n" +
				"monday: /x/q.txt\n" +
				"monday: /x/y\n" +
				"monday: /x/y/z.txt\n" +
				"tuesday: /x\n" +
				"tuesday: /x/q.txt\n" +
				"tuesday: /x/y\n" +
				"tuesday: /x/y/z.txt\n",
		},
		{
			name: "glob narrows to one catalogue",
			opts: FindOptions{Repository: repo, NamePattern: "mon*"},
			expected: "monday: /x\n" +
				"monday: /x/q.txt\n" +
				"monday: /x/y\n" +
				"monday: /x/y/z.txt\n",
		},
		{
			name: "include is not hierarchical",
			opts: FindOptions{Repository: repo, NamePattern: "monday", Include: []string{"/x/y/*"}},
			expected: "monday: /x/y/z.txt\n",
		},
		{
			name: "exclude runs after include",
			opts: FindOptions{Repository: repo, NamePattern: "monday", Include: []string{"/x/*"}, Exclude: []string{"/x/q.txt"}},
			expected: "monday: /x/y\n",
		},
		{
			name:     "no matching catalogue",
			opts:     FindOptions{Repository: repo, NamePattern: "sunday"},
			expected: "",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := Find(&out, tc.opts)
			assert.ExpectError(t, false, err)
			assert.StringEqual(t, tc.expected, out.String())
		})
	}
}

func TestFindMissingRepository(t *testing.T) {
	var out bytes.Buffer
	err := Find(&out, FindOptions{Repository: "/definitely/not/here", NamePattern: "*"})
	assert.ExpectError(t, true, err)
}
