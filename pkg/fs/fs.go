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

// Package fs contains filesystem helpers used when materializing a
// restored tree
package fs

import (
	"os"

	"github.com/2e8/siddar/pkg/errors"
)

// IsDir returns true if path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir makes sure path is a directory, creating parents as needed.
// A non-directory already occupying the path is removed first
func EnsureDir(path string) error {
	info, err := os.Lstat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return &errors.OSError{Path: path, Err: err}
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &errors.OSError{Path: path, Err: err}
	}
	return nil
}

// ClearForFile makes sure a regular file can be created at path: if a
// directory occupies it, the directory tree is removed
func ClearForFile(path string) error {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return &errors.OSError{Path: path, Err: err}
	}
	return nil
}
