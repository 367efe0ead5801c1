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

// Package hashsum computes the streaming SHA-256 content hash of files
package hashsum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/2e8/siddar/pkg/errors"
)

// read files in 64 KiB blocks
const blockSize = 64 * 1024

// File returns the lowercase hex SHA-256 of the file's bytes
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &errors.IOError{Path: path, Err: err}
	}
	defer f.Close()
	sum, err := Sum(f)
	if err != nil {
		return "", &errors.IOError{Path: path, Err: err}
	}
	return sum, nil
}

// Sum returns the lowercase hex SHA-256 of everything read from r
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
