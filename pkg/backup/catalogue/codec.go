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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/2e8/siddar/pkg/errors"
)

// catalogue grammar tokens
const (
	tokDirList     = "DIR_LIST"
	tokDirListEnd  = "DIR_LIST_END"
	tokDir         = "DIR"
	tokDirEnd      = "DIR_END"
	tokFile        = "FILE"
	tokFileEnd     = "FILE_END"
	tokHashList    = "HASH_LIST"
	tokHashListEnd = "HASH_LIST_END"
	tokHash        = "HASH"
)

// Write serializes the FileList then the HashList to w, both in sorted
// key order. The output is stable: two identical lists serialize to
// byte-identical text
func Write(w io.Writer, files *FileList, hashes HashList) error {
	bw := bufio.NewWriter(w)
	if err := writeFileList(bw, files); err != nil {
		return err
	}
	if err := writeHashList(bw, hashes); err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "failed to flush catalogue")
}

func writeFileList(w *bufio.Writer, files *FileList) error {
	if _, err := fmt.Fprintln(w, tokDirList); err != nil {
		return errors.Wrap(err, "failed to write catalogue")
	}
	for _, key := range files.Keys() {
		info, _ := files.Get(key)
		var err error
		if info.IsDir {
			_, err = fmt.Fprintf(w, "%s\n%s\n%d\n%s\n", tokDir, key, info.MTime, tokDirEnd)
		} else {
			_, err = fmt.Fprintf(w, "%s\n%s\n%d\n%d\n%s\n%s\n", tokFile, key, info.MTime, info.Size, info.Hash, tokFileEnd)
		}
		if err != nil {
			return errors.Wrap(err, "failed to write catalogue")
		}
	}
	if _, err := fmt.Fprintln(w, tokDirListEnd); err != nil {
		return errors.Wrap(err, "failed to write catalogue")
	}
	return nil
}

func writeHashList(w *bufio.Writer, hashes HashList) error {
	if _, err := fmt.Fprintln(w, tokHashList); err != nil {
		return errors.Wrap(err, "failed to write catalogue")
	}
	for _, key := range hashes.Keys() {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", tokHash, key, hashes[key]); err != nil {
			return errors.Wrap(err, "failed to write catalogue")
		}
	}
	if _, err := fmt.Fprintln(w, tokHashListEnd); err != nil {
		return errors.Wrap(err, "failed to write catalogue")
	}
	return nil
}

// parser states for the FileList section
type parseState int

const (
	waitList parseState = iota
	waitDirFile
	waitPath
	waitMTime
	waitSize
	waitHash
	waitDirEnd
	waitFileEnd
)

// lineReader feeds trimmed lines to the parsers, tracking line numbers
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(r)}
}

// next returns the next line with trailing whitespace trimmed
func (lr *lineReader) next() (string, bool) {
	if !lr.scanner.Scan() {
		return "", false
	}
	lr.line++
	return strings.TrimRight(lr.scanner.Text(), " \t\r"), true
}

func (lr *lineReader) unexpected(token string) error {
	return &errors.FormatError{Line: lr.line, Token: token}
}

func (lr *lineReader) truncated() error {
	return &errors.FormatError{Line: lr.line, Token: "<end of file>"}
}

// Read parses a serialized catalogue from r: a FileList section followed
// by a HashList section. Any token the state machine does not expect is a
// FormatError
func Read(r io.Reader) (*FileList, HashList, error) {
	lr := newLineReader(r)
	files, err := readFileList(lr)
	if err != nil {
		return nil, nil, err
	}
	hashes, err := readHashList(lr)
	if err != nil {
		return nil, nil, err
	}
	if err := lr.scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read catalogue")
	}
	return files, hashes, nil
}

func readFileList(lr *lineReader) (*FileList, error) {
	files := NewFileList()
	state := waitList
	var info *FileInfo
	var key string
	for {
		line, ok := lr.next()
		if !ok {
			return nil, lr.truncated()
		}
		switch state {
		case waitList:
			if line != tokDirList {
				return nil, lr.unexpected(line)
			}
			state = waitDirFile
		case waitDirFile:
			switch line {
			case tokDir:
				info = NewDirInfo(0)
				state = waitPath
			case tokFile:
				info = NewFileInfo()
				state = waitPath
			case tokDirListEnd:
				return files, nil
			default:
				return nil, lr.unexpected(line)
			}
		case waitPath:
			if !strings.HasPrefix(line, "/") {
				return nil, lr.unexpected(line)
			}
			key = line
			state = waitMTime
		case waitMTime:
			mtime, err := strconv.ParseInt(line, 10, 64)
			if err != nil {
				return nil, lr.unexpected(line)
			}
			info.MTime = mtime
			if info.IsDir {
				state = waitDirEnd
			} else {
				state = waitSize
			}
		case waitSize:
			size, err := strconv.ParseInt(line, 10, 64)
			if err != nil || size < 0 {
				return nil, lr.unexpected(line)
			}
			info.Size = size
			state = waitHash
		case waitHash:
			if len(line) != 64 {
				return nil, lr.unexpected(line)
			}
			info.Hash = line
			state = waitFileEnd
		case waitDirEnd:
			if line != tokDirEnd {
				return nil, lr.unexpected(line)
			}
			files.Put(key, info)
			state = waitDirFile
		case waitFileEnd:
			if line != tokFileEnd {
				return nil, lr.unexpected(line)
			}
			files.Put(key, info)
			state = waitDirFile
		}
	}
}

func readHashList(lr *lineReader) (HashList, error) {
	hashes := NewHashList()
	line, ok := lr.next()
	if !ok {
		return nil, lr.truncated()
	}
	if line != tokHashList {
		return nil, lr.unexpected(line)
	}
	for {
		line, ok := lr.next()
		if !ok {
			return nil, lr.truncated()
		}
		if line == tokHashListEnd {
			return hashes, nil
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || fields[0] != tokHash {
			return nil, lr.unexpected(line)
		}
		if _, _, err := SplitContentKey(fields[1]); err != nil {
			return nil, lr.unexpected(line)
		}
		hashes[fields[1]] = fields[2]
	}
}

// ReadFile loads a catalogue file from disk
func ReadFile(path string) (*FileList, HashList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &errors.IOError{Path: path, Err: err}
	}
	defer f.Close()
	return Read(f)
}

// WriteFile saves a catalogue file to disk.
// The handle is released on every exit path
func WriteFile(path string, files *FileList, hashes HashList) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &errors.IOError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &errors.IOError{Path: path, Err: cerr}
		}
	}()
	return Write(f, files, hashes)
}
