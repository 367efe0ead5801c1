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

// Package walk enumerates a source directory tree into a FileList
package walk

import (
	"os"
	"path/filepath"

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/errors"
)

// Tree recursively enumerates the tree under root into a new FileList.
// Keys are `/`-separated paths relative to root; the root itself is not
// recorded. Directories are recorded with their mtime. Regular files are
// recorded with unpopulated metadata: size and hash are read later,
// immediately before the file is hashed or archived, to narrow the race
// between enumeration and capture. Other entry kinds are skipped
func Tree(root string) (*catalogue.FileList, error) {
	files := catalogue.NewFileList()
	if err := walkDir(root, "", files); err != nil {
		return nil, err
	}
	return files, nil
}

func walkDir(root, rel string, files *catalogue.FileList) error {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &errors.IOError{Path: dir, Err: err}
	}
	for _, entry := range entries {
		key := rel + "/" + entry.Name()
		switch {
		case entry.IsDir():
			info, err := entry.Info()
			if err != nil {
				return &errors.OSError{Path: filepath.Join(dir, entry.Name()), Err: err}
			}
			files.Put(key, catalogue.NewDirInfo(info.ModTime().Unix()))
			if err := walkDir(root, key, files); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			files.Put(key, catalogue.NewFileInfo())
		}
		// symlinks, devices, sockets etc. are skipped
	}
	return nil
}
