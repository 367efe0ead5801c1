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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/backup/filter"
	"github.com/2e8/siddar/pkg/backup/hashsum"
	"github.com/2e8/siddar/pkg/backup/volume"
	"github.com/2e8/siddar/pkg/errors"
	"github.com/2e8/siddar/pkg/fs"
	"github.com/2e8/siddar/pkg/log"

	"github.com/2e8/siddar/pkg/internal/util/cli"
)

// RestoreOptions holds all the restore engine's inputs
type RestoreOptions struct {
	// Repository is the directory holding catalogues and volumes
	Repository string
	// Name is the backup basename to restore
	Name string
	// Destination is the directory the tree is materialized under
	Destination string
	// Include and Exclude are glob patterns over the catalogue's keys
	Include []string
	Exclude []string
	// Delete removes destination entries not present in the catalogue
	Delete bool
}

// Restore materializes a backup under the destination directory,
// extracting only files that are missing or differ from the catalogue,
// and restoring mtimes
func Restore(logger log.Logger, policy Policy, opts RestoreOptions) error {
	if err := checkRestorePreconditions(opts); err != nil {
		return err
	}

	status := cli.StatusForLogger(logger)
	defer status.End(false)

	status.Start("Loading catalogue 🗒")
	files, hashes, err := catalogue.ReadFile(filepath.Join(opts.Repository, opts.Name+".cat"))
	if err != nil {
		return err
	}
	filter.FixHierarchy(files)
	if err := filter.IncludeHierarchy(files, opts.Include); err != nil {
		return err
	}
	if err := filter.Exclude(files, opts.Exclude); err != nil {
		return err
	}

	status.Start("Extracting files 📦")
	readers := map[string]*volume.Reader{}
	if err := restoreFiles(logger, policy, opts, files, hashes, readers); err != nil {
		return err
	}

	if opts.Delete {
		status.Start("Deleting extra entries 🧹")
		if err := deleteExtras(logger, opts, files); err != nil {
			return err
		}
	}
	status.End(true)
	return nil
}

func checkRestorePreconditions(opts RestoreOptions) error {
	if !isDir(opts.Repository) {
		return &errors.PreconditionError{Reason: "repository " + opts.Repository + " is not a directory"}
	}
	cataloguePath := filepath.Join(opts.Repository, opts.Name+".cat")
	if _, err := os.Stat(cataloguePath); err != nil {
		return &errors.PreconditionError{Reason: "backup " + opts.Name + " does not exist in " + opts.Repository}
	}
	if !isDir(opts.Destination) {
		return &errors.PreconditionError{Reason: "destination " + opts.Destination + " is not a directory"}
	}
	return nil
}

func restoreFiles(logger log.Logger, policy Policy, opts RestoreOptions,
	files *catalogue.FileList, hashes catalogue.HashList,
	readers map[string]*volume.Reader) error {
	for _, key := range files.Keys() {
		info, _ := files.Get(key)
		for {
			err := restoreOne(logger, opts, key, info, hashes, readers)
			if err == nil {
				break
			}
			resolution := resolve(policy, key, err)
			if resolution == ResolutionRetry {
				logger.V(1).Infof("retrying %s", key)
				continue
			}
			if resolution == ResolutionIgnore {
				logger.Warnf("ignoring %s: %v", key, err)
				files.Delete(key)
				break
			}
			return errors.Wrapf(err, "failed to restore %s", key)
		}
	}
	return nil
}

// restoreOne is a single attempt at materializing one catalogue entry
func restoreOne(logger log.Logger, opts RestoreOptions, key string,
	info *catalogue.FileInfo, hashes catalogue.HashList,
	readers map[string]*volume.Reader) error {
	destPath := filepath.Join(opts.Destination, filepath.FromSlash(key))
	mtime := time.Unix(info.MTime, 0)

	if info.IsDir {
		if err := fs.EnsureDir(destPath); err != nil {
			return err
		}
		if err := os.Chtimes(destPath, mtime, mtime); err != nil {
			return &errors.OSError{Path: destPath, Err: err}
		}
		return nil
	}

	if err := fs.EnsureDir(filepath.Dir(destPath)); err != nil {
		return err
	}

	contentKey, err := info.ContentKey(key)
	if err != nil {
		return err
	}
	owner, ok := hashes[contentKey]
	if !ok {
		return &errors.NotFoundError{Member: contentKey, Basename: opts.Name}
	}
	reader, ok := readers[owner]
	if !ok {
		reader, err = volume.NewReader(opts.Repository, owner)
		if err != nil {
			return err
		}
		readers[owner] = reader
	}

	if identical(destPath, info) {
		logger.V(1).Infof("unchanged %s", key)
		return nil
	}

	if err := fs.ClearForFile(destPath); err != nil {
		return err
	}
	if err := reader.Extract(contentKey, destPath); err != nil {
		return err
	}
	if err := os.Chtimes(destPath, mtime, mtime); err != nil {
		return &errors.OSError{Path: destPath, Err: err}
	}
	logger.V(1).Infof("extracted %s", key)
	return nil
}

// identical reports whether the file already at destPath matches the
// catalogue entry in mtime, size and content hash, in which case
// extraction is skipped
func identical(destPath string, info *catalogue.FileInfo) bool {
	stat, err := os.Stat(destPath)
	if err != nil || !stat.Mode().IsRegular() {
		return false
	}
	if stat.ModTime().Unix() != info.MTime || stat.Size() != info.Size {
		return false
	}
	hash, err := hashsum.File(destPath)
	if err != nil {
		return false
	}
	return hash == info.Hash
}

// deleteExtras removes destination entries absent from the filtered
// FileList: files in a first pass, then directories deepest first, so
// directories are empty by the time they are removed
func deleteExtras(logger log.Logger, opts RestoreOptions, files *catalogue.FileList) error {
	var extraFiles, extraDirs []string
	err := filepath.WalkDir(opts.Destination, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return &errors.OSError{Path: path, Err: err}
		}
		if path == opts.Destination {
			return nil
		}
		rel, err := filepath.Rel(opts.Destination, path)
		if err != nil {
			return &errors.OSError{Path: path, Err: err}
		}
		key := "/" + filepath.ToSlash(rel)
		if files.Has(key) {
			return nil
		}
		if entry.IsDir() {
			extraDirs = append(extraDirs, path)
		} else {
			extraFiles = append(extraFiles, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, path := range extraFiles {
		logger.V(1).Infof("deleting %s", path)
		if err := os.Remove(path); err != nil {
			return &errors.OSError{Path: path, Err: err}
		}
	}
	// children sort after their parent, removing in reverse order
	// empties each directory before it is removed
	sort.Sort(sort.Reverse(sort.StringSlice(extraDirs)))
	for _, path := range extraDirs {
		logger.V(1).Infof("deleting %s", path)
		if err := os.Remove(path); err != nil {
			return &errors.OSError{Path: path, Err: err}
		}
	}
	return nil
}
