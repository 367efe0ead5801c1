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

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/backup/filter"
	"github.com/2e8/siddar/pkg/backup/hashsum"
	"github.com/2e8/siddar/pkg/backup/volume"
	"github.com/2e8/siddar/pkg/backup/walk"
	"github.com/2e8/siddar/pkg/errors"
	"github.com/2e8/siddar/pkg/log"

	"github.com/2e8/siddar/pkg/internal/util/cli"
)

// DefaultMaxPartSize is the default bound on a volume's size
const DefaultMaxPartSize = 1024 * 1024 * 1020

// CreateOptions holds all the create engine's inputs
type CreateOptions struct {
	// Source is the directory tree to back up
	Source string
	// Repository is the directory receiving the catalogue and volumes
	Repository string
	// Name is the backup basename
	Name string
	// Reference is the basename of a prior backup to create a
	// differential backup against, empty for a full backup
	Reference string
	// MaxPartSize bounds each volume's pre-compression size
	MaxPartSize int64
	// Codec selects the volume compression
	Codec volume.Codec
	// Include and Exclude are glob patterns over the tree's keys
	Include []string
	Exclude []string
	// Recalculate forces hashing even for entries whose mtime and size
	// match the reference
	Recalculate bool
}

// Create produces a new backup: it enumerates and filters the source,
// matches entries against the reference catalogue, hashes what needs
// hashing, and streams any content not yet present in the repository
// into a fresh volume set, finishing with the catalogue file
func Create(logger log.Logger, policy Policy, opts CreateOptions) error {
	if err := checkCreatePreconditions(&opts); err != nil {
		return err
	}

	status := cli.StatusForLogger(logger)
	defer status.End(false)

	status.Start("Enumerating source 🔍")
	files, err := enumerateSource(opts)
	if err != nil {
		return err
	}

	reference, hashes, err := loadReference(opts)
	if err != nil {
		return err
	}

	writer, err := volume.NewWriter(filepath.Join(opts.Repository, opts.Name), opts.MaxPartSize, opts.Codec)
	if err != nil {
		return err
	}

	status.Start("Writing volumes 📦")
	if err := writeFiles(logger, policy, opts, files, reference, hashes, writer); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	status.Start("Saving catalogue 🗒")
	cataloguePath := filepath.Join(opts.Repository, opts.Name+".cat")
	if err := catalogue.WriteFile(cataloguePath, files, hashes); err != nil {
		return err
	}
	status.End(true)
	return nil
}

func checkCreatePreconditions(opts *CreateOptions) error {
	if opts.MaxPartSize == 0 {
		opts.MaxPartSize = DefaultMaxPartSize
	}
	if !isDir(opts.Source) {
		return &errors.PreconditionError{Reason: "source " + opts.Source + " is not a directory"}
	}
	if !isDir(opts.Repository) {
		return &errors.PreconditionError{Reason: "repository " + opts.Repository + " is not a directory"}
	}
	cataloguePath := filepath.Join(opts.Repository, opts.Name+".cat")
	if _, err := os.Stat(cataloguePath); err == nil {
		return &errors.PreconditionError{Reason: "backup " + opts.Name + " already exists in " + opts.Repository}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func enumerateSource(opts CreateOptions) (*catalogue.FileList, error) {
	files, err := walk.Tree(opts.Source)
	if err != nil {
		return nil, err
	}
	if err := filter.IncludeHierarchy(files, opts.Include); err != nil {
		return nil, err
	}
	if err := filter.Exclude(files, opts.Exclude); err != nil {
		return nil, err
	}
	return files, nil
}

func loadReference(opts CreateOptions) (*catalogue.FileList, catalogue.HashList, error) {
	if opts.Reference == "" {
		return nil, catalogue.NewHashList(), nil
	}
	refPath := filepath.Join(opts.Repository, opts.Reference+".cat")
	reference, refHashes, err := catalogue.ReadFile(refPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load reference %s", opts.Reference)
	}
	// the reference's content keys carry forward: content they name is
	// already stored in this repository and is never written again
	return reference, refHashes.Copy(), nil
}

// writeFiles runs the per-file dedup/differential loop in sorted key
// order. Sorted order decides which backup owns duplicate content (the
// first file with a given content key wins) and therefore the exact byte
// layout of the volumes
func writeFiles(logger log.Logger, policy Policy, opts CreateOptions,
	files *catalogue.FileList, reference *catalogue.FileList,
	hashes catalogue.HashList, writer *volume.Writer) error {
	for _, key := range files.Keys() {
		info, _ := files.Get(key)
		if info.IsDir {
			continue
		}
		for {
			err := writeOne(logger, opts, key, info, reference, hashes, writer)
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
			return errors.Wrapf(err, "failed to archive %s", key)
		}
	}
	return nil
}

// resolve routes the error to the policy's read or write handler
func resolve(policy Policy, key string, err error) Resolution {
	if errors.TarErrorForError(err) != nil {
		return policy.OnWriteError(err)
	}
	return policy.OnReadError(key, err)
}

// writeOne is a single attempt at capturing one file
func writeOne(logger log.Logger, opts CreateOptions, key string, info *catalogue.FileInfo,
	reference *catalogue.FileList, hashes catalogue.HashList, writer *volume.Writer) error {
	sourcePath := filepath.Join(opts.Source, filepath.FromSlash(key))

	// metadata is read just-in-time, immediately before capture
	stat, err := os.Stat(sourcePath)
	if err != nil {
		return &errors.IOError{Path: sourcePath, Err: err}
	}
	info.MTime = stat.ModTime().Unix()
	info.Size = stat.Size()

	// rsync-style differential match: same mtime and size as the
	// reference entry means the content is assumed unchanged and its
	// hash is copied instead of recomputed. --recalculate bypasses this
	if !opts.Recalculate && reference != nil {
		if refInfo, ok := reference.Get(key); ok && refInfo.Inspected() &&
			refInfo.MTime == info.MTime && refInfo.Size == info.Size {
			info.Hash = refInfo.Hash
			logger.V(1).Infof("reused %s", key)
			return nil
		}
	}

	hash, err := hashsum.File(sourcePath)
	if err != nil {
		return err
	}
	info.Hash = hash

	contentKey, err := info.ContentKey(key)
	if err != nil {
		return err
	}
	if _, stored := hashes[contentKey]; stored {
		logger.V(1).Infof("deduplicated %s", key)
		return nil
	}
	if err := writer.Add(sourcePath, contentKey); err != nil {
		return err
	}
	hashes[contentKey] = opts.Name
	logger.V(1).Infof("stored %s", key)
	return nil
}
