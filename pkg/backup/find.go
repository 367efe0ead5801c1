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
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/backup/filter"
	"github.com/2e8/siddar/pkg/errors"
)

// FindOptions holds all the find engine's inputs
type FindOptions struct {
	// Repository is the directory holding catalogues
	Repository string
	// NamePattern is a glob over backup basenames
	NamePattern string
	// Include and Exclude are glob patterns over catalogue keys
	Include []string
	Exclude []string
}

// Find lists the filtered contents of every catalogue whose basename
// matches the name pattern, writing `{basename}: {key}` lines to out
func Find(out io.Writer, opts FindOptions) error {
	if !isDir(opts.Repository) {
		return &errors.PreconditionError{Reason: "repository " + opts.Repository + " is not a directory"}
	}
	entries, err := os.ReadDir(opts.Repository)
	if err != nil {
		return &errors.IOError{Path: opts.Repository, Err: err}
	}
	var basenames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".cat") {
			continue
		}
		ok, err := path.Match(opts.NamePattern+".cat", name)
		if err != nil {
			return &errors.PreconditionError{Reason: "bad name pattern " + opts.NamePattern}
		}
		if ok {
			basenames = append(basenames, strings.TrimSuffix(name, ".cat"))
		}
	}
	sort.Strings(basenames)
	for _, basename := range basenames {
		files, _, err := catalogue.ReadFile(filepath.Join(opts.Repository, basename+".cat"))
		if err != nil {
			return errors.Wrapf(err, "failed to load catalogue %s", basename)
		}
		if err := filter.Include(files, opts.Include); err != nil {
			return err
		}
		if err := filter.Exclude(files, opts.Exclude); err != nil {
			return err
		}
		for _, key := range files.Keys() {
			if _, err := fmt.Fprintf(out, "%s: %s\n", basename, key); err != nil {
				return errors.Wrap(err, "failed to write listing")
			}
		}
	}
	return nil
}
