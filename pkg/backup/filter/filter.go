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

// Package filter applies shell-glob include/exclude patterns to a
// FileList. Patterns match against the full key, which always begins
// with `/`
package filter

import (
	"path"

	"github.com/2e8/siddar/pkg/backup/catalogue"
	"github.com/2e8/siddar/pkg/errors"
)

// matchAny reports whether key matches any of the glob patterns
func matchAny(patterns []string, key string) (bool, error) {
	for _, p := range patterns {
		ok, err := path.Match(p, key)
		if err != nil {
			return false, &errors.PreconditionError{Reason: "bad glob pattern " + p}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Include keeps only the keys matching at least one pattern.
// An empty pattern list is a no-op
func Include(files *catalogue.FileList, patterns []string) error {
	return include(files, patterns, false)
}

// IncludeHierarchy keeps the keys matching at least one pattern plus
// every ancestor directory of a match, so that containing directories
// survive the filter. An empty pattern list is a no-op
func IncludeHierarchy(files *catalogue.FileList, patterns []string) error {
	return include(files, patterns, true)
}

func include(files *catalogue.FileList, patterns []string, hierarchy bool) error {
	if len(patterns) == 0 {
		return nil
	}
	keys := files.Keys()
	for _, key := range keys {
		info, _ := files.Get(key)
		info.Marked = false
	}
	for _, key := range keys {
		ok, err := matchAny(patterns, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		info, _ := files.Get(key)
		info.Marked = true
		if !hierarchy {
			continue
		}
		for dir := path.Dir(key); dir != "/"; dir = path.Dir(dir) {
			if parent, found := files.Get(dir); found {
				parent.Marked = true
			}
		}
	}
	for _, key := range keys {
		info, _ := files.Get(key)
		if !info.Marked {
			files.Delete(key)
		}
	}
	return nil
}

// Exclude removes every key matching any of the patterns
func Exclude(files *catalogue.FileList, patterns []string) error {
	if len(patterns) == 0 {
		return nil
	}
	for _, key := range files.Keys() {
		ok, err := matchAny(patterns, key)
		if err != nil {
			return err
		}
		if ok {
			files.Delete(key)
		}
	}
	return nil
}

// FixHierarchy synthesizes any missing ancestor directory entries, so
// that every key's parent chain exists up to `/`. Synthesized directories
// take the mtime of the descendant that triggered their insertion
func FixHierarchy(files *catalogue.FileList) {
	for _, key := range files.Keys() {
		info, _ := files.Get(key)
		for dir := path.Dir(key); dir != "/"; dir = path.Dir(dir) {
			if files.Has(dir) {
				continue
			}
			files.Put(dir, catalogue.NewDirInfo(info.MTime))
		}
	}
}
