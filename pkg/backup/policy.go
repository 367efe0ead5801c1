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

// Package backup implements the create, restore and find engines
package backup

// Resolution is the operator's answer to a failed per-file operation
type Resolution int

const (
	// ResolutionCancel aborts the whole run, leaving any volumes written
	// so far on disk
	ResolutionCancel Resolution = iota
	// ResolutionIgnore drops the entry from the working set and proceeds
	ResolutionIgnore
	// ResolutionRetry re-attempts the failed operation from the top
	ResolutionRetry
)

// Policy decides how per-file errors are resolved during create and
// restore. The CLI binds an interactive prompt; tests and non-interactive
// runs use the static policies below
type Policy interface {
	// OnReadError is consulted when reading or inspecting a file fails
	OnReadError(key string, err error) Resolution
	// OnWriteError is consulted when the tar stream layer fails.
	// Ignoring a half-written member is unsafe, so implementations may
	// only answer cancel or retry
	OnWriteError(err error) Resolution
}

type staticPolicy struct {
	read Resolution
}

func (p staticPolicy) OnReadError(key string, err error) Resolution { return p.read }

func (p staticPolicy) OnWriteError(err error) Resolution { return ResolutionCancel }

// CancelPolicy cancels the run on the first error
func CancelPolicy() Policy {
	return staticPolicy{read: ResolutionCancel}
}

// IgnorePolicy drops failing entries and carries on, as selected by the
// --ignore flag. Write errors still cancel
func IgnorePolicy() Policy {
	return staticPolicy{read: ResolutionIgnore}
}
