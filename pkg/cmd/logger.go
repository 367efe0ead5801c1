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

package cmd

import (
	"os"

	"github.com/2e8/siddar/pkg/log"

	"github.com/2e8/siddar/pkg/internal/util/cli"
)

// NewLogger returns the standard logger used by the siddar CLI
// This logger writes to os.Stderr
func NewLogger() log.Logger {
	return cli.NewLogger(os.Stderr, 0)
}

// ColorEnabled returns true if color is enabled for the logger
// this should be used to control output
func ColorEnabled(logger log.Logger) bool {
	type maybeColorer interface {
		ColorEnabled() bool
	}
	v, ok := logger.(maybeColorer)
	return ok && v.ColorEnabled()
}
