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

// Package version implements the `version` command
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2e8/siddar/pkg/cmd"
	"github.com/2e8/siddar/pkg/log"
)

// versionCore is the core version, prerelease is appended when not empty
const versionCore = "0.3.0"
const versionPreRelease = ""

// Version returns the siddar CLI version
func Version() string {
	version := versionCore
	if versionPreRelease != "" {
		version += "-" + versionPreRelease
	}
	return version
}

// NewCommand returns a new cobra.Command for version
func NewCommand(logger log.Logger, streams cmd.IOStreams) *cobra.Command {
	return &cobra.Command{
		Args:  cobra.NoArgs,
		Use:   "version",
		Short: "Prints the siddar CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(streams.Out, "siddar version", Version())
			return nil
		},
	}
}
