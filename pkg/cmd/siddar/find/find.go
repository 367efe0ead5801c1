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

// Package find implements the `find` command
package find

import (
	"github.com/spf13/cobra"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/cmd"
	"github.com/2e8/siddar/pkg/log"
)

type flagpole struct {
	Include []string
	Exclude []string
}

// NewCommand returns a new cobra.Command for listing backup contents
func NewCommand(logger log.Logger, streams cmd.IOStreams) *cobra.Command {
	flags := &flagpole{}
	command := &cobra.Command{
		Args:  cobra.ExactArgs(2),
		Use:   "find <repository> <name-glob>",
		Short: "Lists the contents of backups",
		Long: "Lists the keys recorded by every catalogue in <repository> whose " +
			"basename matches <name-glob>, one `basename: key` line per entry",
		RunE: func(command *cobra.Command, args []string) error {
			return backup.Find(streams.Out, backup.FindOptions{
				Repository:  args[0],
				NamePattern: args[1],
				Include:     flags.Include,
				Exclude:     flags.Exclude,
			})
		},
	}
	command.Flags().StringArrayVarP(&flags.Include, "include", "i", nil, "glob pattern of keys to include, repeatable")
	command.Flags().StringArrayVarP(&flags.Exclude, "exclude", "e", nil, "glob pattern of keys to exclude, repeatable")
	return command
}
