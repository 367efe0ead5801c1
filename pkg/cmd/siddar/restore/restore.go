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

// Package restore implements the `restore` command
package restore

import (
	"github.com/spf13/cobra"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/cmd"
	"github.com/2e8/siddar/pkg/log"
)

type flagpole struct {
	Include []string
	Exclude []string
	Delete  bool
	Ignore  bool
}

// NewCommand returns a new cobra.Command for backup restoration
func NewCommand(logger log.Logger, streams cmd.IOStreams) *cobra.Command {
	flags := &flagpole{}
	command := &cobra.Command{
		Args:  cobra.ExactArgs(3),
		Use:   "restore <repository> <name> <destination>",
		Short: "Restores a backup into a directory",
		Long: "Restores the backup <name> from <repository> under the <destination> " +
			"directory, extracting only files that are missing or differ, and " +
			"restoring modification times",
		RunE: func(command *cobra.Command, args []string) error {
			policy := cmd.PolicyForStreams(logger, streams, flags.Ignore)
			return backup.Restore(logger, policy, backup.RestoreOptions{
				Repository:  args[0],
				Name:        args[1],
				Destination: args[2],
				Include:     flags.Include,
				Exclude:     flags.Exclude,
				Delete:      flags.Delete,
			})
		},
	}
	command.Flags().StringArrayVarP(&flags.Include, "include", "i", nil, "glob pattern of keys to include, repeatable")
	command.Flags().StringArrayVarP(&flags.Exclude, "exclude", "e", nil, "glob pattern of keys to exclude, repeatable")
	command.Flags().BoolVarP(&flags.Delete, "delete", "d", false, "delete destination entries not present in the backup")
	command.Flags().BoolVarP(&flags.Ignore, "ignore", "g", false, "skip unrestorable files instead of prompting")
	return command
}
