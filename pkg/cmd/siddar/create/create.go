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

// Package create implements the `create` command
package create

import (
	"github.com/spf13/cobra"

	"github.com/2e8/siddar/pkg/apis/config"
	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/backup/volume"
	"github.com/2e8/siddar/pkg/cmd"
	"github.com/2e8/siddar/pkg/log"
)

type flagpole struct {
	Reference   string
	Size        int64
	Include     []string
	Exclude     []string
	Ignore      bool
	Compression string
	Recalculate bool
}

// NewCommand returns a new cobra.Command for backup creation
func NewCommand(logger log.Logger, streams cmd.IOStreams) *cobra.Command {
	flags := &flagpole{}
	command := &cobra.Command{
		Args:  cobra.ExactArgs(3),
		Use:   "create <source> <repository> <name>",
		Short: "Creates a backup of a directory tree",
		Long: "Creates a content-addressed backup of <source> inside the <repository> " +
			"directory under the basename <name>, deduplicating file bodies and, " +
			"with --reference, reusing content already stored by a prior backup",
		RunE: func(command *cobra.Command, args []string) error {
			return runE(logger, streams, flags, command, args)
		},
	}
	command.Flags().StringVarP(&flags.Reference, "reference", "r", "", "basename of a prior backup to create a differential backup against")
	command.Flags().Int64VarP(&flags.Size, "size", "s", 0, "maximum size of one volume in bytes")
	command.Flags().StringArrayVarP(&flags.Include, "include", "i", nil, "glob pattern of keys to include, repeatable")
	command.Flags().StringArrayVarP(&flags.Exclude, "exclude", "e", nil, "glob pattern of keys to exclude, repeatable")
	command.Flags().BoolVarP(&flags.Ignore, "ignore", "g", false, "drop unreadable files instead of prompting")
	command.Flags().StringVarP(&flags.Compression, "compression", "c", "", "volume compression, one of: tar, gz, bz2")
	command.Flags().BoolVarP(&flags.Recalculate, "recalculate", "a", false, "hash every file even when mtime and size match the reference")
	return command
}

func runE(logger log.Logger, streams cmd.IOStreams, flags *flagpole, command *cobra.Command, args []string) error {
	source, repository, name := args[0], args[1], args[2]

	defaults, err := config.Load(repository)
	if err != nil {
		return err
	}
	if !command.Flags().Changed("size") {
		flags.Size = defaults.PartSize
	}
	if !command.Flags().Changed("compression") {
		flags.Compression = defaults.Compression
	}
	codec, err := volume.ParseCodec(flags.Compression)
	if err != nil {
		return err
	}

	policy := cmd.PolicyForStreams(logger, streams, flags.Ignore)
	return backup.Create(logger, policy, backup.CreateOptions{
		Source:      source,
		Repository:  repository,
		Name:        name,
		Reference:   flags.Reference,
		MaxPartSize: flags.Size,
		Codec:       codec,
		Include:     flags.Include,
		Exclude:     flags.Exclude,
		Recalculate: flags.Recalculate,
	})
}
