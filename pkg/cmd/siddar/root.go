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

// Package siddar implements the root siddar cobra command, and the cli Main()
package siddar

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/2e8/siddar/pkg/cmd"
	"github.com/2e8/siddar/pkg/cmd/siddar/create"
	"github.com/2e8/siddar/pkg/cmd/siddar/find"
	"github.com/2e8/siddar/pkg/cmd/siddar/restore"
	"github.com/2e8/siddar/pkg/cmd/siddar/version"
	"github.com/2e8/siddar/pkg/log"
)

type flagpole struct {
	Verbosity int32
	Quiet     bool
}

// NewCommand returns a new cobra.Command implementing the root command for siddar
func NewCommand(logger log.Logger, streams cmd.IOStreams) *cobra.Command {
	flags := &flagpole{}
	command := &cobra.Command{
		Args:  cobra.NoArgs,
		Use:   "siddar",
		Short: "siddar is a deduplicating differential backup tool",
		Long: "siddar backs up directory trees into a repository of size-bounded tar " +
			"volumes plus a textual catalogue, storing each distinct file body once",
		PersistentPreRun: func(command *cobra.Command, args []string) {
			if flags.Quiet {
				// NOTE: if we are coming from app.Run handling this flag is
				// redundant, however it doesn't hurt, and this may be called directly.
				maybeSetWriter(logger, io.Discard)
			}
			maybeSetVerbosity(logger, log.Level(flags.Verbosity))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version(),
	}
	command.SetOut(streams.Out)
	command.SetErr(streams.ErrOut)
	command.PersistentFlags().Int32VarP(
		&flags.Verbosity,
		"verbosity",
		"v",
		0,
		"info log verbosity, higher value produces more output",
	)
	command.PersistentFlags().BoolVarP(
		&flags.Quiet,
		"quiet",
		"q",
		false,
		"silence all stderr output",
	)
	// add all top level subcommands
	command.AddCommand(create.NewCommand(logger, streams))
	command.AddCommand(find.NewCommand(logger, streams))
	command.AddCommand(restore.NewCommand(logger, streams))
	command.AddCommand(version.NewCommand(logger, streams))
	return command
}

// maybeSetWriter will call logger.SetWriter(w) if logger has a SetWriter method
func maybeSetWriter(logger log.Logger, w io.Writer) {
	type writerSetter interface {
		SetWriter(io.Writer)
	}
	v, ok := logger.(writerSetter)
	if ok {
		v.SetWriter(w)
	}
}

// maybeSetVerbosity will call logger.SetVerbosity(verbosity) if logger
// has a SetVerbosity method
func maybeSetVerbosity(logger log.Logger, verbosity log.Level) {
	type verboser interface {
		SetVerbosity(log.Level)
	}
	v, ok := logger.(verboser)
	if ok {
		v.SetVerbosity(verbosity)
	}
}
