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
	"bufio"
	"fmt"
	"strings"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/log"

	"github.com/2e8/siddar/pkg/internal/util/env"
)

// PolicyForStreams binds the error policy the engines consult on per-file
// failures. With ignore set the non-interactive ignore policy is used.
// Otherwise, when stdin is a terminal the operator is prompted to cancel,
// ignore or retry; in non-interactive runs the first error cancels
func PolicyForStreams(logger log.Logger, streams IOStreams, ignore bool) backup.Policy {
	if ignore {
		return backup.IgnorePolicy()
	}
	if env.IsTerminalReader(streams.In) {
		return &promptPolicy{
			logger:  logger,
			in:      bufio.NewReader(streams.In),
			streams: streams,
		}
	}
	return backup.CancelPolicy()
}

// promptPolicy asks the operator on the terminal
type promptPolicy struct {
	logger  log.Logger
	in      *bufio.Reader
	streams IOStreams
}

var _ backup.Policy = &promptPolicy{}

func (p *promptPolicy) OnReadError(key string, err error) backup.Resolution {
	p.logger.Errorf("failed reading %s: %v", key, err)
	return p.ask("[c]ancel, [i]gnore or [r]etry? ", true)
}

func (p *promptPolicy) OnWriteError(err error) backup.Resolution {
	p.logger.Errorf("failed writing volume: %v", err)
	return p.ask("[c]ancel or [r]etry? ", false)
}

func (p *promptPolicy) ask(question string, allowIgnore bool) backup.Resolution {
	for {
		fmt.Fprint(p.streams.ErrOut, question)
		line, err := p.in.ReadString('\n')
		if err != nil {
			return backup.ResolutionCancel
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "c", "cancel":
			return backup.ResolutionCancel
		case "i", "ignore":
			if allowIgnore {
				return backup.ResolutionIgnore
			}
		case "r", "retry":
			return backup.ResolutionRetry
		}
	}
}
