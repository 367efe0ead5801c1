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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/2e8/siddar/pkg/backup"
	"github.com/2e8/siddar/pkg/errors"
	"github.com/2e8/siddar/pkg/log"
)

func TestPolicyForStreamsNonInteractive(t *testing.T) {
	streams := IOStreams{In: strings.NewReader(""), Out: io.Discard, ErrOut: io.Discard}

	// --ignore drops entries without asking
	policy := PolicyForStreams(log.NoopLogger{}, streams, true)
	if got := policy.OnReadError("/a", errors.New("boom")); got != backup.ResolutionIgnore {
		t.Errorf("expected ignore, got %v", got)
	}
	if got := policy.OnWriteError(errors.New("boom")); got != backup.ResolutionCancel {
		t.Errorf("write errors must cancel under the ignore policy, got %v", got)
	}

	// without --ignore and without a terminal, the first error cancels
	policy = PolicyForStreams(log.NoopLogger{}, streams, false)
	if got := policy.OnReadError("/a", errors.New("boom")); got != backup.ResolutionCancel {
		t.Errorf("expected cancel, got %v", got)
	}
}

func TestPromptPolicyAnswers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		write    bool
		expected backup.Resolution
	}{
		{name: "retry", input: "r\n", expected: backup.ResolutionRetry},
		{name: "ignore", input: "i\n", expected: backup.ResolutionIgnore},
		{name: "cancel spelled out", input: "cancel\n", expected: backup.ResolutionCancel},
		{name: "garbage then retry", input: "what\nr\n", expected: backup.ResolutionRetry},
		{name: "eof cancels", input: "", expected: backup.ResolutionCancel},
		{name: "write errors refuse ignore", input: "i\nc\n", write: true, expected: backup.ResolutionCancel},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var errOut bytes.Buffer
			policy := &promptPolicy{
				logger:  log.NoopLogger{},
				in:      bufio.NewReader(strings.NewReader(tc.input)),
				streams: IOStreams{In: strings.NewReader(""), Out: io.Discard, ErrOut: &errOut},
			}
			var got backup.Resolution
			if tc.write {
				got = policy.OnWriteError(errors.New("boom"))
			} else {
				got = policy.OnReadError("/a", errors.New("boom"))
			}
			if got != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, got)
			}
			if !strings.Contains(errOut.String(), "?") {
				t.Errorf("expected a question on stderr, got %q", errOut.String())
			}
		})
	}
}
