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

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// custom CLI loading spinner for siddar
var spinnerFrames = []string{
	"⠈⠁",
	"⠈⠑",
	"⠈⠱",
	"⠈⡱",
	"⢀⡱",
	"⢄⡱",
	"⢄⡱",
	"⢆⡱",
	"⢎⡱",
	"⢎⡰",
	"⢎⡠",
	"⢎⡀",
	"⢎⠁",
	"⠎⠁",
	"⠊⠁",
}

// spinner is a simple and efficient CLI loading spinner
// It is simplistic and assumes that the line length will not change.
// It is best used indirectly via Status (see status.go)
type spinner struct {
	frames  []string
	stop    chan struct{}
	ticker  *time.Ticker
	writer  io.Writer
	mu      *sync.Mutex
	running bool
	// protected by mu
	prefix string
	suffix string
}

// newSpinner initializes and returns a new spinner that will write to w
func newSpinner(w io.Writer) *spinner {
	return &spinner{
		frames: spinnerFrames,
		stop:   make(chan struct{}, 1),
		ticker: time.NewTicker(time.Millisecond * 100),
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// SetPrefix sets the prefix to print before the spinner
func (s *spinner) SetPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
}

// SetSuffix sets the suffix to print after the spinner
func (s *spinner) SetSuffix(suffix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffix = suffix
}

// Start starts the spinner running
func (s *spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	go func() {
		for {
			for _, frame := range s.frames {
				select {
				case <-s.stop:
					return
				case <-s.ticker.C:
					func() {
						s.mu.Lock()
						defer s.mu.Unlock()
						fmt.Fprintf(s.writer, "\r%s%s%s", s.prefix, frame, s.suffix)
					}()
				}
			}
		}
	}()
}

// Stop signals the spinner to stop
func (s *spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.stop <- struct{}{}
}

// Write implements io.Writer, interrupting the spinner so that writes
// do not collide with an in-flight frame
func (s *spinner) Write(p []byte) (int, error) {
	s.mu.Lock()
	wasRunning := s.running
	s.mu.Unlock()
	s.Stop()
	if _, err := s.writer.Write([]byte("\r")); err != nil {
		return 0, err
	}
	n, err := s.writer.Write(p)
	if wasRunning {
		s.Start()
	}
	return n, err
}
