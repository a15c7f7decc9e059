// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"sync"

	"github.com/absmach/rtlexporter/weather"
)

var _ weather.Source = (*Source)(nil)

// Source is a weather.Source driven by the test.
type Source struct {
	lines       chan string
	diagnostics chan string
	done        chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
	once   sync.Once
}

// NewSource returns a source with the given line and diagnostic buffers.
func NewSource(lineBuf, diagBuf int) *Source {
	return &Source{
		lines:       make(chan string, lineBuf),
		diagnostics: make(chan string, diagBuf),
		done:        make(chan struct{}),
	}
}

// Send queues a line.
func (s *Source) Send(line string) {
	s.lines <- line
}

// Diagnose queues a diagnostic message.
func (s *Source) Diagnose(msg string) {
	s.diagnostics <- msg
}

// Exit marks the upstream as terminated with err.
func (s *Source) Exit(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// EndOutput closes the line channel without terminating.
func (s *Source) EndOutput() {
	close(s.lines)
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Lines implements weather.Source.
func (s *Source) Lines() <-chan string {
	return s.lines
}

// Diagnostics implements weather.Source.
func (s *Source) Diagnostics() <-chan string {
	return s.diagnostics
}

// Done implements weather.Source.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Err implements weather.Source.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close implements weather.Source.
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Exit(nil)
	return nil
}
