// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"sync"

	"github.com/absmach/rtlexporter/weather"
)

var _ weather.Sink = (*Sink)(nil)

type key struct {
	metric weather.Metric
	labels weather.Labels
}

// Sink is an in-memory weather.Sink.
type Sink struct {
	mu     sync.Mutex
	values map[key]float64
	writes int
}

// NewSink returns an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{values: make(map[key]float64)}
}

// Set implements weather.Sink.
func (s *Sink) Set(metric weather.Metric, labels weather.Labels, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key{metric, labels}] = value
	s.writes++
}

// Get returns the stored value for metric and labels.
func (s *Sink) Get(metric weather.Metric, labels weather.Labels) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key{metric, labels}]
	return v, ok
}

// Len returns the number of stored series.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.values)
}

// Writes returns the number of Set calls.
func (s *Sink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes
}
