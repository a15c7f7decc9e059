// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package paho

import (
	"context"
	"testing"
	"time"

	"github.com/absmach/rtlexporter/logger"
	"github.com/absmach/rtlexporter/pkg/errors"
	"github.com/absmach/rtlexporter/weather"
	"github.com/absmach/rtlexporter/weather/mocks"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	topic    = "rtl_433/host/events"
	timeout  = time.Second
	emosLine = `{"model":"EMOS-E6016","id":104,"channel":1,"battery_ok":1,"temperature_C":20.6,"humidity":23}`
)

var _ mqtt.Message = (*message)(nil)

type message struct {
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return qos }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return topic }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

func TestHandle(t *testing.T) {
	s := newSource(topic, timeout)
	s.handle(nil, message{payload: []byte(emosLine)})

	select {
	case line := <-s.Lines():
		assert.Equal(t, emosLine, line)
	default:
		t.Fatal("expected message payload on lines")
	}
}

func TestHandleAfterClose(t *testing.T) {
	s := newSource(topic, timeout)
	for i := 0; i < lineBuffer; i++ {
		s.handle(nil, message{payload: []byte(emosLine)})
	}
	require.Nil(t, s.Close(), "unexpected error closing source")

	returned := make(chan struct{})
	go func() {
		s.handle(nil, message{payload: []byte(emosLine)})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(timeout):
		t.Fatal("handler blocked after close")
	}
}

func TestConnectionLost(t *testing.T) {
	s := newSource(topic, timeout)
	s.connectionLost(nil, errors.New("EOF"))

	select {
	case <-s.Done():
	default:
		t.Fatal("expected source to terminate")
	}
	assert.True(t, errors.Contains(s.Err(), ErrConnectionLost), "expected connection lost error")

	// A later close keeps the first reason.
	assert.Nil(t, s.Close(), "unexpected error closing source")
	assert.True(t, errors.Contains(s.Err(), ErrConnectionLost), "expected connection lost error")
}

func TestDiagnoseNeverBlocks(t *testing.T) {
	s := newSource(topic, timeout)
	for i := 0; i < 2*diagBuffer; i++ {
		s.diagnose("connected")
	}
	assert.Equal(t, diagBuffer, len(s.Diagnostics()))
}

func TestConnectUnreachable(t *testing.T) {
	cfg := Config{URL: "tcp://127.0.0.1:1", Topic: topic, Timeout: timeout}

	for i := 0; i < 3; i++ {
		s, err := Connect(cfg, "weather-exporter-test")
		assert.Nil(t, s, "expected no source for an unreachable broker")
		assert.True(t, errors.Contains(err, ErrConnect), "expected connect error")
	}
}

func TestIngestFromBroker(t *testing.T) {
	s := newSource(topic, timeout)
	sink := mocks.NewSink()
	svc := weather.New(weather.NewClassifier(weather.FlexConfig{}, nil, nil), sink)

	done := make(chan error, 1)
	go func() {
		done <- weather.Ingest(context.Background(), s, svc, logger.NewMock())
	}()

	s.handle(nil, message{payload: []byte(emosLine)})
	assert.Eventually(t, func() bool { return sink.Len() == 3 }, timeout, 5*time.Millisecond)

	s.connectionLost(nil, errors.New("EOF"))
	select {
	case err := <-done:
		assert.True(t, errors.Contains(err, weather.ErrUpstreamTerminated), "expected upstream termination")
		assert.True(t, errors.Contains(err, ErrConnectionLost), "expected connection lost error")
	case <-time.After(timeout):
		t.Fatal("ingestion did not stop")
	}
}
