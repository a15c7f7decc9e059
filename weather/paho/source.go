// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package paho receives rtl_433 events published to an MQTT broker.
package paho

import (
	"fmt"
	"sync"
	"time"

	"github.com/absmach/rtlexporter/pkg/errors"
	"github.com/absmach/rtlexporter/weather"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos        = 0
	lineBuffer = 64
	diagBuffer = 16
)

var (
	// ErrConnect indicates that the broker could not be reached.
	ErrConnect = errors.New("failed to connect to MQTT broker")

	// ErrSubscribe indicates that the events topic could not be subscribed to.
	ErrSubscribe = errors.New("failed to subscribe to MQTT topic")

	// ErrConnectionLost indicates that the broker connection dropped.
	ErrConnectionLost = errors.New("MQTT connection lost")

	// ErrClosed indicates that the source was closed locally.
	ErrClosed = errors.New("MQTT source closed")

	errTimeout = errors.New("operation timed out")
)

// Config holds the broker connection settings.
type Config struct {
	URL     string        `env:"URL"     envDefault:"tcp://localhost:1883"`
	Topic   string        `env:"TOPIC"   envDefault:"rtl_433/+/events"`
	User    string        `env:"USER"    envDefault:""`
	Pass    string        `env:"PASS"    envDefault:""`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// ConnectRetry bounds how long the initial connection is retried.
	ConnectRetry time.Duration `env:"CONNECT_RETRY" envDefault:"2m"`
}

var _ weather.Source = (*Source)(nil)

// Source delivers MQTT message payloads as upstream lines.
type Source struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration

	lines       chan string
	diagnostics chan string
	done        chan struct{}
	once        sync.Once

	mu  sync.Mutex
	err error
}

// Connect connects to the broker and subscribes to the configured topic.
func Connect(cfg Config, clientID string) (*Source, error) {
	s := newSource(cfg.Topic, cfg.Timeout)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Pass)
	opts.SetAutoReconnect(false)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.diagnose(fmt.Sprintf("connected to MQTT broker %s", cfg.URL))
	})
	opts.SetConnectionLostHandler(s.connectionLost)

	s.client = mqtt.NewClient(opts)
	if err := wait(s.client.Connect(), cfg.Timeout); err != nil {
		s.client.Disconnect(0)
		return nil, errors.Wrap(ErrConnect, err)
	}

	if err := wait(s.client.Subscribe(s.topic, qos, s.handle), cfg.Timeout); err != nil {
		s.client.Disconnect(0)
		return nil, errors.Wrap(ErrSubscribe, err)
	}

	return s, nil
}

func newSource(topic string, timeout time.Duration) *Source {
	return &Source{
		topic:       topic,
		timeout:     timeout,
		lines:       make(chan string, lineBuffer),
		diagnostics: make(chan string, diagBuffer),
		done:        make(chan struct{}),
	}
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

// Close unsubscribes and disconnects from the broker.
func (s *Source) Close() error {
	if !s.terminate(ErrClosed) {
		return nil
	}
	if s.client == nil {
		return nil
	}

	err := wait(s.client.Unsubscribe(s.topic), s.timeout)
	s.client.Disconnect(uint(s.timeout / time.Millisecond))
	return err
}

// handle blocks the delivering client until the message is consumed, which
// pushes back on the broker when ingestion falls behind.
func (s *Source) handle(_ mqtt.Client, msg mqtt.Message) {
	select {
	case s.lines <- string(msg.Payload()):
	case <-s.done:
	}
}

func (s *Source) connectionLost(_ mqtt.Client, err error) {
	s.terminate(errors.Wrap(ErrConnectionLost, err))
}

func (s *Source) diagnose(msg string) {
	select {
	case s.diagnostics <- msg:
	default:
	}
}

// terminate records err and closes Done. It reports whether this call
// was the one that terminated the source.
func (s *Source) terminate(err error) bool {
	terminated := false
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
		terminated = true
	})
	return terminated
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errTimeout
	}
	return token.Error()
}
