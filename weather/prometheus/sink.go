// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package prometheus publishes weather readings as Prometheus gauges.
package prometheus

import (
	"fmt"

	"github.com/absmach/rtlexporter/weather"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather"

var labelNames = []string{"model", "id", "channel"}

var gaugeOpts = map[weather.Metric]prometheus.GaugeOpts{
	weather.Temperature: {
		Namespace: namespace,
		Name:      "temperature_celsius",
		Help:      "Temperature in Celsius",
	},
	weather.Humidity: {
		Namespace: namespace,
		Name:      "humidity_percent",
		Help:      "Humidity percentage",
	},
	weather.BatteryOK: {
		Namespace: namespace,
		Name:      "battery_ok",
		Help:      "Battery status (1=OK, 0=Low)",
	},
	weather.RSSI: {
		Namespace: namespace,
		Name:      "rssi",
		Help:      "Received signal strength as reported by rtl_433",
	},
}

var _ weather.Sink = (*sink)(nil)

type sink struct {
	gauges map[weather.Metric]*prometheus.GaugeVec
}

// NewSink registers one gauge vector per weather metric with reg and
// returns a sink writing into them.
func NewSink(reg prometheus.Registerer) (weather.Sink, error) {
	s := &sink{gauges: make(map[weather.Metric]*prometheus.GaugeVec, len(weather.Metrics))}
	for _, metric := range weather.Metrics {
		opts, ok := gaugeOpts[metric]
		if !ok {
			return nil, fmt.Errorf("no gauge defined for metric %s", metric)
		}
		gauge := prometheus.NewGaugeVec(opts, labelNames)
		if err := reg.Register(gauge); err != nil {
			return nil, fmt.Errorf("failed to register %s gauge: %w", metric, err)
		}
		s.gauges[metric] = gauge
	}
	return s, nil
}

// Set implements weather.Sink. Each series is updated atomically, so a
// concurrent scrape never observes a torn value.
func (s *sink) Set(metric weather.Metric, labels weather.Labels, value float64) {
	gauge, ok := s.gauges[metric]
	if !ok {
		return
	}
	gauge.WithLabelValues(labels.Model, labels.ID, labels.Channel).Set(value)
}
