// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package weather

// Metric names a published gauge.
type Metric string

const (
	// Temperature in degrees Celsius.
	Temperature Metric = "temperature"
	// Humidity in percent.
	Humidity Metric = "humidity"
	// BatteryOK is 1 when the battery is fine and 0 when it is low.
	BatteryOK Metric = "battery_ok"
	// RSSI is the received signal strength as reported by rtl_433.
	RSSI Metric = "rssi"
)

// Metrics lists every metric a Sink must accept.
var Metrics = []Metric{Temperature, Humidity, BatteryOK, RSSI}

// Sink stores the latest value for each (metric, labels) pair. Implementations
// must be safe for a single writer with concurrent readers and must never
// expose a partially written value.
type Sink interface {
	// Set upserts the value of metric for labels.
	Set(metric Metric, labels Labels, value float64)
}

// Publish writes every measurement of r into sink.
func Publish(sink Sink, r Reading) {
	for metric, value := range r.Measurements() {
		sink.Set(metric, r.Labels, value)
	}
}
