// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package weather

import (
	"fmt"
	"strings"
)

// Labels identify one physical sensor's series.
type Labels struct {
	Model   string
	ID      string
	Channel string
}

// Reading is the normalized content of one record. Measurements that the
// record did not carry are nil.
type Reading struct {
	Labels
	Temperature *float64
	Humidity    *float64
	BatteryOK   *float64
	RSSI        *float64
}

// Empty reports whether the reading carries no measurement.
func (r Reading) Empty() bool {
	return r.Temperature == nil && r.Humidity == nil && r.BatteryOK == nil && r.RSSI == nil
}

// Measurements returns the present measurements keyed by metric.
func (r Reading) Measurements() map[Metric]float64 {
	ms := make(map[Metric]float64, 4)
	if r.Temperature != nil {
		ms[Temperature] = *r.Temperature
	}
	if r.Humidity != nil {
		ms[Humidity] = *r.Humidity
	}
	if r.BatteryOK != nil {
		ms[BatteryOK] = *r.BatteryOK
	}
	if r.RSSI != nil {
		ms[RSSI] = *r.RSSI
	}
	return ms
}

// String formats the reading the way it is logged, e.g.
// "20.6°C, 23%, battery ok".
func (r Reading) String() string {
	var parts []string
	if r.Temperature != nil {
		parts = append(parts, fmt.Sprintf("%.1f°C", *r.Temperature))
	}
	if r.Humidity != nil {
		parts = append(parts, fmt.Sprintf("%g%%", *r.Humidity))
	}
	if r.BatteryOK != nil {
		state := "battery low"
		if *r.BatteryOK != 0 {
			state = "battery ok"
		}
		parts = append(parts, state)
	}
	if r.RSSI != nil {
		parts = append(parts, fmt.Sprintf("rssi %g", *r.RSSI))
	}
	if len(parts) == 0 {
		return "no measurements"
	}
	return strings.Join(parts, ", ")
}

// FahrenheitToCelsius converts a Fahrenheit temperature.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
