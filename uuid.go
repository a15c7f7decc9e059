// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package rtlexporter exports rtl_433 sensor telemetry as Prometheus gauges.
package rtlexporter

// IDProvider specifies an API for generating unique identifiers.
type IDProvider interface {
	// ID generates the unique identifier.
	ID() (string, error)
}
