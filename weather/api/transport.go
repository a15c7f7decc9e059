// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api contains the exporter's HTTP handler and service middlewares.
package api

import (
	"net/http"

	"github.com/absmach/rtlexporter"
	"github.com/go-zoo/bone"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MakeHandler returns a HTTP handler for API endpoints. Metrics are served
// from gatherer.
func MakeHandler(svcName, instanceID string, gatherer prometheus.Gatherer) http.Handler {
	r := bone.New()
	r.GetFunc("/health", rtlexporter.Health(svcName, instanceID))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
