// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/absmach/rtlexporter"
	"github.com/absmach/rtlexporter/logger"
	"github.com/absmach/rtlexporter/pkg/uuid"
	"github.com/absmach/rtlexporter/weather"
	"github.com/absmach/rtlexporter/weather/api"
	"github.com/absmach/rtlexporter/weather/flex"
	"github.com/absmach/rtlexporter/weather/mocks"
	wxprometheus "github.com/absmach/rtlexporter/weather/prometheus"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	svcName    = "weather-exporter"
	instanceID = "5de9b29a-feb9-11ed-be56-0242ac120002"
	emosLine   = `{"model" : "EMOS-E6016", "id" : 104, "channel" : 1, "battery_ok" : 1, "temperature_C" : 20.600, "humidity" : 23}`
)

func newService(sink weather.Sink) weather.Service {
	classifier := weather.NewClassifier(weather.FlexConfig{Model: "Flex-TH", ID: "flex", Calibration: flex.DefaultCalibration}, nil, nil)
	return weather.New(classifier, sink)
}

func TestHealth(t *testing.T) {
	id, err := uuid.NewMock().ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	ts := httptest.NewServer(api.MakeHandler(svcName, id, prometheus.NewRegistry()))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/health")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/health+json", res.Header.Get("Content-Type"))

	var info rtlexporter.HealthInfo
	err = json.NewDecoder(res.Body).Decode(&info)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, "pass", info.Status)
	assert.Equal(t, id, info.InstanceID)
	assert.Equal(t, svcName+" service", info.Description)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := wxprometheus.NewSink(reg)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	_, err = newService(sink).Handle(context.Background(), []byte(emosLine))
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	ts := httptest.NewServer(api.MakeHandler(svcName, instanceID, reg))
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `weather_temperature_celsius{channel="1",id="104",model="EMOS-E6016"} 20.6`)
	assert.Contains(t, string(body), `weather_humidity_percent{channel="1",id="104",model="EMOS-E6016"} 23`)
	assert.Contains(t, string(body), `weather_battery_ok{channel="1",id="104",model="EMOS-E6016"} 1`)
}

func TestMetricsMiddleware(t *testing.T) {
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "request_count"}, []string{"method"})
	latencyVec := prometheus.NewSummaryVec(prometheus.SummaryOpts{Name: "request_latency"}, []string{"method"})
	counter := kitprometheus.NewCounter(counterVec)
	latency := kitprometheus.NewSummary(latencyVec)
	svc := api.MetricsMiddleware(newService(mocks.NewSink()), counter, latency)

	_, err := svc.Handle(context.Background(), []byte(emosLine))
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	_, err = svc.Handle(context.Background(), []byte("garbage"))
	assert.NotNil(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(counterVec.WithLabelValues("handle")))
	assert.Equal(t, 1, testutil.CollectAndCount(latencyVec))
}

type recorder struct {
	mu   sync.Mutex
	logs []string
}

var _ logger.Logger = (*recorder)(nil)

func (r *recorder) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, level+": "+msg)
}

func (r *recorder) Debug(msg string) { r.add("debug", msg) }
func (r *recorder) Info(msg string)  { r.add("info", msg) }
func (r *recorder) Warn(msg string)  { r.add("warn", msg) }
func (r *recorder) Error(msg string) { r.add("error", msg) }
func (r *recorder) Fatal(msg string) { r.add("fatal", msg) }

func TestLoggingMiddleware(t *testing.T) {
	cases := []struct {
		desc  string
		line  string
		names map[string]string
		log   string
	}{
		{
			desc:  "log named sensor",
			line:  emosLine,
			names: map[string]string{"104": "Living Room"},
			log:   "info: Living Room (EMOS-E6016, ch 1): 20.6°C, 23%, battery ok.",
		},
		{
			desc: "log unnamed sensor",
			line: emosLine,
			log:  "info: Unknown_Sensor_104 (EMOS-E6016, ch 1)",
		},
		{
			desc: "log malformed record",
			line: `{"model"`,
			log:  "warn: handle record took",
		},
		{
			desc: "log record without measurements",
			line: `{"model": "EMOS-E6016", "id": 104}`,
			log:  "debug: handle record took",
		},
	}

	for _, tc := range cases {
		rec := &recorder{}
		svc := api.LoggingMiddleware(newService(mocks.NewSink()), rec, tc.names)
		_, _ = svc.Handle(context.Background(), []byte(tc.line))

		require.Len(t, rec.logs, 1, fmt.Sprintf("%s: expected one log line", tc.desc))
		assert.True(t, strings.HasPrefix(rec.logs[0], tc.log), fmt.Sprintf("%s: expected %q to start with %q", tc.desc, rec.logs[0], tc.log))
	}
}
