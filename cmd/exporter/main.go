// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains the weather exporter main function. It runs
// rtl_433 (or subscribes to its MQTT events), turns the decoded sensor
// readings into Prometheus gauges and serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/absmach/rtlexporter"
	"github.com/absmach/rtlexporter/internal"
	"github.com/absmach/rtlexporter/internal/env"
	"github.com/absmach/rtlexporter/internal/server"
	httpserver "github.com/absmach/rtlexporter/internal/server/http"
	wxlog "github.com/absmach/rtlexporter/logger"
	"github.com/absmach/rtlexporter/pkg/uuid"
	"github.com/absmach/rtlexporter/weather"
	"github.com/absmach/rtlexporter/weather/api"
	"github.com/absmach/rtlexporter/weather/flex"
	"github.com/absmach/rtlexporter/weather/paho"
	wxprometheus "github.com/absmach/rtlexporter/weather/prometheus"
	"github.com/absmach/rtlexporter/weather/rtl433"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	svcName         = "weather-exporter"
	envPrefixHTTP   = "WX_EXPORTER_HTTP_"
	envPrefixRTL433 = "WX_EXPORTER_RTL433_"
	envPrefixMQTT   = "WX_EXPORTER_MQTT_"
	defSvcHTTPPort  = "9550"

	sourceProcess = "process"
	sourceMQTT    = "mqtt"
)

type config struct {
	LogLevel            string            `env:"WX_EXPORTER_LOG_LEVEL"             envDefault:"info"`
	Source              string            `env:"WX_EXPORTER_SOURCE"                envDefault:"process"`
	FlexModel           string            `env:"WX_EXPORTER_FLEX_MODEL"            envDefault:"Flex-TH"`
	FlexSpec            string            `env:"WX_EXPORTER_FLEX_SPEC"             envDefault:"m=OOK_PWM,s=500,l=1000,r=4000,bits>=72"`
	FlexID              string            `env:"WX_EXPORTER_FLEX_ID"               envDefault:"flex"`
	FlexTempDivisor     float64           `env:"WX_EXPORTER_FLEX_TEMP_DIVISOR"     envDefault:"597.3"`
	FlexHumidityMask    mask              `env:"WX_EXPORTER_FLEX_HUMIDITY_MASK"    envDefault:"0xDF"`
	FlexHumidityDivisor float64           `env:"WX_EXPORTER_FLEX_HUMIDITY_DIVISOR" envDefault:"4.0"`
	SensorIDs           []string          `env:"WX_EXPORTER_SENSOR_IDS"            envDefault:""         envSeparator:","`
	Models              []string          `env:"WX_EXPORTER_MODELS"                envDefault:""         envSeparator:","`
	SensorNames         map[string]string `env:"WX_EXPORTER_SENSOR_NAMES"          envDefault:""         envSeparator:"," envKeyValSeparator:":"`
	InstanceID          string            `env:"WX_EXPORTER_INSTANCE_ID"           envDefault:""`
}

// mask is a byte that accepts hexadecimal, octal and binary notation.
type mask byte

func (m *mask) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 0, 8)
	if err != nil {
		return err
	}
	*m = mask(v)
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := wxlog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer wxlog.ExitWithError(&exitCode)

	logger.Info(fmt.Sprintf("%s version %s (commit %s, built %s)", svcName, rtlexporter.Version, rtlexporter.Commit, rtlexporter.BuildTime))

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.Parse(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}

	calibration := flex.DefaultCalibration
	calibration.TemperatureDivisor = cfg.FlexTempDivisor
	calibration.HumidityMask = byte(cfg.FlexHumidityMask)
	calibration.HumidityDivisor = cfg.FlexHumidityDivisor
	if err := calibration.Validate(); err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}

	sink, err := wxprometheus.NewSink(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to register weather gauges: %s", err))
		exitCode = 1
		return
	}

	svc := newService(cfg, calibration, sink, logger)

	src, err := newSource(cfg, logger)
	if err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}

	hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svcName, cfg.InstanceID, prometheus.DefaultGatherer), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return weather.Ingest(ctx, src, svc, logger)
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
		exitCode = 1
	}
}

func newService(cfg config, calibration flex.Calibration, sink weather.Sink, logger wxlog.Logger) weather.Service {
	fc := weather.FlexConfig{
		Model:       cfg.FlexModel,
		ID:          cfg.FlexID,
		Calibration: calibration,
	}
	if cfg.FlexSpec == "" {
		fc.Model = ""
	}

	svc := weather.New(weather.NewClassifier(fc, cfg.SensorIDs, cfg.Models), sink)
	svc = api.LoggingMiddleware(svc, logger, cfg.SensorNames)
	counter, latency := internal.MakeMetrics("weather_exporter", "api")
	svc = api.MetricsMiddleware(svc, counter, latency)

	return svc
}

func newSource(cfg config, logger wxlog.Logger) (weather.Source, error) {
	switch cfg.Source {
	case sourceProcess:
		rc := rtl433.Config{}
		if err := env.Parse(&rc, env.Options{Prefix: envPrefixRTL433}); err != nil {
			return nil, fmt.Errorf("failed to load rtl_433 configuration : %w", err)
		}
		args := rc.Args(cfg.FlexModel, cfg.FlexSpec)
		p, err := rtl433.Start(rc.Path, args)
		if err != nil {
			return nil, err
		}
		logger.Info(fmt.Sprintf("started %s %v with pid %d", rc.Path, args, p.Pid()))
		return p, nil
	case sourceMQTT:
		mc := paho.Config{}
		if err := env.Parse(&mc, env.Options{Prefix: envPrefixMQTT}); err != nil {
			return nil, fmt.Errorf("failed to load MQTT configuration : %w", err)
		}
		notify := func(e error, next time.Duration) {
			logger.Warn(fmt.Sprintf("MQTT broker not ready: %s, next try in %s", e, next))
		}
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = mc.ConnectRetry

		var s *paho.Source
		connect := func() (err error) {
			s, err = paho.Connect(mc, fmt.Sprintf("%s-%s", svcName, cfg.InstanceID))
			return err
		}
		if err := backoff.RetryNotify(connect, bo, notify); err != nil {
			return nil, err
		}
		logger.Info(fmt.Sprintf("subscribed to %s on %s", mc.Topic, mc.URL))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown source %q, expected %s or %s", cfg.Source, sourceProcess, sourceMQTT)
	}
}
