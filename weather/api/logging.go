// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/absmach/rtlexporter/logger"
	"github.com/absmach/rtlexporter/weather"
)

var _ weather.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logger.Logger
	names  map[string]string
	svc    weather.Service
}

// LoggingMiddleware adds logging facilities to the core service. names maps
// sensor ids to the display names used in log lines.
func LoggingMiddleware(svc weather.Service, logger logger.Logger, names map[string]string) weather.Service {
	return &loggingMiddleware{
		logger: logger,
		names:  names,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Handle(ctx context.Context, line []byte) (r weather.Reading, err error) {
	defer func(begin time.Time) {
		if err != nil {
			lm.logger.Warn(fmt.Sprintf("handle record took %s to complete with error: %s.", time.Since(begin), err))
			return
		}
		if r.Empty() {
			lm.logger.Debug(fmt.Sprintf("handle record took %s to complete without measurements.", time.Since(begin)))
			return
		}
		lm.logger.Info(fmt.Sprintf("%s (%s, ch %s): %s. Took %s to complete without errors.", lm.name(r.ID), r.Model, r.Channel, r, time.Since(begin)))
	}(time.Now())

	return lm.svc.Handle(ctx, line)
}

func (lm *loggingMiddleware) name(id string) string {
	if n, ok := lm.names[id]; ok {
		return n
	}
	return fmt.Sprintf("Unknown_Sensor_%s", id)
}
