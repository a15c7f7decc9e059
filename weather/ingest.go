// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package weather

import (
	"bytes"
	"context"
	"fmt"

	"github.com/absmach/rtlexporter/logger"
	"github.com/absmach/rtlexporter/pkg/errors"
)

// ErrUpstreamTerminated indicates that the upstream stopped producing records.
var ErrUpstreamTerminated = errors.New("upstream terminated unexpectedly")

// Source is an upstream producer of rtl_433 JSON lines.
type Source interface {
	// Lines delivers upstream output one line at a time. It is closed when
	// the upstream has no more output; Done is closed no later than that
	// upstream terminating.
	Lines() <-chan string

	// Diagnostics delivers upstream diagnostic output. The source never
	// blocks on it; entries may be dropped when nobody reads them.
	Diagnostics() <-chan string

	// Done is closed once the upstream has terminated.
	Done() <-chan struct{}

	// Err returns the reason the upstream terminated, including the tail
	// of its diagnostic output. Valid after Done is closed.
	Err() error

	// Close requests upstream termination and releases its resources.
	Close() error
}

// Ingest feeds lines from src into svc until ctx is canceled or src
// terminates. Cancellation closes src and returns nil; termination of src
// returns ErrUpstreamTerminated wrapping the reason. A line that fails to
// decode is logged and skipped.
func Ingest(ctx context.Context, src Source, svc Service, logger logger.Logger) error {
	for {
		// Exit detection takes priority over lines still buffered.
		select {
		case <-ctx.Done():
			return shutdown(src, logger)
		case <-src.Done():
			return terminated(ctx, src, logger)
		default:
		}

		drainDiagnostics(src, logger)

		select {
		case <-ctx.Done():
			return shutdown(src, logger)
		case <-src.Done():
			return terminated(ctx, src, logger)
		case line, ok := <-src.Lines():
			if !ok {
				select {
				case <-ctx.Done():
					return shutdown(src, logger)
				case <-src.Done():
					return terminated(ctx, src, logger)
				}
			}
			data := bytes.TrimSpace([]byte(line))
			if len(data) == 0 {
				continue
			}
			if err := handle(ctx, svc, data, logger); err != nil {
				logger.Debug(fmt.Sprintf("dropped upstream line %q: %s", data, err))
			}
		}
	}
}

func handle(ctx context.Context, svc Service, line []byte, logger logger.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling record: %v", r)
			logger.Warn(fmt.Sprintf("recovered from %s", err))
		}
	}()
	_, err = svc.Handle(ctx, line)
	return err
}

func drainDiagnostics(src Source, logger logger.Logger) {
	for {
		select {
		case msg, ok := <-src.Diagnostics():
			if !ok {
				return
			}
			logger.Warn(fmt.Sprintf("upstream: %s", msg))
		default:
			return
		}
	}
}

func shutdown(src Source, logger logger.Logger) error {
	if err := src.Close(); err != nil {
		logger.Warn(fmt.Sprintf("failed to stop upstream: %s", err))
	}
	logger.Info("ingestion stopped")
	return nil
}

func terminated(ctx context.Context, src Source, logger logger.Logger) error {
	if ctx.Err() != nil {
		return shutdown(src, logger)
	}
	drainDiagnostics(src, logger)
	return errors.Wrap(ErrUpstreamTerminated, src.Err())
}
