// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package weather turns the JSON lines emitted by rtl_433 into sensor
// readings and publishes them into a metric sink.
package weather

import "context"

// Service specifies an API that must be fullfiled by the domain service
// implementation, and all of its decorators (e.g. logging & metrics).
type Service interface {
	// Handle decodes one upstream line and publishes its measurements.
	// The returned reading is empty when the record was filtered or
	// carried nothing to publish.
	Handle(ctx context.Context, line []byte) (Reading, error)
}

var _ Service = (*exporterService)(nil)

type exporterService struct {
	classifier *Classifier
	sink       Sink
}

// New instantiates the exporter service.
func New(classifier *Classifier, sink Sink) Service {
	return &exporterService{
		classifier: classifier,
		sink:       sink,
	}
}

func (es *exporterService) Handle(_ context.Context, line []byte) (Reading, error) {
	rec, err := ParseRecord(line)
	if err != nil {
		return Reading{}, err
	}

	r, ok, err := es.classifier.Classify(rec)
	if err != nil || !ok {
		return Reading{}, err
	}

	Publish(es.sink, r)

	return r, nil
}
