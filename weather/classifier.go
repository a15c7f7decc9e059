// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package weather

import (
	"github.com/absmach/rtlexporter/weather/flex"
)

// FlexChannel is the channel label of readings decoded from a flex payload.
const FlexChannel = "0"

// FlexConfig selects which records carry a flex payload and how it is decoded.
type FlexConfig struct {
	// Model is the rtl_433 model name of the flex device. Empty disables
	// flex decoding.
	Model string
	// ID is the synthetic sensor id its readings are published under.
	ID string
	// Calibration describes the payload layout.
	Calibration flex.Calibration
}

// Classifier turns records into readings.
type Classifier struct {
	flex   FlexConfig
	ids    map[string]struct{}
	models map[string]struct{}
}

// NewClassifier returns a classifier. Empty ids or models mean no filtering
// on that label.
func NewClassifier(fc FlexConfig, ids, models []string) *Classifier {
	return &Classifier{
		flex:   fc,
		ids:    set(ids),
		models: set(models),
	}
}

// Classify extracts a reading from rec. ok is false when the record was
// dropped by the sensor filters.
func (c *Classifier) Classify(rec Record) (r Reading, ok bool, err error) {
	labels := Labels{
		Model:   rec.Label(fieldModel),
		ID:      rec.Label(fieldID),
		Channel: rec.Label(fieldChannel),
	}

	if c.flex.Model != "" && labels.Model == c.flex.Model && allowed(c.models, labels.Model) {
		if m, decoded := c.decodeFlex(rec); decoded {
			return Reading{
				Labels: Labels{
					Model:   labels.Model,
					ID:      c.flex.ID,
					Channel: FlexChannel,
				},
				Temperature: &m.Temperature,
				Humidity:    &m.Humidity,
			}, true, nil
		}
	}

	if !allowed(c.ids, labels.ID) || !allowed(c.models, labels.Model) {
		return Reading{}, false, nil
	}

	r = Reading{Labels: labels}

	temp, present, err := rec.Number(fieldTemperatureC)
	if err != nil {
		return Reading{}, false, err
	}
	if !present {
		f, fPresent, err := rec.Number(fieldTemperatureF)
		if err != nil {
			return Reading{}, false, err
		}
		temp, present = FahrenheitToCelsius(f), fPresent
	}
	if present {
		r.Temperature = &temp
	}

	if r.Humidity, err = optional(rec, fieldHumidity); err != nil {
		return Reading{}, false, err
	}
	if r.BatteryOK, err = optional(rec, fieldBatteryOK); err != nil {
		return Reading{}, false, err
	}
	if r.RSSI, err = optional(rec, fieldRSSI); err != nil {
		return Reading{}, false, err
	}

	return r, true, nil
}

// decodeFlex reports false for records without a usable payload so that
// they fall through to the native path.
func (c *Classifier) decodeFlex(rec Record) (flex.Measurement, bool) {
	payload, ok := rec.Payload()
	if !ok || len(payload) <= flex.MinHexLen {
		return flex.Measurement{}, false
	}
	m, err := c.flex.Calibration.Decode(payload)
	if err != nil {
		return flex.Measurement{}, false
	}
	return m, true
}

func optional(rec Record, key string) (*float64, error) {
	v, ok, err := rec.Number(key)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func set(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func allowed(s map[string]struct{}, v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}
