// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package flex decodes the raw bit rows that rtl_433 reports for a
// temperature/humidity sensor it has no native decoder for. rtl_433 is
// started with a flex (-X) demodulation spec for the device and emits the
// demodulated bits as a hex string in rows[*].data.
//
// The layout is fixed by byte offset and was reverse engineered from a
// single unit. Everything that describes it lives in Calibration so a
// different firmware revision can be supported by changing values, not code.
package flex

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/absmach/rtlexporter/pkg/errors"
)

// MinHexLen is the payload length, in hex characters, at or below which a
// row is treated as line noise and not decoded.
const MinHexLen = 16

var (
	// ErrMalformedPayload indicates a payload that is not valid hex.
	ErrMalformedPayload = errors.New("malformed flex payload")

	// ErrShortPayload indicates a payload without enough bytes for the layout.
	ErrShortPayload = errors.New("flex payload too short")

	// ErrInvalidCalibration indicates a calibration that can not decode anything.
	ErrInvalidCalibration = errors.New("invalid flex calibration")
)

// Calibration describes the payload layout and the conversion into
// physical units.
type Calibration struct {
	// TemperatureOffset is the index of the big-endian uint16 raw temperature.
	TemperatureOffset int
	// TemperatureDivisor converts the raw temperature into degrees Celsius.
	TemperatureDivisor float64
	// HumidityOffset is the index of the raw humidity byte.
	HumidityOffset int
	// HumidityMask clears flag bits that toggle independently of humidity.
	HumidityMask byte
	// HumidityDivisor converts the masked humidity byte into percent.
	HumidityDivisor float64
}

// DefaultCalibration is the layout observed on the reference unit (rev 1).
var DefaultCalibration = Calibration{
	TemperatureOffset:  6,
	TemperatureDivisor: 597.3,
	HumidityOffset:     8,
	HumidityMask:       0xDF,
	HumidityDivisor:    4.0,
}

// MinBytes returns the shortest payload the calibration can decode.
func (c Calibration) MinBytes() int {
	n := c.TemperatureOffset + 2
	if h := c.HumidityOffset + 1; h > n {
		n = h
	}
	return n
}

// Validate reports whether the calibration can be used for decoding.
func (c Calibration) Validate() error {
	if c.TemperatureOffset < 0 || c.HumidityOffset < 0 {
		return errors.Wrap(ErrInvalidCalibration, errors.New("negative offset"))
	}
	if c.TemperatureDivisor == 0 || c.HumidityDivisor == 0 {
		return errors.Wrap(ErrInvalidCalibration, errors.New("zero divisor"))
	}
	return nil
}

// Measurement is a decoded flex payload.
type Measurement struct {
	Temperature float64
	Humidity    float64
}

// Decode converts a hex payload into a measurement.
func (c Calibration) Decode(payload string) (Measurement, error) {
	b, err := hex.DecodeString(payload)
	if err != nil {
		return Measurement{}, errors.Wrap(ErrMalformedPayload, err)
	}
	return c.DecodeBytes(b)
}

// DecodeBytes converts raw payload bytes into a measurement.
func (c Calibration) DecodeBytes(b []byte) (Measurement, error) {
	if len(b) < c.MinBytes() {
		return Measurement{}, ErrShortPayload
	}

	raw := binary.BigEndian.Uint16(b[c.TemperatureOffset : c.TemperatureOffset+2])
	hum := b[c.HumidityOffset] & c.HumidityMask

	return Measurement{
		Temperature: float64(raw) / c.TemperatureDivisor,
		Humidity:    float64(hum) / c.HumidityDivisor,
	}, nil
}

// Decode decodes payload with DefaultCalibration.
func Decode(payload string) (Measurement, error) {
	return DefaultCalibration.Decode(payload)
}
