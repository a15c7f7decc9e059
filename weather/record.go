// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/absmach/rtlexporter/pkg/errors"
)

// Unknown is the label value used for a missing model, id or channel.
const Unknown = "unknown"

// rtl_433 field names.
const (
	fieldModel        = "model"
	fieldID           = "id"
	fieldChannel      = "channel"
	fieldTemperatureC = "temperature_C"
	fieldTemperatureF = "temperature_F"
	fieldHumidity     = "humidity"
	fieldBatteryOK    = "battery_ok"
	fieldRSSI         = "rssi"
	fieldRows         = "rows"
	fieldData         = "data"
)

var (
	// ErrMalformedRecord indicates a line that is not a JSON object.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvalidField indicates a measurement field holding a non numeric value.
	ErrInvalidField = errors.New("invalid record field")
)

// Record is one JSON object emitted by rtl_433. Numbers are kept as
// json.Number so that identities keep the text rtl_433 printed.
type Record map[string]interface{}

// ParseRecord decodes a single line into a Record.
func ParseRecord(line []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(ErrMalformedRecord, err)
	}
	if rec == nil {
		return nil, errors.Wrap(ErrMalformedRecord, errors.New("null record"))
	}
	if dec.More() {
		return nil, errors.Wrap(ErrMalformedRecord, errors.New("trailing data after record"))
	}

	return rec, nil
}

// Lookup returns the value of key and whether it is present. A JSON null
// counts as absent.
func (r Record) Lookup(key string) (interface{}, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Label returns the string form of key, or Unknown when it is absent.
func (r Record) Label(key string) string {
	v, ok := r.Lookup(key)
	if !ok {
		return Unknown
	}
	return labelValue(v)
}

// Number returns the numeric value of key. ok is false when the field is
// absent; err is set when the field is present but not numeric.
func (r Record) Number(key string) (val float64, ok bool, err error) {
	v, ok := r.Lookup(key)
	if !ok {
		return 0, false, nil
	}

	switch n := v.(type) {
	case json.Number:
		val, err = n.Float64()
	case float64:
		val = n
	case bool:
		if n {
			val = 1
		}
	case string:
		val, err = strconv.ParseFloat(n, 64)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil {
		return 0, true, errors.Wrap(ErrInvalidField, fmt.Errorf("%s: %w", key, err))
	}

	return val, true, nil
}

// Payload returns the data field of the first row that carries one.
func (r Record) Payload() (string, bool) {
	v, ok := r.Lookup(fieldRows)
	if !ok {
		return "", false
	}
	rows, ok := v.([]interface{})
	if !ok {
		return "", false
	}
	for _, row := range rows {
		fields, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		data, ok := fields[fieldData]
		if !ok || data == nil {
			continue
		}
		s, ok := data.(string)
		return s, ok
	}
	return "", false
}

func labelValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
