package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedRecord marks a row whose required numeric fields do not parse.
var ErrMalformedRecord = errors.New("malformed record")

// ParseRawRecord validates a raw row and converts it to an EventRecord.
// Counts and damage magnitudes must be finite, non-negative numbers.
// Exponent codes are carried through untouched; see DecodeExponent.
func ParseRawRecord(raw RawRecord) (EventRecord, error) {
	fatalities, err := parseCount(ColFatalities, raw.Fatalities, raw.Line)
	if err != nil {
		return EventRecord{}, err
	}
	injuries, err := parseCount(ColInjuries, raw.Injuries, raw.Line)
	if err != nil {
		return EventRecord{}, err
	}
	prop, err := parseCount(ColPropDmg, raw.PropDmg, raw.Line)
	if err != nil {
		return EventRecord{}, err
	}
	crop, err := parseCount(ColCropDmg, raw.CropDmg, raw.Line)
	if err != nil {
		return EventRecord{}, err
	}

	rec := EventRecord{
		EventType:                  raw.EventType,
		Fatalities:                 fatalities,
		Injuries:                   injuries,
		PropertyDamageAmount:       prop,
		PropertyDamageExponentCode: strings.TrimSpace(raw.PropDmgExp),
		CropDamageAmount:           crop,
		CropDamageExponentCode:     strings.TrimSpace(raw.CropDmgExp),
	}

	// A finite magnitude can still overflow once scaled by its exponent.
	if math.IsInf(rec.PropertyDamage(), 0) {
		return EventRecord{}, malformed(ColPropDmg, raw.PropDmg+" "+rec.PropertyDamageExponentCode, raw.Line, "out of range")
	}
	if math.IsInf(rec.CropDamage(), 0) {
		return EventRecord{}, malformed(ColCropDmg, raw.CropDmg+" "+rec.CropDamageExponentCode, raw.Line, "out of range")
	}
	return rec, nil
}

// parseCount parses a required non-negative numeric column.
func parseCount(column, value string, line int) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, malformed(column, value, line, "missing value")
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, malformed(column, value, line, "not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, malformed(column, value, line, "out of range")
	}
	return v, nil
}

func malformed(column, value string, line int, reason string) error {
	if line > 0 {
		return fmt.Errorf("%w: line %d: %s %q: %s", ErrMalformedRecord, line, column, value, reason)
	}
	return fmt.Errorf("%w: %s %q: %s", ErrMalformedRecord, column, value, reason)
}
