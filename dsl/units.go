package dsl

import (
	"strconv"
	"strings"
)

// This file defines unit-safe length parsing for DSL property values.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts this length to millimeters. Unit-less values are taken as mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ParseLength parses a DSL length string preserving its unit.
// Malformed input yields a zero unit-less length.
func ParseLength(value string) Length {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}
