// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package drift

import (
	"fmt"
	"math"
)

// Severity buckets a drift percentage.
type Severity int

const (
	SeverityStable Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySignificant
	SeveritySevere
)

var severityNames = [...]string{
	SeverityStable:      "stable",
	SeverityMinor:       "minor",
	SeverityModerate:    "moderate",
	SeveritySignificant: "significant",
	SeveritySevere:      "severe",
}

// severityFloors lists the lowest drift percentage of each bucket
// above Stable, most severe first. A value equal to a floor belongs to
// that bucket.
var severityFloors = [...]struct {
	percent  float64
	severity Severity
}{
	{10, SeveritySevere},
	{5, SeveritySignificant},
	{3, SeverityModerate},
	{1, SeverityMinor},
}

// Classify returns the severity of a drift percentage. Negative values
// are classified by magnitude.
func Classify(percent float64) Severity {
	magnitude := math.Abs(percent)
	for _, floor := range severityFloors {
		if magnitude >= floor.percent {
			return floor.severity
		}
	}
	return SeverityStable
}

func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(severityNames) {
		return nil, fmt.Errorf("drift: unknown severity %d", int(s))
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for value, name := range severityNames {
		if name == string(text) {
			*s = Severity(value)
			return nil
		}
	}
	return fmt.Errorf("drift: unknown severity %q", text)
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s >= other
}
