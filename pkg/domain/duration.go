package domain

import (
	"time"

	dErrors "carevault/pkg/domain-errors"
)

// DurationType selects how a consent's expiry is computed at creation time.
type DurationType string

// Supported duration types.
const (
	Duration24h    DurationType = "24h"
	Duration7d     DurationType = "7d"
	DurationCustom DurationType = "custom"
)

var validDurationTypes = map[DurationType]bool{
	Duration24h:    true,
	Duration7d:     true,
	DurationCustom: true,
}

// ParseDurationType constructs a DurationType from external input.
func ParseDurationType(s string) (DurationType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "duration type cannot be empty")
	}
	d := DurationType(s)
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid duration type: "+s)
	}
	return d, nil
}

// IsValid checks if the duration type is one of the supported enum values.
func (d DurationType) IsValid() bool {
	return validDurationTypes[d]
}

// String returns the string representation of the duration type.
func (d DurationType) String() string {
	return string(d)
}

// ExpiryFrom computes the expiry timestamp for a consent created at now.
// customExpiry is consulted only for DurationCustom and must be strictly in
// the future at the instant of validation.
func (d DurationType) ExpiryFrom(now time.Time, customExpiry *time.Time) (time.Time, error) {
	switch d {
	case Duration24h:
		return now.Add(24 * time.Hour), nil
	case Duration7d:
		return now.Add(7 * 24 * time.Hour), nil
	case DurationCustom:
		if customExpiry == nil {
			return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "custom expiry date is required for custom duration")
		}
		if !customExpiry.After(now) {
			return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "custom expiry date must be in the future")
		}
		return *customExpiry, nil
	default:
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "invalid duration type: "+string(d))
	}
}
