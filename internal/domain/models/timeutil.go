// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used for meeting dates and the target date.
const DateLayout = "2006-01-02"

// timestampLayouts are tried in order; zone-less values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// targetDateLayouts accepts a bare date or any timestamp layout; only the date
// part as written is kept.
var targetDateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// ParseTimestamp parses an ISO-8601 style timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// CalculateTotalDuration returns the minutes between join and leave. The second
// result is false when either timestamp does not parse.
func CalculateTotalDuration(join, leave string) (float64, bool) {
	joinTime, err := ParseTimestamp(join)
	if err != nil {
		return 0, false
	}
	leaveTime, err := ParseTimestamp(leave)
	if err != nil {
		return 0, false
	}
	return leaveTime.Sub(joinTime).Minutes(), true
}

// DateOf returns the civil date of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseTargetDate normalizes a caller supplied date to DateLayout.
func ParseTargetDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range targetDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", value)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) string {
	return DateOf(now, loc)
}
