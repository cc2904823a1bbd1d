// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hubspot

import (
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

// DatetimeLayout is the datetime property format accepted by HubSpot.
const DatetimeLayout = "2006-01-02T15:04:05Z"

// FormatDatetime reformats an ISO-8601 timestamp as a UTC datetime property
// value with second precision. Zone-less input is read as UTC.
func FormatDatetime(iso string) (string, error) {
	t, err := models.ParseTimestamp(iso)
	if err != nil {
		return "", err
	}
	return t.UTC().Truncate(time.Second).Format(DatetimeLayout), nil
}

// DateAtMidnightUTC returns the date property value for the civil date of t:
// epoch milliseconds of that date at 00:00 UTC.
func DateAtMidnightUTC(t time.Time) string {
	y, m, d := t.Date()
	return strconv.FormatInt(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli(), 10)
}
