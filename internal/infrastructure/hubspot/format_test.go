// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hubspot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDatetime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"utc with Z", "2024-03-11T09:05:30Z", "2024-03-11T09:05:30Z", false},
		{"offset converted to UTC", "2024-03-11T10:05:30+01:00", "2024-03-11T09:05:30Z", false},
		{"fractional seconds truncated", "2024-03-11T09:05:30.987Z", "2024-03-11T09:05:30Z", false},
		{"zone-less read as UTC", "2024-01-01T10:00:00", "2024-01-01T10:00:00Z", false},
		{"empty", "", "", true},
		{"garbage", "yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDatetime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatDatetime_RoundTrip(t *testing.T) {
	inputs := []string{
		"2024-03-11T09:05:30Z",
		"2024-03-11T09:05:30.123456789Z",
		"2024-03-10T23:30:00-05:00",
		"2023-12-31T23:59:59.999+01:00",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			original, err := time.Parse(time.RFC3339Nano, input)
			require.NoError(t, err)

			formatted, err := FormatDatetime(input)
			require.NoError(t, err)

			reparsed, err := time.Parse(time.RFC3339, formatted)
			require.NoError(t, err)
			assert.True(t, reparsed.Equal(original.Truncate(time.Second)),
				"expected %s, got %s", original.Truncate(time.Second), reparsed)
		})
	}
}

func TestDateAtMidnightUTC(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)

	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"utc midnight", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "1710115200000"},
		{"utc afternoon", time.Date(2024, 3, 11, 15, 4, 5, 0, time.UTC), "1710115200000"},
		// 2024-03-10T23:30Z is already 2024-03-11 in Lagos.
		{"civil date in local zone", time.Date(2024, 3, 11, 0, 30, 0, 0, lagos), "1710115200000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DateAtMidnightUTC(tt.input))
		})
	}
}
