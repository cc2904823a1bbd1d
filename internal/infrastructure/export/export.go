// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package export renders the attendance table for people and spreadsheets.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/utils"
)

// Format is an output format for the attendance table.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// Columns are the attendance table headers in output order.
var Columns = []string{
	"name",
	"email",
	"join_time",
	"leave_time",
	"participant_duration",
	"attended_minutes",
	"topic",
	"start_time",
	"end_time",
	"meeting_id",
	"instance_uuid",
	"host_id",
	"meeting_date",
	"meeting_duration",
}

// ParseFormat returns the Format named by value. Empty means FormatTable.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", domain.NewValidationError(fmt.Sprintf("unknown output format %q", value))
	}
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format Format, rows []*models.AttendanceRow) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatTable, "":
		return WriteTable(w, rows)
	default:
		return domain.NewValidationError(fmt.Sprintf("unknown output format %q", format))
	}
}

// WriteTable writes rows as a column-aligned text table with a header line.
func WriteTable(w io.Writer, rows []*models.AttendanceRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(Columns, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(Record(row), "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteJSON writes rows as an indented JSON array. No rows is written as [].
func WriteJSON(w io.Writer, rows []*models.AttendanceRow) error {
	if rows == nil {
		rows = []*models.AttendanceRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Record returns the text cells of row in Columns order. Missing values are empty.
func Record(row *models.AttendanceRow) []string {
	record := []string{
		sanitize(row.Name),
		row.Email,
		row.JoinTime,
		row.LeaveTime,
		strconv.Itoa(row.ParticipantDuration),
		"",
		sanitize(row.Topic),
		formatTime(row.StartTime),
		formatTime(utils.Value(row.EndTime)),
		strconv.FormatInt(row.MeetingID, 10),
		row.InstanceUUID,
		row.HostID,
		row.MeetingDate,
		strconv.Itoa(row.MeetingDuration),
	}
	if row.AttendedMinutes != nil {
		record[5] = strconv.FormatFloat(*row.AttendedMinutes, 'f', 2, 64)
	}
	return record
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// sanitize keeps free text on one table cell.
func sanitize(value string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(value)
}
