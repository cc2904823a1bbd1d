// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/utils"
)

// AttendanceRow is the denormalized join of a catalog entry and one participant
// record of the instance that was resolved for it.
type AttendanceRow struct {
	Name                string     `json:"name"`
	Email               string     `json:"email,omitempty"`
	JoinTime            string     `json:"join_time"`
	LeaveTime           string     `json:"leave_time"`
	ParticipantDuration int        `json:"participant_duration"`
	AttendedMinutes     *float64   `json:"attended_minutes,omitempty"`
	Topic               string     `json:"topic"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	MeetingID           int64      `json:"meeting_id"`
	InstanceUUID        string     `json:"instance_uuid"`
	HostID              string     `json:"host_id"`
	MeetingDate         string     `json:"meeting_date"`
	MeetingDuration     int        `json:"meeting_duration"`
}

// NewAttendanceRow tags a participant record with the session metadata of the
// entry it was resolved for. start is the entry's start in the reporting timezone.
func NewAttendanceRow(entry CatalogEntry, instanceUUID string, start time.Time, meetingDate string, p Participant) *AttendanceRow {
	row := &AttendanceRow{
		Name:                p.Name,
		Email:               strings.TrimSpace(p.Email),
		JoinTime:            p.JoinTime,
		LeaveTime:           p.LeaveTime,
		ParticipantDuration: p.Duration,
		Topic:               entry.Topic,
		StartTime:           start,
		MeetingID:           entry.MeetingID,
		InstanceUUID:        instanceUUID,
		HostID:              entry.HostID,
		MeetingDate:         meetingDate,
		MeetingDuration:     entry.Duration,
	}
	if minutes, ok := CalculateTotalDuration(p.JoinTime, p.LeaveTime); ok {
		row.AttendedMinutes = utils.Ptr(minutes)
	}
	return row
}

// HasEmail reports whether the row can be keyed into the CRM.
func (r *AttendanceRow) HasEmail() bool {
	return r != nil && r.Email != ""
}

// ApplyMeetingEndTime sets EndTime on every row to the latest parseable leave
// time among them. Rows are expected to belong to a single meeting instance.
func ApplyMeetingEndTime(rows []*AttendanceRow) {
	var latest *time.Time
	for _, row := range rows {
		t, err := ParseTimestamp(row.LeaveTime)
		if err != nil {
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	if latest == nil {
		return
	}
	for _, row := range rows {
		row.EndTime = utils.Ptr(*latest)
	}
}
