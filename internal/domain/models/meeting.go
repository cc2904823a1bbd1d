// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strconv"
	"time"
)

// Meeting is a scheduled meeting owned by the account, as returned by the
// meeting list and meeting detail endpoints.
type Meeting struct {
	ID        int64      `json:"id" validate:"required"`
	UUID      string     `json:"uuid"`
	HostID    string     `json:"host_id"`
	Topic     string     `json:"topic"`
	Type      int        `json:"type"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Duration  int        `json:"duration"`
	Timezone  string     `json:"timezone,omitempty"`
	JoinURL   string     `json:"join_url,omitempty"`
}

// MeetingIDString returns the numeric identifier in the form used in API paths.
func (m *Meeting) MeetingIDString() string {
	if m == nil {
		return ""
	}
	return strconv.FormatInt(m.ID, 10)
}

// MeetingInstance is one completed occurrence of a meeting. Its UUID is
// distinct from the meeting's numeric ID and is the key for participant reports.
type MeetingInstance struct {
	UUID      string     `json:"uuid" validate:"required"`
	StartTime *time.Time `json:"start_time,omitempty"`
}

// CatalogEntry is the flattened (meeting, instance) pair. Where both sides
// carry a value for the same field the instance wins.
type CatalogEntry struct {
	MeetingID   int64      `json:"id" validate:"required"`
	MeetingUUID string     `json:"meeting_uuid,omitempty"`
	UUID        string     `json:"uuid" validate:"required"`
	HostID      string     `json:"host_id"`
	Topic       string     `json:"topic"`
	Type        int        `json:"type"`
	StartTime   *time.Time `json:"start_time" validate:"required"`
	Duration    int        `json:"duration"`
	Timezone    string     `json:"timezone,omitempty"`
}

// NewCatalogEntry merges a meeting with one of its instances.
func NewCatalogEntry(m Meeting, instance MeetingInstance) CatalogEntry {
	entry := CatalogEntry{
		MeetingID:   m.ID,
		MeetingUUID: m.UUID,
		UUID:        m.UUID,
		HostID:      m.HostID,
		Topic:       m.Topic,
		Type:        m.Type,
		StartTime:   m.StartTime,
		Duration:    m.Duration,
		Timezone:    m.Timezone,
	}
	if instance.UUID != "" {
		entry.UUID = instance.UUID
	}
	if instance.StartTime != nil {
		entry.StartTime = instance.StartTime
	}
	return entry
}

// MeetingIDString returns the numeric meeting identifier as a string.
func (e *CatalogEntry) MeetingIDString() string {
	if e == nil {
		return ""
	}
	return strconv.FormatInt(e.MeetingID, 10)
}

// LocalStart returns the entry's start time converted to loc.
func (e *CatalogEntry) LocalStart(loc *time.Location) time.Time {
	if e == nil || e.StartTime == nil {
		return time.Time{}
	}
	return e.StartTime.In(loc)
}

// MeetingDate returns the civil date of the entry's start in loc.
func (e *CatalogEntry) MeetingDate(loc *time.Location) string {
	if e == nil || e.StartTime == nil {
		return ""
	}
	return DateOf(*e.StartTime, loc)
}
