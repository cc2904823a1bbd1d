// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
)

// Meeting type constants for Zoom API
const (
	MeetingTypeInstant              = 1
	MeetingTypeScheduled            = 2
	MeetingTypeRecurringNoFixedTime = 3
	MeetingTypeRecurringFixedTime   = 8
)

// IsRecurring reports whether meetingType can have more than one instance.
func IsRecurring(meetingType int) bool {
	return meetingType == MeetingTypeRecurringNoFixedTime || meetingType == MeetingTypeRecurringFixedTime
}

// ListMeetings returns every meeting owned by the authenticated account user.
func (c *Client) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_meetings"))

	meetings, err := FetchAll[models.Meeting](ctx, c, "/users/me/meetings", nil, "meetings")
	if err != nil {
		slog.ErrorContext(ctx, "failed to list Zoom meetings", logging.ErrKey, err)
		return nil, err
	}

	slog.InfoContext(ctx, "listed Zoom meetings", "meeting_count", len(meetings))
	return meetings, nil
}

// GetMeeting returns the detail record of a single meeting.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "get_meeting"))

	var meeting models.Meeting
	if err := c.getJSON(ctx, "/meetings/"+url.PathEscape(meetingID), nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// ListPastInstances returns the completed instances of a meeting in the order
// the provider returns them.
func (c *Client) ListPastInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_past_instances"))

	path := fmt.Sprintf("/past_meetings/%s/instances", url.PathEscape(meetingID))
	return FetchAll[models.MeetingInstance](ctx, c, path, nil, "meetings")
}
