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

// EncodeMeetingUUID percent-encodes a meeting or instance UUID for use as a
// single path segment. Instance UUIDs are base64 and may contain "/", "+" and
// "="; each is encoded exactly once, so "/" becomes "%2F" and never "%252F".
func EncodeMeetingUUID(meetingUUID string) string {
	// QueryEscape only differs from a full escape for spaces, which base64 never contains.
	return url.QueryEscape(meetingUUID)
}

// ListParticipants returns the participant report of a completed meeting
// instance. The raw UUID is encoded here; callers must not pre-encode it.
func (c *Client) ListParticipants(ctx context.Context, meetingUUID string) ([]models.Participant, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_operation", "list_participants"))

	path := fmt.Sprintf("/report/meetings/%s/participants", EncodeMeetingUUID(meetingUUID))
	participants, err := FetchAll[models.Participant](ctx, c, path, nil, "participants")
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "fetched participant report", "participant_count", len(participants))
	return participants, nil
}
