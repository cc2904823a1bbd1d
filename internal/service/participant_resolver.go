// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
)

// InstancePolicy selects which instance of a meeting the participant report
// is read from.
type InstancePolicy string

const (
	// InstancePolicyLast uses the last instance in provider order, which is
	// not guaranteed to be the most recent one.
	InstancePolicyLast InstancePolicy = "last"
	// InstancePolicyLatest uses the instance with the latest start time.
	InstancePolicyLatest InstancePolicy = "latest"
	// InstancePolicyMatched uses the instance of the catalog entry itself.
	InstancePolicyMatched InstancePolicy = "matched"
	// InstancePolicyDetail uses the UUID from the meeting detail record.
	InstancePolicyDetail InstancePolicy = "detail"
)

// InstancePolicies lists the accepted policy names.
var InstancePolicies = []InstancePolicy{
	InstancePolicyLast,
	InstancePolicyLatest,
	InstancePolicyMatched,
	InstancePolicyDetail,
}

// ParseInstancePolicy parses a policy name. The empty string selects InstancePolicyLast.
func ParseInstancePolicy(value string) (InstancePolicy, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return InstancePolicyLast, nil
	}
	for _, policy := range InstancePolicies {
		if string(policy) == value {
			return policy, nil
		}
	}
	return "", domain.NewValidationError(fmt.Sprintf("unknown instance policy %q", value))
}

// Resolution is the participant report of the instance chosen for a meeting.
// InstanceUUID is empty when the meeting has no completed instances.
type Resolution struct {
	InstanceUUID string
	Participants []models.Participant
}

// ParticipantResolver picks one instance of a meeting and reads its
// participant report.
type ParticipantResolver struct {
	ZoomAPI domain.ZoomAPI
	Catalog *MeetingCatalog
	Config  ServiceConfig
}

// NewParticipantResolver creates a new ParticipantResolver.
func NewParticipantResolver(zoomAPI domain.ZoomAPI, catalog *MeetingCatalog, config ServiceConfig) *ParticipantResolver {
	if config.InstancePolicy == "" {
		config.InstancePolicy = InstancePolicyLast
	}
	return &ParticipantResolver{
		ZoomAPI: zoomAPI,
		Catalog: catalog,
		Config:  config,
	}
}

// ServiceReady checks if the service is ready for use.
func (r *ParticipantResolver) ServiceReady() bool {
	return r.ZoomAPI != nil && r.Catalog != nil && r.Catalog.ServiceReady()
}

// GetParticipants returns the participants of a meeting's selected instance.
// The matched policy needs a catalog entry and selects the last instance here.
func (r *ParticipantResolver) GetParticipants(ctx context.Context, meetingID string) ([]models.Participant, error) {
	resolution, err := r.resolve(ctx, meetingID, nil)
	if err != nil {
		return nil, err
	}
	return resolution.Participants, nil
}

// GetParticipantsForEntry resolves participants for one catalog entry.
func (r *ParticipantResolver) GetParticipantsForEntry(ctx context.Context, entry models.CatalogEntry) (*Resolution, error) {
	return r.resolve(ctx, entry.MeetingIDString(), &entry)
}

func (r *ParticipantResolver) resolve(ctx context.Context, meetingID string, entry *models.CatalogEntry) (*Resolution, error) {
	if !r.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}
	if meetingID == "" || meetingID == "0" {
		return nil, domain.NewValidationError("meeting ID is required")
	}

	policy := r.Config.InstancePolicy
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "resolver.get_participants")
	defer span.End()
	span.SetAttributes(
		attribute.String("zoom.meeting_id", meetingID),
		attribute.String("zoom.instance_policy", string(policy)),
	)

	instanceUUID, err := r.selectInstance(ctx, meetingID, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if instanceUUID == "" {
		slog.InfoContext(ctx, "no instances found for meeting, returning no participants")
		span.SetStatus(codes.Ok, "no instances")
		return &Resolution{Participants: []models.Participant{}}, nil
	}

	ctx = logging.AppendCtx(ctx, slog.String("instance_uuid", instanceUUID))
	span.SetAttributes(attribute.String("zoom.instance_uuid", instanceUUID))

	participants, err := r.ZoomAPI.ListParticipants(ctx, instanceUUID)
	if err != nil {
		logParticipantHint(ctx, err)
		slog.ErrorContext(ctx, "failed to get participant report", logging.ErrKey, err)
		err = remoteError(fmt.Sprintf("failed to get participants of meeting %s", meetingID), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if participants == nil {
		participants = []models.Participant{}
	}

	slog.DebugContext(ctx, "resolved participants", "participant_count", len(participants))
	span.SetAttributes(attribute.Int("zoom.participant_count", len(participants)))
	span.SetStatus(codes.Ok, "")
	return &Resolution{InstanceUUID: instanceUUID, Participants: participants}, nil
}

// selectInstance returns the raw UUID to read the report for, or "" when the
// meeting has no completed instances.
func (r *ParticipantResolver) selectInstance(ctx context.Context, meetingID string, entry *models.CatalogEntry) (string, error) {
	switch r.Config.InstancePolicy {
	case InstancePolicyMatched:
		if entry != nil {
			return entry.UUID, nil
		}
	case InstancePolicyDetail:
		meeting, err := r.Catalog.GetMeetingDetail(ctx, meetingID)
		if err != nil {
			return "", err
		}
		if meeting.UUID == "" {
			return "", domain.NewMissingFieldError(fmt.Sprintf("meeting %s detail has no uuid", meetingID))
		}
		return meeting.UUID, nil
	}

	instances, err := r.Catalog.GetInstances(ctx, meetingID)
	if err != nil {
		return "", err
	}
	if len(instances) == 0 {
		return "", nil
	}

	if r.Config.InstancePolicy == InstancePolicyLatest {
		return latestInstance(instances).UUID, nil
	}
	return instances[len(instances)-1].UUID, nil
}

// latestInstance returns the instance with the greatest start time. Instances
// without a start time sort first, and ties go to the later position.
func latestInstance(instances []models.MeetingInstance) models.MeetingInstance {
	latest := instances[0]
	for _, instance := range instances[1:] {
		switch {
		case instance.StartTime == nil:
			if latest.StartTime == nil {
				latest = instance
			}
		case latest.StartTime == nil || !instance.StartTime.Before(*latest.StartTime):
			latest = instance
		}
	}
	return latest
}

func logParticipantHint(ctx context.Context, err error) {
	var respErr *api.ResponseError
	if !errors.As(err, &respErr) {
		return
	}
	switch {
	case respErr.NotFound():
		slog.WarnContext(ctx, "meeting not found: the meeting does not exist or the instance UUID is wrong",
			"status", respErr.StatusCode,
			"zoom_code", respErr.Code)
	case respErr.Code == api.ErrorCodeInvalidMeetingID:
		slog.WarnContext(ctx, "invalid meeting ID: the instance UUID may be encoded more than once",
			"status", respErr.StatusCode,
			"zoom_code", respErr.Code)
	case respErr.StatusCode == http.StatusBadRequest:
		slog.WarnContext(ctx, "bad request: check if the meeting ID is correct and if it is a completed meeting",
			"zoom_code", respErr.Code)
	}
}
