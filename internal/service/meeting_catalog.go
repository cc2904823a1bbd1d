// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/concurrent"
)

// MeetingCatalog flattens the account's meetings and their completed
// instances into one entry per (meeting, instance) pair.
type MeetingCatalog struct {
	ZoomAPI domain.ZoomAPI
	Config  ServiceConfig
}

// NewMeetingCatalog creates a new MeetingCatalog.
func NewMeetingCatalog(zoomAPI domain.ZoomAPI, config ServiceConfig) *MeetingCatalog {
	return &MeetingCatalog{
		ZoomAPI: zoomAPI,
		Config:  config,
	}
}

// ServiceReady checks if the service is ready for use.
func (c *MeetingCatalog) ServiceReady() bool {
	return c.ZoomAPI != nil
}

// ListMeetings returns the catalog entries in meeting listing order, and
// within a meeting in the order its instances were returned. A meeting with no
// completed instances contributes no entries. Any instance lookup failure
// fails the whole listing.
func (c *MeetingCatalog) ListMeetings(ctx context.Context) ([]models.CatalogEntry, error) {
	if !c.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.list_meetings",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	meetings, err := c.ZoomAPI.ListMeetings(ctx)
	if err != nil {
		err = remoteError("failed to list meetings", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("zoom.meeting_count", len(meetings)))

	if len(meetings) == 0 {
		slog.InfoContext(ctx, "no meetings found")
		return []models.CatalogEntry{}, nil
	}

	for i := range meetings {
		if err := models.Validate(&meetings[i]); err != nil {
			err = missingFieldError(err)
			slog.ErrorContext(ctx, "meeting record failed validation", "index", i, logging.ErrKey, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	pool := concurrent.NewWorkerPool(c.Config.Workers)
	perMeeting, err := concurrent.Map(ctx, pool, meetings,
		func(ctx context.Context, _ int, meeting models.Meeting) ([]models.CatalogEntry, error) {
			ctx = logging.AppendCtx(ctx, slog.Bool("recurring", api.IsRecurring(meeting.Type)))
			instances, err := c.GetInstances(ctx, meeting.MeetingIDString())
			if err != nil {
				return nil, err
			}
			entries := make([]models.CatalogEntry, 0, len(instances))
			for _, instance := range instances {
				entries = append(entries, models.NewCatalogEntry(meeting, instance))
			}
			return entries, nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries := []models.CatalogEntry{}
	for _, meetingEntries := range perMeeting {
		entries = append(entries, meetingEntries...)
	}

	slog.DebugContext(ctx, "built meeting catalog",
		"meeting_count", len(meetings),
		"entry_count", len(entries))
	span.SetAttributes(attribute.Int("zoom.catalog_entry_count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

// GetInstances returns the completed instances of a meeting in provider
// order. A meeting that has not been held yet yields an empty list.
func (c *MeetingCatalog) GetInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	instances, err := c.ZoomAPI.ListPastInstances(ctx, meetingID)
	if err != nil {
		var respErr *api.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusBadRequest {
			slog.WarnContext(ctx, "bad request listing instances: check if the meeting ID is correct and if it is a recurring meeting",
				"zoom_code", respErr.Code)
		}
		slog.ErrorContext(ctx, "failed to list meeting instances", logging.ErrKey, err)
		return nil, remoteError(fmt.Sprintf("failed to list instances of meeting %s", meetingID), err)
	}

	if len(instances) == 0 {
		slog.InfoContext(ctx, "no instances found for the meeting", logging.ErrKey, domain.ErrNoInstances)
		return []models.MeetingInstance{}, nil
	}

	for i := range instances {
		if err := models.Validate(&instances[i]); err != nil {
			err = missingFieldError(err)
			slog.ErrorContext(ctx, "meeting instance failed validation", "index", i, logging.ErrKey, err)
			return nil, err
		}
	}

	return instances, nil
}

// GetMeetingDetail returns the full record of one meeting.
func (c *MeetingCatalog) GetMeetingDetail(ctx context.Context, meetingID string) (*models.Meeting, error) {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_id", meetingID))

	meeting, err := c.ZoomAPI.GetMeeting(ctx, meetingID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get meeting detail", logging.ErrKey, err)
		return nil, remoteError(fmt.Sprintf("failed to get meeting %s", meetingID), err)
	}
	if meeting == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("meeting %s not found", meetingID))
	}
	if err := models.Validate(meeting); err != nil {
		return nil, missingFieldError(err)
	}

	return meeting, nil
}
