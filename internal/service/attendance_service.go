// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/concurrent"
)

// AttendanceService builds the attendance table of one civil day.
type AttendanceService struct {
	Catalog  *MeetingCatalog
	Resolver *ParticipantResolver
	Config   ServiceConfig
	// Now is the clock used when no target date is given.
	Now func() time.Time

	rowCounter metric.Int64Counter
}

// NewAttendanceService creates a new AttendanceService.
func NewAttendanceService(catalog *MeetingCatalog, resolver *ParticipantResolver, config ServiceConfig) *AttendanceService {
	rowCounter, err := otel.Meter(tracerName).Int64Counter("attendance.rows",
		metric.WithDescription("Attendance rows assembled"),
		metric.WithUnit("{row}"))
	if err != nil {
		otel.Handle(err)
	}
	return &AttendanceService{
		Catalog:    catalog,
		Resolver:   resolver,
		Config:     config,
		Now:        time.Now,
		rowCounter: rowCounter,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AttendanceService) ServiceReady() bool {
	return s.Catalog != nil && s.Catalog.ServiceReady() &&
		s.Resolver != nil && s.Resolver.ServiceReady()
}

// GetAttendance returns one row per participant of every meeting whose start
// falls on targetDate in the configured timezone. An empty targetDate means
// today in that timezone. Rows keep catalog order, then participant order.
func (s *AttendanceService) GetAttendance(ctx context.Context, targetDate string) ([]*models.AttendanceRow, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	loc := s.Config.location()

	date, err := s.resolveTargetDate(targetDate, loc)
	if err != nil {
		slog.WarnContext(ctx, "invalid target date", "target_date", targetDate, logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("target_date", date))
	ctx, span := otel.Tracer(tracerName).Start(ctx, "attendance.get_attendance")
	defer span.End()
	span.SetAttributes(
		attribute.String("attendance.target_date", date),
		attribute.String("attendance.timezone", loc.String()),
	)

	entries, err := s.Catalog.ListMeetings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(entries) == 0 {
		slog.InfoContext(ctx, "no meetings found")
		span.SetStatus(codes.Ok, "no meetings")
		return []*models.AttendanceRow{}, nil
	}

	for i := range entries {
		if err := models.Validate(&entries[i]); err != nil {
			err = missingFieldError(err)
			slog.ErrorContext(ctx, "catalog entry is missing required fields",
				"meeting_id", entries[i].MeetingID,
				logging.ErrKey, err,
				logging.PriorityCritical())
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	var matching []models.CatalogEntry
	for _, entry := range entries {
		if entry.MeetingDate(loc) == date {
			matching = append(matching, entry)
		}
	}
	span.SetAttributes(attribute.Int("attendance.meeting_count", len(matching)))

	if len(matching) == 0 {
		slog.InfoContext(ctx, "no meetings scheduled for the specified date", "catalog_entries", len(entries))
		span.SetStatus(codes.Ok, "no meetings on date")
		return []*models.AttendanceRow{}, nil
	}

	pool := concurrent.NewWorkerPool(s.Config.Workers)
	perEntry, err := concurrent.Map(ctx, pool, matching,
		func(ctx context.Context, _ int, entry models.CatalogEntry) ([]*models.AttendanceRow, error) {
			return s.entryRows(ctx, entry, loc, date)
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows := []*models.AttendanceRow{}
	for _, entryRows := range perEntry {
		rows = append(rows, entryRows...)
	}

	if s.rowCounter != nil {
		s.rowCounter.Add(ctx, int64(len(rows)))
	}
	slog.InfoContext(ctx, "assembled attendance",
		"meeting_count", len(matching),
		"row_count", len(rows))
	span.SetAttributes(attribute.Int("attendance.row_count", len(rows)))
	span.SetStatus(codes.Ok, "")
	return rows, nil
}

func (s *AttendanceService) entryRows(ctx context.Context, entry models.CatalogEntry, loc *time.Location, date string) ([]*models.AttendanceRow, error) {
	resolution, err := s.Resolver.GetParticipantsForEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	start := entry.LocalStart(loc)
	rows := make([]*models.AttendanceRow, 0, len(resolution.Participants))
	for _, participant := range resolution.Participants {
		rows = append(rows, models.NewAttendanceRow(entry, resolution.InstanceUUID, start, date, participant))
	}
	models.ApplyMeetingEndTime(rows)
	return rows, nil
}

func (s *AttendanceService) resolveTargetDate(targetDate string, loc *time.Location) (string, error) {
	if targetDate == "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		return models.Today(now(), loc), nil
	}
	date, err := models.ParseTargetDate(targetDate)
	if err != nil {
		return "", domain.NewValidationError(fmt.Sprintf("invalid target date %q", targetDate), err)
	}
	return date, nil
}
