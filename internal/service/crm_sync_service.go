// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/hubspot"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/logging"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/concurrent"
)

// CRM contact properties written for the latest session a contact attended.
const (
	PropertyEmail                      = hubspot.EmailProperty
	PropertyLastSessionTitle           = "last_session_title"
	PropertyLastSessionDate            = "last_session_date"
	PropertyLastSessionJoinTime        = "last_session_join_time"
	PropertyLastSessionLeaveTime       = "last_session_leave_time"
	PropertyLastSessionAttendedMinutes = "last_session_attended_minutes"
)

// SyncAction is what the sync did with one attendance row.
type SyncAction string

const (
	SyncActionCreated SyncAction = "created"
	SyncActionUpdated SyncAction = "updated"
)

// SyncSummary counts the outcome of one Sync call.
type SyncSummary struct {
	Created        int
	Updated        int
	SkippedNoEmail int
	Failed         int
	// Errors holds one entry per failed row, in row order.
	Errors []error
}

// CRMSyncService upserts attendance rows as CRM contacts keyed by email.
type CRMSyncService struct {
	ContactStore domain.ContactStore
	Config       ServiceConfig

	// contactIDs maps lowercased email to contact ID for the life of the
	// service, so a contact created earlier in the run is patched even before
	// the CRM search index sees it.
	contactIDs *cache.Cache

	auditLogger   otellog.Logger
	contactWrites metric.Int64Counter
}

// NewCRMSyncService creates a new CRMSyncService.
func NewCRMSyncService(contactStore domain.ContactStore, config ServiceConfig) *CRMSyncService {
	contactWrites, err := otel.Meter(tracerName).Int64Counter("crm.contact_writes",
		metric.WithDescription("CRM contact writes by action and outcome"),
		metric.WithUnit("{contact}"))
	if err != nil {
		otel.Handle(err)
	}
	return &CRMSyncService{
		ContactStore:  contactStore,
		Config:        config,
		contactIDs:    cache.New(cache.NoExpiration, 0),
		auditLogger:   global.Logger(tracerName),
		contactWrites: contactWrites,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *CRMSyncService) ServiceReady() bool {
	return s.ContactStore != nil && s.contactIDs != nil
}

// ContactPropertiesForRow maps a row to the properties written on update.
// Timestamps that do not parse are left out.
func ContactPropertiesForRow(row *models.AttendanceRow) models.ContactProperties {
	props := models.ContactProperties{
		PropertyLastSessionTitle: row.Topic,
		PropertyLastSessionDate:  hubspot.DateAtMidnightUTC(row.StartTime),
	}
	if joined, err := hubspot.FormatDatetime(row.JoinTime); err == nil {
		props[PropertyLastSessionJoinTime] = joined
	}
	if left, err := hubspot.FormatDatetime(row.LeaveTime); err == nil {
		props[PropertyLastSessionLeaveTime] = left
	}
	if row.AttendedMinutes != nil {
		props[PropertyLastSessionAttendedMinutes] = strconv.FormatFloat(*row.AttendedMinutes, 'f', -1, 64)
	}
	return props
}

// Sync finds, creates or updates one contact per row with an email. Rows
// without an email are skipped and counted. Rows of the same email are written
// in row order so the last one wins. Unless ContinueOnError is set the first
// failed write stops the sync and is returned with the partial summary.
func (s *CRMSyncService) Sync(ctx context.Context, rows []*models.AttendanceRow) (*SyncSummary, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.NewUnavailableError("service not initialized")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "crm.sync")
	defer span.End()
	span.SetAttributes(attribute.Int("crm.row_count", len(rows)))

	summary := &SyncSummary{}
	var mu sync.Mutex

	// Group by email so writes for one contact never race.
	var order []string
	groups := map[string][]*models.AttendanceRow{}
	for i, row := range rows {
		if !row.HasEmail() {
			summary.SkippedNoEmail++
			slog.WarnContext(ctx, "skipping attendance row without email",
				"row", i,
				"name", row.Name,
				"meeting_id", row.MeetingID,
				logging.ErrKey, domain.ErrMissingEmail)
			continue
		}
		key := strings.ToLower(row.Email)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	rowErrs := make([][]error, len(order))
	jobs := make([]func(context.Context) error, len(order))
	for i, key := range order {
		jobs[i] = func(ctx context.Context) error {
			for _, row := range groups[key] {
				action, err := s.syncRow(ctx, row)
				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					rowErrs[i] = append(rowErrs[i], err)
				case action == SyncActionCreated:
					summary.Created++
				default:
					summary.Updated++
				}
				mu.Unlock()
				if err != nil && !s.Config.ContinueOnError {
					return err
				}
			}
			return nil
		}
	}

	pool := concurrent.NewWorkerPool(s.Config.Workers)
	var err error
	if s.Config.ContinueOnError {
		// Jobs only return an error when the context ended before they started.
		for i, runErr := range pool.RunAll(ctx, jobs...) {
			if runErr == nil {
				continue
			}
			for range groups[order[i]] {
				summary.Failed++
				rowErrs[i] = append(rowErrs[i], runErr)
			}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
	} else {
		err = pool.Run(ctx, jobs...)
	}

	for _, errs := range rowErrs {
		summary.Errors = append(summary.Errors, errs...)
	}

	span.SetAttributes(
		attribute.Int("crm.created", summary.Created),
		attribute.Int("crm.updated", summary.Updated),
		attribute.Int("crm.skipped_no_email", summary.SkippedNoEmail),
		attribute.Int("crm.failed", summary.Failed),
	)

	if err != nil {
		slog.ErrorContext(ctx, "CRM sync aborted", logging.ErrKey, err, logging.PriorityCritical())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return summary, err
	}

	slog.InfoContext(ctx, "CRM sync completed",
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped_no_email", summary.SkippedNoEmail,
		"failed", summary.Failed)
	if summary.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d contact writes failed", summary.Failed))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return summary, nil
}

func (s *CRMSyncService) syncRow(ctx context.Context, row *models.AttendanceRow) (SyncAction, error) {
	ctx = logging.AppendCtx(ctx, slog.String("contact_email", row.Email))
	key := strings.ToLower(row.Email)
	props := ContactPropertiesForRow(row)

	contactID, err := s.lookupContactID(ctx, key, row.Email)
	if err != nil {
		s.recordWrite(ctx, "lookup", err)
		return "", err
	}

	if contactID != "" {
		if _, err := s.ContactStore.UpdateContact(ctx, contactID, props); err != nil {
			slog.ErrorContext(ctx, "failed to update contact", "contact_id", contactID, logging.ErrKey, err)
			err = remoteError(fmt.Sprintf("failed to update contact %s", contactID), err)
			s.recordWrite(ctx, string(SyncActionUpdated), err)
			return "", err
		}
		slog.DebugContext(ctx, "updated contact", "contact_id", contactID)
		s.recordWrite(ctx, string(SyncActionUpdated), nil)
		s.audit(ctx, SyncActionUpdated, contactID, row)
		return SyncActionUpdated, nil
	}

	props[PropertyEmail] = row.Email
	contact, err := s.ContactStore.CreateContact(ctx, props)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create contact", logging.ErrKey, err)
		err = remoteError("failed to create contact", err)
		s.recordWrite(ctx, string(SyncActionCreated), err)
		return "", err
	}
	if contact != nil && contact.ID != "" {
		s.contactIDs.Set(key, contact.ID, cache.DefaultExpiration)
	}
	slog.DebugContext(ctx, "created contact", "contact_id", contactIDOf(contact))
	s.recordWrite(ctx, string(SyncActionCreated), nil)
	s.audit(ctx, SyncActionCreated, contactIDOf(contact), row)
	return SyncActionCreated, nil
}

// lookupContactID returns the contact ID for email from the run cache or the
// CRM, or "" when no contact exists.
func (s *CRMSyncService) lookupContactID(ctx context.Context, key, email string) (string, error) {
	if cached, ok := s.contactIDs.Get(key); ok {
		if id, ok := cached.(string); ok {
			return id, nil
		}
	}

	contact, err := s.ContactStore.SearchContactByEmail(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to search contact by email", logging.ErrKey, err)
		return "", remoteError("failed to search contact", err)
	}
	if contact == nil || contact.ID == "" {
		return "", nil
	}

	s.contactIDs.Set(key, contact.ID, cache.DefaultExpiration)
	return contact.ID, nil
}

func (s *CRMSyncService) recordWrite(ctx context.Context, action string, err error) {
	if s.contactWrites == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, context.Canceled) {
			outcome = "cancelled"
		}
	}
	s.contactWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("crm.action", action),
		attribute.String("crm.outcome", outcome),
	))
}

// audit emits one OpenTelemetry log record per contact mutation.
func (s *CRMSyncService) audit(ctx context.Context, action SyncAction, contactID string, row *models.AttendanceRow) {
	if s.auditLogger == nil {
		return
	}
	var record otellog.Record
	record.SetTimestamp(time.Now())
	record.SetSeverity(otellog.SeverityInfo)
	record.SetBody(otellog.StringValue("crm contact " + string(action)))
	record.AddAttributes(
		otellog.String("crm.action", string(action)),
		otellog.String("crm.contact_id", contactID),
		otellog.Int64("zoom.meeting_id", row.MeetingID),
		otellog.String("zoom.instance_uuid", row.InstanceUUID),
		otellog.String("attendance.meeting_date", row.MeetingDate),
	)
	s.auditLogger.Emit(ctx, record)
}

func contactIDOf(contact *models.Contact) string {
	if contact == nil {
		return ""
	}
	return contact.ID
}
