// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service assembles daily attendance from the Zoom API and syncs it
// to the CRM.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/hubspot"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
)

const tracerName = "github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/service"

// DefaultTimezone is the civil timezone attendance dates are computed in.
const DefaultTimezone = "Africa/Lagos"

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// Location is the timezone meeting dates and "today" are derived in.
	Location *time.Location
	// InstancePolicy selects the instance whose participant report is read.
	InstancePolicy InstancePolicy
	// Workers bounds concurrent remote calls. One worker keeps every call sequential.
	Workers int
	// ContinueOnError records CRM write failures and keeps syncing instead of
	// aborting on the first one.
	ContinueOnError bool
}

// location defaults to Africa/Lagos so a zero config still filters by WAT dates.
func (c ServiceConfig) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	// The default zone always resolves, falling back to the fixed WAT zone.
	loc, _ := LoadLocation(DefaultTimezone)
	return loc
}

// LoadLocation resolves a timezone name. West Africa Time has no daylight
// saving, so Africa/Lagos falls back to a fixed UTC+1 zone when the tz
// database is unavailable.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultTimezone {
		return time.FixedZone("WAT", 60*60), nil
	}
	return nil, domain.NewValidationError(fmt.Sprintf("unknown timezone %q", name), err)
}

// remoteError classifies a Zoom or HubSpot client error for the service boundary.
func remoteError(message string, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	if errors.Is(err, api.ErrAuthentication) {
		return domain.NewUnauthorizedError(message, err)
	}

	var zoomErr *api.ResponseError
	if errors.As(err, &zoomErr) {
		if zoomErr.NotFound() {
			return domain.NewNotFoundError(message, err)
		}
		return &domain.DomainError{Type: domain.ErrorTypeForStatus(zoomErr.StatusCode), Message: message, Err: err}
	}

	var crmErr *hubspot.ResponseError
	if errors.As(err, &crmErr) {
		return &domain.DomainError{Type: domain.ErrorTypeForStatus(crmErr.StatusCode), Message: message, Err: err}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return domain.NewUnavailableError(message, err)
}

// missingFieldError converts a failed boundary validation into the domain's
// missing field error. Other validation failures pass through unchanged.
func missingFieldError(err error) error {
	var missing *models.MissingFieldsError
	if errors.As(err, &missing) {
		return domain.NewMissingFieldError(missing.Error(), err)
	}
	return err
}
