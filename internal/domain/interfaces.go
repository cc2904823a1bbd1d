// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

// ZoomAPI is the subset of the Zoom REST API the attendance sync reads from.
// Listing calls return every page concatenated in provider order.
type ZoomAPI interface {
	// ListMeetings returns the meetings owned by the authenticated user
	ListMeetings(ctx context.Context) ([]models.Meeting, error)

	// GetMeeting returns the detail record of one meeting
	GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error)

	// ListPastInstances returns the completed instances of a meeting
	ListPastInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error)

	// ListParticipants returns the participant report of a completed instance.
	// meetingUUID is passed raw and encoded by the implementation.
	ListParticipants(ctx context.Context, meetingUUID string) ([]models.Participant, error)
}

// ContactStore is a CRM that keys contacts by email.
type ContactStore interface {
	// SearchContactByEmail returns the contact with the given email, or nil
	// and no error when there is none.
	SearchContactByEmail(ctx context.Context, email string) (*models.Contact, error)

	// CreateContact creates a contact with the given properties
	CreateContact(ctx context.Context, properties models.ContactProperties) (*models.Contact, error)

	// UpdateContact patches the given properties of an existing contact
	UpdateContact(ctx context.Context, contactID string, properties models.ContactProperties) (*models.Contact, error)
}
