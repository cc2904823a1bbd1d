// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

// MockZoomAPI implements ZoomAPI for testing
type MockZoomAPI struct {
	mock.Mock
}

var _ domain.ZoomAPI = (*MockZoomAPI)(nil)

func (m *MockZoomAPI) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meeting), args.Error(1)
}

func (m *MockZoomAPI) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meeting), args.Error(1)
}

func (m *MockZoomAPI) ListPastInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MeetingInstance), args.Error(1)
}

func (m *MockZoomAPI) ListParticipants(ctx context.Context, meetingUUID string) ([]models.Participant, error) {
	args := m.Called(ctx, meetingUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Participant), args.Error(1)
}
