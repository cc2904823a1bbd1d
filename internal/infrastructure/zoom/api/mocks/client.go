// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
)

// MockClient is a function-field implementation of the Zoom API client.
// Unset functions return empty results.
type MockClient struct {
	ListMeetingsFunc      func(ctx context.Context) ([]models.Meeting, error)
	GetMeetingFunc        func(ctx context.Context, meetingID string) (*models.Meeting, error)
	ListPastInstancesFunc func(ctx context.Context, meetingID string) ([]models.MeetingInstance, error)
	ListParticipantsFunc  func(ctx context.Context, meetingUUID string) ([]models.Participant, error)
}

// NewMockClient creates a new mock client with default implementations
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements ClientAPI interface
var _ api.ClientAPI = (*MockClient)(nil)

// ListMeetings mocks the ListMeetings API call
func (m *MockClient) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	if m.ListMeetingsFunc != nil {
		return m.ListMeetingsFunc(ctx)
	}
	return []models.Meeting{}, nil
}

// GetMeeting mocks the GetMeeting API call
func (m *MockClient) GetMeeting(ctx context.Context, meetingID string) (*models.Meeting, error) {
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(ctx, meetingID)
	}
	return &models.Meeting{UUID: "test-uuid-" + meetingID}, nil
}

// ListPastInstances mocks the ListPastInstances API call
func (m *MockClient) ListPastInstances(ctx context.Context, meetingID string) ([]models.MeetingInstance, error) {
	if m.ListPastInstancesFunc != nil {
		return m.ListPastInstancesFunc(ctx, meetingID)
	}
	return []models.MeetingInstance{}, nil
}

// ListParticipants mocks the ListParticipants API call
func (m *MockClient) ListParticipants(ctx context.Context, meetingUUID string) ([]models.Participant, error) {
	if m.ListParticipantsFunc != nil {
		return m.ListParticipantsFunc(ctx, meetingUUID)
	}
	return []models.Participant{}, nil
}
