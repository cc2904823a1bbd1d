// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/pkg/utils"
)

var lagos = time.FixedZone("WAT", 60*60)

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return utils.Ptr(t)
}

func setupMeetingCatalogForTesting(config ServiceConfig) (*MeetingCatalog, *mocks.MockZoomAPI) {
	mockZoom := &mocks.MockZoomAPI{}
	return NewMeetingCatalog(mockZoom, config), mockZoom
}

func TestMeetingCatalog_ServiceReady(t *testing.T) {
	catalog, _ := setupMeetingCatalogForTesting(ServiceConfig{})
	assert.True(t, catalog.ServiceReady())

	catalog.ZoomAPI = nil
	assert.False(t, catalog.ServiceReady())

	_, err := catalog.ListMeetings(context.Background())
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestMeetingCatalog_ListMeetings_FlattensInstances(t *testing.T) {
	for _, workers := range []int{1, 4} {
		catalog, mockZoom := setupMeetingCatalogForTesting(ServiceConfig{Workers: workers})

		mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{
			{ID: 100, UUID: "m-100", Topic: "Never held", StartTime: ts("2024-03-11T09:00:00Z")},
			{ID: 200, UUID: "m-200", Topic: "One-off", HostID: "h2", StartTime: ts("2024-03-11T10:00:00Z"), Duration: 45},
			{ID: 300, UUID: "m-300", Topic: "Weekly", StartTime: ts("2024-03-04T08:00:00Z")},
		}, nil)
		mockZoom.On("ListPastInstances", mock.Anything, "100").Return([]models.MeetingInstance{}, nil)
		mockZoom.On("ListPastInstances", mock.Anything, "200").Return([]models.MeetingInstance{
			{UUID: "i-200", StartTime: ts("2024-03-11T10:02:00Z")},
		}, nil)
		mockZoom.On("ListPastInstances", mock.Anything, "300").Return([]models.MeetingInstance{
			{UUID: "i-300-b", StartTime: ts("2024-03-11T08:00:00Z")},
			{UUID: "i-300-a", StartTime: ts("2024-03-04T08:00:00Z")},
		}, nil)

		entries, err := catalog.ListMeetings(context.Background())
		require.NoError(t, err)

		require.Len(t, entries, 3, "workers=%d", workers)
		assert.Equal(t, "i-200", entries[0].UUID)
		assert.Equal(t, "m-200", entries[0].MeetingUUID)
		assert.Equal(t, "One-off", entries[0].Topic)
		assert.Equal(t, "h2", entries[0].HostID)
		assert.Equal(t, 45, entries[0].Duration)
		assert.True(t, entries[0].StartTime.Equal(*ts("2024-03-11T10:02:00Z")), "instance start time wins")

		// Provider order is kept, not sorted by start time.
		assert.Equal(t, "i-300-b", entries[1].UUID)
		assert.Equal(t, "i-300-a", entries[2].UUID)
		assert.Equal(t, int64(300), entries[2].MeetingID)

		mockZoom.AssertExpectations(t)
	}
}

func TestMeetingCatalog_ListMeetings_Empty(t *testing.T) {
	catalog, mockZoom := setupMeetingCatalogForTesting(ServiceConfig{})
	mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{}, nil)

	entries, err := catalog.ListMeetings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	mockZoom.AssertNotCalled(t, "ListPastInstances", mock.Anything, mock.Anything)
}

func TestMeetingCatalog_ListMeetings_Errors(t *testing.T) {
	tests := []struct {
		name         string
		setupMocks   func(*mocks.MockZoomAPI)
		expectedType domain.ErrorType
	}{
		{
			name: "authentication failure",
			setupMocks: func(m *mocks.MockZoomAPI) {
				m.On("ListMeetings", mock.Anything).Return(nil, api.ErrAuthentication)
			},
			expectedType: domain.ErrorTypeUnauthorized,
		},
		{
			name: "listing fails with server error",
			setupMocks: func(m *mocks.MockZoomAPI) {
				m.On("ListMeetings", mock.Anything).Return(nil, &api.ResponseError{StatusCode: 502})
			},
			expectedType: domain.ErrorTypeUnavailable,
		},
		{
			name: "meeting without id",
			setupMocks: func(m *mocks.MockZoomAPI) {
				m.On("ListMeetings", mock.Anything).Return([]models.Meeting{{Topic: "broken"}}, nil)
			},
			expectedType: domain.ErrorTypeMissingField,
		},
		{
			name: "instances call fails for one meeting",
			setupMocks: func(m *mocks.MockZoomAPI) {
				m.On("ListMeetings", mock.Anything).Return([]models.Meeting{{ID: 1}, {ID: 2}}, nil)
				m.On("ListPastInstances", mock.Anything, "1").Return([]models.MeetingInstance{{UUID: "a"}}, nil)
				m.On("ListPastInstances", mock.Anything, "2").Return(nil,
					&api.ResponseError{StatusCode: 400, Code: api.ErrorCodeInvalidMeetingID, Message: "Invalid meeting id."})
			},
			expectedType: domain.ErrorTypeValidation,
		},
		{
			name: "instance without uuid",
			setupMocks: func(m *mocks.MockZoomAPI) {
				m.On("ListMeetings", mock.Anything).Return([]models.Meeting{{ID: 1}}, nil)
				m.On("ListPastInstances", mock.Anything, "1").Return([]models.MeetingInstance{{StartTime: ts("2024-03-11T09:00:00Z")}}, nil)
			},
			expectedType: domain.ErrorTypeMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, mockZoom := setupMeetingCatalogForTesting(ServiceConfig{})
			tt.setupMocks(mockZoom)

			entries, err := catalog.ListMeetings(context.Background())
			require.Error(t, err)
			assert.Nil(t, entries)
			assert.Equal(t, tt.expectedType, domain.GetErrorType(err))
		})
	}
}

func TestMeetingCatalog_GetInstances_KeepsResponseError(t *testing.T) {
	catalog, mockZoom := setupMeetingCatalogForTesting(ServiceConfig{})
	respErr := &api.ResponseError{StatusCode: 400, Code: api.ErrorCodeInvalidMeetingID}
	mockZoom.On("ListPastInstances", mock.Anything, "42").Return(nil, respErr)

	_, err := catalog.GetInstances(context.Background(), "42")

	var got *api.ResponseError
	require.True(t, errors.As(err, &got))
	assert.Same(t, respErr, got)
}

func TestMeetingCatalog_GetMeetingDetail(t *testing.T) {
	catalog, mockZoom := setupMeetingCatalogForTesting(ServiceConfig{})
	mockZoom.On("GetMeeting", mock.Anything, "42").Return(&models.Meeting{ID: 42, UUID: "detail=="}, nil)
	mockZoom.On("GetMeeting", mock.Anything, "404").Return(nil,
		&api.ResponseError{StatusCode: 404, Code: api.ErrorCodeMeetingNotFound})

	meeting, err := catalog.GetMeetingDetail(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "detail==", meeting.UUID)

	_, err = catalog.GetMeetingDetail(context.Background(), "404")
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}
