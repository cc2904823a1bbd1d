// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api"
	apimocks "github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/infrastructure/zoom/api/mocks"
)

func setupAttendanceServiceForTesting(config ServiceConfig) (*AttendanceService, *mocks.MockZoomAPI) {
	mockZoom := &mocks.MockZoomAPI{}
	catalog := NewMeetingCatalog(mockZoom, config)
	resolver := NewParticipantResolver(mockZoom, catalog, config)
	return NewAttendanceService(catalog, resolver, config), mockZoom
}

// mockLagosDay sets up two single-instance meetings: one at 23:30 UTC on
// 2024-03-10 (00:30 on the 11th in Lagos) and one at 10:00 UTC on the 11th.
func mockLagosDay(m *mocks.MockZoomAPI) {
	m.On("ListMeetings", mock.Anything).Return([]models.Meeting{
		{ID: 1, Topic: "Late night", HostID: "h1", Duration: 30, StartTime: ts("2024-03-10T23:30:00Z")},
		{ID: 2, Topic: "Morning", HostID: "h2", Duration: 60, StartTime: ts("2024-03-11T10:00:00Z")},
	}, nil)
	m.On("ListPastInstances", mock.Anything, "1").Return([]models.MeetingInstance{
		{UUID: "inst-1", StartTime: ts("2024-03-10T23:30:00Z")},
	}, nil)
	m.On("ListPastInstances", mock.Anything, "2").Return([]models.MeetingInstance{
		{UUID: "inst-2", StartTime: ts("2024-03-11T10:00:00Z")},
	}, nil)
	m.On("ListParticipants", mock.Anything, "inst-1").Return([]models.Participant{
		{Name: "Ada", Email: "ada@example.com", JoinTime: "2024-03-10T23:31:00Z", LeaveTime: "2024-03-10T23:50:00Z"},
		{Name: "Guest", JoinTime: "2024-03-10T23:35:00Z", LeaveTime: "2024-03-11T00:01:00Z"},
	}, nil).Maybe()
	m.On("ListParticipants", mock.Anything, "inst-2").Return([]models.Participant{
		{Name: "Grace", Email: "grace@example.com", JoinTime: "2024-01-01T10:00:00", LeaveTime: "2024-01-01T10:05:30"},
	}, nil).Maybe()
}

func TestAttendanceService_GetAttendance_FiltersByLagosDate(t *testing.T) {
	tests := []struct {
		name          string
		targetDate    string
		workers       int
		expectedNames []string
	}{
		{"both meetings fall on the 11th in Lagos", "2024-03-11", 1, []string{"Ada", "Guest", "Grace"}},
		{"order is kept with concurrent workers", "2024-03-11", 4, []string{"Ada", "Guest", "Grace"}},
		{"nothing on the 10th in Lagos", "2024-03-10", 1, nil},
		{"alternate date layout", "2024/03/11", 1, []string{"Ada", "Guest", "Grace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{Workers: tt.workers})
			mockLagosDay(mockZoom)

			rows, err := svc.GetAttendance(context.Background(), tt.targetDate)
			require.NoError(t, err)
			require.NotNil(t, rows)

			var names []string
			for _, row := range rows {
				names = append(names, row.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestAttendanceService_GetAttendance_ZeroConfigUsesLagos(t *testing.T) {
	mockZoom := &mocks.MockZoomAPI{}
	mockLagosDay(mockZoom)
	catalog := NewMeetingCatalog(mockZoom, ServiceConfig{})
	resolver := NewParticipantResolver(mockZoom, catalog, ServiceConfig{})
	svc := NewAttendanceService(catalog, resolver, ServiceConfig{})

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Late night", rows[0].Topic)
	assert.Equal(t, "2024-03-11", rows[0].MeetingDate)
	assert.Equal(t, "Grace", rows[2].Name)

	_, offset := rows[0].StartTime.Zone()
	assert.Equal(t, 3600, offset)
}

func TestServiceConfig_LocationDefaultsToLagos(t *testing.T) {
	loc := ServiceConfig{}.location()
	start := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", models.DateOf(start, loc))

	assert.Equal(t, time.UTC, ServiceConfig{Location: time.UTC}.location())
}

func TestAttendanceService_GetAttendance_TagsRows(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})
	mockLagosDay(mockZoom)

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "Late night", first.Topic)
	assert.Equal(t, int64(1), first.MeetingID)
	assert.Equal(t, "h1", first.HostID)
	assert.Equal(t, 30, first.MeetingDuration)
	assert.Equal(t, "2024-03-11", first.MeetingDate)
	assert.Equal(t, "inst-1", first.InstanceUUID)
	assert.Equal(t, 0, first.StartTime.Hour())
	assert.Equal(t, 30, first.StartTime.Minute())

	// End time is the latest leave time of the meeting.
	require.NotNil(t, first.EndTime)
	assert.True(t, first.EndTime.Equal(*ts("2024-03-11T00:01:00Z")))
	require.NotNil(t, rows[1].EndTime)
	assert.True(t, rows[1].EndTime.Equal(*first.EndTime))

	grace := rows[2]
	require.NotNil(t, grace.AttendedMinutes)
	assert.Equal(t, 5.5, *grace.AttendedMinutes)
	assert.False(t, rows[1].HasEmail())
}

func TestAttendanceService_GetAttendance_DefaultsToToday(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})
	mockLagosDay(mockZoom)
	// 23:15 UTC on the 10th is already the 11th in Lagos.
	svc.Now = func() time.Time { return time.Date(2024, 3, 10, 23, 15, 0, 0, time.UTC) }

	rows, err := svc.GetAttendance(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAttendanceService_GetAttendance_NoMeetings(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})
	mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{}, nil)

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	mockZoom.AssertNotCalled(t, "ListParticipants", mock.Anything, mock.Anything)
}

func TestAttendanceService_GetAttendance_InvalidDate(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})

	_, err := svc.GetAttendance(context.Background(), "next tuesday")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	mockZoom.AssertNotCalled(t, "ListMeetings", mock.Anything)
}

func TestAttendanceService_GetAttendance_MissingStartTime(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})
	mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{{ID: 9, Topic: "No start"}}, nil)
	mockZoom.On("ListPastInstances", mock.Anything, "9").Return([]models.MeetingInstance{{UUID: "i-9"}}, nil)

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	assert.Nil(t, rows)
	assert.Equal(t, domain.ErrorTypeMissingField, domain.GetErrorType(err))
	assert.Contains(t, err.Error(), "start_time")
}

func TestAttendanceService_GetAttendance_MatchedPolicy(t *testing.T) {
	// Two instances of one recurring meeting on the same day.
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{InstancePolicy: InstancePolicyMatched})
	mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{{ID: 7, Topic: "Office hours"}}, nil)
	mockZoom.On("ListPastInstances", mock.Anything, "7").Return([]models.MeetingInstance{
		{UUID: "am", StartTime: ts("2024-03-11T08:00:00Z")},
		{UUID: "pm", StartTime: ts("2024-03-11T15:00:00Z")},
	}, nil)
	mockZoom.On("ListParticipants", mock.Anything, "am").Return([]models.Participant{{Name: "Morning person"}}, nil)
	mockZoom.On("ListParticipants", mock.Anything, "pm").Return([]models.Participant{{Name: "Afternoon person"}}, nil)

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "am", rows[0].InstanceUUID)
	assert.Equal(t, "Morning person", rows[0].Name)
	assert.Equal(t, "pm", rows[1].InstanceUUID)
	assert.Equal(t, "Afternoon person", rows[1].Name)
}

func TestAttendanceService_GetAttendance_ParticipantErrorIsFatal(t *testing.T) {
	svc, mockZoom := setupAttendanceServiceForTesting(ServiceConfig{})
	mockZoom.On("ListMeetings", mock.Anything).Return([]models.Meeting{{ID: 1, StartTime: ts("2024-03-11T10:00:00Z")}}, nil)
	mockZoom.On("ListPastInstances", mock.Anything, "1").Return([]models.MeetingInstance{{UUID: "u1"}}, nil)
	mockZoom.On("ListParticipants", mock.Anything, "u1").Return(nil, domain.NewUnavailableError("zoom down"))

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	assert.Nil(t, rows)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	instant := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", instant.In(loc).Format(models.DateLayout))

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestAttendanceService_GetAttendance_ConcurrentClient(t *testing.T) {
	// Function-field client mock: safe to share across workers.
	client := apimocks.NewMockClient()
	client.ListMeetingsFunc = func(context.Context) ([]models.Meeting, error) {
		meetings := make([]models.Meeting, 0, 8)
		for id := int64(1); id <= 8; id++ {
			meetings = append(meetings, models.Meeting{ID: id, Type: api.MeetingTypeRecurringFixedTime, StartTime: ts("2024-03-11T12:00:00Z")})
		}
		return meetings, nil
	}
	client.ListPastInstancesFunc = func(_ context.Context, meetingID string) ([]models.MeetingInstance, error) {
		return []models.MeetingInstance{{UUID: "uuid-" + meetingID}}, nil
	}
	client.ListParticipantsFunc = func(_ context.Context, meetingUUID string) ([]models.Participant, error) {
		return []models.Participant{{Name: meetingUUID}}, nil
	}

	config := ServiceConfig{Location: lagos, Workers: 4}
	catalog := NewMeetingCatalog(client, config)
	svc := NewAttendanceService(catalog, NewParticipantResolver(client, catalog, config), config)

	rows, err := svc.GetAttendance(context.Background(), "2024-03-11")
	require.NoError(t, err)
	require.Len(t, rows, 8)
	for i, row := range rows {
		assert.Equal(t, int64(i+1), row.MeetingID)
		assert.Equal(t, row.InstanceUUID, row.Name)
	}
}
