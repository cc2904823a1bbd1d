// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewClient(Config{AccessToken: "test-token", BaseURL: server.URL})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{AccessToken: "x"})
	assert.Equal(t, BaseURL, client.config.BaseURL)
	assert.Equal(t, DefaultClientTimeout, client.config.Timeout)
}

func TestClient_SearchContactByEmail(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		expectedID string
	}{
		{
			name:       "contact found",
			response:   `{"total": 1, "results": [{"id": "501", "properties": {"email": "ada@example.com"}}]}`,
			expectedID: "501",
		},
		{
			name:     "no contact",
			response: `{"total": 0, "results": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body searchRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Len(t, body.FilterGroups, 1)
				require.Len(t, body.FilterGroups[0].Filters, 1)
				assert.Equal(t, filter{PropertyName: "email", Operator: "EQ", Value: "ada@example.com"}, body.FilterGroups[0].Filters[0])

				_, _ = w.Write([]byte(tt.response))
			})

			contact, err := client.SearchContactByEmail(context.Background(), " ada@example.com ")
			require.NoError(t, err)
			if tt.expectedID == "" {
				assert.Nil(t, contact)
				return
			}
			require.NotNil(t, contact)
			assert.Equal(t, tt.expectedID, contact.ID)
			assert.Equal(t, "ada@example.com", contact.Email())
		})
	}
}

func TestClient_CreateContact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)

		var body propertiesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body.Properties["email"])
		assert.Equal(t, "Standup", body.Properties["last_session_title"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "777", "properties": {"email": "ada@example.com"}, "createdAt": "2024-03-11T10:00:00Z"}`))
	})

	contact, err := client.CreateContact(context.Background(), models.ContactProperties{
		"email":              "ada@example.com",
		"last_session_title": "Standup",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", contact.ID)
	require.NotNil(t, contact.CreatedAt)
}

func TestClient_UpdateContact(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/501", r.URL.Path)

		var body propertiesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "5.5", body.Properties["last_session_attended_minutes"])

		_, _ = w.Write([]byte(`{"id": "501", "properties": {"last_session_attended_minutes": "5.5"}}`))
	})

	contact, err := client.UpdateContact(context.Background(), "501", models.ContactProperties{
		"last_session_attended_minutes": "5.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "501", contact.ID)
}

func TestClient_ErrorResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status": "error", "message": "Contact already exists. Existing ID: 501", "correlationId": "c-1", "category": "CONFLICT"}`))
	})

	_, err := client.CreateContact(context.Background(), models.ContactProperties{"email": "ada@example.com"})

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusConflict, respErr.StatusCode)
	assert.Equal(t, "CONFLICT", respErr.Category)
	assert.Equal(t, "c-1", respErr.CorrelationID)
	assert.Contains(t, err.Error(), "Contact already exists")
}

func TestParseErrorResponse_NonJSON(t *testing.T) {
	err := parseErrorResponse(http.StatusBadGateway, []byte("upstream unavailable"))
	assert.Equal(t, "hubspot API error (status 502): upstream unavailable", err.Error())
}

func TestClient_ErrorResponse_CorrelationHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-HubSpot-Correlation-Id", "hdr-7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status": "error", "message": "You have reached your secondly limit.", "category": "RATE_LIMITS"}`))
	})

	_, err := client.SearchContactByEmail(context.Background(), "ada@example.com")

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusTooManyRequests, respErr.StatusCode)
	assert.Equal(t, "hdr-7", respErr.CorrelationID)
}
