// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package hubspot

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

const contactsPath = "/crm/v3/objects/contacts"

// EmailProperty is the unique contact property used for lookups.
const EmailProperty = "email"

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
}

type searchResponse struct {
	Total   int              `json:"total"`
	Results []models.Contact `json:"results"`
}

type propertiesRequest struct {
	Properties models.ContactProperties `json:"properties"`
}

// SearchContactByEmail returns the contact whose email equals email, or nil
// when there is none.
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*models.Contact, error) {
	request := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{PropertyName: EmailProperty, Operator: "EQ", Value: strings.TrimSpace(email)}},
		}},
		Properties: []string{EmailProperty},
		Limit:      1,
	}

	var response searchResponse
	if err := c.do(ctx, http.MethodPost, contactsPath+"/search", request, &response); err != nil {
		return nil, err
	}
	if len(response.Results) == 0 {
		return nil, nil
	}
	return &response.Results[0], nil
}

// CreateContact creates a contact with properties.
func (c *Client) CreateContact(ctx context.Context, properties models.ContactProperties) (*models.Contact, error) {
	var contact models.Contact
	if err := c.do(ctx, http.MethodPost, contactsPath, propertiesRequest{Properties: properties}, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// UpdateContact patches properties of the contact with contactID.
func (c *Client) UpdateContact(ctx context.Context, contactID string, properties models.ContactProperties) (*models.Contact, error) {
	var contact models.Contact
	path := contactsPath + "/" + url.PathEscape(contactID)
	if err := c.do(ctx, http.MethodPatch, path, propertiesRequest{Properties: properties}, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}
