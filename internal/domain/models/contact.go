// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// ContactProperties are CRM contact property values keyed by internal property name.
type ContactProperties map[string]string

// Contact is a CRM contact as returned by search, create and update calls.
type Contact struct {
	ID         string            `json:"id"`
	Properties ContactProperties `json:"properties"`
	CreatedAt  *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time        `json:"updatedAt,omitempty"`
	Archived   bool              `json:"archived,omitempty"`
}

// Email returns the contact's email property.
func (c *Contact) Email() string {
	if c == nil {
		return ""
	}
	return c.Properties["email"]
}
