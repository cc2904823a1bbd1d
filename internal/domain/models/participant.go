// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "strings"

// Participant is one row of a meeting instance's participant report. Join and
// leave times are kept as the provider sent them so a malformed value never
// fails the whole page.
type Participant struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	ParticipantUserID string `json:"participant_user_id,omitempty"`
	Name              string `json:"name"`
	Email             string `json:"user_email"`
	JoinTime          string `json:"join_time"`
	LeaveTime         string `json:"leave_time"`
	Duration          int    `json:"duration"`
	Status            string `json:"status,omitempty"`
}

// HasEmail reports whether the participant authenticated with an email address.
func (p *Participant) HasEmail() bool {
	return p != nil && strings.TrimSpace(p.Email) != ""
}
