// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain"
	"github.com/linuxfoundation/lfx-zoom-attendance-sync/internal/domain/models"
)

// MockContactStore implements ContactStore for testing
type MockContactStore struct {
	mock.Mock
}

var _ domain.ContactStore = (*MockContactStore)(nil)

func (m *MockContactStore) SearchContactByEmail(ctx context.Context, email string) (*models.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactStore) CreateContact(ctx context.Context, properties models.ContactProperties) (*models.Contact, error) {
	args := m.Called(ctx, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactStore) UpdateContact(ctx context.Context, contactID string, properties models.ContactProperties) (*models.Contact, error) {
	args := m.Called(ctx, contactID, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}
