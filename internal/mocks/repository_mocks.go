package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// MockInquiryRepository implements repository.InquiryRepository
type MockInquiryRepository struct {
	mock.Mock
}

// Create inserts a new inquiry
func (m *MockInquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	args := m.Called(ctx, inquiry)
	return args.Error(0)
}

// GetByID retrieves an inquiry by its ID
func (m *MockInquiryRepository) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

// List returns every inquiry, newest first
func (m *MockInquiryRepository) List(ctx context.Context) ([]models.Inquiry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

// MarkAsRead sets the status to read
func (m *MockInquiryRepository) MarkAsRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SetBookmarked writes the bookmark flag
func (m *MockInquiryRepository) SetBookmarked(ctx context.Context, id string, bookmarked bool) error {
	args := m.Called(ctx, id, bookmarked)
	return args.Error(0)
}
