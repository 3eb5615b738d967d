package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// MockInquiryBoard implements the dashboard board used by the HTTP handlers
type MockInquiryBoard struct {
	mock.Mock
}

// EnsureLoaded loads the board if needed
func (m *MockInquiryBoard) EnsureLoaded(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// View returns the filtered inquiries
func (m *MockInquiryBoard) View(status models.StatusFilter, query string) []models.Inquiry {
	args := m.Called(status, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Inquiry)
}

// Stats summarizes the board
func (m *MockInquiryBoard) Stats() models.InquiryStats {
	args := m.Called()
	return args.Get(0).(models.InquiryStats)
}

// Get returns one inquiry
func (m *MockInquiryBoard) Get(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

// MarkAsRead marks an inquiry as read
func (m *MockInquiryBoard) MarkAsRead(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

// ToggleBookmark flips the bookmark flag
func (m *MockInquiryBoard) ToggleBookmark(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}
