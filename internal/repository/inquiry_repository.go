package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/welldanyogia/elite-estate/internal/models"
	"gorm.io/gorm"
)

// InquiryRepository defines the interface for the inquiries table
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id string) (*models.Inquiry, error)
	List(ctx context.Context) ([]models.Inquiry, error)
	MarkAsRead(ctx context.Context, id string) error
	SetBookmarked(ctx context.Context, id string, bookmarked bool) error
}

// inquiryRepository implements InquiryRepository using GORM
type inquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository creates a new InquiryRepository instance
func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

// Create inserts a new inquiry
func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	result := r.db.WithContext(ctx).Create(inquiry)
	if err := translateError(result.Error); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			return err
		}
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}

// GetByID retrieves an inquiry by its ID
func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&inquiry)
	if err := translateError(result.Error); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get inquiry by ID: %w", err)
	}
	return &inquiry, nil
}

// List returns every inquiry, newest first
func (r *inquiryRepository) List(ctx context.Context) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	result := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&inquiries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", result.Error)
	}
	return inquiries, nil
}

// MarkAsRead sets the status to read. Repeating it on a read row is not an error.
func (r *inquiryRepository) MarkAsRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("status", models.StatusRead)
	if result.Error != nil {
		return fmt.Errorf("failed to mark inquiry as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBookmarked writes the bookmark flag
func (r *inquiryRepository) SetBookmarked(ctx context.Context, id string, bookmarked bool) error {
	result := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("bookmarked", bookmarked)
	if result.Error != nil {
		return fmt.Errorf("failed to update bookmark: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
