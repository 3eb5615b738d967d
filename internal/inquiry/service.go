// Package inquiry accepts contact submissions and stores them as inquiries.
package inquiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/welldanyogia/elite-estate/internal/changefeed"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/models"
	"github.com/welldanyogia/elite-estate/internal/repository"
	"github.com/welldanyogia/elite-estate/internal/validator"
)

// SubmitInput is what a visitor typed into the contact form
type SubmitInput struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Service turns valid submissions into stored inquiries
type Service struct {
	repo      repository.InquiryRepository
	publisher changefeed.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new inquiry Service. publisher may be nil.
func NewService(repo repository.InquiryRepository, publisher changefeed.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit validates the input and inserts one unread, unbookmarked inquiry.
// Invalid input yields a *apperrors.ValidationError and nothing is stored.
// A failed insert is reported as ErrStoreUnavailable.
func (s *Service) Submit(ctx context.Context, in SubmitInput, source models.InquirySource) (*models.Inquiry, error) {
	// Validate what will be stored: stripped control characters must not
	// count toward the minimum lengths. Overlong input is rejected, not cut.
	name := validator.SanitizeString(in.Name, 0)
	message := validator.SanitizeMessage(in.Message, 0)
	if err := apperrors.NewValidationError(validator.ValidateInquiry(name, in.Email, message)); err != nil {
		return nil, err
	}
	if source == "" {
		source = models.SourceWeb
	}

	inquiry := &models.Inquiry{
		Name:       name,
		Email:      validator.NormalizeEmail(in.Email),
		Message:    message,
		CreatedAt:  s.now().UTC(),
		Status:     models.StatusUnread,
		Bookmarked: false,
		Source:     source,
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		s.logger.Error("failed to store inquiry",
			slog.String("source", string(source)),
			slog.Any("error", err),
		)
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err.Error())
	}

	s.logger.Info("inquiry received",
		slog.String("inquiry_id", inquiry.ID),
		slog.String("source", string(source)),
	)

	if s.publisher != nil {
		s.publisher.Publish(ctx, changefeed.NewInquiryChange(changefeed.EventInsert, inquiry))
	}

	return inquiry, nil
}
