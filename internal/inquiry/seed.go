package inquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/welldanyogia/elite-estate/internal/models"
	"github.com/welldanyogia/elite-estate/internal/repository"
)

// SampleInquiries returns the demo inquiries used to populate an empty store
func SampleInquiries() []models.Inquiry {
	at := func(day, hour, minute int) time.Time {
		return time.Date(2023, time.May, day, hour, minute, 0, 0, time.UTC)
	}
	return []models.Inquiry{
		{Name: "John Smith", Email: "john.smith@example.com", Message: "I'm interested in the downtown penthouse. Is it still available for viewing this weekend?", CreatedAt: at(15, 9, 30), Status: models.StatusUnread},
		{Name: "Emily Johnson", Email: "emily.johnson@example.com", Message: "Could you send me more details about the lakeside villa, including HOA fees?", CreatedAt: at(14, 14, 15), Status: models.StatusUnread},
		{Name: "Michael Brown", Email: "michael.brown@example.com", Message: "We are relocating in the fall and looking for a 3 bedroom home near good schools.", CreatedAt: at(13, 11, 45), Status: models.StatusRead, Bookmarked: true},
		{Name: "Sarah Miller", Email: "sarah.miller@example.com", Message: "Do you also handle rentals? I'd like to lease my townhouse.", CreatedAt: at(12, 16, 20), Status: models.StatusRead},
		{Name: "David Wilson", Email: "david.wilson@example.com", Message: "Please call me back about financing options for the Main Street townhouse.", CreatedAt: at(11, 11, 5), Status: models.StatusUnread},
	}
}

// Seed stores the sample inquiries when the store is empty and reports how
// many were added
func Seed(ctx context.Context, repo repository.InquiryRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing inquiries: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := SampleInquiries()
	for i := range samples {
		if err := repo.Create(ctx, &samples[i]); err != nil {
			return i, fmt.Errorf("failed to seed inquiry %q: %w", samples[i].Name, err)
		}
	}
	return len(samples), nil
}
