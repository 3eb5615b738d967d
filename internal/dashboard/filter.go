package dashboard

import (
	"strings"

	"github.com/welldanyogia/elite-estate/internal/models"
)

// Filter returns the inquiries that pass both the status filter and the
// search query, keeping their order. The query matches as a case-insensitive
// substring of name, email or message; an empty query matches everything.
// items is never modified.
func Filter(items []models.Inquiry, status models.StatusFilter, query string) []models.Inquiry {
	needle := strings.ToLower(query)
	out := make([]models.Inquiry, 0, len(items))
	for _, item := range items {
		if !status.Matches(item.Status) {
			continue
		}
		if needle != "" && !matchesQuery(item, needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesQuery(item models.Inquiry, needle string) bool {
	return strings.Contains(strings.ToLower(item.Name), needle) ||
		strings.Contains(strings.ToLower(item.Email), needle) ||
		strings.Contains(strings.ToLower(item.Message), needle)
}

// Stats summarizes a list of inquiries
func Stats(items []models.Inquiry) models.InquiryStats {
	stats := models.InquiryStats{Total: len(items)}
	for _, item := range items {
		if item.Status == models.StatusUnread {
			stats.Unread++
		}
		if item.Bookmarked {
			stats.Bookmarked++
		}
	}
	return stats
}
