package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryStatus is the read state of an inquiry
type InquiryStatus string

const (
	StatusUnread InquiryStatus = "unread"
	StatusRead   InquiryStatus = "read"
)

// InquirySource records how an inquiry reached the store
type InquirySource string

const (
	SourceWeb   InquirySource = "web"
	SourceEmail InquirySource = "email"
)

// Inquiry represents a contact-form submission
type Inquiry struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	Name       string        `gorm:"not null;size:255" json:"name"`
	Email      string        `gorm:"not null;size:254;index" json:"email"`
	Message    string        `gorm:"not null" json:"message"`
	CreatedAt  time.Time     `gorm:"not null;index" json:"created_at"`
	Status     InquiryStatus `gorm:"not null;size:16;default:'unread';index" json:"status"`
	Bookmarked bool          `gorm:"not null;default:false" json:"bookmarked"`
	Source     InquirySource `gorm:"size:16;default:'web'" json:"source"`
}

// TableName returns the table name for Inquiry
func (Inquiry) TableName() string {
	return "inquiries"
}

// BeforeCreate assigns the opaque identifier when the caller did not
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = StatusUnread
	}
	return nil
}

// IsRead reports whether the inquiry has been marked as read
func (i *Inquiry) IsRead() bool {
	return i.Status == StatusRead
}

// StatusFilter selects inquiries by status in list views
type StatusFilter string

const (
	FilterAll    StatusFilter = "all"
	FilterUnread StatusFilter = "unread"
	FilterRead   StatusFilter = "read"
)

// ParseStatusFilter parses a filter value. Empty input means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUnread:
		return FilterUnread, nil
	case FilterRead:
		return FilterRead, nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// Matches reports whether an inquiry with the given status passes the filter
func (f StatusFilter) Matches(status InquiryStatus) bool {
	switch f {
	case FilterUnread:
		return status == StatusUnread
	case FilterRead:
		return status == StatusRead
	default:
		return true
	}
}

// InquiryStats is the summary shown above the dashboard table
type InquiryStats struct {
	Total      int `json:"total"`
	Unread     int `json:"unread"`
	Bookmarked int `json:"bookmarked"`
}
