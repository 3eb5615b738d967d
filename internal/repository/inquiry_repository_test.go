package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/elite-estate/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InquiryRepositoryTestSuite is the test suite for InquiryRepository
type InquiryRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo InquiryRepository
}

// SetupSuite runs once before all tests
func (s *InquiryRepositoryTestSuite) SetupSuite() {
	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Inquiry{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewInquiryRepository(db)
}

// TearDownSuite runs once after all tests
func (s *InquiryRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (s *InquiryRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM inquiries")
}

// TestInquiryRepositoryTestSuite runs the test suite
func TestInquiryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(InquiryRepositoryTestSuite))
}

func (s *InquiryRepositoryTestSuite) newInquiry(name string, createdAt time.Time) *models.Inquiry {
	return &models.Inquiry{
		Name:      name,
		Email:     "someone@example.com",
		Message:   "Interested in the penthouse",
		CreatedAt: createdAt,
		Status:    models.StatusUnread,
	}
}

// ==================== Create Tests ====================

func (s *InquiryRepositoryTestSuite) TestCreate_AssignsIDAndDefaults() {
	// Arrange
	inquiry := &models.Inquiry{
		Name:      "Ann Lee",
		Email:     "a@b.com",
		Message:   "Hello there",
		CreatedAt: time.Now().UTC(),
	}

	// Act
	err := s.repo.Create(context.Background(), inquiry)

	// Assert
	assert.NoError(s.T(), err)
	assert.Len(s.T(), inquiry.ID, 36)
	assert.Equal(s.T(), models.StatusUnread, inquiry.Status)

	stored, err := s.repo.GetByID(context.Background(), inquiry.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), stored.Bookmarked)
	assert.Equal(s.T(), models.StatusUnread, stored.Status)
	assert.Equal(s.T(), "Ann Lee", stored.Name)
}

func (s *InquiryRepositoryTestSuite) TestCreate_DuplicateID() {
	first := s.newInquiry("John", time.Now())
	first.ID = "11111111-1111-1111-1111-111111111111"
	require.NoError(s.T(), s.repo.Create(context.Background(), first))

	second := s.newInquiry("Emily", time.Now())
	second.ID = first.ID
	err := s.repo.Create(context.Background(), second)

	assert.ErrorIs(s.T(), err, ErrDuplicateEntry)
}

// ==================== GetByID Tests ====================

func (s *InquiryRepositoryTestSuite) TestGetByID_NotFound() {
	inquiry, err := s.repo.GetByID(context.Background(), "missing")

	assert.Nil(s.T(), inquiry)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

// ==================== List Tests ====================

func (s *InquiryRepositoryTestSuite) TestList_NewestFirst() {
	// Arrange
	base := time.Date(2023, 5, 11, 11, 5, 0, 0, time.UTC)
	for i, name := range []string{"David", "Sarah", "Michael"} {
		require.NoError(s.T(), s.repo.Create(context.Background(), s.newInquiry(name, base.Add(time.Duration(i)*time.Hour))))
	}

	// Act
	inquiries, err := s.repo.List(context.Background())

	// Assert
	require.NoError(s.T(), err)
	require.Len(s.T(), inquiries, 3)
	assert.Equal(s.T(), "Michael", inquiries[0].Name)
	assert.Equal(s.T(), "Sarah", inquiries[1].Name)
	assert.Equal(s.T(), "David", inquiries[2].Name)
}

func (s *InquiryRepositoryTestSuite) TestList_Empty() {
	inquiries, err := s.repo.List(context.Background())

	assert.NoError(s.T(), err)
	assert.Empty(s.T(), inquiries)
}

// ==================== MarkAsRead Tests ====================

func (s *InquiryRepositoryTestSuite) TestMarkAsRead_Idempotent() {
	inquiry := s.newInquiry("John", time.Now())
	require.NoError(s.T(), s.repo.Create(context.Background(), inquiry))

	assert.NoError(s.T(), s.repo.MarkAsRead(context.Background(), inquiry.ID))
	assert.NoError(s.T(), s.repo.MarkAsRead(context.Background(), inquiry.ID))

	stored, err := s.repo.GetByID(context.Background(), inquiry.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusRead, stored.Status)
}

func (s *InquiryRepositoryTestSuite) TestMarkAsRead_NotFound() {
	err := s.repo.MarkAsRead(context.Background(), "missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

// ==================== SetBookmarked Tests ====================

func (s *InquiryRepositoryTestSuite) TestSetBookmarked_RoundTrip() {
	inquiry := s.newInquiry("Emily", time.Now())
	require.NoError(s.T(), s.repo.Create(context.Background(), inquiry))

	require.NoError(s.T(), s.repo.SetBookmarked(context.Background(), inquiry.ID, true))
	stored, _ := s.repo.GetByID(context.Background(), inquiry.ID)
	assert.True(s.T(), stored.Bookmarked)

	require.NoError(s.T(), s.repo.SetBookmarked(context.Background(), inquiry.ID, false))
	stored, _ = s.repo.GetByID(context.Background(), inquiry.ID)
	assert.False(s.T(), stored.Bookmarked)
}

func (s *InquiryRepositoryTestSuite) TestSetBookmarked_NotFound() {
	err := s.repo.SetBookmarked(context.Background(), "missing", true)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}
