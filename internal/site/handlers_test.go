package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/elite-estate/internal/api/middleware"
	"github.com/welldanyogia/elite-estate/internal/auth"
	"github.com/welldanyogia/elite-estate/internal/dashboard"
	"github.com/welldanyogia/elite-estate/internal/database"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/mocks"
	"github.com/welldanyogia/elite-estate/internal/models"
	"github.com/welldanyogia/elite-estate/internal/repository"
	"gorm.io/gorm"
)

// SiteHandlerTestSuite drives the site through echo against an in-memory store
type SiteHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    repository.InquiryRepository
	board   *dashboard.Board
	tokens  *auth.TokenIssuer
	echo    *echo.Echo
	handler *Handler
}

func (s *SiteHandlerTestSuite) SetupTest() {
	db, err := database.Connect("sqlite::memory:")
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(db))
	s.db = db
	s.repo = repository.NewInquiryRepository(db)

	s.board = dashboard.NewBoard(s.repo, nil, nil)
	s.setup(inquiry.NewService(s.repo, nil, nil), s.board)
}

func (s *SiteHandlerTestSuite) TearDownTest() {
	database.Close(s.db)
}

func (s *SiteHandlerTestSuite) setup(submitter Submitter, board InquiryBoard) {
	content, err := LoadContent("")
	require.NoError(s.T(), err)
	renderer, err := NewRenderer()
	require.NoError(s.T(), err)
	gate, err := auth.NewGate("1234")
	require.NoError(s.T(), err)
	s.tokens, err = auth.NewTokenIssuer("", time.Hour)
	require.NoError(s.T(), err)

	s.echo = echo.New()
	s.echo.Renderer = renderer
	s.handler = NewHandler(HandlerConfig{
		Content:   content,
		Submitter: submitter,
		Board:     board,
		Gate:      gate,
		Tokens:    s.tokens,
	})
	s.handler.Register(s.echo, nil, nil)
}

func TestSiteHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SiteHandlerTestSuite))
}

func (s *SiteHandlerTestSuite) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *SiteHandlerTestSuite) session() *http.Cookie {
	token, err := s.tokens.Issue()
	require.NoError(s.T(), err)
	return &http.Cookie{Name: TokenCookie, Value: token.Value}
}

func (s *SiteHandlerTestSuite) seed(name string, status models.InquiryStatus) *models.Inquiry {
	in := &models.Inquiry{
		Name:      name,
		Email:     strings.ToLower(strings.Fields(name)[0]) + "@example.com",
		Message:   "Looking for a family home",
		CreatedAt: time.Now().UTC(),
		Status:    status,
	}
	require.NoError(s.T(), s.repo.Create(context.Background(), in))
	return in
}

// ==================== Public Pages ====================

func (s *SiteHandlerTestSuite) TestPublicPages() {
	for _, path := range []string{"/", "/properties", "/about", "/testimonials", "/contact"} {
		rec := s.do(http.MethodGet, path, nil)
		assert.Equal(s.T(), http.StatusOK, rec.Code, path)
		assert.Contains(s.T(), rec.Body.String(), "Elite Real Estate", path)
	}
}

func (s *SiteHandlerTestSuite) TestStaticAssets() {
	rec := s.do(http.MethodGet, "/static/site.css", nil)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderContentType), "text/css")
}

// ==================== Contact Form ====================

func (s *SiteHandlerTestSuite) TestSubmitContact_Stored() {
	form := url.Values{"name": {"Ann Lee"}, "email": {"a@b.com"}, "message": {"Hello there"}}

	rec := s.do(http.MethodPost, "/contact", form)

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	assert.Equal(s.T(), "/contact?sent=1", rec.Header().Get(echo.HeaderLocation))

	stored, err := s.repo.List(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), stored, 1)
	assert.Equal(s.T(), "Ann Lee", stored[0].Name)
	assert.Equal(s.T(), models.StatusUnread, stored[0].Status)
	assert.False(s.T(), stored[0].Bookmarked)
	assert.Equal(s.T(), models.SourceWeb, stored[0].Source)

	page := s.do(http.MethodGet, "/contact?sent=1", nil)
	assert.Contains(s.T(), page.Body.String(), "Message sent!")
}

func (s *SiteHandlerTestSuite) TestSubmitContact_InvalidShowsFieldErrors() {
	form := url.Values{"name": {"A"}, "email": {"not-an-email"}, "message": {"Hi"}}

	rec := s.do(http.MethodPost, "/contact", form)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(s.T(), body, `id="name-error"`)
	assert.Contains(s.T(), body, `id="email-error"`)
	assert.Contains(s.T(), body, `id="message-error"`)
	assert.Contains(s.T(), body, `value="not-an-email"`)

	stored, err := s.repo.List(context.Background())
	require.NoError(s.T(), err)
	assert.Empty(s.T(), stored)
}

func (s *SiteHandlerTestSuite) TestSubmitContact_StoreFailure() {
	repo := new(mocks.MockInquiryRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	s.setup(inquiry.NewService(repo, nil, nil), s.board)

	form := url.Values{"name": {"Ann Lee"}, "email": {"a@b.com"}, "message": {"Hello there"}}
	rec := s.do(http.MethodPost, "/contact", form)

	assert.Equal(s.T(), http.StatusServiceUnavailable, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "There was a problem sending your message.")
	assert.NotContains(s.T(), rec.Body.String(), "Message sent!")
}

// ==================== Dashboard Gate ====================

func (s *SiteHandlerTestSuite) TestDashboard_LockedWithoutSession() {
	s.seed("John Smith", models.StatusUnread)

	rec := s.do(http.MethodGet, "/dashboard", nil)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Dashboard Login")
	assert.NotContains(s.T(), rec.Body.String(), "John Smith")
}

func (s *SiteHandlerTestSuite) TestUnlock_WrongPassword() {
	rec := s.do(http.MethodPost, "/dashboard/unlock", url.Values{"password": {"0000"}})

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Incorrect password.")
	assert.Empty(s.T(), rec.Result().Cookies())
}

func (s *SiteHandlerTestSuite) TestUnlock_SetsSessionCookie() {
	rec := s.do(http.MethodPost, "/dashboard/unlock", url.Values{"password": {"1234"}})

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	assert.Equal(s.T(), "/dashboard?notice=unlocked", rec.Header().Get(echo.HeaderLocation))

	cookies := rec.Result().Cookies()
	require.Len(s.T(), cookies, 1)
	assert.Equal(s.T(), TokenCookie, cookies[0].Name)
	assert.True(s.T(), cookies[0].HttpOnly)
	assert.Equal(s.T(), http.SameSiteStrictMode, cookies[0].SameSite)
	assert.NoError(s.T(), s.tokens.Verify(cookies[0].Value))

	page := s.do(http.MethodGet, "/dashboard?notice=unlocked", nil, cookies[0])
	assert.Contains(s.T(), page.Body.String(), "You have been logged in to the dashboard.")
}

func (s *SiteHandlerTestSuite) TestUnlock_RateLimited() {
	s.echo = echo.New()
	renderer, err := NewRenderer()
	require.NoError(s.T(), err)
	s.echo.Renderer = renderer
	s.handler.Register(s.echo, nil, middleware.RateLimit(middleware.NewPerMinuteLimiter(2), nil))

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/dashboard/unlock", url.Values{"password": {"0000"}})
		require.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	}

	rec := s.do(http.MethodPost, "/dashboard/unlock", url.Values{"password": {"1234"}})

	assert.Equal(s.T(), http.StatusTooManyRequests, rec.Code)
	assert.Empty(s.T(), rec.Result().Cookies())
}

func (s *SiteHandlerTestSuite) TestLogout_ClearsCookie() {
	rec := s.do(http.MethodPost, "/dashboard/logout", nil, s.session())

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(s.T(), cookies, 1)
	assert.Empty(s.T(), cookies[0].Value)
	assert.Less(s.T(), cookies[0].MaxAge, 0)
}

// ==================== Dashboard Table ====================

func (s *SiteHandlerTestSuite) TestDashboard_FilterAndSearch() {
	s.seed("John Smith", models.StatusUnread)
	s.seed("Emily Johnson", models.StatusRead)
	s.seed("Michael Brown", models.StatusUnread)

	rec := s.do(http.MethodGet, "/dashboard?status=unread&q=JOHN", nil, s.session())

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(s.T(), body, "John Smith")
	assert.NotContains(s.T(), body, "Emily Johnson")
	assert.NotContains(s.T(), body, "Michael Brown")
}

func (s *SiteHandlerTestSuite) TestDashboard_UnknownStatusShowsAll() {
	s.seed("John Smith", models.StatusUnread)
	s.seed("Emily Johnson", models.StatusRead)

	rec := s.do(http.MethodGet, "/dashboard?status=bogus", nil, s.session())

	assert.Contains(s.T(), rec.Body.String(), "John Smith")
	assert.Contains(s.T(), rec.Body.String(), "Emily Johnson")
}

func (s *SiteHandlerTestSuite) TestDashboard_ReadFailureShowsEmptyList() {
	repo := new(mocks.MockInquiryRepository)
	repo.On("List", mock.Anything).Return(nil, errors.New("connection refused"))
	s.setup(inquiry.NewService(repo, nil, nil), dashboard.NewBoard(repo, nil, nil))

	rec := s.do(http.MethodGet, "/dashboard", nil, s.session())

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Inquiries could not be loaded.")
	assert.Contains(s.T(), rec.Body.String(), "No inquiries found.")
}

func (s *SiteHandlerTestSuite) TestMarkRead_KeepsFilter() {
	in := s.seed("John Smith", models.StatusUnread)

	rec := s.do(http.MethodPost, "/dashboard/inquiries/"+in.ID+"/read",
		url.Values{"status": {"unread"}, "q": {"john"}}, s.session())

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "/dashboard", loc.Path)
	assert.Equal(s.T(), "read", loc.Query().Get("notice"))
	assert.Equal(s.T(), "unread", loc.Query().Get("status"))
	assert.Equal(s.T(), "john", loc.Query().Get("q"))

	stored, err := s.repo.GetByID(context.Background(), in.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusRead, stored.Status)
}

func (s *SiteHandlerTestSuite) TestToggleBookmark_Twice() {
	in := s.seed("Sarah Miller", models.StatusUnread)
	path := "/dashboard/inquiries/" + in.ID + "/bookmark"

	rec := s.do(http.MethodPost, path, url.Values{}, s.session())
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderLocation), "notice=bookmarked")

	rec = s.do(http.MethodPost, path, url.Values{}, s.session())
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderLocation), "notice=unbookmarked")

	stored, err := s.repo.GetByID(context.Background(), in.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), stored.Bookmarked)
}

func (s *SiteHandlerTestSuite) TestActions_MissingInquiry() {
	rec := s.do(http.MethodPost, "/dashboard/inquiries/missing/read", url.Values{}, s.session())

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	assert.Contains(s.T(), rec.Header().Get(echo.HeaderLocation), "notice=missing")
}

func (s *SiteHandlerTestSuite) TestActions_RequireSession() {
	in := s.seed("David Wilson", models.StatusUnread)

	rec := s.do(http.MethodPost, "/dashboard/inquiries/"+in.ID+"/read", url.Values{})

	assert.Equal(s.T(), http.StatusSeeOther, rec.Code)
	assert.Equal(s.T(), "/dashboard", rec.Header().Get(echo.HeaderLocation))

	stored, err := s.repo.GetByID(context.Background(), in.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusUnread, stored.Status)
}

func TestNoticeFlash(t *testing.T) {
	assert.Nil(t, noticeFlash(""))
	assert.Nil(t, noticeFlash("whatever"))
	assert.Equal(t, msgMarkedRead, noticeFlash("read").Message)
	assert.Equal(t, "error", noticeFlash("failed").Kind)
}
