package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/elite-estate/internal/api/middleware"
	"github.com/welldanyogia/elite-estate/internal/auth"
	"github.com/welldanyogia/elite-estate/internal/changefeed"
	"github.com/welldanyogia/elite-estate/internal/dashboard"
	"github.com/welldanyogia/elite-estate/internal/database"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/models"
	"github.com/welldanyogia/elite-estate/internal/repository"
	"github.com/welldanyogia/elite-estate/internal/site"
	"github.com/welldanyogia/elite-estate/internal/websocket"
	"gorm.io/gorm"
)

// RouterTestSuite exercises the assembled server over real HTTP
type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	server *httptest.Server
	cancel context.CancelFunc
}

func (s *RouterTestSuite) SetupTest() {
	db, err := database.Connect("sqlite::memory:")
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(db))
	s.db = db

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	repo := repository.NewInquiryRepository(db)
	hub := websocket.NewHub(nil)
	board := dashboard.NewBoard(repo, hub, nil)
	service := inquiry.NewService(repo, changefeed.NewFanout(hub, board), nil)
	go hub.Run(ctx)
	go board.Run(ctx)

	gate, err := auth.NewGate("1234")
	require.NoError(s.T(), err)
	tokens, err := auth.NewTokenIssuer("", time.Hour)
	require.NoError(s.T(), err)
	content, err := site.LoadContent("")
	require.NoError(s.T(), err)

	e, err := NewRouter(&RouterConfig{
		DB:        db,
		Submitter: service,
		Board:     board,
		Gate:      gate,
		Tokens:    tokens,
		Hub:       hub,
		Upgrader:  websocket.NewSecureUpgrader(nil, nil),
		// Polling assertions would trip the default budget
		APILimiter: middleware.NewIPRateLimiter(1000, 1000),
		Site: site.NewHandler(site.HandlerConfig{
			Content:   content,
			Submitter: service,
			Board:     board,
			Gate:      gate,
			Tokens:    tokens,
		}),
	})
	require.NoError(s.T(), err)

	s.server = httptest.NewServer(e)
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
	s.cancel()
	database.Close(s.db)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) request(method, path, token, body string) (*http.Response, map[string]interface{}) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *RouterTestSuite) unlock() string {
	resp, body := s.request(http.MethodPost, "/api/dashboard/unlock", "", `{"password":"1234"}`)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	return body["data"].(map[string]interface{})["token"].(string)
}

func (s *RouterTestSuite) submit(name, email, message string) map[string]interface{} {
	payload, _ := json.Marshal(map[string]string{"name": name, "email": email, "message": message})
	resp, body := s.request(http.MethodPost, "/api/inquiries", "", string(payload))
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	return body["data"].(map[string]interface{})
}

func (s *RouterTestSuite) TestHealth() {
	resp, body := s.request(http.MethodGet, "/health", "", "")

	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "healthy", body["status"])
	assert.Equal(s.T(), float64(0), body["realtime_clients"])
}

func (s *RouterTestSuite) TestSubmitThenListUnreadAndSearch() {
	before := time.Now().Add(-time.Second)
	created := s.submit("Ann Lee", "a@b.com", "Hello there")

	assert.Equal(s.T(), "unread", created["status"])
	assert.Equal(s.T(), false, created["bookmarked"])
	at, err := time.Parse(time.RFC3339Nano, created["created_at"].(string))
	require.NoError(s.T(), err)
	assert.True(s.T(), at.After(before))

	token := s.unlock()

	for _, path := range []string{"/api/inquiries?status=unread", "/api/inquiries?q=ann", "/api/inquiries?status=unread&q=ANN"} {
		var items []interface{}
		assert.Eventually(s.T(), func() bool {
			_, body := s.request(http.MethodGet, path, token, "")
			items, _ = body["data"].([]interface{})
			return len(items) == 1
		}, 2*time.Second, 20*time.Millisecond, path)
		if len(items) == 1 {
			assert.Equal(s.T(), "Ann Lee", items[0].(map[string]interface{})["name"])
		}
	}

	_, body := s.request(http.MethodGet, "/api/inquiries?status=read", token, "")
	assert.Empty(s.T(), body["data"])
}

func (s *RouterTestSuite) TestDashboardRoutesRequireToken() {
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/inquiries"},
		{http.MethodGet, "/api/inquiries/stats"},
		{http.MethodGet, "/api/inquiries/abc"},
		{http.MethodPatch, "/api/inquiries/abc/read"},
		{http.MethodPatch, "/api/inquiries/abc/bookmark"},
		{http.MethodGet, "/api/realtime"},
	} {
		resp, _ := s.request(tc.method, tc.path, "", "")
		assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode, tc.path)

		resp, _ = s.request(tc.method, tc.path, "not-a-token", "")
		assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode, tc.path)
	}
}

func (s *RouterTestSuite) TestUnlock_WrongPassword() {
	resp, body := s.request(http.MethodPost, "/api/dashboard/unlock", "", `{"password":"0000"}`)

	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(s.T(), "Incorrect password.", body["error"])
}

func (s *RouterTestSuite) TestUnlock_RateLimitedAcrossBothForms() {
	for i := 0; i < 10; i++ {
		resp, err := http.PostForm(s.server.URL+"/dashboard/unlock", url.Values{"password": {"0000"}})
		require.NoError(s.T(), err)
		resp.Body.Close()
		require.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	}

	resp, err := http.PostForm(s.server.URL+"/dashboard/unlock", url.Values{"password": {"1234"}})
	require.NoError(s.T(), err)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(s.T(), resp.Header.Get("Retry-After"))

	apiResp, body := s.request(http.MethodPost, "/api/dashboard/unlock", "", `{"password":"1234"}`)
	assert.Equal(s.T(), http.StatusTooManyRequests, apiResp.StatusCode)
	assert.Equal(s.T(), "RATE_LIMITED", body["code"])
}

func (s *RouterTestSuite) TestMarkReadAndBookmark() {
	id := s.submit("Emily Johnson", "emily@example.com", "Is the villa available?")["id"].(string)
	token := s.unlock()

	resp, body := s.request(http.MethodPatch, "/api/inquiries/"+id+"/read", token, "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "read", body["data"].(map[string]interface{})["status"])

	// Idempotent
	resp, body = s.request(http.MethodPatch, "/api/inquiries/"+id+"/read", token, "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "read", body["data"].(map[string]interface{})["status"])

	_, body = s.request(http.MethodPatch, "/api/inquiries/"+id+"/bookmark", token, "")
	assert.Equal(s.T(), true, body["data"].(map[string]interface{})["bookmarked"])
	_, body = s.request(http.MethodPatch, "/api/inquiries/"+id+"/bookmark", token, "")
	assert.Equal(s.T(), false, body["data"].(map[string]interface{})["bookmarked"])

	resp, body = s.request(http.MethodGet, "/api/inquiries/"+id, token, "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "read", body["data"].(map[string]interface{})["status"])

	resp, _ = s.request(http.MethodPatch, "/api/inquiries/missing/read", token, "")
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *RouterTestSuite) TestStats() {
	s.submit("John Smith", "john@example.com", "Looking for a townhouse")
	s.submit("Sarah Miller", "sarah@example.com", "Do you manage rentals?")
	token := s.unlock()

	assert.Eventually(s.T(), func() bool {
		_, body := s.request(http.MethodGet, "/api/inquiries/stats", token, "")
		stats, _ := body["data"].(map[string]interface{})
		return stats != nil && stats["total"] == float64(2) && stats["unread"] == float64(2)
	}, 2*time.Second, 20*time.Millisecond)
}

func (s *RouterTestSuite) TestRealtimeStreamsChanges() {
	token := s.unlock()

	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/realtime?token=" + url.QueryEscape(token)
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(s.T(), err)
	defer conn.Close()

	require.NoError(s.T(), conn.WriteJSON(websocket.WSMessage{Type: websocket.MessageTypeSubscribe, Table: changefeed.TableInquiries}))

	var ack websocket.WSMessage
	require.NoError(s.T(), conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(s.T(), conn.ReadJSON(&ack))
	assert.Equal(s.T(), websocket.MessageTypeSubscribed, ack.Type)

	created := s.submit("Michael Brown", "michael@example.com", "Please call me back")

	var change websocket.WSMessage
	require.NoError(s.T(), conn.ReadJSON(&change))
	assert.Equal(s.T(), websocket.MessageTypeChange, change.Type)
	assert.Equal(s.T(), changefeed.EventInsert, change.Event)
	require.NotNil(s.T(), change.Record)
	assert.Equal(s.T(), created["id"], change.Record.ID)

	s.request(http.MethodPatch, "/api/inquiries/"+change.Record.ID+"/read", token, "")

	require.NoError(s.T(), conn.ReadJSON(&change))
	assert.Equal(s.T(), changefeed.EventUpdate, change.Event)
	assert.Equal(s.T(), models.StatusRead, change.Record.Status)
}

func (s *RouterTestSuite) TestSitePagesMounted() {
	resp, err := http.Get(s.server.URL + "/")
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(s.T(), resp.Header.Get("X-Request-ID"))
}
