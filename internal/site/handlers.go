package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/elite-estate/internal/api/middleware"
	"github.com/welldanyogia/elite-estate/internal/auth"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/logger"
	"github.com/welldanyogia/elite-estate/internal/models"
)

// TokenCookie carries the dashboard session token
const TokenCookie = middleware.TokenCookie

// Flash messages
const (
	msgSentTitle     = "Message sent!"
	msgSentBody      = "We'll get back to you as soon as possible."
	msgSendFailed    = "There was a problem sending your message. Please try again."
	msgUnlocked      = "You have been logged in to the dashboard."
	msgWrongPassword = "Incorrect password."
	msgMarkedRead    = "Marked as read"
	msgBookmarked    = "Bookmark added"
	msgUnbookmarked  = "Bookmark removed"
	msgLoadFailed    = "Inquiries could not be loaded. Please try again."
	msgUpdateFailed  = "The change could not be saved. Please try again."
	msgNotFound      = "That inquiry no longer exists."
)

// Submitter stores contact submissions
type Submitter interface {
	Submit(ctx context.Context, in inquiry.SubmitInput, source models.InquirySource) (*models.Inquiry, error)
}

// InquiryBoard is the dashboard's view of the inquiries table
type InquiryBoard interface {
	EnsureLoaded(ctx context.Context) error
	View(status models.StatusFilter, query string) []models.Inquiry
	Stats() models.InquiryStats
	MarkAsRead(ctx context.Context, id string) (*models.Inquiry, error)
	ToggleBookmark(ctx context.Context, id string) (*models.Inquiry, error)
}

// Unlocker checks the dashboard password
type Unlocker interface {
	Unlock(input string) bool
}

// TokenService issues and checks dashboard session tokens
type TokenService interface {
	Issue() (auth.Token, error)
	Verify(token string) error
}

// HandlerConfig holds the collaborators of the site handlers
type HandlerConfig struct {
	Content        *models.SiteContent
	Submitter      Submitter
	Board          InquiryBoard
	Gate           Unlocker
	Tokens         TokenService
	SecurityLogger *logger.SecurityLogger
	SecureCookie   bool
	Logger         *slog.Logger
}

// Handler serves the public pages and the HTML dashboard
type Handler struct {
	cfg HandlerConfig
	now func() time.Time
}

// Flash is a one-shot banner shown above the page
type Flash struct {
	Kind    string
	Title   string
	Message string
}

// ContactForm is the contact form state echoed back on validation failure
type ContactForm struct {
	Name    string
	Email   string
	Message string
	Errors  apperrors.FieldErrors
}

// BoardView is the dashboard table state
type BoardView struct {
	Status    models.StatusFilter
	Query     string
	Inquiries []models.Inquiry
	Stats     models.InquiryStats
}

// Page is the data every template receives
type Page struct {
	Title   string
	Active  string
	Content *models.SiteContent
	Flash   *Flash
	Year    int
	Form    ContactForm
	Board   BoardView
}

// NewHandler creates a site Handler
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{cfg: cfg, now: time.Now}
}

// Register mounts the site routes. contactLimit guards the contact form
// submission and unlockLimit the password form; either may be nil.
func (h *Handler) Register(e *echo.Echo, contactLimit, unlockLimit echo.MiddlewareFunc) {
	e.GET("/", h.Home)
	e.GET("/properties", h.Properties)
	e.GET("/about", h.About)
	e.GET("/testimonials", h.Testimonials)
	e.GET("/contact", h.ContactForm)
	e.POST("/contact", h.SubmitContact, optional(contactLimit)...)

	static, _ := fs.Sub(assets, "static")
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	e.GET("/dashboard", h.Dashboard)
	e.POST("/dashboard/unlock", h.Unlock, optional(unlockLimit)...)
	e.POST("/dashboard/logout", h.Logout)
	e.GET("/dashboard/logout", h.Logout)
	e.POST("/dashboard/inquiries/:id/read", h.MarkRead, h.requireSession)
	e.POST("/dashboard/inquiries/:id/bookmark", h.ToggleBookmark, h.requireSession)
}

func optional(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

func (h *Handler) page(title, active string) Page {
	return Page{
		Title:   title,
		Active:  active,
		Content: h.cfg.Content,
		Year:    h.now().Year(),
		Form:    ContactForm{Errors: apperrors.FieldErrors{}},
	}
}

// Home renders the landing page
func (h *Handler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", h.page("", "home"))
}

// Properties renders the full property grid
func (h *Handler) Properties(c echo.Context) error {
	return c.Render(http.StatusOK, "properties", h.page("Properties", "properties"))
}

// About renders the about and vision copy
func (h *Handler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about", h.page("About", "about"))
}

// Testimonials renders the client quotes
func (h *Handler) Testimonials(c echo.Context) error {
	return c.Render(http.StatusOK, "testimonials", h.page("Testimonials", "testimonials"))
}

// ContactForm renders an empty contact form, with the success banner after
// a redirect from a stored submission
func (h *Handler) ContactForm(c echo.Context) error {
	p := h.page("Contact", "contact")
	if c.QueryParam("sent") == "1" {
		p.Flash = &Flash{Kind: "success", Title: msgSentTitle, Message: msgSentBody}
	}
	return c.Render(http.StatusOK, "contact", p)
}

// SubmitContact handles POST /contact
func (h *Handler) SubmitContact(c echo.Context) error {
	var in inquiry.SubmitInput
	if err := c.Bind(&in); err != nil {
		in = inquiry.SubmitInput{}
	}

	_, err := h.cfg.Submitter.Submit(c.Request().Context(), in, models.SourceWeb)
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/contact?sent=1")
	}

	p := h.page("Contact", "contact")
	p.Form = ContactForm{Name: in.Name, Email: in.Email, Message: in.Message, Errors: apperrors.FieldErrors{}}

	if vErr := apperrors.GetValidationError(err); vErr != nil {
		p.Form.Errors = vErr.Fields
		return c.Render(http.StatusUnprocessableEntity, "contact", p)
	}

	h.cfg.Logger.Error("contact submission failed", slog.Any("error", err))
	p.Flash = &Flash{Kind: "error", Message: msgSendFailed}
	status := http.StatusInternalServerError
	if apperrors.IsStoreUnavailable(err) {
		status = http.StatusServiceUnavailable
	}
	return c.Render(status, "contact", p)
}

// Dashboard renders the password form, or the inquiry table once unlocked
func (h *Handler) Dashboard(c echo.Context) error {
	if !h.hasSession(c) {
		return c.Render(http.StatusOK, "dashboard_locked", h.page("Dashboard", ""))
	}

	status, err := models.ParseStatusFilter(c.QueryParam("status"))
	if err != nil {
		status = models.FilterAll
	}
	query := c.QueryParam("q")

	p := h.page("Dashboard", "")
	p.Flash = noticeFlash(c.QueryParam("notice"))
	p.Board = BoardView{Status: status, Query: query}

	if err := h.cfg.Board.EnsureLoaded(c.Request().Context()); err != nil {
		p.Flash = &Flash{Kind: "error", Message: msgLoadFailed}
		p.Board.Inquiries = []models.Inquiry{}
		return c.Render(http.StatusOK, "dashboard", p)
	}

	p.Board.Inquiries = h.cfg.Board.View(status, query)
	p.Board.Stats = h.cfg.Board.Stats()
	return c.Render(http.StatusOK, "dashboard", p)
}

// Unlock handles the dashboard password form
func (h *Handler) Unlock(c echo.Context) error {
	ip := c.RealIP()
	if !h.cfg.Gate.Unlock(c.FormValue("password")) {
		h.cfg.SecurityLogger.AuthFailure(ip, c.Path(), "incorrect dashboard password")
		p := h.page("Dashboard", "")
		p.Flash = &Flash{Kind: "error", Message: msgWrongPassword}
		return c.Render(http.StatusUnauthorized, "dashboard_locked", p)
	}

	token, err := h.cfg.Tokens.Issue()
	if err != nil {
		h.cfg.Logger.Error("failed to issue dashboard token", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	h.cfg.SecurityLogger.AuthSuccess(ip, c.Path())

	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return c.Redirect(http.StatusSeeOther, "/dashboard?notice=unlocked")
}

// Logout clears the session cookie
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// MarkRead handles the mark-as-read button
func (h *Handler) MarkRead(c echo.Context) error {
	_, err := h.cfg.Board.MarkAsRead(c.Request().Context(), c.Param("id"))
	return h.afterAction(c, "read", err)
}

// ToggleBookmark handles the bookmark button
func (h *Handler) ToggleBookmark(c echo.Context) error {
	updated, err := h.cfg.Board.ToggleBookmark(c.Request().Context(), c.Param("id"))
	notice := "unbookmarked"
	if err == nil && updated.Bookmarked {
		notice = "bookmarked"
	}
	return h.afterAction(c, notice, err)
}

// afterAction redirects back to the table, keeping the current filter
func (h *Handler) afterAction(c echo.Context, notice string, err error) error {
	if err != nil {
		h.cfg.Logger.Warn("dashboard change failed",
			slog.String("inquiry_id", c.Param("id")),
			slog.Any("error", err),
		)
		notice = "failed"
		if errors.Is(err, apperrors.ErrInquiryNotFound) {
			notice = "missing"
		}
	}

	q := url.Values{}
	q.Set("notice", notice)
	if status := c.FormValue("status"); status != "" {
		q.Set("status", status)
	}
	if query := c.FormValue("q"); query != "" {
		q.Set("q", query)
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard?"+q.Encode())
}

func (h *Handler) hasSession(c echo.Context) bool {
	cookie, err := c.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	return h.cfg.Tokens.Verify(cookie.Value) == nil
}

// requireSession sends visitors without a valid session back to the gate
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.hasSession(c) {
			h.cfg.SecurityLogger.AuthFailure(c.RealIP(), c.Path(), "missing or invalid dashboard session")
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		}
		return next(c)
	}
}

func noticeFlash(notice string) *Flash {
	switch notice {
	case "unlocked":
		return &Flash{Kind: "success", Message: msgUnlocked}
	case "read":
		return &Flash{Kind: "success", Message: msgMarkedRead}
	case "bookmarked":
		return &Flash{Kind: "success", Message: msgBookmarked}
	case "unbookmarked":
		return &Flash{Kind: "success", Message: msgUnbookmarked}
	case "failed":
		return &Flash{Kind: "error", Message: msgUpdateFailed}
	case "missing":
		return &Flash{Kind: "error", Message: msgNotFound}
	default:
		return nil
	}
}
