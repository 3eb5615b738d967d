package handlers

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/elite-estate/internal/api/response"
	apperrors "github.com/welldanyogia/elite-estate/internal/errors"
	"github.com/welldanyogia/elite-estate/internal/inquiry"
	"github.com/welldanyogia/elite-estate/internal/models"
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
	Get(ctx context.Context, id string) (*models.Inquiry, error)
	MarkAsRead(ctx context.Context, id string) (*models.Inquiry, error)
	ToggleBookmark(ctx context.Context, id string) (*models.Inquiry, error)
}

// InquiryHandler handles inquiry-related HTTP requests
type InquiryHandler struct {
	submitter Submitter
	board     InquiryBoard
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(submitter Submitter, board InquiryBoard) *InquiryHandler {
	return &InquiryHandler{
		submitter: submitter,
		board:     board,
	}
}

// Submit handles POST /api/inquiries
func (h *InquiryHandler) Submit(c echo.Context) error {
	var in inquiry.SubmitInput
	if err := c.Bind(&in); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	stored, err := h.submitter.Submit(c.Request().Context(), in, models.SourceWeb)
	if err != nil {
		if apperrors.IsStoreUnavailable(err) {
			return response.ServiceUnavailable(c, "inquiry could not be stored")
		}
		return response.Error(c, err)
	}

	return response.Created(c, stored)
}

// List handles GET /api/inquiries?status=&q=
func (h *InquiryHandler) List(c echo.Context) error {
	status, err := models.ParseStatusFilter(c.QueryParam("status"))
	if err != nil {
		return response.BadRequest(c, "status must be one of all, unread, read")
	}

	if err := h.board.EnsureLoaded(c.Request().Context()); err != nil {
		return response.ServiceUnavailable(c, "failed to load inquiries")
	}

	return response.List(c, h.board.View(status, c.QueryParam("q")))
}

// Stats handles GET /api/inquiries/stats
func (h *InquiryHandler) Stats(c echo.Context) error {
	if err := h.board.EnsureLoaded(c.Request().Context()); err != nil {
		return response.ServiceUnavailable(c, "failed to load inquiries")
	}
	return response.Success(c, h.board.Stats())
}

// Get handles GET /api/inquiries/:id
func (h *InquiryHandler) Get(c echo.Context) error {
	found, err := h.board.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return response.Success(c, found)
}

// MarkAsRead handles PATCH /api/inquiries/:id/read
func (h *InquiryHandler) MarkAsRead(c echo.Context) error {
	updated, err := h.board.MarkAsRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return response.SuccessWithMessage(c, updated, "Marked as read")
}

// ToggleBookmark handles PATCH /api/inquiries/:id/bookmark
func (h *InquiryHandler) ToggleBookmark(c echo.Context) error {
	updated, err := h.board.ToggleBookmark(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	message := "Bookmark removed"
	if updated.Bookmarked {
		message = "Bookmark added"
	}
	return response.SuccessWithMessage(c, updated, message)
}

func (h *InquiryHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInquiryNotFound):
		return response.NotFound(c, "inquiry not found")
	case apperrors.IsStoreUnavailable(err):
		return response.ServiceUnavailable(c, "inquiry store unavailable")
	default:
		return response.InternalError(c, "failed to update inquiry")
	}
}
