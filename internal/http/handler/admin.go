package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/middleware"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/store"
)

type AdminHandler struct {
	reviews service.ReviewService
}

func NewAdminHandler(reviews service.ReviewService) *AdminHandler {
	return &AdminHandler{reviews: reviews}
}

func (h *AdminHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := store.SuggestionFilter(c.DefaultQuery("status", string(store.FilterAll)))

	list, err := h.reviews.List(ctx, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		slog.ErrorContext(ctx, "failed to list suggestions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	sg, err := h.reviews.Get(ctx, suggestionID)
	if err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

type DecideRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes,omitempty"`
}

func (h *AdminHandler) Decide(c *gin.Context) {
	ctx := c.Request.Context()
	admin := middleware.CurrentUser(c)

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	sg, err := h.reviews.Decide(ctx, suggestionID, model.Status(req.Status), req.Notes, admin)
	if err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

func (h *AdminHandler) Archive(c *gin.Context) {
	ctx := c.Request.Context()

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	sg, err := h.reviews.Archive(ctx, suggestionID)
	if err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

type EditRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Department  string `json:"department" binding:"required"`
}

func (h *AdminHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, description and department are required"})
		return
	}

	sg, err := h.reviews.Edit(ctx, suggestionID, req.Title, req.Description, model.Department(req.Department))
	if err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

func (h *AdminHandler) RetryPRD(c *gin.Context) {
	ctx := c.Request.Context()

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	if err := h.reviews.RetryPRD(ctx, suggestionID); err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "prd generation enqueued"})
}

func (h *AdminHandler) ExportPRD(c *gin.Context) {
	ctx := c.Request.Context()

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	filename, content, err := h.reviews.ExportPRD(ctx, suggestionID)
	if err != nil {
		h.renderReviewError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

func (h *AdminHandler) renderReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSuggestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
	case errors.Is(err, service.ErrInvalidDecision):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision target"})
	case errors.Is(err, service.ErrArchivePending):
		c.JSON(http.StatusConflict, gin.H{"error": "pending suggestions cannot be archived"})
	case errors.Is(err, service.ErrSuggestionArchived):
		c.JSON(http.StatusConflict, gin.H{"error": "suggestion is archived"})
	case errors.Is(err, service.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
	case errors.Is(err, service.ErrInvalidDepartment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
	case errors.Is(err, service.ErrNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "suggestion is not approved"})
	case errors.Is(err, service.ErrNoPRD):
		c.JSON(http.StatusNotFound, gin.H{"error": "no document has been generated yet"})
	default:
		slog.ErrorContext(c.Request.Context(), "review operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}
