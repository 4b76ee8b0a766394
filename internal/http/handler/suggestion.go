package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"idekassen.app/intake/internal/http/middleware"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/storage"
)

type SuggestionHandler struct {
	conversations service.ConversationService
	files         storage.Client
}

func NewSuggestionHandler(conversations service.ConversationService, files storage.Client) *SuggestionHandler {
	return &SuggestionHandler{
		conversations: conversations,
		files:         files,
	}
}

type CreateSuggestionRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Department  string `json:"department" binding:"required"`
}

func (h *SuggestionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	var req CreateSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, description and department are required"})
		return
	}

	sg, err := h.conversations.Start(ctx, user, req.Title, req.Description, model.Department(req.Department))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyTitle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		case errors.Is(err, service.ErrInvalidDepartment):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
		default:
			slog.ErrorContext(ctx, "failed to create suggestion", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create suggestion"})
		}
		return
	}

	c.JSON(http.StatusCreated, sg)
}

func (h *SuggestionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	suggestions, err := h.conversations.ListMine(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list suggestions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *SuggestionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	sg, err := h.conversations.Get(ctx, user.ID, suggestionID)
	if err != nil {
		h.renderConversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

type SubmitTurnRequest struct {
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
}

type SubmitTurnResponse struct {
	Suggestion  *model.Suggestion `json:"suggestion"`
	Round       int               `json:"round"`
	CanComplete bool              `json:"can_complete"`
}

func (h *SuggestionHandler) SubmitTurn(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	var req SubmitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sg, err := h.conversations.SubmitTurn(ctx, user.ID, suggestionID, req.Text, req.Attachments)
	if err != nil {
		h.renderConversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitTurnResponse{
		Suggestion:  sg,
		Round:       sg.Round(),
		CanComplete: h.conversations.CanComplete(sg.Conversation),
	})
}

func (h *SuggestionHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)

	suggestionID, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suggestion id"})
		return
	}

	sg, err := h.conversations.Complete(ctx, user.ID, suggestionID)
	if err != nil {
		h.renderConversationError(c, err)
		return
	}

	c.JSON(http.StatusOK, sg)
}

// Upload stores one attachment and returns its metadata. The returned
// attachment is meant to be echoed back in a later SubmitTurn call.
func (h *SuggestionHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.ErrorContext(ctx, "failed to open uploaded file", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	attachment, err := h.files.Upload(ctx, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 10 MB limit"})
		case errors.Is(err, storage.ErrUnsupportedType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "file type is not allowed"})
		case errors.Is(err, storage.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file uploads are not available"})
		default:
			slog.ErrorContext(ctx, "failed to upload attachment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
		}
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

func (h *SuggestionHandler) renderConversationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSuggestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "suggestion belongs to another user"})
	case errors.Is(err, service.ErrEmptyTurn):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
	case errors.Is(err, service.ErrRoundLimit):
		c.JSON(http.StatusConflict, gin.H{"error": "conversation round limit reached"})
	case errors.Is(err, service.ErrTooFewRounds):
		c.JSON(http.StatusConflict, gin.H{"error": "conversation needs at least two exchanges"})
	case errors.Is(err, service.ErrTurnInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a turn is already in progress"})
	case errors.Is(err, service.ErrConversationClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "conversation is closed"})
	default:
		slog.ErrorContext(c.Request.Context(), "conversation operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
