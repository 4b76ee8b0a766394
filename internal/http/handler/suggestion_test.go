package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"idekassen.app/intake/internal/http/handler"
	"idekassen.app/intake/internal/http/middleware"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/service"
)

var _ = Describe("SuggestionHandler", func() {
	var (
		router   *gin.Engine
		convSvc  *mockConversationService
		authSvc  *mockAuthService
		files    *mockStorageClient
		testUser *model.User
	)

	authedRequest := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "1"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		convSvc = &mockConversationService{}
		authSvc = &mockAuthService{}
		files = &mockStorageClient{}
		testUser = &model.User{ID: 42, Name: "Test User", Email: "test@example.com", Role: model.RoleUser}

		authSvc.validateSessionFn = func(_ context.Context, _ int64) (*model.User, error) {
			return testUser, nil
		}

		h := handler.NewSuggestionHandler(convSvc, files)
		router = gin.New()
		group := router.Group("/suggestions")
		group.Use(middleware.RequireAuth(authSvc))
		{
			group.POST("", h.Create)
			group.GET("", h.List)
			group.GET("/:id", h.Get)
			group.POST("/:id/turns", h.SubmitTurn)
			group.POST("/:id/complete", h.Complete)
		}
	})

	Describe("Create", func() {
		It("returns 201 with the new suggestion", func() {
			convSvc.startFn = func(_ context.Context, user *model.User, title, description string, department model.Department) (*model.Suggestion, error) {
				Expect(user.ID).To(Equal(testUser.ID))
				return &model.Suggestion{
					ID: 100, UserID: user.ID, Title: title, Description: description,
					Department: department, Status: model.StatusPending,
					Conversation: []model.Message{{Role: model.MessageRoleAssistant, Content: "hello"}},
				}, nil
			}

			body, _ := json.Marshal(map[string]string{
				"title":       "Reflective winter jacket",
				"description": "add reflective stripes for child safety",
				"department":  "design",
			})
			w := authedRequest(http.MethodPost, "/suggestions", body)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp model.Suggestion
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(model.StatusPending))
			Expect(resp.Conversation).To(HaveLen(1))
		})

		It("returns 400 when fields are missing", func() {
			body, _ := json.Marshal(map[string]string{"title": "only a title"})
			w := authedRequest(http.MethodPost, "/suggestions", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for an unknown department", func() {
			convSvc.startFn = func(_ context.Context, _ *model.User, _, _ string, _ model.Department) (*model.Suggestion, error) {
				return nil, service.ErrInvalidDepartment
			}

			body, _ := json.Marshal(map[string]string{
				"title": "t", "description": "d", "department": "hr",
			})
			w := authedRequest(http.MethodPost, "/suggestions", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 401 without a session", func() {
			req := httptest.NewRequest(http.MethodPost, "/suggestions", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("SubmitTurn", func() {
		It("returns the updated conversation with round and completion state", func() {
			convSvc.submitTurnFn = func(_ context.Context, userID, suggestionID int64, text string, _ []model.Attachment) (*model.Suggestion, error) {
				Expect(userID).To(Equal(testUser.ID))
				Expect(suggestionID).To(Equal(int64(100)))
				return &model.Suggestion{
					ID: 100, UserID: userID, Status: model.StatusPending,
					Conversation: []model.Message{
						{Role: model.MessageRoleAssistant, Content: "hello"},
						{Role: model.MessageRoleUser, Content: text},
						{Role: model.MessageRoleAssistant, Content: "reply"},
						{Role: model.MessageRoleUser, Content: "more"},
						{Role: model.MessageRoleAssistant, Content: "reply"},
					},
				}, nil
			}

			body, _ := json.Marshal(map[string]string{"text": "children walking to school"})
			w := authedRequest(http.MethodPost, "/suggestions/100/turns", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp handler.SubmitTurnResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Round).To(Equal(2))
			Expect(resp.CanComplete).To(BeTrue())
		})

		It("maps the round cap to 409", func() {
			convSvc.submitTurnFn = func(_ context.Context, _, _ int64, _ string, _ []model.Attachment) (*model.Suggestion, error) {
				return nil, service.ErrRoundLimit
			}

			body, _ := json.Marshal(map[string]string{"text": "one more"})
			w := authedRequest(http.MethodPost, "/suggestions/100/turns", body)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("maps an in-flight turn to 409", func() {
			convSvc.submitTurnFn = func(_ context.Context, _, _ int64, _ string, _ []model.Attachment) (*model.Suggestion, error) {
				return nil, service.ErrTurnInFlight
			}

			body, _ := json.Marshal(map[string]string{"text": "racing"})
			w := authedRequest(http.MethodPost, "/suggestions/100/turns", body)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("maps foreign ownership to 403", func() {
			convSvc.submitTurnFn = func(_ context.Context, _, _ int64, _ string, _ []model.Attachment) (*model.Suggestion, error) {
				return nil, service.ErrNotOwner
			}

			body, _ := json.Marshal(map[string]string{"text": "hijack"})
			w := authedRequest(http.MethodPost, "/suggestions/100/turns", body)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("Complete", func() {
		It("maps the round floor to 409", func() {
			convSvc.completeFn = func(_ context.Context, _, _ int64) (*model.Suggestion, error) {
				return nil, service.ErrTooFewRounds
			}

			w := authedRequest(http.MethodPost, "/suggestions/100/complete", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("Get", func() {
		It("returns 404 for an unknown suggestion", func() {
			w := authedRequest(http.MethodGet, "/suggestions/999", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for a non-numeric id", func() {
			w := authedRequest(http.MethodGet, "/suggestions/abc", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
