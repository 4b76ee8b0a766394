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
	"idekassen.app/intake/internal/store"
)

var _ = Describe("AdminHandler", func() {
	var (
		router    *gin.Engine
		reviewSvc *mockReviewService
		authSvc   *mockAuthService
		current   *model.User
	)

	request := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "1"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		reviewSvc = &mockReviewService{}
		authSvc = &mockAuthService{}
		current = &model.User{ID: 7, Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}

		authSvc.validateSessionFn = func(_ context.Context, _ int64) (*model.User, error) {
			return current, nil
		}

		h := handler.NewAdminHandler(reviewSvc)
		router = gin.New()
		group := router.Group("/admin")
		group.Use(middleware.RequireAuth(authSvc), middleware.RequireAdmin())
		{
			group.GET("/suggestions", h.List)
			group.POST("/suggestions/:id/decision", h.Decide)
			group.POST("/suggestions/:id/archive", h.Archive)
			group.PUT("/suggestions/:id", h.Edit)
			group.POST("/suggestions/:id/prd", h.RetryPRD)
			group.GET("/suggestions/:id/prd.md", h.ExportPRD)
		}
	})

	It("rejects non-admin users with 403", func() {
		current = &model.User{ID: 42, Role: model.RoleUser}

		w := request(http.MethodGet, "/admin/suggestions", nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	Describe("List", func() {
		It("passes the status filter through", func() {
			reviewSvc.listFn = func(_ context.Context, filter store.SuggestionFilter) (*service.ReviewList, error) {
				Expect(filter).To(Equal(store.FilterApproved))
				return &service.ReviewList{
					Pending:  []model.Suggestion{},
					Reviewed: []model.Suggestion{{ID: 2, Status: model.StatusApproved}},
				}, nil
			}

			w := request(http.MethodGet, "/admin/suggestions?status=approved", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp service.ReviewList
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Reviewed).To(HaveLen(1))
		})

		It("maps an unknown filter to 400", func() {
			reviewSvc.listFn = func(_ context.Context, _ store.SuggestionFilter) (*service.ReviewList, error) {
				return nil, service.ErrInvalidFilter
			}

			w := request(http.MethodGet, "/admin/suggestions?status=garbage", nil)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Decide", func() {
		It("applies the decision with the acting admin", func() {
			reviewSvc.decideFn = func(_ context.Context, id int64, target model.Status, notes *string, reviewer *model.User) (*model.Suggestion, error) {
				Expect(reviewer.ID).To(Equal(current.ID))
				Expect(target).To(Equal(model.StatusApproved))
				return &model.Suggestion{ID: id, Status: target}, nil
			}

			body, _ := json.Marshal(map[string]string{"status": "approved"})
			w := request(http.MethodPost, "/admin/suggestions/100/decision", body)

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("maps an invalid target to 400", func() {
			reviewSvc.decideFn = func(_ context.Context, _ int64, _ model.Status, _ *string, _ *model.User) (*model.Suggestion, error) {
				return nil, service.ErrInvalidDecision
			}

			body, _ := json.Marshal(map[string]string{"status": "pending"})
			w := request(http.MethodPost, "/admin/suggestions/100/decision", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Archive", func() {
		It("maps archiving a pending suggestion to 409", func() {
			reviewSvc.archiveFn = func(_ context.Context, _ int64) (*model.Suggestion, error) {
				return nil, service.ErrArchivePending
			}

			w := request(http.MethodPost, "/admin/suggestions/100/archive", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("RetryPRD", func() {
		It("returns 202 when the job is enqueued", func() {
			reviewSvc.retryPRDFn = func(_ context.Context, id int64) error {
				Expect(id).To(Equal(int64(100)))
				return nil
			}

			w := request(http.MethodPost, "/admin/suggestions/100/prd", nil)

			Expect(w.Code).To(Equal(http.StatusAccepted))
		})

		It("maps a non-approved suggestion to 409", func() {
			reviewSvc.retryPRDFn = func(_ context.Context, _ int64) error {
				return service.ErrNotApproved
			}

			w := request(http.MethodPost, "/admin/suggestions/100/prd", nil)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("ExportPRD", func() {
		It("serves the document as a markdown download", func() {
			reviewSvc.exportPRDFn = func(_ context.Context, _ int64) (string, string, error) {
				return "prd-100.md", "# Jacket\n\ncontent\n", nil
			}

			w := request(http.MethodGet, "/admin/suggestions/100/prd.md", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("prd-100.md"))
			Expect(w.Body.String()).To(HavePrefix("# Jacket"))
		})

		It("maps a missing document to 404", func() {
			w := request(http.MethodGet, "/admin/suggestions/100/prd.md", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
