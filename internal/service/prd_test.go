package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/service"
)

var _ = Describe("PRDService", func() {
	var (
		svc      service.PRDService
		mockChat *mockChatClient
		ctx      context.Context
		sg       *model.Suggestion
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockChat = &mockChatClient{}
		svc = service.NewPRDService(mockChat, 800)

		sg = &model.Suggestion{
			ID:          100,
			Title:       "Reflective winter jacket",
			Description: "add reflective stripes for child safety",
			Status:      model.StatusApproved,
			Conversation: []model.Message{
				{Role: model.MessageRoleAssistant, Content: "Which problem?"},
				{Role: model.MessageRoleUser, Content: "children are hard to see in the dark"},
			},
		}
	})

	It("frames the request with title, description and transcript", func() {
		var req llm.ChatRequest
		mockChat.chatFn = func(_ context.Context, r llm.ChatRequest) (*llm.ChatResponse, error) {
			req = r
			return &llm.ChatResponse{Content: "## Requirements\n..."}, nil
		}

		doc, err := svc.Generate(ctx, sg)

		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(ContainSubstring("Requirements"))
		Expect(req.Messages).To(HaveLen(2))
		Expect(req.Messages[0].Role).To(Equal(llm.RoleSystem))
		Expect(req.Messages[0].Content).To(ContainSubstring("product manager"))
		Expect(req.Messages[1].Content).To(ContainSubstring("Reflective winter jacket"))
		Expect(req.Messages[1].Content).To(ContainSubstring("hard to see in the dark"))
	})

	It("surfaces a model failure", func() {
		mockChat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, errors.New("rate limited")
		}

		_, err := svc.Generate(ctx, sg)

		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty document", func() {
		mockChat.chatFn = func(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: ""}, nil
		}

		_, err := svc.Generate(ctx, sg)

		Expect(err).To(MatchError(service.ErrEmptyPRD))
	})
})
