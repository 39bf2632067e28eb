package chatbot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/checkout"
)

// Service forwards buyer questions to the marketplace assistant.
type Service struct {
	api ports.ChatbotAPI
	log *zap.Logger
}

func NewService(api ports.ChatbotAPI, log *zap.Logger) *Service {
	return &Service{api: api, log: log}
}

var _ ports.ChatbotService = (*Service)(nil)

// Ask trims the question and rejects a blank one before any request is sent.
func (s *Service) Ask(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgQuestionRequired, nil)
	}

	answer, err := s.api.AskChatbot(ctx, question)
	if err != nil {
		s.log.Warn("Chatbot request failed", zap.Error(err))
		return nil, checkout.Classify(err)
	}
	if answer == nil {
		return &domain.ChatbotAnswer{}, nil
	}
	return answer, nil
}
