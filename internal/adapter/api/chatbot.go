package api

import (
	"context"
	"net/http"

	"github.com/evmarket/checkout-client/internal/domain"
)

// AskChatbot sends the question with the buyer's token when one is stored.
// The assistant also answers anonymous callers.
func (c *Client) AskChatbot(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
	var answer domain.ChatbotAnswer
	err := c.do(ctx, call{
		op:     "ask_chatbot",
		method: http.MethodPost,
		path:   "/chatbot/",
		body:   domain.ChatbotRequest{Question: question},
	}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}
