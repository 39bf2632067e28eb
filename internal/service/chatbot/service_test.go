package chatbot

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/mocks"
)

func TestAsk(t *testing.T) {
	var asked string
	backend := &mocks.MockBackend{
		AskChatbotFunc: func(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
			asked = question
			return &domain.ChatbotAnswer{Answer: "Try the VinFast VF8."}, nil
		},
	}
	svc := NewService(backend, zap.NewNop())

	answer, err := svc.Ask(context.Background(), "  I need an EV under 500 million  ")
	require.NoError(t, err)
	assert.Equal(t, "Try the VinFast VF8.", answer.Answer)
	assert.Equal(t, "I need an EV under 500 million", asked)
}

func TestAsk_BlankQuestionSkipsBackend(t *testing.T) {
	backend := &mocks.MockBackend{}
	svc := NewService(backend, zap.NewNop())

	for _, q := range []string{"", "   \n\t"} {
		_, err := svc.Ask(context.Background(), q)
		var ce *domain.CheckoutError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, domain.KindValidation, ce.Kind)
		assert.Equal(t, domain.MsgQuestionRequired, ce.Message)
	}
	assert.Empty(t, backend.Calls)
}

func TestAsk_ClassifiesBackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{name: "expired token", err: &api.Error{Op: "ask chatbot", Status: http.StatusUnauthorized}, want: domain.KindUnauthorized},
		{name: "assistant down", err: &api.Error{Op: "ask chatbot", Status: http.StatusInternalServerError}, want: domain.KindServer},
		{name: "no network", err: &api.Error{Op: "ask chatbot", Cause: errors.New("dial tcp: connection refused")}, want: domain.KindNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mocks.MockBackend{
				AskChatbotFunc: func(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
					return nil, tt.err
				},
			}
			svc := NewService(backend, zap.NewNop())

			_, err := svc.Ask(context.Background(), "hello")
			assert.Equal(t, tt.want, domain.KindOf(err))
		})
	}
}
