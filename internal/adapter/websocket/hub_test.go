package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/mocks"
	"github.com/evmarket/checkout-client/internal/service/session"
)

// newTestSessions holds one live session under "sess-live".
func newTestSessions(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(mocks.NewMockCache(), session.Config{}, zap.NewNop())
	ctx := session.WithKey(context.Background(), "sess-live")
	require.NoError(t, store.Set(ctx, &domain.Session{AccessToken: "tok"}))
	return store
}

type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	<-f.closed
	return 0, nil, errors.New("closed")
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == 1 {
		f.written = append(f.written, data)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}

func TestHub_ForwardsBySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(newTestSessions(t), zap.NewNop())
	go hub.Run(ctx)

	mine, other := newFakeConn(), newFakeConn()
	go hub.AddClient(mine, "sess-1")
	go hub.AddClient(other, "sess-2")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Forward(domain.CheckoutEvent{
		Subject:       domain.SubjectCheckoutCompleted,
		TransactionID: "tx-1",
		SessionKey:    "sess-1",
	}))
	require.NoError(t, hub.Forward(domain.CheckoutEvent{Subject: domain.SubjectCheckoutFailed}))

	require.Eventually(t, func() bool { return len(mine.messages()) == 1 }, time.Second, 5*time.Millisecond)

	var got domain.CheckoutEvent
	require.NoError(t, json.Unmarshal(mine.messages()[0], &got))
	assert.Equal(t, "tx-1", got.TransactionID)
	assert.Empty(t, other.messages())
}

func TestHub_UnregistersClosedClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(newTestSessions(t), zap.NewNop())
	go hub.Run(ctx)

	conn := newFakeConn()
	go hub.AddClient(conn, "sess-1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_StoppedHubRejectsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(newTestSessions(t), zap.NewNop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for i := 0; i < 100; i++ {
		if err := hub.Forward(domain.CheckoutEvent{SessionKey: "sess-1"}); err != nil {
			return
		}
	}
	t.Fatal("expected Forward to fail once the buffer filled")
}

func TestHub_UpgradeRequiresLiveSession(t *testing.T) {
	hub := NewHub(newTestSessions(t), zap.NewNop())
	app := fiber.New()
	app.Use("/ws", hub.Upgrade)
	app.Get("/ws", func(c *fiber.Ctx) error {
		key, _ := c.Locals(sessionLocal).(string)
		return c.SendString(key)
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "live session header", header: "sess-live", want: fiber.StatusOK},
		{name: "live session query", query: "sess-live", want: fiber.StatusOK},
		{name: "unknown session", header: "sess-forged", want: fiber.StatusUnauthorized},
		{name: "missing session", want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?session=" + tt.query
			}
			req := httptest.NewRequest("GET", target, nil)
			req.Header.Set("Connection", "Upgrade")
			req.Header.Set("Upgrade", "websocket")
			if tt.header != "" {
				req.Header.Set("X-Session-ID", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHub_UpgradeRejectsPlainRequests(t *testing.T) {
	hub := NewHub(newTestSessions(t), zap.NewNop())
	app := fiber.New()
	app.Use("/ws", hub.Upgrade)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("X-Session-ID", "sess-live")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
