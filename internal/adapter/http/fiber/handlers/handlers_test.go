package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/middleware"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/mocks"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/session"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	app.Use(middleware.Session())
	return app
}

type errorResponse struct {
	Error struct {
		Kind                 string `json:"kind"`
		Message              string `json:"message"`
		PendingTransactionID string `json:"pending_transaction_id"`
	} `json:"error"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestCheckout_WalletSuccess(t *testing.T) {
	var got ports.CheckoutCommand
	svc := &mocks.MockCheckoutService{
		CheckoutFunc: func(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
			got = cmd
			assert.Equal(t, "sess-1", session.KeyFrom(ctx))
			return &domain.Outcome{
				TransactionID:  "tx-1",
				Method:         domain.PaymentMethodWallet,
				Stage:          domain.StageCompleted,
				Message:        domain.MsgWalletPaymentSucceeded,
				RefreshListing: true,
			}, nil
		},
	}
	app := newTestApp()
	NewCheckoutHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "POST", "/checkout",
		`{"productId":"v-1","productType":"vehicle","paymentMethod":"WALLET"}`,
		map[string]string{middleware.SessionHeader: "sess-1"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "v-1", got.ProductID)
	assert.Equal(t, domain.ListingTypeVehicle, got.ProductType)
	assert.Equal(t, domain.SelectionWallet, got.Selection)

	var outcome domain.Outcome
	require.NoError(t, json.Unmarshal(body, &outcome))
	assert.Equal(t, domain.StageCompleted, outcome.Stage)
	assert.True(t, outcome.RefreshListing)
}

func TestCheckout_OpenerUsesInstalledSchemes(t *testing.T) {
	svc := &mocks.MockCheckoutService{
		CheckoutFunc: func(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
			ok, err := cmd.Opener.CanOpen(ctx, "momo://app?orderId=tx-2")
			require.NoError(t, err)
			assert.True(t, ok)
			ok, _ = cmd.Opener.CanOpen(ctx, "zalopay://pay")
			assert.False(t, ok)
			return &domain.Outcome{TransactionID: "tx-2", Stage: domain.StageHandedOff}, nil
		},
	}
	app := newTestApp()
	NewCheckoutHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, _ := doJSON(t, app, "POST", "/checkout",
		`{"productId":"b-1","productType":"BATTERY","paymentMethod":"MOMO"}`,
		map[string]string{middleware.InstalledSchemesHeader: "momo"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCheckout_InsufficientBalanceExposesPendingID(t *testing.T) {
	svc := &mocks.MockCheckoutService{
		CheckoutFunc: func(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
			ce := domain.NewCheckoutError(domain.KindInsufficientBalance, "", errors.New("Insufficient balance"))
			ce.PendingTransactionID = "tx-3"
			return nil, ce
		},
	}
	app := newTestApp()
	NewCheckoutHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "POST", "/checkout",
		`{"productId":"v-1","productType":"VEHICLE","paymentMethod":"WALLET"}`, nil)

	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	var er errorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, string(domain.KindInsufficientBalance), er.Error.Kind)
	assert.Equal(t, domain.KindInsufficientBalance.DefaultMessage(), er.Error.Message)
	assert.Equal(t, "tx-3", er.Error.PendingTransactionID)
}

func TestCheckout_RejectsBadInput(t *testing.T) {
	svc := &mocks.MockCheckoutService{
		CheckoutFunc: func(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	app := newTestApp()
	NewCheckoutHandler(svc, zap.NewNop()).RegisterRoutes(app)

	tests := []struct {
		body    string
		message string
	}{
		{`{"productId":"v-1","productType":"VEHICLE","paymentMethod":"CASH"}`, domain.MsgPaymentMethodRequired},
		{`{"productId":"v-1","productType":"BIKE","paymentMethod":"WALLET"}`, domain.KindValidation.DefaultMessage()},
	}
	for _, tt := range tests {
		resp, body := doJSON(t, app, "POST", "/checkout", tt.body, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var er errorResponse
		require.NoError(t, json.Unmarshal(body, &er))
		assert.Equal(t, tt.message, er.Error.Message)
	}
}

func TestPrepare_SoldListing(t *testing.T) {
	svc := &mocks.MockCheckoutService{
		PrepareFunc: func(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error) {
			assert.Equal(t, "v-9", productID)
			assert.Equal(t, domain.ListingTypeVehicle, productType)
			return nil, domain.NewCheckoutError(domain.KindProductUnavailable, domain.MsgProductSold, nil)
		},
	}
	app := newTestApp()
	NewCheckoutHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "GET", "/checkout/vehicle/v-9", "", nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var er errorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, domain.MsgProductSold, er.Error.Message)
}

func newTestSessions() *session.Store {
	return session.NewStore(mocks.NewMockCache(), session.Config{}, zap.NewNop())
}

func TestLogin_IssuesFreshSessionID(t *testing.T) {
	sessions := newTestSessions()
	known := session.WithKey(context.Background(), "sess-known")
	require.NoError(t, sessions.Set(known, &domain.Session{AccessToken: "earlier"}))

	var loginKey string
	svc := &mocks.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*domain.Session, error) {
			loginKey = session.KeyFrom(ctx)
			sess := &domain.Session{AccessToken: "tok", User: &domain.User{ID: "u-1"}}
			return sess, sessions.Set(ctx, sess)
		},
	}
	app := newTestApp()
	NewAuthHandler(svc, sessions, zap.NewNop()).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	resp, body := doJSON(t, app, "POST", "/auth/login",
		`{"email":"an@evmarket.vn","password":"secret1"}`,
		map[string]string{middleware.SessionHeader: "sess-known"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "tok")

	var out SessionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEqual(t, "sess-known", out.SessionID)
	assert.Equal(t, loginKey, out.SessionID)
	assert.Equal(t, out.SessionID, resp.Header.Get(middleware.SessionHeader))
	assert.Equal(t, "u-1", out.User.ID)

	// The token lives only under the new key
	_, err := sessions.Get(known)
	assert.ErrorIs(t, err, session.ErrNoSession)
	stored, err := sessions.Get(session.WithKey(context.Background(), out.SessionID))
	require.NoError(t, err)
	assert.Equal(t, "tok", stored.AccessToken)
}

func TestLogin_FailureKeepsCallerSession(t *testing.T) {
	sessions := newTestSessions()
	known := session.WithKey(context.Background(), "sess-known")
	require.NoError(t, sessions.Set(known, &domain.Session{AccessToken: "earlier"}))

	svc := &mocks.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*domain.Session, error) {
			return nil, domain.NewCheckoutError(domain.KindUnauthorized, domain.MsgInvalidCredentials, nil)
		},
	}
	app := newTestApp()
	NewAuthHandler(svc, sessions, zap.NewNop()).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	resp, _ := doJSON(t, app, "POST", "/auth/login", `{"email":"a@b.vn","password":"x"}`,
		map[string]string{middleware.SessionHeader: "sess-known"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "sess-known", resp.Header.Get(middleware.SessionHeader))

	stored, err := sessions.Get(known)
	require.NoError(t, err)
	assert.Equal(t, "earlier", stored.AccessToken)
}

func TestRegister_IssuesFreshSessionID(t *testing.T) {
	svc := &mocks.MockAuthService{
		RegisterFunc: func(ctx context.Context, name, email, password string) (*domain.Session, error) {
			assert.NotEqual(t, "sess-known", session.KeyFrom(ctx))
			return &domain.Session{AccessToken: "tok"}, nil
		},
	}
	app := newTestApp()
	NewAuthHandler(svc, newTestSessions(), zap.NewNop()).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	resp, body := doJSON(t, app, "POST", "/auth/register",
		`{"name":"An","email":"an@evmarket.vn","password":"secret1"}`,
		map[string]string{middleware.SessionHeader: "sess-known"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out SessionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.SessionID)
	assert.NotEqual(t, "sess-known", out.SessionID)
	assert.Equal(t, out.SessionID, resp.Header.Get(middleware.SessionHeader))
}

func TestLogout(t *testing.T) {
	called := false
	svc := &mocks.MockAuthService{
		LogoutFunc: func(ctx context.Context) error {
			called = true
			return nil
		},
	}
	app := newTestApp()
	NewAuthHandler(svc, newTestSessions(), zap.NewNop()).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	resp, _ := doJSON(t, app, "POST", "/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.True(t, called)
}

func TestTransactions_History(t *testing.T) {
	svc := &mocks.MockTransactionService{
		HistoryFunc: func(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return &domain.TransactionPage{Transactions: []domain.Transaction{{ID: "tx-1"}}}, nil
		},
	}
	app := newTestApp()
	NewTransactionHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "GET", "/transactions?page=2&limit=5", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"tx-1"`)
}

func TestTransactions_Reconcile(t *testing.T) {
	svc := &mocks.MockTransactionService{
		ReconcileFunc: func(ctx context.Context) ([]domain.CheckoutRecord, error) {
			return []domain.CheckoutRecord{{TransactionID: "tx-1", Stage: domain.StageCompleted}}, nil
		},
	}
	app := newTestApp()
	NewTransactionHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "POST", "/transactions/reconcile", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"COMPLETED"`)
}

func TestWallet_Deposit(t *testing.T) {
	svc := &mocks.MockWalletService{
		DepositFunc: func(ctx context.Context, amount float64, opener ports.URLOpener) (*domain.Handoff, error) {
			if amount <= 0 {
				return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgDepositAmountInvalid, nil)
			}
			return &domain.Handoff{URL: "https://test-payment.momo.vn/dep", Via: domain.HandoffWeb}, nil
		},
	}
	app := newTestApp()
	NewWalletHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "POST", "/wallet/deposit", `{"amount":100000}`, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test-payment.momo.vn")

	resp, body = doJSON(t, app, "POST", "/wallet/deposit", `{"amount":0}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), domain.MsgDepositAmountInvalid)
}

func TestListings(t *testing.T) {
	svc := &mocks.MockListingService{
		ListVehiclesFunc: func(ctx context.Context) ([]domain.Listing, error) {
			return []domain.Listing{{ID: "v-1", Type: domain.ListingTypeVehicle}}, nil
		},
		ListBatteriesFunc: func(ctx context.Context) ([]domain.Listing, error) {
			return nil, domain.NewCheckoutError(domain.KindTimeout, "", context.DeadlineExceeded)
		},
	}
	app := newTestApp()
	NewListingHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "GET", "/vehicles", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"v-1"`)

	resp, _ = doJSON(t, app, "GET", "/batteries", "", nil)
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)
}

func TestChatbot_Ask(t *testing.T) {
	svc := &mocks.MockChatbotService{
		AskFunc: func(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
			assert.Equal(t, "sess-1", session.KeyFrom(ctx))
			assert.Equal(t, "Which battery lasts longest?", question)
			return &domain.ChatbotAnswer{Answer: "The 80kWh pack."}, nil
		},
	}
	app := newTestApp()
	NewChatbotHandler(svc, zap.NewNop()).RegisterRoutes(app)

	resp, body := doJSON(t, app, "POST", "/chatbot", `{"question":"Which battery lasts longest?"}`,
		map[string]string{middleware.SessionHeader: "sess-1"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got domain.ChatbotAnswer
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "The 80kWh pack.", got.Answer)
}

func TestChatbot_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantKind string
	}{
		{
			name:     "blank question",
			body:     `{"question":"  "}`,
			err:      domain.NewCheckoutError(domain.KindValidation, domain.MsgQuestionRequired, nil),
			wantCode: fiber.StatusBadRequest,
			wantKind: string(domain.KindValidation),
		},
		{
			name:     "assistant down",
			body:     `{"question":"hi"}`,
			err:      domain.NewCheckoutError(domain.KindServer, "", errors.New("503")),
			wantCode: middleware.StatusForKind(domain.KindServer),
			wantKind: string(domain.KindServer),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockChatbotService{
				AskFunc: func(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
					return nil, tt.err
				},
			}
			app := newTestApp()
			NewChatbotHandler(svc, zap.NewNop()).RegisterRoutes(app)

			resp, body := doJSON(t, app, "POST", "/chatbot", tt.body, nil)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			var er errorResponse
			require.NoError(t, json.Unmarshal(body, &er))
			assert.Equal(t, tt.wantKind, er.Error.Kind)
		})
	}
}

func TestChatbot_MalformedBody(t *testing.T) {
	app := newTestApp()
	NewChatbotHandler(&mocks.MockChatbotService{}, zap.NewNop()).RegisterRoutes(app)

	resp, _ := doJSON(t, app, "POST", "/chatbot", `{"question":`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
