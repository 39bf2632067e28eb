package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "root-token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/kv/data/sendgrid":
			_, _ = w.Write([]byte(`{"data":{"data":{"api_key":"SG.test"},"metadata":{"version":1}}}`))
		case "/v1/kv/data/database":
			_, _ = w.Write([]byte(`{"data":{"data":{"connection_string":"postgres://evmarket@db/evmarket"}}}`))
		case "/v1/kv/data/redis":
			_, _ = w.Write([]byte(`{"data":{"data":{"host":"redis"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))
}

func TestSecretManager_ReadsKV2(t *testing.T) {
	srv := newFakeVault(t)
	defer srv.Close()

	sm, err := NewSecretManager(srv.URL, "root-token", "/kv/", zap.NewNop())
	require.NoError(t, err)

	key, err := sm.GetSendGridAPIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SG.test", key)

	dsn, err := sm.GetDatabaseURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "postgres://evmarket@db/evmarket", dsn)
}

func TestSecretManager_MissingSecrets(t *testing.T) {
	srv := newFakeVault(t)
	defer srv.Close()

	sm, err := NewSecretManager(srv.URL, "root-token", "kv", zap.NewNop())
	require.NoError(t, err)

	_, err = sm.GetRedisURL(context.Background())
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = sm.ReadString(context.Background(), "unknown", "x")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}
