package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

var ErrSecretNotFound = errors.New("secret not found")

type SecretManager struct {
	client *api.Client
	mount  string
	log    *zap.Logger
}

// NewSecretManager reads from a KV v2 engine mounted at mountPath.
func NewSecretManager(address, token, mountPath string, log *zap.Logger) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}

	client.SetToken(token)

	if mountPath == "" {
		mountPath = "secret"
	}
	return &SecretManager{client: client, mount: strings.Trim(mountPath, "/"), log: log}, nil
}

// ReadString returns one string field of the secret at name.
func (sm *SecretManager) ReadString(ctx context.Context, name, field string) (string, error) {
	path := fmt.Sprintf("%s/data/%s", sm.mount, name)
	secret, err := sm.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("%s: %w", path, ErrSecretNotFound)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrSecretNotFound)
	}
	value, ok := data[field].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s#%s: %w", path, field, ErrSecretNotFound)
	}

	sm.log.Debug("Secret loaded from vault", zap.String("path", path), zap.String("field", field))
	return value, nil
}

func (sm *SecretManager) GetDatabaseURL(ctx context.Context) (string, error) {
	return sm.ReadString(ctx, "database", "connection_string")
}

func (sm *SecretManager) GetRedisURL(ctx context.Context) (string, error) {
	return sm.ReadString(ctx, "redis", "url")
}

func (sm *SecretManager) GetSendGridAPIKey(ctx context.Context) (string, error) {
	return sm.ReadString(ctx, "sendgrid", "api_key")
}
