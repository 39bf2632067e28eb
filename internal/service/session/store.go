package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/observability/telemetry"
	"github.com/evmarket/checkout-client/internal/ports"
)

var (
	ErrNoSession      = ports.ErrNoSession
	ErrSessionExpired = ports.ErrSessionExpired
)

type Config struct {
	KeyPrefix string
	// TTL caps how long a session is kept when the token carries no exp.
	TTL time.Duration
}

// Store implements ports.SessionProvider on top of a ports.Cache. Each
// session is stored as JSON under KeyPrefix + the key found in the context.
type Store struct {
	cache  ports.Cache
	prefix string
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewStore(cache ports.Cache, cfg Config, log *zap.Logger) *Store {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "evmarket:session:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Store{
		cache:  cache,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		log:    log,
		now:    time.Now,
	}
}

func (s *Store) cacheKey(ctx context.Context) string {
	return s.prefix + KeyFrom(ctx)
}

func (s *Store) Get(ctx context.Context) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, s.cacheKey(ctx))
	if errors.Is(err, ports.ErrCacheMiss) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, ErrNoSession
	}

	if sess.Expired(s.now()) {
		if err := s.Clear(ctx); err != nil {
			s.log.Warn("Failed to clear expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

func (s *Store) Set(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return errors.New("session without access token")
	}

	if sess.ExpiresAt.IsZero() {
		if exp, err := TokenExpiry(sess.AccessToken); err == nil {
			sess.ExpiresAt = exp
		} else {
			s.log.Debug("Access token has no readable exp claim", zap.Error(err))
		}
	}

	ttl := s.ttl
	if !sess.ExpiresAt.IsZero() {
		remaining := sess.ExpiresAt.Sub(s.now())
		if remaining <= 0 {
			return ErrSessionExpired
		}
		if remaining < ttl {
			ttl = remaining
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.cache.Set(ctx, s.cacheKey(ctx), string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.cacheKey(ctx)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Invalidate drops the session after the backend rejected its token.
func (s *Store) Invalidate(ctx context.Context, reason string) {
	telemetry.SessionInvalidationsTotal.Inc()
	s.log.Warn("Session invalidated",
		zap.String("session_key", KeyFrom(ctx)),
		zap.String("reason", reason),
	)
	if err := s.Clear(ctx); err != nil {
		s.log.Error("Failed to clear invalidated session", zap.Error(err))
	}
}

// TokenExpiry reads the exp claim without verifying the signature. The
// client cannot verify backend tokens; it only needs to know when to stop
// sending one.
func TokenExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}
