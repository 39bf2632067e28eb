package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Errors
var (
	ErrCircuitOpen     = gobreaker.ErrOpenState
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// Settings configures a breaker. Zero values fall back to DefaultSettings.
type Settings struct {
	Name string

	// MaxRequests is the number of probes allowed while half-open
	MaxRequests uint32

	// Interval is the cyclic period after which closed-state counts reset
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration

	// FailureRatio trips the breaker once at least MinRequests were seen
	FailureRatio float64
	MinRequests  uint32

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultSettings returns default circuit breaker settings
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  3,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// CircuitBreaker guards calls to one backend.
type CircuitBreaker struct {
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
}

// New creates a new circuit breaker with the given settings
func New(settings Settings, log *zap.Logger) *CircuitBreaker {
	def := DefaultSettings()
	if settings.MaxRequests == 0 {
		settings.MaxRequests = def.MaxRequests
	}
	if settings.Interval == 0 {
		settings.Interval = def.Interval
	}
	if settings.Timeout == 0 {
		settings.Timeout = def.Timeout
	}
	if settings.FailureRatio <= 0 {
		settings.FailureRatio = def.FailureRatio
	}
	if settings.MinRequests == 0 {
		settings.MinRequests = def.MinRequests
	}

	ratio, min := settings.FailureRatio, settings.MinRequests
	onChange := settings.OnStateChange

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < min {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if onChange != nil {
				onChange(name, from, to)
			}
		},
	})

	return &CircuitBreaker{cb: cb, log: log}
}

// Execute runs fn if the breaker allows it.
func (b *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return b.cb.Execute(fn)
}

// ExecuteCtx runs fn unless ctx is already done or the breaker is open.
// A cancelled context is not counted against the backend.
func (b *CircuitBreaker) ExecuteCtx(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
}

func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *CircuitBreaker) Name() string {
	return b.cb.Name()
}

// Manager hands out one breaker per backend name.
type Manager struct {
	breakers map[string]*CircuitBreaker
	defaults Settings
	mu       sync.RWMutex
	log      *zap.Logger
}

func NewManager(defaults Settings, log *zap.Logger) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		defaults: defaults,
		log:      log,
	}
}

// Get returns a circuit breaker by name, creating it if it doesn't exist
func (m *Manager) Get(name string) *CircuitBreaker {
	m.mu.RLock()
	cb, exists := m.breakers[name]
	m.mu.RUnlock()

	if exists {
		return cb
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if cb, exists = m.breakers[name]; exists {
		return cb
	}

	settings := m.defaults
	settings.Name = name
	cb = New(settings, m.log)
	m.breakers[name] = cb

	return cb
}

// Status reports each breaker's state, used by the readiness probe.
func (m *Manager) Status() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]string, len(m.breakers))
	for name, cb := range m.breakers {
		status[name] = cb.State().String()
	}
	return status
}

// IsCircuitOpen checks if the error is due to an open circuit
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

// IsTooManyRequests checks if the error is due to too many requests
func IsTooManyRequests(err error) bool {
	return errors.Is(err, ErrTooManyRequests)
}

// IsRejected is true when the breaker refused the call without trying it.
func IsRejected(err error) bool {
	return IsCircuitOpen(err) || IsTooManyRequests(err)
}
