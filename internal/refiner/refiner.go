// Package refiner talks to the text-completion collaborator that rewrites
// founder answers and proposes names and slide outlines.
package refiner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PXLTCH/startup-ai/internal/config"
)

// Request is one completion call. Input carries the user-supplied text the
// prompt was built from, for providers that work without a model.
type Request struct {
	System      string
	Prompt      string
	Input       string
	Temperature float64
}

// Completer produces a completion for a single request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Checker is implemented by completers with startup preconditions.
type Checker interface {
	Check() error
}

// Service wraps a Completer with a per-attempt timeout, retries and a
// circuit breaker.
type Service struct {
	completer Completer
	timeout   time.Duration
	retry     *RetryConfig
	breaker   *CircuitBreaker
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithRetryConfig replaces the default backoff.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(s *Service) { s.retry = cfg }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(s *Service) { s.breaker = cb }
}

// NewService returns a Service around c.
func NewService(c Completer, opts ...Option) *Service {
	s := &Service{
		completer: c,
		timeout:   60 * time.Second,
		retry:     DefaultRetryConfig(),
		breaker:   NewCircuitBreaker(5, 30*time.Second),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New builds the configured provider and verifies its preconditions.
// A missing CLI binary or credential is returned as an error so the caller
// can refuse to start.
func New(cfg *config.Config) (*Service, error) {
	var c Completer
	switch cfg.Refiner.Provider {
	case "claude":
		c = &ClaudeCLI{Path: cfg.Refiner.CLIPath, Model: cfg.Refiner.Model}
	case "openai":
		c = &OpenAI{BaseURL: cfg.Refiner.BaseURL, Model: cfg.Refiner.Model, APIKeyEnv: cfg.Refiner.APIKeyEnv}
	case "static":
		c = Static{}
	default:
		return nil, fmt.Errorf("unknown refiner provider %q", cfg.Refiner.Provider)
	}

	if chk, ok := c.(Checker); ok {
		if err := chk.Check(); err != nil {
			return nil, fmt.Errorf("refiner %s: %w", cfg.Refiner.Provider, err)
		}
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.Refiner.MaxRetries
	return NewService(c, WithTimeout(cfg.RefinerTimeout()), WithRetryConfig(retry)), nil
}

// Complete runs req with the configured timeout and retry policy. While the
// breaker is open it fails fast with ErrCircuitOpen.
func (s *Service) Complete(ctx context.Context, req Request) (string, error) {
	if !s.breaker.Allow(s.now()) {
		return "", &Error{Op: "complete", Err: ErrCircuitOpen, Retryable: true}
	}

	var out string
	err := WithRetry(ctx, s.retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		text, err := s.completer.Complete(attemptCtx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.breaker.RecordFailure(s.now())
		}
		return "", err
	}
	s.breaker.RecordSuccess()
	return out, nil
}

// Refine rewrites answer into an investor-ready statement for question.
func (s *Service) Refine(ctx context.Context, question, answer string) (string, error) {
	text, err := s.Complete(ctx, Request{
		System:      MentorSystemPrompt,
		Prompt:      BuildRefinePrompt(question, answer),
		Input:       answer,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Op: "refine", Err: ErrEmptyResponse}
	}
	return text, nil
}

// Static echoes the request input. It needs no model and is meant for
// offline use and tests.
type Static struct{}

// Complete returns req.Input unchanged.
func (Static) Complete(_ context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Input) == "" {
		return "No answer provided.", nil
	}
	return req.Input, nil
}
