package user

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/passreset"
	"github.com/dmitrymomot/authkit/pkg/session"
)

// Service serves the user-facing account API.
type Service struct {
	sessions   *session.Manager
	reset      *passreset.Service
	logger     *slog.Logger
	dateWindow time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDateWindow bounds how far a signed request's X-Date may drift from
// server time. Zero disables the freshness check.
func WithDateWindow(window time.Duration) Option {
	return func(s *Service) {
		s.dateWindow = window
	}
}

// NewService creates the account API service over the given collaborators.
func NewService(sessions *session.Manager, reset *passreset.Service, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		reset:    reset,
		logger:   logger.NewDiscard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
