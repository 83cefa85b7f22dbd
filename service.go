package guardkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Service owns the role/permission identity store and the assignment graph,
// and resolves permission checks against them. It integrates with the
// database through dbkit.
//
// Error Handling:
// Database operations use dbkit's chainable error wrapping; uniqueness
// violations and lookup misses are translated to ErrAlreadyExists and
// ErrNotFound so callers never see driver-level errors for the contractual
// cases.
//
// Example error handling:
//
//	role, err := service.CreateRole(ctx, "editor", "web")
//	if err != nil {
//	    if guardkit.IsAlreadyExists(err) {
//	        // a role named "editor" already exists under guard "web"
//	    }
//	}
type Service struct {
	db          dbkit.IDB
	cfg         Config
	guards      *GuardRegistry
	scope       teamScope
	matcher     *WildcardMatcher
	invalidator Invalidator
	logger      Logger
	txMonitor   *transactionMonitor
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithInvalidator sets the permission-cache invalidator notified on every
// successful mutation. Default is a no-op.
func WithInvalidator(inv Invalidator) ServiceOption {
	return func(s *Service) {
		if inv != nil {
			s.invalidator = inv
		}
	}
}

// WithLogger sets the logger for mutation and invalidation events.
// Default discards everything.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGuardRegistry sets a pre-populated guard registry mapping principal
// types to guard names. Default is an empty registry falling back to
// Config.DefaultGuard.
func WithGuardRegistry(r *GuardRegistry) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.guards = r
		}
	}
}

// NewService creates a GuardKit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := guardkit.NewService(db, guardkit.Config{DefaultGuard: "web"})
func NewService(db dbkit.IDB, cfg Config, opts ...ServiceOption) *Service {
	s := &Service{
		db:          db,
		cfg:         cfg,
		guards:      NewGuardRegistry(cfg.defaultGuard()),
		scope:       newTeamScope(cfg),
		matcher:     NewWildcardMatcher(),
		invalidator: NopInvalidator{},
		logger:      nopLogger{},
		txMonitor:   newTransactionMonitor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Guards returns the guard registry.
func (s *Service) Guards() *GuardRegistry {
	return s.guards
}

// withDB returns a shallow copy of the service bound to another database
// handle, used to run operations inside a transaction.
func (s *Service) withDB(db dbkit.IDB) *Service {
	c := *s
	c.db = db
	return &c
}

// invalidate emits the cache invalidation signal after a successful
// mutation. Invalidation failures are logged, never surfaced: the mutation
// already happened and the cache contract is eventual.
func (s *Service) invalidate(ctx context.Context, op string) {
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Error("cache invalidation failed", "op", op, "error", err)
		return
	}
	s.logger.Debug("cache invalidated", "op", op)
}
