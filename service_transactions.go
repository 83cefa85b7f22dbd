package guardkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// Transaction executes a function against a transaction-bound copy of the
// service, with automatic commit/rollback. Nested calls reuse the enclosing
// transaction via a savepoint.
//
// Example:
//
//	err := service.Transaction(ctx, func(txs *guardkit.Service) error {
//	    role, err := txs.CreateRole(ctx, "editor", "web")
//	    if err != nil {
//	        return err // rollback
//	    }
//	    return txs.AssignRole(ctx, user.Ref(), role.ID) // commit on nil
//	})
func (s *Service) Transaction(ctx context.Context, fn func(txs *Service) error) error {
	start := time.Now()
	var err error

	switch db := s.db.(type) {
	case *dbkit.DBKit:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	case *dbkit.Tx:
		// Already transactional: savepoint.
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	default:
		// Unknown handle (tests, wrappers): run without transactional
		// guarantees rather than refusing.
		err = fn(s)
	}

	s.txMonitor.record(time.Since(start), err == nil)
	return err
}

// TransactionWithOptions executes a function within a transaction using
// custom options (isolation level, read-only, ...).
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(txs *Service) error) error {
	start := time.Now()
	var err error

	switch db := s.db.(type) {
	case *dbkit.DBKit:
		err = db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	case *dbkit.Tx:
		// Nested transactions cannot change options; savepoint only.
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.withDB(tx))
		})
	default:
		err = fn(s)
	}

	s.txMonitor.record(time.Since(start), err == nil)
	return err
}

// ReadOnlyTransaction executes a function within a read-only transaction.
// Useful for consistent multi-query reads (e.g. a Checker snapshot).
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(txs *Service) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
