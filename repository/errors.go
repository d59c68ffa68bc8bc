package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Gateway error taxonomy. Every low-level failure is classified into one
// of these kinds before it leaves this package; higher layers propagate
// them unchanged.
var (
	// ErrBackendUnavailable covers connectivity and timeout failures.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrConstraintViolation covers unique and foreign-key violations.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrRemoteExecution covers application-level errors embedded in a
	// remote gateway response.
	ErrRemoteExecution = errors.New("remote execution error")
	// ErrNotFound is rare; list operations return empty instead.
	ErrNotFound = errors.New("record not found")
)

func IsBackendUnavailable(err error) bool  { return errors.Is(err, ErrBackendUnavailable) }
func IsConstraintViolation(err error) bool { return errors.Is(err, ErrConstraintViolation) }
func IsRemoteExecution(err error) bool     { return errors.Is(err, ErrRemoteExecution) }
func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }

// Postgres error classes/codes this layer cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgConnectionClass     = "08"
)

// classifyStoreError translates a native store failure into the gateway
// taxonomy, tagging it with the failing operation. nil stays nil.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgresCode(op, pgErr.Code, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifyPostgresCode(op, string(pqErr.Code), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func classifyPostgresCode(op, code string, err error) error {
	switch {
	case code == pgUniqueViolation, code == pgForeignKeyViolation, code == pgCheckViolation:
		return fmt.Errorf("%s: %w: %v", op, ErrConstraintViolation, err)
	case len(code) >= 2 && code[:2] == pgConnectionClass:
		return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
