package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrConflict indicates concurrency/uniqueness conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure failures into engine error codes. Unique
// violations are resolved by constraint name so a duplicate deck, a duplicate
// axle number and a replayed local ref each keep their own code.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.Wrap(domainagg.CodeValidation, op, err)
	case errors.Is(err, ErrConflict):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, ErrRetryable):
		return domainagg.Wrap(domainagg.CodeNumberingUnavailable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return domainagg.Wrap(uniqueViolationCode(pgErr.ConstraintName), op, err)
		case "23503": // foreign_key_violation
			return domainagg.Wrap(domainagg.CodeConflict, op, err)
		case "40001", "40P01", "55P03": // serialization/deadlock/lock_not_available
			return domainagg.Wrap(domainagg.CodeConflict, op, err)
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

func uniqueViolationCode(constraint string) domainagg.ErrorCode {
	switch strings.TrimSpace(constraint) {
	case "idx_deck_sample_session_deck":
		return domainagg.CodeDuplicateDeck
	case "idx_axle_entry_vehicle_number":
		return domainagg.CodeConfigConflict
	case "idx_session_tenant_local_ref":
		return domainagg.CodeAlreadyApplied
	case "idx_session_tenant_docket":
		return domainagg.CodeConflict
	default:
		return domainagg.CodeConflict
	}
}
