package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// OperationError wraps a storage failure with the operation that hit it.
// Handlers map it to a generic database_error so raw driver messages never
// reach clients, while business-rule errors pass through untouched.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "database operation failed: " + e.Op
}

func (e *OperationError) Unwrap() error { return e.Err }

// WrapError labels infrastructure errors. Record-not-found and duplicate-key
// conditions are left alone so callers can translate them into business
// errors first.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return &OperationError{Op: op, Err: err}
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}
