package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when the requested entity, or the parent of an
	// entity being created, does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store: conflict")
)

const (
	pqUniqueViolation = "23505"
	duplicateKeyCode  = "DUPLICATE_KEY"
)

func mapReadError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func mapWriteError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s: %v", ErrConflict, op, err)
	}
	return fmt.Errorf("store: %s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	// repository bulk writes report duplicates as categorized errors
	// without the driver error in the chain
	if repository.IsDuplicatedKey(err) || goerrors.IsCategory(err, goerrors.CategoryConflict) {
		return true
	}
	var repoErr *goerrors.Error
	if goerrors.As(err, &repoErr) && repoErr.TextCode == duplicateKeyCode {
		return true
	}
	var retryErr *goerrors.RetryableError
	if goerrors.As(err, &retryErr) && retryErr.BaseError != nil && retryErr.BaseError.TextCode == duplicateKeyCode {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	// repository errors do not always keep the driver error in the chain
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
