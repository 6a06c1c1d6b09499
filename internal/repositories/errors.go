package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned on a unique-constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrMissingTable is returned when the backing store lacks an expected collection.
	ErrMissingTable = errors.New("collection does not exist")
)

// PostgreSQL error codes reported by the hosted store.
const (
	pgUniqueViolation = "23505"
	pgUndefinedTable  = "42P01"
)

// classify maps driver errors onto the package sentinels so callers can use errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case pgUndefinedTable:
			return fmt.Errorf("%w: %v", ErrMissingTable, err)
		}
	}
	msg := err.Error()
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %v", ErrMissingTable, err)
	}
	return err
}
