package postgresql

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var Schema string

// Migrate creates every table the repositories use. It is safe to run on an
// existing database.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// PostgreSQL error codes
const (
	uniqueViolation           = "23505"
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// isNoRows also covers lookups by a malformed UUID, which can never match.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || isPgError(err, invalidTextRepresentation)
}
