package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zefrenchwan/docfilters.git/nodes"
)

//  P0002	no_data_found
// 42501	insufficient_privilege
// 23503	foreign_key_violation
// 23505	unique_violation

const (
	AUTH_CODE          = "42501"
	RESOURCE_CODE      = "P0002"
	INCONSISTENCY_CODE = "23503"
	UNIQUE_CODE        = "23505"
)

// FindCodeInPSQLException returns the postgresql error code, if any
func FindCodeInPSQLException(sourceError error) string {
	var pgErr *pgconn.PgError
	var result string
	if errors.As(sourceError, &pgErr) {
		result = pgErr.Code
	}

	return result
}

// AsDocumentError wraps a database error with the matching document error.
// Unknown codes are host rejections.
func AsDocumentError(sourceError error) error {
	if sourceError == nil {
		return nil
	} else if errors.Is(sourceError, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", sourceError, nodes.ErrNotFound)
	}

	switch FindCodeInPSQLException(sourceError) {
	case RESOURCE_CODE:
		return fmt.Errorf("%w: %w", sourceError, nodes.ErrNotFound)
	case UNIQUE_CODE:
		return fmt.Errorf("%w: %w", sourceError, nodes.ErrCollision)
	case INCONSISTENCY_CODE:
		return fmt.Errorf("%w: %w", sourceError, nodes.ErrInvalid)
	default:
		return fmt.Errorf("%w: %w", sourceError, nodes.ErrHostRejected)
	}
}
