package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
)

const uniqueViolation = "23505"

// translate maps driver errors onto apperror kinds. Anything unrecognised is
// returned unchanged and treated as Internal upstream.
func translate(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.New(apperror.NotFound, notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && conflict != "" {
		return apperror.Wrap(apperror.Conflict, conflict, err)
	}
	return err
}
