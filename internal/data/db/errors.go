package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorDetails extracts operator-facing detail from a store error. Postgres
// errors expose their SQLSTATE and constraint; anything else only its message.
func ErrorDetails(err error) map[string]any {
	if err == nil {
		return nil
	}
	out := map[string]any{"message": err.Error()}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		out["message"] = pgErr.Message
		out["code"] = pgErr.Code
		if pgErr.ConstraintName != "" {
			out["constraint"] = pgErr.ConstraintName
		}
		if pgErr.Detail != "" {
			out["detail"] = pgErr.Detail
		}
		if pgErr.TableName != "" {
			out["table"] = pgErr.TableName
		}
	}
	return out
}

// Message returns the most specific human readable message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	return err.Error()
}
