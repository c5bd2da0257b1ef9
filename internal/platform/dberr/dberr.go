// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/booruoss/booru/internal/platform/apperr"
)

// Postgres SQLSTATE codes this package classifies explicitly.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// action names the operation that failed (e.g. "create library", "rename tag")
// and is folded into the conflict message so the caller doesn't need to.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations: unique (library path, tag name) and FK
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return apperr.Conflict(action + ": a conflicting record already exists")
		case sqlStateForeignKeyViolation:
			return apperr.Conflict(action + ": referenced record does not exist or is still in use")
		}
	}

	// 3. Everything else becomes an Internal Server Error; the cause is
	// logged server-side by the caller but never surfaced to the client.
	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint error,
// for callers that need to branch on it rather than just wrap it.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}
