// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/dberr"
)

// Executor is the subset of *pgxpool.Pool and pgx.Tx a repository method
// needs. A method written against Executor runs standalone against the pool
// or, when a caller has opened an ambient transaction, against that
// transaction instead, without its own signature changing.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts a transaction. *pgxpool.Pool satisfies it directly.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// WithTx returns a context carrying tx, so ExecutorFrom and WithinTx resolve
// to it instead of the pool for any repository call made with it.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// ExecutorFrom returns the transaction stashed in ctx by WithTx, or pool if
// ctx carries none.
func ExecutorFrom(ctx context.Context, pool *pgxpool.Pool) Executor {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return pool
}

// RunInTx begins a transaction on db, runs fn with a context carrying it,
// and commits on success or rolls back on error — the cross-repository unit
// of work a multi-step domain operation spanning several repositories needs
// (duplicate resolution's "all in a single transaction", §4.7.1).
func RunInTx(ctx context.Context, db Beginner, fn func(ctx context.Context) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return dberr.Wrap(tx.Commit(ctx), "commit transaction")
}

// WithinTx runs fn against the ambient transaction in ctx if the caller has
// already opened one, otherwise begins and commits/rolls back a new one on
// db. It lets a single repository method guarantee its own statements are
// atomic whether or not it is also a participant in a wider transaction.
func WithinTx(ctx context.Context, db Beginner, fn func(ctx context.Context, exec Executor) error) error {
	if tx, ok := txFrom(ctx); ok {
		return fn(ctx, tx)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return dberr.Wrap(tx.Commit(ctx), "commit transaction")
}
