package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/database/schema"
	"github.com/booruoss/booru/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListForPost(ctx context.Context, postID int, limit, offset int) ([]*Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2 OFFSET $3
	`, schema.PostAuditEntry.ID, schema.PostAuditEntry.PostID, schema.PostAuditEntry.OccurredAt,
		schema.PostAuditEntry.Entity, schema.PostAuditEntry.Operation, schema.PostAuditEntry.Field,
		schema.PostAuditEntry.OldValue, schema.PostAuditEntry.NewValue,
		schema.PostAuditEntry.Table, schema.PostAuditEntry.PostID, schema.PostAuditEntry.OccurredAt)

	rows, err := r.db.Query(ctx, query, postID, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "list post audit entries")
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.PostID, &e.OccurredAt, &e.Entity, &e.Operation, &e.Field, &e.OldValue, &e.NewValue); err != nil {
			return nil, dberr.Wrap(err, "scan post audit entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
