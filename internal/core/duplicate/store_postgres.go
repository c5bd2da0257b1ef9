package duplicate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/database/schema"
	"github.com/booruoss/booru/internal/platform/dberr"
	"github.com/booruoss/booru/internal/platform/postgres"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*Group, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, schema.DuplicateGroup.ID, schema.DuplicateGroup.Type, schema.DuplicateGroup.SimilarityPercent,
		schema.DuplicateGroup.IsResolved, schema.DuplicateGroup.DetectedDate,
		schema.DuplicateGroup.Table, schema.DuplicateGroup.ID)

	g := &Group{}
	err := r.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.Type, &g.SimilarityPercent, &g.IsResolved, &g.DetectedDate)
	if err != nil {
		return nil, dberr.Wrap(err, "get duplicate group")
	}

	entries, err := r.listEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Entries = entries
	return g, nil
}

func (r *PostgresRepository) List(ctx context.Context, resolved *bool, groupType *GroupType) ([]*Group, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE 1=1
	`, schema.DuplicateGroup.ID, schema.DuplicateGroup.Type, schema.DuplicateGroup.SimilarityPercent,
		schema.DuplicateGroup.IsResolved, schema.DuplicateGroup.DetectedDate, schema.DuplicateGroup.Table)

	args := make([]interface{}, 0, 2)
	if resolved != nil {
		args = append(args, *resolved)
		query += fmt.Sprintf(" AND %s = $%d", schema.DuplicateGroup.IsResolved, len(args))
	}
	if groupType != nil {
		args = append(args, *groupType)
		query += fmt.Sprintf(" AND %s = $%d", schema.DuplicateGroup.Type, len(args))
	}
	query += fmt.Sprintf(" ORDER BY %s DESC", schema.DuplicateGroup.DetectedDate)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list duplicate groups")
	}

	groups := make([]*Group, 0)
	ids := make([]int, 0)
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(&g.ID, &g.Type, &g.SimilarityPercent, &g.IsResolved, &g.DetectedDate); err != nil {
			rows.Close()
			return nil, dberr.Wrap(err, "scan duplicate group")
		}
		groups = append(groups, g)
		ids = append(ids, g.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range groups {
		entries, err := r.listEntries(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Entries = entries
	}
	return groups, nil
}

func (r *PostgresRepository) listEntries(ctx context.Context, groupID int) ([]Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.DuplicateGroupEntry.PostID, schema.DuplicateGroupEntry.Table,
		schema.DuplicateGroupEntry.DuplicateGroupID, schema.DuplicateGroupEntry.PostID)

	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, dberr.Wrap(err, "list duplicate group entries")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PostID); err != nil {
			return nil, dberr.Wrap(err, "scan duplicate group entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.DuplicateGroup.Table, schema.DuplicateGroup.ID)
	exec := postgres.ExecutorFrom(ctx, r.db)
	tag, err := exec.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete duplicate group")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, g *Group) (*Group, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin create duplicate group")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertGroup := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, false) RETURNING %s, %s
	`, schema.DuplicateGroup.Table, schema.DuplicateGroup.Type, schema.DuplicateGroup.SimilarityPercent,
		schema.DuplicateGroup.ID, schema.DuplicateGroup.DetectedDate)

	if err := tx.QueryRow(ctx, insertGroup, g.Type, g.SimilarityPercent).Scan(&g.ID, &g.DetectedDate); err != nil {
		return nil, dberr.Wrap(err, "insert duplicate group")
	}

	insertEntry := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.DuplicateGroupEntry.Table, schema.DuplicateGroupEntry.DuplicateGroupID, schema.DuplicateGroupEntry.PostID)

	batch := &pgx.Batch{}
	for _, e := range g.Entries {
		batch.Queue(insertEntry, g.ID, e.PostID)
	}
	res := tx.SendBatch(ctx, batch)
	for range g.Entries {
		if _, err := res.Exec(); err != nil {
			res.Close()
			return nil, dberr.Wrap(err, "insert duplicate group entry")
		}
	}
	if err := res.Close(); err != nil {
		return nil, dberr.Wrap(err, "close duplicate group entry batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit create duplicate group")
	}
	return g, nil
}

func (r *PostgresRepository) RemoveEntry(ctx context.Context, groupID, postID int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.DuplicateGroupEntry.Table, schema.DuplicateGroupEntry.DuplicateGroupID, schema.DuplicateGroupEntry.PostID)
	exec := postgres.ExecutorFrom(ctx, r.db)
	_, err := exec.Exec(ctx, query, groupID, postID)
	if err != nil {
		return dberr.Wrap(err, "remove duplicate group entry")
	}
	return nil
}

func (r *PostgresRepository) CountEntries(ctx context.Context, groupID int) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.DuplicateGroupEntry.Table, schema.DuplicateGroupEntry.DuplicateGroupID)

	exec := postgres.ExecutorFrom(ctx, r.db)
	var count int
	if err := exec.QueryRow(ctx, query, groupID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count duplicate group entries")
	}
	return count, nil
}

func (r *PostgresRepository) MarkResolved(ctx context.Context, groupID int, resolved bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		schema.DuplicateGroup.Table, schema.DuplicateGroup.IsResolved, schema.DuplicateGroup.ID)
	exec := postgres.ExecutorFrom(ctx, r.db)
	_, err := exec.Exec(ctx, query, resolved, groupID)
	if err != nil {
		return dberr.Wrap(err, "mark duplicate group resolved")
	}
	return nil
}

// DeleteIfEmpty deletes groupID when it has fewer than two entries,
// reporting whether it did. It must count and delete against the same
// executor so a caller running it inside an ambient transaction (§4.7's
// resolution unit of work) sees its own uncommitted RemoveEntry.
func (r *PostgresRepository) DeleteIfEmpty(ctx context.Context, groupID int) (bool, error) {
	count, err := r.CountEntries(ctx, groupID)
	if err != nil {
		return false, err
	}
	if count >= 2 {
		return false, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.DuplicateGroup.Table, schema.DuplicateGroup.ID)
	exec := postgres.ExecutorFrom(ctx, r.db)
	if _, err := exec.Exec(ctx, query, groupID); err != nil {
		return false, dberr.Wrap(err, "delete empty duplicate group")
	}
	return true, nil
}

func (r *PostgresRepository) MarkAllUnresolved(ctx context.Context) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = false`, schema.DuplicateGroup.Table, schema.DuplicateGroup.IsResolved)
	_, err := r.db.Exec(ctx, query)
	if err != nil {
		return dberr.Wrap(err, "mark all duplicate groups unresolved")
	}
	return nil
}
