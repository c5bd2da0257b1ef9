package tag

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

func (r *PostgresRepository) Create(ctx context.Context, t *Tag) (*Tag, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		RETURNING %s, %s
	`, schema.Tag.Table, schema.Tag.Name, schema.Tag.TagCategoryID, schema.Tag.ID, schema.Tag.CreatedAt)

	err := r.db.QueryRow(ctx, query, t.Name, t.TagCategoryID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "create tag")
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *Tag) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3`,
		schema.Tag.Table, schema.Tag.Name, schema.Tag.TagCategoryID, schema.Tag.ID)

	tag, err := r.db.Exec(ctx, query, t.Name, t.TagCategoryID, t.ID)
	if err != nil {
		return dberr.Wrap(err, "update tag")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Tag.Table, schema.Tag.ID)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete tag")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, schema.Tag.ID, schema.Tag.Name, schema.Tag.TagCategoryID, schema.Tag.PostCount, schema.Tag.CreatedAt,
		schema.Tag.Table, schema.Tag.ID)

	t := &Tag{}
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.TagCategoryID, &t.PostCount, &t.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get tag")
	}
	return t, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, schema.Tag.ID, schema.Tag.Name, schema.Tag.TagCategoryID, schema.Tag.PostCount, schema.Tag.CreatedAt,
		schema.Tag.Table, schema.Tag.Name)

	t := &Tag{}
	err := r.db.QueryRow(ctx, query, name).Scan(&t.ID, &t.Name, &t.TagCategoryID, &t.PostCount, &t.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get tag by name")
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC
	`, schema.Tag.ID, schema.Tag.Name, schema.Tag.TagCategoryID, schema.Tag.PostCount, schema.Tag.CreatedAt,
		schema.Tag.Table, schema.Tag.Name)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.TagCategoryID, &t.PostCount, &t.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan tag")
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c *TagCategory) (*TagCategory, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) RETURNING %s
	`, schema.TagCategory.Table, schema.TagCategory.Name, schema.TagCategory.Color, schema.TagCategory.SortOrder, schema.TagCategory.ID)

	err := r.db.QueryRow(ctx, query, c.Name, c.Color, c.SortOrder).Scan(&c.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "create tag category")
	}
	return c, nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *TagCategory) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4`,
		schema.TagCategory.Table, schema.TagCategory.Name, schema.TagCategory.Color, schema.TagCategory.SortOrder, schema.TagCategory.ID)

	tag, err := r.db.Exec(ctx, query, c.Name, c.Color, c.SortOrder, c.ID)
	if err != nil {
		return dberr.Wrap(err, "update tag category")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.TagCategory.Table, schema.TagCategory.ID)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete tag category")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*TagCategory, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s FROM %s ORDER BY %s ASC
	`, schema.TagCategory.ID, schema.TagCategory.Name, schema.TagCategory.Color, schema.TagCategory.SortOrder,
		schema.TagCategory.Table, schema.TagCategory.SortOrder)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list tag categories")
	}
	defer rows.Close()

	cats := make([]*TagCategory, 0)
	for rows.Next() {
		c := &TagCategory{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.SortOrder); err != nil {
			return nil, dberr.Wrap(err, "scan tag category")
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *PostgresRepository) RecountPostCounts(ctx context.Context) error {
	query := fmt.Sprintf(`
		UPDATE %s t SET %s = sub.cnt
		FROM (
			SELECT %s, COUNT(DISTINCT %s) AS cnt FROM %s GROUP BY %s
		) sub
		WHERE t.%s = sub.%s
	`, schema.Tag.Table, schema.Tag.PostCount,
		schema.PostTag.TagID, schema.PostTag.PostID, schema.PostTag.Table, schema.PostTag.TagID,
		schema.Tag.ID, schema.PostTag.TagID)

	if _, err := r.db.Exec(ctx, query); err != nil {
		return dberr.Wrap(err, "recount post counts")
	}

	zeroQuery := fmt.Sprintf(`
		UPDATE %s SET %s = 0 WHERE %s NOT IN (SELECT DISTINCT %s FROM %s)
	`, schema.Tag.Table, schema.Tag.PostCount, schema.Tag.ID, schema.PostTag.TagID, schema.PostTag.Table)
	if _, err := r.db.Exec(ctx, zeroQuery); err != nil {
		return dberr.Wrap(err, "zero unused tag counts")
	}
	return nil
}

// FindSanitizeGroups groups every tag by its sanitized name, including
// groups of one: a lone tag whose stored name isn't already sanitized still
// needs renaming (§4.6.7), even though it has no siblings to merge with.
func (r *PostgresRepository) FindSanitizeGroups(ctx context.Context) ([]MergeGroup, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s`, schema.Tag.ID, schema.Tag.Name, schema.Tag.Table)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list tags for sanitize grouping")
	}
	defer rows.Close()

	buckets := make(map[string][]int)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, dberr.Wrap(err, "scan tag for sanitize grouping")
		}
		sanitized := Sanitize(name)
		buckets[sanitized] = append(buckets[sanitized], id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]MergeGroup, 0, len(buckets))
	for name, ids := range buckets {
		groups = append(groups, MergeGroup{SanitizedName: name, TagIDs: ids})
	}
	return groups, nil
}

// MergeInto reassigns PostTag rows from loserIDs onto winnerID, dedupes by
// (postId, source), lets winnerID adopt a category from a loser if it has
// none, renames winnerID, and deletes the loser tag rows.
func (r *PostgresRepository) MergeInto(ctx context.Context, winnerID int, loserIDs []int, sanitizedName string) error {
	if len(loserIDs) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin tag merge")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	categoryQuery := fmt.Sprintf(`
		UPDATE %s SET %s = (
			SELECT %s FROM %s WHERE %s = ANY($1) AND %s IS NOT NULL LIMIT 1
		) WHERE %s = $2 AND %s IS NULL
	`, schema.Tag.Table, schema.Tag.TagCategoryID,
		schema.Tag.TagCategoryID, schema.Tag.Table, schema.Tag.ID, schema.Tag.TagCategoryID,
		schema.Tag.ID, schema.Tag.TagCategoryID)
	if _, err := tx.Exec(ctx, categoryQuery, loserIDs, winnerID); err != nil {
		return dberr.Wrap(err, "adopt tag category")
	}

	reassignQuery := fmt.Sprintf(`
		UPDATE %s SET %s = $1
		WHERE %s = ANY($2)
		AND NOT EXISTS (
			SELECT 1 FROM %s existing
			WHERE existing.%s = %s.%s AND existing.%s = $1 AND existing.%s = %s.%s
		)
	`, schema.PostTag.Table, schema.PostTag.TagID,
		schema.PostTag.TagID,
		schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.Table, schema.PostTag.PostID,
		schema.PostTag.TagID, schema.PostTag.Source, schema.PostTag.Table, schema.PostTag.Source)
	if _, err := tx.Exec(ctx, reassignQuery, winnerID, loserIDs); err != nil {
		return dberr.Wrap(err, "reassign post tags")
	}

	deleteRemaining := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, schema.PostTag.Table, schema.PostTag.TagID)
	if _, err := tx.Exec(ctx, deleteRemaining, loserIDs); err != nil {
		return dberr.Wrap(err, "delete remaining loser post tags")
	}

	renameQuery := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, schema.Tag.Table, schema.Tag.Name, schema.Tag.ID)
	if _, err := tx.Exec(ctx, renameQuery, sanitizedName, winnerID); err != nil {
		return dberr.Wrap(err, "rename winner tag")
	}

	deleteLosers := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, schema.Tag.Table, schema.Tag.ID)
	if _, err := tx.Exec(ctx, deleteLosers, loserIDs); err != nil {
		return dberr.Wrap(err, "delete loser tags")
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit tag merge")
	}
	return nil
}
