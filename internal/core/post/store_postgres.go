package post

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/database/schema"
	"github.com/booruoss/booru/internal/platform/dberr"
	"github.com/booruoss/booru/internal/platform/postgres"
)

// PostgresRepository is the pgx-backed [Repository] implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SnapshotExisting(ctx context.Context, libraryID int) ([]ExistingInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, extract(epoch from %s)::bigint, %s, %s
		FROM %s WHERE %s = $1
	`, schema.Post.ID, schema.Post.RelativePath, schema.Post.ContentHash, schema.Post.SizeBytes,
		schema.Post.FileModifiedDate, schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue,
		schema.Post.Table, schema.Post.LibraryID)

	rows, err := r.db.Query(ctx, query, libraryID)
	if err != nil {
		return nil, dberr.Wrap(err, "snapshot existing posts")
	}
	defer rows.Close()

	infos := make([]ExistingInfo, 0)
	for rows.Next() {
		var info ExistingInfo
		if err := rows.Scan(&info.ID, &info.RelativePath, &info.ContentHash, &info.SizeBytes,
			&info.FileModifiedUnix, &info.FileIdentityDevice, &info.FileIdentityValue); err != nil {
			return nil, dberr.Wrap(err, "scan existing post")
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// InsertBatch writes posts in a single transaction, one INSERT ... RETURNING
// per post, so the whole group commits or rolls back together, per the ingestion pipeline's
// per-batch transactional contract (§4.1).
func (r *PostgresRepository) InsertBatch(ctx context.Context, posts []*Post) ([]int, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin insert batch")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, schema.Post.Table, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentHash,
		schema.Post.SizeBytes, schema.Post.ContentType, schema.Post.ImportDate, schema.Post.FileModifiedDate,
		schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue, schema.Post.ID)

	ids := make([]int, 0, len(posts))
	for _, p := range posts {
		var id int
		err := tx.QueryRow(ctx, query, p.LibraryID, p.RelativePath, p.ContentHash, p.SizeBytes,
			p.ContentType, time.Now().UTC(), p.FileModifiedDate, p.FileIdentityDevice, p.FileIdentityValue).Scan(&id)
		if err != nil {
			return nil, dberr.Wrap(err, "insert post batch")
		}
		ids = append(ids, id)
		p.ID = id
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit insert batch")
	}
	return ids, nil
}

func (r *PostgresRepository) ApplyUpdates(ctx context.Context, updates []UpdateFields) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin apply updates")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range updates {
		query := fmt.Sprintf(`
			UPDATE %s SET %s = $1, %s = to_timestamp($2), %s = $3, %s = $4, %s = $5`,
			schema.Post.Table, schema.Post.SizeBytes, schema.Post.FileModifiedDate, schema.Post.ContentHash,
			schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue)

		if u.ResetDerived {
			query += fmt.Sprintf(`, %s = 0, %s = 0, %s = NULL`, schema.Post.Width, schema.Post.Height, schema.Post.PdqHash256)
		}
		query += fmt.Sprintf(` WHERE %s = $6`, schema.Post.ID)

		if _, err := tx.Exec(ctx, query, u.SizeBytes, u.FileModifiedDate, u.ContentHash,
			u.FileIdentityDevice, u.FileIdentityValue, u.PostID); err != nil {
			return dberr.Wrap(err, "apply post update")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit apply updates")
	}
	return nil
}

func (r *PostgresRepository) ApplyMoves(ctx context.Context, moves []MoveFields) error {
	if len(moves) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin apply moves")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = to_timestamp($3), %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $8
	`, schema.Post.Table, schema.Post.RelativePath, schema.Post.SizeBytes, schema.Post.FileModifiedDate,
		schema.Post.ContentHash, schema.Post.ContentType, schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue,
		schema.Post.ID)

	for _, m := range moves {
		if _, err := tx.Exec(ctx, query, m.NewRelativePath, m.SizeBytes, m.FileModifiedDate, m.ContentHash,
			m.ContentType, m.FileIdentityDevice, m.FileIdentityValue, m.PostID); err != nil {
			return dberr.Wrap(err, "apply post move")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit apply moves")
	}
	return nil
}

func (r *PostgresRepository) DeleteOrphans(ctx context.Context, libraryID int, relativePaths []string) error {
	const batchSize = 100
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		schema.Post.Table, schema.Post.LibraryID, schema.Post.RelativePath)

	for start := 0; start < len(relativePaths); start += batchSize {
		end := start + batchSize
		if end > len(relativePaths) {
			end = len(relativePaths)
		}
		if _, err := r.db.Exec(ctx, query, libraryID, relativePaths[start:end]); err != nil {
			return dberr.Wrap(err, "delete orphan posts")
		}
	}
	return nil
}

func (r *PostgresRepository) ListTaggedByContentHash(ctx context.Context, libraryID int, contentHash string, excludePostID int) ([]TagAssignment, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT pt.%s, pt.%s
		FROM %s pt
		JOIN %s p ON p.%s = pt.%s
		WHERE p.%s = $1 AND p.%s = $2 AND p.%s != $3 AND pt.%s != 'folder'
	`, schema.PostTag.TagID, schema.PostTag.Source,
		schema.PostTag.Table, schema.Post.Table, schema.Post.ID, schema.PostTag.PostID,
		schema.Post.LibraryID, schema.Post.ContentHash, schema.Post.ID, schema.PostTag.Source)

	rows, err := r.db.Query(ctx, query, libraryID, contentHash, excludePostID)
	if err != nil {
		return nil, dberr.Wrap(err, "list tags by content hash")
	}
	defer rows.Close()

	assignments := make([]TagAssignment, 0)
	for rows.Next() {
		var a TagAssignment
		if err := rows.Scan(&a.TagID, &a.Source); err != nil {
			return nil, dberr.Wrap(err, "scan tag assignment")
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *PostgresRepository) CopyTagAssignments(ctx context.Context, postID int, assignments []TagAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s, %s) DO NOTHING
	`, schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.TagID, schema.PostTag.Source,
		schema.PostTag.PostID, schema.PostTag.TagID, schema.PostTag.Source)

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(query, postID, a.TagID, a.Source)
	}
	res := r.db.SendBatch(ctx, batch)
	defer res.Close()

	for range assignments {
		if _, err := res.Exec(); err != nil {
			return dberr.Wrap(err, "copy tag assignment")
		}
	}
	return nil
}

func (r *PostgresRepository) ListNeedingMetadata(ctx context.Context, all bool, limit, offset int) ([]*Post, error) {
	where := fmt.Sprintf("WHERE %s = 0 OR %s = ''", schema.Post.Width, schema.Post.ContentType)
	if all {
		where = ""
	}
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s %s ORDER BY %s ASC LIMIT $1 OFFSET $2
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentType, schema.Post.ContentHash,
		schema.Post.Table, where, schema.Post.ID)

	return r.queryPosts(ctx, query, limit, offset)
}

func (r *PostgresRepository) WriteMetadataBatch(ctx context.Context, fields []MetadataFields) error {
	if len(fields) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin metadata batch")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4`,
		schema.Post.Table, schema.Post.Width, schema.Post.Height, schema.Post.ContentType, schema.Post.ID)

	for _, f := range fields {
		if _, err := tx.Exec(ctx, query, f.Width, f.Height, f.ContentType, f.PostID); err != nil {
			return dberr.Wrap(err, "write metadata")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit metadata batch")
	}
	return nil
}

func (r *PostgresRepository) ListNeedingSimilarity(ctx context.Context, all bool, limit, offset int) ([]*Post, error) {
	where := fmt.Sprintf("WHERE %s LIKE 'image/%%' AND (%s IS NULL OR %s = '')", schema.Post.ContentType, schema.Post.PdqHash256, schema.Post.PdqHash256)
	if all {
		where = fmt.Sprintf("WHERE %s LIKE 'image/%%'", schema.Post.ContentType)
	}
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s %s ORDER BY %s ASC LIMIT $1 OFFSET $2
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentType, schema.Post.ContentHash,
		schema.Post.Table, where, schema.Post.ID)

	return r.queryPosts(ctx, query, limit, offset)
}

func (r *PostgresRepository) WriteSimilarityHash(ctx context.Context, postID int, pdqHash256 string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, schema.Post.Table, schema.Post.PdqHash256, schema.Post.ID)
	_, err := r.db.Exec(ctx, query, pdqHash256, postID)
	if err != nil {
		return dberr.Wrap(err, "write similarity hash")
	}
	return nil
}

func (r *PostgresRepository) ListForThumbnails(ctx context.Context, all bool, limit, offset int) ([]*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC LIMIT $1 OFFSET $2
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentType, schema.Post.ContentHash,
		schema.Post.Table, schema.Post.ID)
	return r.queryPosts(ctx, query, limit, offset)
}

func (r *PostgresRepository) ListDistinctLibraryContentHashes(ctx context.Context) (map[int][]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s, %s FROM %s`, schema.Post.LibraryID, schema.Post.ContentHash, schema.Post.Table)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list distinct content hashes")
	}
	defer rows.Close()

	result := make(map[int][]string)
	for rows.Next() {
		var libID int
		var hash string
		if err := rows.Scan(&libID, &hash); err != nil {
			return nil, dberr.Wrap(err, "scan content hash")
		}
		result[libID] = append(result[libID], hash)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) ListFolderTagBatch(ctx context.Context, afterID int, limit int) ([]*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s > $1 ORDER BY %s ASC LIMIT $2
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentType, schema.Post.ContentHash,
		schema.Post.Table, schema.Post.ID, schema.Post.ID)

	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list folder tag batch")
	}
	defer rows.Close()
	return scanPostRows(rows)
}

func (r *PostgresRepository) ReplaceFolderTags(ctx context.Context, postID int, tagIDs []int) (added, removed int, err error) {
	currentQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = 'folder'`,
		schema.PostTag.TagID, schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.Source)

	rows, err := r.db.Query(ctx, currentQuery, postID)
	if err != nil {
		return 0, 0, dberr.Wrap(err, "list current folder tags")
	}
	current := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, 0, dberr.Wrap(err, "scan current folder tag")
		}
		current[id] = true
	}
	rows.Close()

	desired := make(map[int]bool, len(tagIDs))
	for _, id := range tagIDs {
		desired[id] = true
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, 0, dberr.Wrap(err, "begin replace folder tags")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, 'folder') ON CONFLICT DO NOTHING`,
		schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.TagID, schema.PostTag.Source)
	delQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = 'folder'`,
		schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.TagID, schema.PostTag.Source)

	for id := range desired {
		if !current[id] {
			if _, err := tx.Exec(ctx, insQuery, postID, id); err != nil {
				return 0, 0, dberr.Wrap(err, "add folder tag")
			}
			added++
		}
	}
	for id := range current {
		if !desired[id] {
			if _, err := tx.Exec(ctx, delQuery, postID, id); err != nil {
				return 0, 0, dberr.Wrap(err, "remove folder tag")
			}
			removed++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, dberr.Wrap(err, "commit replace folder tags")
	}
	return added, removed, nil
}

func (r *PostgresRepository) ListDuplicateSignatures(ctx context.Context) ([]DuplicateSignature, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s`,
		schema.Post.ID, schema.Post.ContentHash, schema.Post.PdqHash256, schema.Post.ContentType, schema.Post.Table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list duplicate signatures")
	}
	defer rows.Close()

	sigs := make([]DuplicateSignature, 0)
	for rows.Next() {
		var s DuplicateSignature
		if err := rows.Scan(&s.ID, &s.ContentHash, &s.PdqHash256, &s.ContentType); err != nil {
			return nil, dberr.Wrap(err, "scan duplicate signature")
		}
		sigs = append(sigs, s)
	}
	return sigs, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentHash, schema.Post.SizeBytes,
		schema.Post.Width, schema.Post.Height, schema.Post.ContentType, schema.Post.ImportDate, schema.Post.FileModifiedDate,
		schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue, schema.Post.PdqHash256,
		schema.Post.Table, schema.Post.ID)

	p := &Post{}
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.LibraryID, &p.RelativePath, &p.ContentHash, &p.SizeBytes,
		&p.Width, &p.Height, &p.ContentType, &p.ImportDate, &p.FileModifiedDate,
		&p.FileIdentityDevice, &p.FileIdentityValue, &p.PdqHash256)
	if err != nil {
		return nil, dberr.Wrap(err, "get post")
	}

	if err := r.hydrateTagsAndSources(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByRelativePath(ctx context.Context, libraryID int, relativePath string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 AND %s = $2
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentHash, schema.Post.SizeBytes,
		schema.Post.Width, schema.Post.Height, schema.Post.ContentType, schema.Post.ImportDate, schema.Post.FileModifiedDate,
		schema.Post.FileIdentityDevice, schema.Post.FileIdentityValue, schema.Post.PdqHash256,
		schema.Post.Table, schema.Post.LibraryID, schema.Post.RelativePath)

	p := &Post{}
	err := r.db.QueryRow(ctx, query, libraryID, relativePath).Scan(&p.ID, &p.LibraryID, &p.RelativePath, &p.ContentHash, &p.SizeBytes,
		&p.Width, &p.Height, &p.ContentType, &p.ImportDate, &p.FileModifiedDate,
		&p.FileIdentityDevice, &p.FileIdentityValue, &p.PdqHash256)
	if err != nil {
		return nil, dberr.Wrap(err, "get post by relative path")
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Post.Table, schema.Post.ID)
	exec := postgres.ExecutorFrom(ctx, r.db)
	tag, err := exec.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete post")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// MergeTagsAndSources merges non-duplicate tag assignments and URL sources
// into keepPostID, used by the duplicate resolver's keep-one operation
// (§4.7.1). It runs against the caller's ambient transaction when one is
// present in ctx, so it commits or rolls back together with the rest of that
// resolution, and begins its own otherwise.
func (r *PostgresRepository) MergeTagsAndSources(ctx context.Context, keepPostID int, tags []TagAssignment, sources []Source) error {
	return postgres.WithinTx(ctx, r.db, func(ctx context.Context, tx postgres.Executor) error {
		tagQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING
		`, schema.PostTag.Table, schema.PostTag.PostID, schema.PostTag.TagID, schema.PostTag.Source)
		for _, t := range tags {
			if _, err := tx.Exec(ctx, tagQuery, keepPostID, t.TagID, t.Source); err != nil {
				return dberr.Wrap(err, "merge tag")
			}
		}

		existingQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, schema.PostSource.URL, schema.PostSource.Table, schema.PostSource.PostID)
		rows, err := tx.Query(ctx, existingQuery, keepPostID)
		if err != nil {
			return dberr.Wrap(err, "list existing sources")
		}
		existing := make(map[string]bool)
		maxOrder := -1
		for rows.Next() {
			var url string
			if err := rows.Scan(&url); err != nil {
				rows.Close()
				return dberr.Wrap(err, "scan existing source")
			}
			existing[lower(url)] = true
		}
		rows.Close()

		srcQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
			schema.PostSource.Table, schema.PostSource.PostID, schema.PostSource.URL, schema.PostSource.SortOrder)
		for _, s := range sources {
			if existing[lower(s.URL)] {
				continue
			}
			maxOrder++
			if _, err := tx.Exec(ctx, srcQuery, keepPostID, s.URL, maxOrder); err != nil {
				return dberr.Wrap(err, "merge source")
			}
			existing[lower(s.URL)] = true
		}
		return nil
	})
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]*Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = ANY($1)
	`, schema.Post.ID, schema.Post.LibraryID, schema.Post.RelativePath, schema.Post.ContentHash, schema.Post.SizeBytes,
		schema.Post.Width, schema.Post.Height, schema.Post.ContentType, schema.Post.FileModifiedDate, schema.Post.IsFavorite,
		schema.Post.Table, schema.Post.ID)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, dberr.Wrap(err, "list posts by ids")
	}
	defer rows.Close()

	posts := make([]*Post, 0, len(ids))
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.LibraryID, &p.RelativePath, &p.ContentHash, &p.SizeBytes,
			&p.Width, &p.Height, &p.ContentType, &p.FileModifiedDate, &p.IsFavorite); err != nil {
			return nil, dberr.Wrap(err, "scan post")
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// # Internal helpers

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, limit, offset int) ([]*Post, error) {
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "query posts")
	}
	defer rows.Close()
	return scanPostRows(rows)
}

func scanPostRows(rows pgx.Rows) ([]*Post, error) {
	posts := make([]*Post, 0)
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.LibraryID, &p.RelativePath, &p.ContentType, &p.ContentHash); err != nil {
			return nil, dberr.Wrap(err, "scan post row")
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostgresRepository) hydrateTagsAndSources(ctx context.Context, p *Post) error {
	tagQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.PostTag.TagID, schema.PostTag.Source, schema.PostTag.Table, schema.PostTag.PostID)
	rows, err := r.db.Query(ctx, tagQuery, p.ID)
	if err != nil {
		return dberr.Wrap(err, "hydrate post tags")
	}
	for rows.Next() {
		var t TagAssignment
		if err := rows.Scan(&t.TagID, &t.Source); err != nil {
			rows.Close()
			return dberr.Wrap(err, "scan post tag")
		}
		p.Tags = append(p.Tags, t)
	}
	rows.Close()

	srcQuery := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.PostSource.URL, schema.PostSource.SortOrder, schema.PostSource.Table, schema.PostSource.PostID, schema.PostSource.SortOrder)
	srows, err := r.db.Query(ctx, srcQuery, p.ID)
	if err != nil {
		return dberr.Wrap(err, "hydrate post sources")
	}
	for srows.Next() {
		var s Source
		if err := srows.Scan(&s.URL, &s.Order); err != nil {
			srows.Close()
			return dberr.Wrap(err, "scan post source")
		}
		p.Sources = append(p.Sources, s)
	}
	srows.Close()
	return nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
