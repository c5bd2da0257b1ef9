package excludedfile

import (
	"context"
	"errors"
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

// Create records e as excluded. When (libraryId, relativePath) is already
// excluded, it no-ops instead of erroring: §4.7.1 requires re-excluding a
// path a duplicate resolution has already excluded to be silent, since a
// re-ingested-then-re-duplicated post can reach this path more than once.
func (r *PostgresRepository) Create(ctx context.Context, e *ExcludedFile) (*ExcludedFile, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO NOTHING
		RETURNING %s, %s
	`, schema.ExcludedFile.Table, schema.ExcludedFile.LibraryID, schema.ExcludedFile.RelativePath,
		schema.ExcludedFile.ContentHash, schema.ExcludedFile.Reason,
		schema.ExcludedFile.LibraryID, schema.ExcludedFile.RelativePath,
		schema.ExcludedFile.ID, schema.ExcludedFile.ExcludedDate)

	exec := postgres.ExecutorFrom(ctx, r.db)
	err := exec.QueryRow(ctx, query, e.LibraryID, e.RelativePath, e.ContentHash, e.Reason).Scan(&e.ID, &e.ExcludedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, nil
		}
		return nil, dberr.Wrap(err, "create excluded file")
	}
	return e, nil
}

func (r *PostgresRepository) ListByLibrary(ctx context.Context, libraryID int) ([]*ExcludedFile, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, schema.ExcludedFile.ID, schema.ExcludedFile.LibraryID, schema.ExcludedFile.RelativePath,
		schema.ExcludedFile.ContentHash, schema.ExcludedFile.ExcludedDate, schema.ExcludedFile.Reason,
		schema.ExcludedFile.Table, schema.ExcludedFile.LibraryID)

	rows, err := r.db.Query(ctx, query, libraryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list excluded files")
	}
	defer rows.Close()

	files := make([]*ExcludedFile, 0)
	for rows.Next() {
		e := &ExcludedFile{}
		if err := rows.Scan(&e.ID, &e.LibraryID, &e.RelativePath, &e.ContentHash, &e.ExcludedDate, &e.Reason); err != nil {
			return nil, dberr.Wrap(err, "scan excluded file")
		}
		files = append(files, e)
	}
	return files, rows.Err()
}

func (r *PostgresRepository) DeleteStale(ctx context.Context, libraryID int, staleIDs []int) error {
	if len(staleIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		schema.ExcludedFile.Table, schema.ExcludedFile.LibraryID, schema.ExcludedFile.ID)

	_, err := r.db.Exec(ctx, query, libraryID, staleIDs)
	if err != nil {
		return dberr.Wrap(err, "delete stale excluded files")
	}
	return nil
}
