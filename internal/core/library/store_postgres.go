package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/booruoss/booru/internal/platform/database/schema"
	"github.com/booruoss/booru/internal/platform/dberr"
)

// PostgresRepository is the pgx-backed [Repository] implementation.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, lib *Library) (*Library, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s
	`, schema.Library.Table, schema.Library.Name, schema.Library.Path, schema.Library.ScanIntervalHours,
		schema.Library.ID, schema.Library.CreatedAt)

	err := r.db.QueryRow(ctx, query, lib.Name, lib.Path, lib.ScanIntervalHours).Scan(&lib.ID, &lib.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "create library")
	}
	return lib, nil
}

func (r *PostgresRepository) Update(ctx context.Context, lib *Library) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4
	`, schema.Library.Table, schema.Library.Name, schema.Library.Path, schema.Library.ScanIntervalHours, schema.Library.ID)

	tag, err := r.db.Exec(ctx, query, lib.Name, lib.Path, lib.ScanIntervalHours, lib.ID)
	if err != nil {
		return dberr.Wrap(err, "update library")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Library.Table, schema.Library.ID)
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete library")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*Library, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`, schema.Library.ID, schema.Library.Name, schema.Library.Path, schema.Library.ScanIntervalHours, schema.Library.CreatedAt,
		schema.Library.Table, schema.Library.ID)

	lib := &Library{}
	err := r.db.QueryRow(ctx, query, id).Scan(&lib.ID, &lib.Name, &lib.Path, &lib.ScanIntervalHours, &lib.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get library")
	}

	prefixes, err := r.ListIgnoredPrefixes(ctx, id)
	if err != nil {
		return nil, err
	}
	lib.IgnoredPrefixes = prefixes

	return lib, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Library, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC
	`, schema.Library.ID, schema.Library.Name, schema.Library.Path, schema.Library.ScanIntervalHours, schema.Library.CreatedAt,
		schema.Library.Table, schema.Library.Name)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list libraries")
	}
	defer rows.Close()

	libs := make([]*Library, 0)
	for rows.Next() {
		lib := &Library{}
		if err := rows.Scan(&lib.ID, &lib.Name, &lib.Path, &lib.ScanIntervalHours, &lib.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan library")
		}
		libs = append(libs, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prefixesByLibrary, err := r.listAllIgnoredPrefixes(ctx)
	if err != nil {
		return nil, err
	}
	for _, lib := range libs {
		lib.IgnoredPrefixes = prefixesByLibrary[lib.ID]
	}

	return libs, nil
}

// listAllIgnoredPrefixes loads every library's ignored prefixes in one
// query, keyed by library ID, so List can hydrate every row it returns
// without an N+1 round trip per library.
func (r *PostgresRepository) listAllIgnoredPrefixes(ctx context.Context) (map[int][]string, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s ORDER BY %s ASC, %s ASC
	`, schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath, schema.LibraryIgnoredPrefix.Table,
		schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list ignored prefixes")
	}
	defer rows.Close()

	byLibrary := make(map[int][]string)
	for rows.Next() {
		var libraryID int
		var relPath string
		if err := rows.Scan(&libraryID, &relPath); err != nil {
			return nil, dberr.Wrap(err, "scan ignored prefix")
		}
		byLibrary[libraryID] = append(byLibrary[libraryID], relPath)
	}
	return byLibrary, rows.Err()
}

func (r *PostgresRepository) AddIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s) VALUES ($1, $2)
		ON CONFLICT (%s, %s) DO NOTHING
	`, schema.LibraryIgnoredPrefix.Table, schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath,
		schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath)

	_, err := r.db.Exec(ctx, query, libraryID, relPath)
	if err != nil {
		return dberr.Wrap(err, "add ignored prefix")
	}
	return nil
}

func (r *PostgresRepository) RemoveIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE %s = $1 AND %s = $2
	`, schema.LibraryIgnoredPrefix.Table, schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath)

	_, err := r.db.Exec(ctx, query, libraryID, relPath)
	if err != nil {
		return dberr.Wrap(err, "remove ignored prefix")
	}
	return nil
}

func (r *PostgresRepository) ListIgnoredPrefixes(ctx context.Context, libraryID int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC
	`, schema.LibraryIgnoredPrefix.RelativePath, schema.LibraryIgnoredPrefix.Table,
		schema.LibraryIgnoredPrefix.LibraryID, schema.LibraryIgnoredPrefix.RelativePath)

	rows, err := r.db.Query(ctx, query, libraryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list ignored prefixes")
	}
	defer rows.Close()

	prefixes := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, dberr.Wrap(err, "scan ignored prefix")
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, rows.Err()
}
