package library

import (
	"context"
	"log/slog"
	"os"

	"github.com/booruoss/booru/internal/platform/apperr"
	"github.com/booruoss/booru/internal/platform/validate"
)

// Service is the thin business-logic layer over [Repository].
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates and persists a new library. The path must be an
// existing absolute directory, per spec §3.
func (s *Service) Create(ctx context.Context, name, path string, scanIntervalHours int) (*Library, error) {
	v := &validate.Validator{}
	v.Required("name", name).MaxLen("name", name, 200)
	v.Required("path", path)
	if v.HasErrors() {
		return nil, v.Err()
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, apperr.ValidationError("path must be an existing directory")
	}
	if !isAbsolutePath(path) {
		return nil, apperr.ValidationError("path must be absolute")
	}
	if scanIntervalHours <= 0 {
		scanIntervalHours = 24
	}

	lib := &Library{Name: name, Path: path, ScanIntervalHours: scanIntervalHours}
	created, err := s.repo.Create(ctx, lib)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "library_created", slog.Int("library_id", created.ID), slog.String("path", path))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Library, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Library, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, lib *Library) error {
	v := &validate.Validator{}
	v.Required("name", lib.Name).MaxLen("name", lib.Name, 200)
	if v.HasErrors() {
		return v.Err()
	}
	return s.repo.Update(ctx, lib)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "library_deleted", slog.Int("library_id", id))
	return nil
}

// AddIgnoredPrefix registers a relative-path prefix sync should skip entirely.
func (s *Service) AddIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error {
	if relPath == "" {
		return apperr.ValidationError("relative path is required")
	}
	return s.repo.AddIgnoredPrefix(ctx, libraryID, relPath)
}

func (s *Service) RemoveIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error {
	return s.repo.RemoveIgnoredPrefix(ctx, libraryID, relPath)
}

func (s *Service) ListIgnoredPrefixes(ctx context.Context, libraryID int) ([]string, error) {
	return s.repo.ListIgnoredPrefixes(ctx, libraryID)
}

func isAbsolutePath(p string) bool {
	return len(p) > 0 && (p[0] == '/' || (len(p) > 2 && p[1] == ':'))
}
