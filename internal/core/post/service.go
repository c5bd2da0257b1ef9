package post

import (
	"context"
	"log/slog"
)

// Service is the thin business-logic layer over [Repository], consumed
// directly by the sync pipeline and derived-data jobs rather than exposed
// as a full CRUD HTTP surface (see SPEC_FULL.md Non-goals).
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int) (*Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]*Post, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// Delete removes a post row. Callers owning a file-backed delete (duplicate
// resolver's DeleteOneWithFile) must remove the underlying file themselves
// before calling this.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "post_deleted", slog.Int("post_id", id))
	return nil
}

// InheritTagsFromSibling copies the distinct non-folder tag assignments of
// every other post sharing contentHash within libraryID, per the
// tag-inheritance rule (§4.3). Returns the number of tags copied.
func (s *Service) InheritTagsFromSibling(ctx context.Context, libraryID, postID int, contentHash string) (int, error) {
	assignments, err := s.repo.ListTaggedByContentHash(ctx, libraryID, contentHash, postID)
	if err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}
	if err := s.repo.CopyTagAssignments(ctx, postID, assignments); err != nil {
		return 0, err
	}
	return len(assignments), nil
}

// ReplaceFolderTags reconciles the post's current "folder" source tags
// against tagIDs, adding and removing as needed so the set becomes
// idempotent across repeated syncs (§8 S9/S10).
func (s *Service) ReplaceFolderTags(ctx context.Context, postID int, tagIDs []int) (added, removed int, err error) {
	return s.repo.ReplaceFolderTags(ctx, postID, tagIDs)
}

func (s *Service) ListDuplicateSignatures(ctx context.Context) ([]DuplicateSignature, error) {
	return s.repo.ListDuplicateSignatures(ctx)
}
