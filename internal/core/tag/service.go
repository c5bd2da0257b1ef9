package tag

import (
	"context"
	"log/slog"

	"github.com/booruoss/booru/internal/platform/apperr"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create sanitizes name, rejects a now-empty result, and persists the tag.
func (s *Service) Create(ctx context.Context, name string, categoryID *int) (*Tag, error) {
	sanitized := Sanitize(name)
	if sanitized == "" {
		return nil, apperr.ValidationError("tag name is empty after sanitization")
	}
	return s.repo.Create(ctx, &Tag{Name: sanitized, TagCategoryID: categoryID})
}

func (s *Service) Update(ctx context.Context, id int, name string, categoryID *int) error {
	sanitized := Sanitize(name)
	if sanitized == "" {
		return apperr.ValidationError("tag name is empty after sanitization")
	}
	return s.repo.Update(ctx, &Tag{ID: id, Name: sanitized, TagCategoryID: categoryID})
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int) (*Tag, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Tag, error) {
	return s.repo.GetByName(ctx, Sanitize(name))
}

func (s *Service) List(ctx context.Context) ([]*Tag, error) {
	return s.repo.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *TagCategory) (*TagCategory, error) {
	if c.Name == "" {
		return nil, apperr.ValidationError("category name is required")
	}
	return s.repo.CreateCategory(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *TagCategory) error {
	return s.repo.UpdateCategory(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]*TagCategory, error) {
	return s.repo.ListCategories(ctx)
}

// SanitizeAll runs the merge pass backing the sanitize-tag-names job
// (§4.6.7): every group of tags colliding on their sanitized name is merged
// into a single survivor, chosen as the tag with the largest PostCount
// (ties broken by lowest ID). Within a group of size one, there is no
// merge to do, but the tag is still renamed if its stored name isn't
// already sanitized.
func (s *Service) SanitizeAll(ctx context.Context) (groupsMerged, tagsRenamed, tagsRemoved int, err error) {
	groups, err := s.repo.FindSanitizeGroups(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, g := range groups {
		if len(g.TagIDs) < 2 {
			renamed, err := s.renameIfNeeded(ctx, g.TagIDs[0], g.SanitizedName)
			if err != nil {
				return groupsMerged, tagsRenamed, tagsRemoved, err
			}
			if renamed {
				tagsRenamed++
			}
			continue
		}
		all, err := s.loadAll(ctx, g.TagIDs)
		if err != nil {
			return groupsMerged, tagsRenamed, tagsRemoved, err
		}

		winner := all[0]
		for _, t := range all[1:] {
			if t.PostCount > winner.PostCount || (t.PostCount == winner.PostCount && t.ID < winner.ID) {
				winner = t
			}
		}

		losers := make([]int, 0, len(all)-1)
		for _, t := range all {
			if t.ID != winner.ID {
				losers = append(losers, t.ID)
			}
		}

		if err := s.repo.MergeInto(ctx, winner.ID, losers, g.SanitizedName); err != nil {
			return groupsMerged, tagsRenamed, tagsRemoved, err
		}
		groupsMerged++
		tagsRemoved += len(losers)
	}

	if err := s.repo.RecountPostCounts(ctx); err != nil {
		return groupsMerged, tagsRenamed, tagsRemoved, err
	}
	return groupsMerged, tagsRenamed, tagsRemoved, nil
}

// renameIfNeeded renames the tag id to sanitizedName, preserving its
// category, when its stored name doesn't already match.
func (s *Service) renameIfNeeded(ctx context.Context, id int, sanitizedName string) (bool, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if t.Name == sanitizedName {
		return false, nil
	}
	if err := s.repo.Update(ctx, &Tag{ID: t.ID, Name: sanitizedName, TagCategoryID: t.TagCategoryID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) loadAll(ctx context.Context, ids []int) ([]*Tag, error) {
	tags := make([]*Tag, 0, len(ids))
	for _, id := range ids {
		t, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
