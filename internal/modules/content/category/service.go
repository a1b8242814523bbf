package category

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/velora-shop/core/internal/models"
	"github.com/velora-shop/core/internal/pkg/errs"
	"github.com/velora-shop/core/internal/pkg/slug"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns all categories ordered by name.
func (s *Service) List() ([]models.CategoryModel, error) {
	var cats []models.CategoryModel
	err := s.db.Order("name ASC").Find(&cats).Error
	return cats, err
}

// ListTags returns all tags ordered by name.
func (s *Service) ListTags() ([]models.TagModel, error) {
	var tags []models.TagModel
	err := s.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

// Create adds a category with a derived unique slug.
func (s *Service) Create(dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, errs.Validation("name", "must not be empty")
	}

	// soft-deleted rows still occupy the unique index, so check unscoped
	var count int64
	if err := s.db.Unscoped().Model(&models.CategoryModel{}).
		Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errs.Duplicate("category", "category name already exists")
	}

	sl, err := slug.Unique(name, s.slugTaken)
	if err != nil {
		return nil, err
	}

	cat := models.CategoryModel{Name: name, Slug: sl, Description: strings.TrimSpace(dto.Description)}
	if err := s.db.Create(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// Update modifies a category. Renaming re-derives the slug.
func (s *Service) Update(id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	cat, err := s.getByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, errs.Validation("name", "must not be empty")
		}
		if name != cat.Name {
			var count int64
			if err := s.db.Unscoped().Model(&models.CategoryModel{}).
				Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, errs.Duplicate("category", "category name already exists")
			}
			sl, err := slug.Unique(name, s.slugTaken)
			if err != nil {
				return nil, err
			}
			updates["name"] = name
			updates["slug"] = sl
			cat.Name = name
			cat.Slug = sl
		}
	}
	if dto.Description != nil {
		updates["description"] = strings.TrimSpace(*dto.Description)
		cat.Description = strings.TrimSpace(*dto.Description)
	}

	if len(updates) > 0 {
		if err := s.db.Model(cat).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// Delete removes a category. Posts and products keep existing but lose the
// category reference.
func (s *Service) Delete(id string) error {
	cat, err := s.getByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostModel{}).
			Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProductModel{}).
			Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(cat).Error
	})
}

// ResolveTags finds or lazily creates tags for the given names and returns
// them in input order. Blank names are skipped, duplicates collapsed.
func ResolveTags(db *gorm.DB, names []string) ([]models.TagModel, error) {
	seen := map[string]bool{}
	out := make([]models.TagModel, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		sl := slug.Make(name)
		if sl == "" || seen[sl] {
			continue
		}
		seen[sl] = true

		var tag models.TagModel
		err := db.Where("slug = ?", sl).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.TagModel{Name: name, Slug: sl}
			err = db.Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, nil
}

// ResolveCategoryID validates an optional category reference.
func ResolveCategoryID(db *gorm.DB, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	var count int64
	if err := db.Model(&models.CategoryModel{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errs.NotFound("category")
	}
	return id, nil
}

func (s *Service) getByID(id string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	if err := s.db.First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("category")
		}
		return nil, err
	}
	return &cat, nil
}

func (s *Service) slugTaken(candidate string) (bool, error) {
	var count int64
	err := s.db.Unscoped().Model(&models.CategoryModel{}).
		Where("slug = ?", candidate).Count(&count).Error
	return count > 0, err
}
