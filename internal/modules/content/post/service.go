package post

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/velora-shop/core/internal/models"
	"github.com/velora-shop/core/internal/modules/content/category"
	"github.com/velora-shop/core/internal/modules/storage"
	"github.com/velora-shop/core/internal/pkg/errs"
	"github.com/velora-shop/core/internal/pkg/pagination"
	"github.com/velora-shop/core/internal/pkg/response"
	"github.com/velora-shop/core/internal/pkg/slug"
	"github.com/velora-shop/core/internal/repository"
)

const (
	maxTitleLen   = 100
	minContentLen = 10
	maxExcerptLen = 300
)

type Service struct {
	db      *gorm.DB
	gateway *storage.Gateway
	bucket  string
}

func NewService(db *gorm.DB, gateway *storage.Gateway, bucket string) *Service {
	return &Service{db: db, gateway: gateway, bucket: bucket}
}

// List returns published posts matching the filter.
func (s *Service) List(q pagination.Query, f repository.PostFilter) ([]models.PostModel, response.Pagination, error) {
	var posts []models.PostModel
	query := f.Apply(repository.PublishedPosts(s.db)).
		Preload("Category").Preload("Tags").
		Preload("Author", authorColumns)
	p, err := pagination.Paginate(query, q, &posts)
	return posts, p, err
}

// GetBySlug fetches a published post and increments its view counter.
// Views count every fetch; no dedup.
func (s *Service) GetBySlug(sl string) (*models.PostModel, error) {
	var p models.PostModel
	err := s.db.Where("slug = ? AND status = ?", sl, models.PostStatusPublished).
		Preload("Category").Preload("Tags").
		Preload("Author", authorColumns).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC")
		}).
		Preload("Comments.User", authorColumns).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("post")
		}
		return nil, err
	}

	if err := s.db.Model(&p).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, err
	}
	p.Views++
	return &p, nil
}

// Create validates, stores the optional featured image, and persists the post.
// The image is uploaded before the row is written so a failed upload never
// leaves a dangling reference.
func (s *Service) Create(ctx context.Context, authorID string, dto *CreatePostDTO, image *storage.File) (*models.PostModel, error) {
	title := strings.TrimSpace(dto.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(dto.Content); err != nil {
		return nil, err
	}
	if err := validateExcerpt(dto.Excerpt); err != nil {
		return nil, err
	}
	status, err := normalizeStatus(dto.Status, models.PostStatusDraft)
	if err != nil {
		return nil, err
	}

	categoryID, err := category.ResolveCategoryID(s.db, dto.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := category.ResolveTags(s.db, splitTags(dto.Tags))
	if err != nil {
		return nil, err
	}

	sl, err := slug.Unique(title, s.slugTaken)
	if err != nil {
		return nil, err
	}

	var imageURL string
	if image != nil {
		obj, err := s.gateway.Upload(ctx, image.Data, image.MIME, s.bucket, image.Name)
		if err != nil {
			return nil, err
		}
		imageURL = obj.URL
	}

	p := models.PostModel{
		Title:         title,
		Slug:          sl,
		Content:       dto.Content,
		Excerpt:       strings.TrimSpace(dto.Excerpt),
		Status:        status,
		AuthorID:      authorID,
		CategoryID:    categoryID,
		Tags:          tags,
		FeaturedImage: imageURL,
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	if err := s.db.Create(&p).Error; err != nil {
		if imageURL != "" {
			s.gateway.Cleanup(ctx, s.bucket, imageURL)
		}
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update. Only the author or an admin may modify a
// post. Replacing the featured image uploads the new object first, then
// best-effort deletes the old one.
func (s *Service) Update(ctx context.Context, id, actorID, actorRole string, dto *UpdatePostDTO, image *storage.File) (*models.PostModel, error) {
	p, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if err := authorize(p, actorID, actorRole); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if dto.Title != nil {
		title := strings.TrimSpace(*dto.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		if title != p.Title {
			sl, err := slug.Unique(title, s.slugTaken)
			if err != nil {
				return nil, err
			}
			updates["title"] = title
			updates["slug"] = sl
			p.Title = title
			p.Slug = sl
		}
	}
	if dto.Content != nil {
		if err := validateContent(*dto.Content); err != nil {
			return nil, err
		}
		updates["content"] = *dto.Content
		p.Content = *dto.Content
	}
	if dto.Excerpt != nil {
		if err := validateExcerpt(*dto.Excerpt); err != nil {
			return nil, err
		}
		updates["excerpt"] = strings.TrimSpace(*dto.Excerpt)
		p.Excerpt = updates["excerpt"].(string)
	}
	if dto.Status != nil {
		status, err := normalizeStatus(*dto.Status, "")
		if err != nil {
			return nil, err
		}
		updates["status"] = status
		// publishedAt is set on first publish and never reset
		if status == models.PostStatusPublished && p.PublishedAt == nil {
			now := time.Now()
			updates["published_at"] = now
			p.PublishedAt = &now
		}
		p.Status = status
	}
	if dto.CategoryID != nil {
		categoryID, err := category.ResolveCategoryID(s.db, dto.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
		p.CategoryID = categoryID
	}

	var oldImage string
	if image != nil {
		obj, err := s.gateway.Upload(ctx, image.Data, image.MIME, s.bucket, image.Name)
		if err != nil {
			return nil, err
		}
		oldImage = p.FeaturedImage
		updates["featured_image"] = obj.URL
		p.FeaturedImage = obj.URL
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if dto.Tags != nil {
			tags, err := category.ResolveTags(tx, splitTags(dto.Tags))
			if err != nil {
				return err
			}
			if err := tx.Model(p).Association("Tags").Replace(tags); err != nil {
				return err
			}
			p.Tags = tags
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(p).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if oldImage != "" {
		s.gateway.Cleanup(ctx, s.bucket, oldImage)
	}
	return p, nil
}

// Delete removes a post together with its comments and likes, then
// best-effort deletes the stored featured image.
func (s *Service) Delete(ctx context.Context, id, actorID, actorRole string) error {
	p, err := s.getByID(id)
	if err != nil {
		return err
	}
	if err := authorize(p, actorID, actorRole); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLikeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(p).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
	if err != nil {
		return err
	}

	if p.FeaturedImage != "" {
		s.gateway.Cleanup(ctx, s.bucket, p.FeaturedImage)
	}
	return nil
}

// AddComment attaches a comment to a published post.
func (s *Service) AddComment(postID, userID, content string) (*models.CommentModel, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Validation("content", "must not be empty")
	}
	if utf8.RuneCountInString(content) > 500 {
		return nil, errs.Validation("content", "must be at most 500 characters")
	}

	if _, err := s.getByID(postID); err != nil {
		return nil, err
	}

	cm := models.CommentModel{PostID: postID, UserID: userID, Content: content}
	if err := s.db.Create(&cm).Error; err != nil {
		return nil, err
	}
	return &cm, nil
}

// ToggleLike likes the post if the user has not liked it, otherwise removes
// the like. Returns the resulting count and state. The check-then-write is
// not serialized; a racing double-submit may lose one toggle, the unique
// index prevents duplicate rows.
func (s *Service) ToggleLike(postID, userID string) (int64, bool, error) {
	if _, err := s.getByID(postID); err != nil {
		return 0, false, err
	}

	var existing models.PostLikeModel
	err := s.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error

	var liked bool
	switch {
	case err == nil:
		// hard delete, otherwise the unique index blocks a later re-like
		if err := s.db.Unscoped().Delete(&existing).Error; err != nil {
			return 0, false, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.PostLikeModel{PostID: postID, UserID: userID}
		if err := s.db.Create(&like).Error; err != nil {
			return 0, false, err
		}
		liked = true
	default:
		return 0, false, err
	}

	var count int64
	if err := s.db.Model(&models.PostLikeModel{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, false, err
	}
	return count, liked, nil
}

func (s *Service) getByID(id string) (*models.PostModel, error) {
	var p models.PostModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("post")
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) slugTaken(candidate string) (bool, error) {
	var count int64
	err := s.db.Model(&models.PostModel{}).Unscoped().Where("slug = ?", candidate).Count(&count).Error
	return count > 0, err
}

func authorize(p *models.PostModel, actorID, actorRole string) error {
	if p.AuthorID != actorID && actorRole != models.RoleAdmin {
		return errs.Forbidden("only the author or an admin can modify this post")
	}
	return nil
}

func authorColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "role")
}

func validateTitle(title string) error {
	if title == "" {
		return errs.Validation("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return errs.Validation("title", "must be at most 100 characters")
	}
	return nil
}

func validateContent(content string) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minContentLen {
		return errs.Validation("content", "must be at least 10 characters")
	}
	return nil
}

func validateExcerpt(excerpt string) error {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return errs.Validation("excerpt", "must be at most 300 characters")
	}
	return nil
}

func normalizeStatus(status, fallback string) (string, error) {
	st := strings.ToLower(strings.TrimSpace(status))
	if st == "" {
		if fallback != "" {
			return fallback, nil
		}
		return "", errs.Validation("status", "must be draft or published")
	}
	if st != models.PostStatusDraft && st != models.PostStatusPublished {
		return "", errs.Validation("status", "must be draft or published")
	}
	return st, nil
}

// splitTags accepts repeated form values and comma-separated lists.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
