package product

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
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
	maxNameLen        = 100
	minDescriptionLen = 10
	maxDescriptionLen = 1000
	maxImagesPerBatch = 10
	maxMetaTitle      = 60
	maxMetaDesc       = 160
	maxReviewComment  = 500
	defaultFeatured   = 8
)

type Service struct {
	db      *gorm.DB
	gateway *storage.Gateway
	bucket  string
}

func NewService(db *gorm.DB, gateway *storage.Gateway, bucket string) *Service {
	return &Service{db: db, gateway: gateway, bucket: bucket}
}

// List returns active products matching the filter.
func (s *Service) List(q pagination.Query, f repository.ProductFilter) ([]models.ProductModel, response.Pagination, error) {
	var products []models.ProductModel
	query := f.Apply(repository.ActiveProducts(s.db)).
		Preload("Category").Preload("Tags")
	p, err := pagination.Paginate(query, q, &products)
	return products, p, err
}

// ListFeatured returns up to limit featured active products, newest first.
func (s *Service) ListFeatured(limit int) ([]models.ProductModel, error) {
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = defaultFeatured
	}
	var products []models.ProductModel
	err := repository.ActiveProducts(s.db).
		Where("products.featured = ?", true).
		Order("products.created_at DESC").
		Limit(limit).
		Preload("Category").Preload("Tags").
		Find(&products).Error
	return products, err
}

// GetBySlug fetches an active product with its reviews.
func (s *Service) GetBySlug(sl string) (*models.ProductModel, error) {
	var p models.ProductModel
	err := s.db.Where("slug = ? AND status = ?", sl, models.ProductStatusActive).
		Preload("Category").Preload("Tags").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at DESC")
		}).
		Preload("Reviews.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

// Create validates the payload, uploads all images, and persists the product.
// The first upload failure aborts the whole operation and best-effort deletes
// the objects already stored.
func (s *Service) Create(ctx context.Context, dto *CreateProductDTO, images []*storage.File) (*models.ProductModel, error) {
	name := strings.TrimSpace(dto.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(dto.Description); err != nil {
		return nil, err
	}
	if dto.Price == nil || *dto.Price < 0 {
		return nil, errs.Validation("price", "must be a non-negative number")
	}
	if dto.Quantity != nil && *dto.Quantity < 0 {
		return nil, errs.Validation("quantity", "must be a non-negative integer")
	}
	if err := validateMetaTitle(dto.MetaTitle); err != nil {
		return nil, err
	}
	if err := validateMetaDescription(dto.MetaDescription); err != nil {
		return nil, err
	}
	if len(images) > maxImagesPerBatch {
		return nil, errs.Validation("images", "at most 10 images per request")
	}
	status, err := normalizeStatus(dto.Status, models.ProductStatusActive)
	if err != nil {
		return nil, err
	}
	attributes, err := parseAttributes(dto.Attributes)
	if err != nil {
		return nil, err
	}
	variants, err := parseVariants(dto.Variants)
	if err != nil {
		return nil, err
	}

	if dto.SKU != nil && strings.TrimSpace(*dto.SKU) != "" {
		taken, err := s.skuTaken(strings.TrimSpace(*dto.SKU), "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errs.Duplicate("product", "sku already in use")
		}
	}

	categoryID, err := category.ResolveCategoryID(s.db, dto.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := category.ResolveTags(s.db, splitTags(dto.Tags))
	if err != nil {
		return nil, err
	}

	sl, err := slug.Unique(name, s.slugTaken)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploadAll(ctx, images)
	if err != nil {
		return nil, err
	}

	p := models.ProductModel{
		Name:          name,
		Slug:          sl,
		Description:   strings.TrimSpace(dto.Description),
		Price:         *dto.Price,
		OriginalPrice: dto.OriginalPrice,
		Brand:         strings.TrimSpace(dto.Brand),
		CategoryID:    categoryID,
		Tags:          tags,
		Images:        stored,
		Attributes:    attributes,
		Variants:      variants,
		SEO: models.SEO{
			MetaTitle:       strings.TrimSpace(dto.MetaTitle),
			MetaDescription: strings.TrimSpace(dto.MetaDescription),
		},
		Status: status,
	}
	p.Inventory.TrackInventory = true
	if dto.Quantity != nil {
		p.Inventory.Quantity = *dto.Quantity
	}
	if dto.SKU != nil && strings.TrimSpace(*dto.SKU) != "" {
		sku := strings.TrimSpace(*dto.SKU)
		p.Inventory.SKU = &sku
	}
	if dto.TrackInventory != nil {
		p.Inventory.TrackInventory = *dto.TrackInventory
	}
	if dto.Featured != nil {
		p.Featured = *dto.Featured
	}

	if err := s.db.Create(&p).Error; err != nil {
		s.cleanupImages(ctx, stored)
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update. New images are appended to the existing
// set; they are uploaded before the row is written.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateProductDTO, images []*storage.File) (*models.ProductModel, error) {
	p, err := s.getByID(id)
	if err != nil {
		return nil, err
	}
	if len(images) > maxImagesPerBatch {
		return nil, errs.Validation("images", "at most 10 images per request")
	}

	updates := map[string]interface{}{}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		if name != p.Name {
			sl, err := slug.Unique(name, s.slugTaken)
			if err != nil {
				return nil, err
			}
			updates["name"] = name
			updates["slug"] = sl
			p.Name = name
			p.Slug = sl
		}
	}
	if dto.Description != nil {
		if err := validateDescription(*dto.Description); err != nil {
			return nil, err
		}
		updates["description"] = strings.TrimSpace(*dto.Description)
		p.Description = updates["description"].(string)
	}
	if dto.Price != nil {
		if *dto.Price < 0 {
			return nil, errs.Validation("price", "must be a non-negative number")
		}
		updates["price"] = *dto.Price
		p.Price = *dto.Price
	}
	if dto.OriginalPrice != nil {
		updates["original_price"] = *dto.OriginalPrice
		p.OriginalPrice = dto.OriginalPrice
	}
	if dto.Brand != nil {
		updates["brand"] = strings.TrimSpace(*dto.Brand)
		p.Brand = updates["brand"].(string)
	}
	if dto.CategoryID != nil {
		categoryID, err := category.ResolveCategoryID(s.db, dto.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
		p.CategoryID = categoryID
	}
	if dto.Quantity != nil {
		if *dto.Quantity < 0 {
			return nil, errs.Validation("quantity", "must be a non-negative integer")
		}
		updates["inventory_quantity"] = *dto.Quantity
		p.Inventory.Quantity = *dto.Quantity
	}
	if dto.SKU != nil {
		sku := strings.TrimSpace(*dto.SKU)
		if sku == "" {
			updates["inventory_sku"] = nil
			p.Inventory.SKU = nil
		} else {
			taken, err := s.skuTaken(sku, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, errs.Duplicate("product", "sku already in use")
			}
			updates["inventory_sku"] = sku
			p.Inventory.SKU = &sku
		}
	}
	if dto.TrackInventory != nil {
		updates["inventory_track_inventory"] = *dto.TrackInventory
		p.Inventory.TrackInventory = *dto.TrackInventory
	}
	if dto.Attributes != nil {
		attributes, err := parseAttributes(*dto.Attributes)
		if err != nil {
			return nil, err
		}
		p.Attributes = attributes
		updates["attributes"] = p.Attributes
	}
	if dto.Variants != nil {
		variants, err := parseVariants(*dto.Variants)
		if err != nil {
			return nil, err
		}
		p.Variants = variants
		updates["variants"] = p.Variants
	}
	if dto.MetaTitle != nil {
		if err := validateMetaTitle(*dto.MetaTitle); err != nil {
			return nil, err
		}
		updates["seo_meta_title"] = strings.TrimSpace(*dto.MetaTitle)
		p.SEO.MetaTitle = updates["seo_meta_title"].(string)
	}
	if dto.MetaDescription != nil {
		if err := validateMetaDescription(*dto.MetaDescription); err != nil {
			return nil, err
		}
		updates["seo_meta_description"] = strings.TrimSpace(*dto.MetaDescription)
		p.SEO.MetaDescription = updates["seo_meta_description"].(string)
	}
	if dto.Status != nil {
		status, err := normalizeStatus(*dto.Status, "")
		if err != nil {
			return nil, err
		}
		updates["status"] = status
		p.Status = status
	}
	if dto.Featured != nil {
		updates["featured"] = *dto.Featured
		p.Featured = *dto.Featured
	}

	if len(images) > 0 {
		stored, err := s.uploadAll(ctx, images)
		if err != nil {
			return nil, err
		}
		p.Images = append(p.Images, stored...)
		updates["images"] = p.Images
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
	return p, nil
}

// Delete removes a product with its reviews and best-effort deletes every
// stored image.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.getByID(id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ReviewModel{}).Error; err != nil {
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

	s.cleanupImages(ctx, p.Images)
	return nil
}

// DeleteImage detaches one image from the product and deletes its object.
func (s *Service) DeleteImage(ctx context.Context, productID, imageID string) (*models.ProductModel, error) {
	p, err := s.getByID(productID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, img := range p.Images {
		if img.ID == imageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errs.NotFound("image")
	}

	removed := p.Images[idx]
	p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
	if err := s.db.Model(p).Update("images", p.Images).Error; err != nil {
		return nil, err
	}

	s.gateway.Cleanup(ctx, s.bucket, removed.URL)
	return p, nil
}

// AddReview records a review and synchronously recomputes the product's
// aggregates in the same transaction. Authenticated users may review a
// product once; anonymous reviews are exempt.
func (s *Service) AddReview(productID string, userID *string, dto *ReviewDTO) (*models.ReviewModel, error) {
	if dto.Rating < 1 || dto.Rating > 5 {
		return nil, errs.Validation("rating", "must be an integer between 1 and 5")
	}
	comment := strings.TrimSpace(dto.Comment)
	if utf8.RuneCountInString(comment) > maxReviewComment {
		return nil, errs.Validation("comment", "must be at most 500 characters")
	}

	if _, err := s.getByID(productID); err != nil {
		return nil, err
	}

	if userID != nil {
		var count int64
		if err := s.db.Model(&models.ReviewModel{}).
			Where("product_id = ? AND user_id = ?", productID, *userID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errs.Duplicate("review", "you have already reviewed this product")
		}
	}

	review := models.ReviewModel{
		ProductID: productID,
		UserID:    userID,
		Rating:    dto.Rating,
		Comment:   comment,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeAggregates(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// recomputeAggregates derives averageRating and reviewCount from the full
// review set. Concurrent reviews may interleave, but the later transaction
// reads everything and repairs the aggregate.
func recomputeAggregates(tx *gorm.DB, productID string) error {
	var agg struct {
		Count int64
		Avg   float64
	}
	err := tx.Model(&models.ReviewModel{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.ProductModel{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": math.Round(agg.Avg*10) / 10,
			"review_count":   agg.Count,
		}).Error
}

func (s *Service) uploadAll(ctx context.Context, images []*storage.File) ([]models.ProductImage, error) {
	stored := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		obj, err := s.gateway.Upload(ctx, img.Data, img.MIME, s.bucket, img.Name)
		if err != nil {
			s.cleanupImages(ctx, stored)
			return nil, err
		}
		stored = append(stored, models.ProductImage{
			ID:  uuid.New().String(),
			URL: obj.URL,
			Alt: img.Name,
		})
	}
	return stored, nil
}

func (s *Service) cleanupImages(ctx context.Context, images []models.ProductImage) {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	s.gateway.Cleanup(ctx, s.bucket, urls...)
}

func (s *Service) getByID(id string) (*models.ProductModel, error) {
	var p models.ProductModel
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) slugTaken(candidate string) (bool, error) {
	var count int64
	err := s.db.Model(&models.ProductModel{}).Unscoped().Where("slug = ?", candidate).Count(&count).Error
	return count > 0, err
}

func (s *Service) skuTaken(sku, excludeID string) (bool, error) {
	q := s.db.Unscoped().Model(&models.ProductModel{}).Where("inventory_sku = ?", sku)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func validateName(name string) error {
	if name == "" {
		return errs.Validation("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return errs.Validation("name", "must be at most 100 characters")
	}
	return nil
}

func validateDescription(desc string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(desc))
	if n < minDescriptionLen {
		return errs.Validation("description", "must be at least 10 characters")
	}
	if n > maxDescriptionLen {
		return errs.Validation("description", "must be at most 1000 characters")
	}
	return nil
}

func validateMetaTitle(title string) error {
	if utf8.RuneCountInString(title) > maxMetaTitle {
		return errs.Validation("metaTitle", "must be at most 60 characters")
	}
	return nil
}

func validateMetaDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxMetaDesc {
		return errs.Validation("metaDescription", "must be at most 160 characters")
	}
	return nil
}

func normalizeStatus(status, fallback string) (string, error) {
	st := strings.ToLower(strings.TrimSpace(status))
	if st == "" {
		if fallback != "" {
			return fallback, nil
		}
		return "", errs.Validation("status", "must be active, inactive or discontinued")
	}
	switch st {
	case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDiscontinued:
		return st, nil
	}
	return "", errs.Validation("status", "must be active, inactive or discontinued")
}

func parseAttributes(raw string) ([]models.Attribute, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []models.Attribute
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errs.Validation("attributes", "must be a JSON array of {name, value}")
	}
	return out, nil
}

func parseVariants(raw string) ([]models.Variant, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []models.Variant
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, errs.Validation("variants", "must be a JSON array of variants")
	}
	return out, nil
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
