// Package repository builds the list queries shared by public and admin
// listings. Filters compose onto a *gorm.DB; public scopes pin visibility
// before any caller-supplied filter is applied.
package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/velora-shop/core/internal/models"
)

// Sort keys accepted by the list endpoints.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPopular   = "popular"
	SortRating    = "rating"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// PostFilter narrows a post listing.
type PostFilter struct {
	Search       string
	CategorySlug string
	TagSlug      string
	Sort         string
}

// Apply composes the filter onto db. db must already select from posts.
func (f PostFilter) Apply(db *gorm.DB) *gorm.DB {
	if s := likeTerm(f.Search); s != "" {
		db = db.Where(
			"(LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ? OR LOWER(posts.excerpt) LIKE ?)",
			s, s, s,
		)
	}
	if f.CategorySlug != "" {
		db = db.Where(
			"posts.category_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.CategoryModel{}).Select("id").Where("slug = ?", f.CategorySlug),
		)
	}
	if f.TagSlug != "" {
		db = db.Where(
			"posts.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("post_tags").Select("post_tags.post_id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.slug = ?", f.TagSlug),
		)
	}

	switch f.Sort {
	case SortOldest:
		db = db.Order("posts.created_at ASC")
	case SortPopular:
		db = db.Order("posts.views DESC").Order("posts.created_at DESC")
	case SortName:
		db = db.Order("posts.title ASC")
	default:
		db = db.Order("posts.created_at DESC")
	}
	return db
}

// PublishedPosts scopes db to publicly visible posts.
func PublishedPosts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.PostModel{}).Where("posts.status = ?", models.PostStatusPublished)
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search       string
	CategorySlug string
	TagSlug      string
	MinPrice     *float64
	MaxPrice     *float64
	Featured     *bool
	MinRating    *float64
	Sort         string
}

// Apply composes the filter onto db. db must already select from products.
func (f ProductFilter) Apply(db *gorm.DB) *gorm.DB {
	if s := likeTerm(f.Search); s != "" {
		db = db.Where(
			"(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.brand) LIKE ?)",
			s, s, s,
		)
	}
	if f.CategorySlug != "" {
		db = db.Where(
			"products.category_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.CategoryModel{}).Select("id").Where("slug = ?", f.CategorySlug),
		)
	}
	if f.TagSlug != "" {
		db = db.Where(
			"products.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("product_tags").Select("product_tags.product_id").
				Joins("JOIN tags ON tags.id = product_tags.tag_id").
				Where("tags.slug = ?", f.TagSlug),
		)
	}
	if f.MinPrice != nil {
		db = db.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.Featured != nil {
		db = db.Where("products.featured = ?", *f.Featured)
	}
	if f.MinRating != nil {
		db = db.Where("products.average_rating >= ?", *f.MinRating)
	}

	switch f.Sort {
	case SortOldest:
		db = db.Order("products.created_at ASC")
	case SortRating:
		db = db.Order("products.average_rating DESC").Order("products.review_count DESC")
	case SortPriceAsc:
		db = db.Order("products.price ASC")
	case SortPriceDesc:
		db = db.Order("products.price DESC")
	case SortName:
		db = db.Order("products.name ASC")
	default:
		db = db.Order("products.created_at DESC")
	}
	return db
}

// ActiveProducts scopes db to publicly visible products.
func ActiveProducts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.ProductModel{}).Where("products.status = ?", models.ProductStatusActive)
}

func likeTerm(search string) string {
	s := strings.TrimSpace(strings.ToLower(search))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return "%" + s + "%"
}
