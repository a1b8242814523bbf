package models

// Product catalog states.
const (
	ProductStatusActive       = "active"
	ProductStatusInactive     = "inactive"
	ProductStatusDiscontinued = "discontinued"
)

// ProductImage is a stored image reference embedded in a product.
// ID lets clients address a single image for deletion.
type ProductImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Attribute is a display-only name/value pair (material, color, ...).
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable variation with its own price delta and stock.
type Variant struct {
	Name          string  `json:"name"`
	Value         string  `json:"value"`
	PriceModifier float64 `json:"priceModifier"`
	Inventory     int     `json:"inventory"`
}

// Inventory tracks stock for a product.
type Inventory struct {
	Quantity       int     `json:"quantity"        gorm:"default:0"`
	SKU            *string `json:"sku"             gorm:"uniqueIndex;size:64"`
	TrackInventory bool    `json:"trackInventory"  gorm:"default:true"`
}

// SEO holds search metadata for a product page.
type SEO struct {
	MetaTitle       string `json:"metaTitle"       gorm:"size:60"`
	MetaDescription string `json:"metaDescription" gorm:"size:160"`
}

// ProductModel is a catalog product.
type ProductModel struct {
	Base
	Name          string         `json:"name"          gorm:"not null;size:100"`
	Slug          string         `json:"slug"          gorm:"uniqueIndex;not null;size:120"`
	Description   string         `json:"description"   gorm:"type:text;not null"`
	Price         float64        `json:"price"         gorm:"not null"`
	OriginalPrice *float64       `json:"originalPrice"`
	Brand         string         `json:"brand"         gorm:"size:100"`
	CategoryID    *string        `json:"categoryId"    gorm:"type:char(36);index"`
	Category      *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags          []TagModel     `json:"tags"          gorm:"many2many:product_tags;joinForeignKey:ProductID;joinReferences:TagID"`
	Images        []ProductImage `json:"images"        gorm:"type:json;serializer:json"`
	Inventory     Inventory      `json:"inventory"     gorm:"embedded;embeddedPrefix:inventory_"`
	Attributes    []Attribute    `json:"attributes"    gorm:"type:json;serializer:json"`
	Variants      []Variant      `json:"variants"      gorm:"type:json;serializer:json"`
	SEO           SEO            `json:"seo"           gorm:"embedded;embeddedPrefix:seo_"`
	Status        string         `json:"status"        gorm:"not null;default:active;size:16;index"`
	Featured      bool           `json:"featured"      gorm:"default:false;index"`
	AverageRating float64        `json:"averageRating" gorm:"default:0"`
	ReviewCount   int            `json:"reviewCount"   gorm:"default:0"`

	Reviews []ReviewModel `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}

func (ProductModel) TableName() string { return "products" }

// ReviewModel is a product review. UserID is nil for anonymous reviews,
// which are exempt from the one-review-per-user rule.
type ReviewModel struct {
	Base
	ProductID string     `json:"productId" gorm:"type:char(36);not null;uniqueIndex:uniq_product_user"`
	UserID    *string    `json:"userId"    gorm:"type:char(36);uniqueIndex:uniq_product_user"`
	User      *UserModel `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Rating    int        `json:"rating"    gorm:"not null"`
	Comment   string     `json:"comment"   gorm:"size:500"`
}

func (ReviewModel) TableName() string { return "reviews" }
