package product

// CreateProductDTO carries the fields for creating a product. Requests arrive
// as multipart form data (with up to 10 `images` file parts) or plain JSON.
// Attributes and Variants are JSON-encoded strings in multipart bodies.
type CreateProductDTO struct {
	Name            string   `form:"name"            json:"name"            binding:"required"`
	Description     string   `form:"description"     json:"description"     binding:"required"`
	Price           *float64 `form:"price"           json:"price"           binding:"required"`
	OriginalPrice   *float64 `form:"originalPrice"   json:"originalPrice"`
	Brand           string   `form:"brand"           json:"brand"`
	CategoryID      *string  `form:"categoryId"      json:"categoryId"`
	Tags            []string `form:"tags"            json:"tags"`
	Quantity        *int     `form:"quantity"        json:"quantity"`
	SKU             *string  `form:"sku"             json:"sku"`
	TrackInventory  *bool    `form:"trackInventory"  json:"trackInventory"`
	Attributes      string   `form:"attributes"      json:"attributes"`
	Variants        string   `form:"variants"        json:"variants"`
	MetaTitle       string   `form:"metaTitle"       json:"metaTitle"`
	MetaDescription string   `form:"metaDescription" json:"metaDescription"`
	Status          string   `form:"status"          json:"status"`
	Featured        *bool    `form:"featured"        json:"featured"`
}

// UpdateProductDTO carries partial updates; nil fields are left untouched.
// New image files are appended to the existing set.
type UpdateProductDTO struct {
	Name            *string  `form:"name"            json:"name"`
	Description     *string  `form:"description"     json:"description"`
	Price           *float64 `form:"price"           json:"price"`
	OriginalPrice   *float64 `form:"originalPrice"   json:"originalPrice"`
	Brand           *string  `form:"brand"           json:"brand"`
	CategoryID      *string  `form:"categoryId"      json:"categoryId"`
	Tags            []string `form:"tags"            json:"tags"`
	Quantity        *int     `form:"quantity"        json:"quantity"`
	SKU             *string  `form:"sku"             json:"sku"`
	TrackInventory  *bool    `form:"trackInventory"  json:"trackInventory"`
	Attributes      *string  `form:"attributes"      json:"attributes"`
	Variants        *string  `form:"variants"        json:"variants"`
	MetaTitle       *string  `form:"metaTitle"       json:"metaTitle"`
	MetaDescription *string  `form:"metaDescription" json:"metaDescription"`
	Status          *string  `form:"status"          json:"status"`
	Featured        *bool    `form:"featured"        json:"featured"`
}

type ReviewDTO struct {
	Rating  int    `json:"rating"  binding:"required"`
	Comment string `json:"comment"`
}
