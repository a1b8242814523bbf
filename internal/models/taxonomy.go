package models

// CategoryModel groups posts and products.
type CategoryModel struct {
	Base
	Name        string `json:"name"        gorm:"uniqueIndex;not null;size:50"`
	Slug        string `json:"slug"        gorm:"uniqueIndex;not null;size:64"`
	Description string `json:"description"`
}

func (CategoryModel) TableName() string { return "categories" }

// TagModel is a free-form label attached to posts and products.
// Tags are created lazily from content payloads.
type TagModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null;size:50"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null;size:64"`
}

func (TagModel) TableName() string { return "tags" }
