package models

import "time"

// Post publication states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// PostModel is a blog post.
type PostModel struct {
	Base
	Title         string         `json:"title"         gorm:"not null;size:100"`
	Slug          string         `json:"slug"          gorm:"uniqueIndex;not null;size:120"`
	Content       string         `json:"content"       gorm:"type:longtext;not null"`
	Excerpt       string         `json:"excerpt"       gorm:"size:300"`
	Status        string         `json:"status"        gorm:"not null;default:draft;size:16;index"`
	AuthorID      string         `json:"authorId"      gorm:"type:char(36);index;not null"`
	Author        *UserModel     `json:"author,omitempty"   gorm:"foreignKey:AuthorID"`
	CategoryID    *string        `json:"categoryId"    gorm:"type:char(36);index"`
	Category      *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags          []TagModel     `json:"tags"          gorm:"many2many:post_tags;joinForeignKey:PostID;joinReferences:TagID"`
	FeaturedImage string         `json:"featuredImage"`
	Views         int            `json:"views"         gorm:"default:0"`
	PublishedAt   *time.Time     `json:"publishedAt"`

	Comments []CommentModel `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

func (PostModel) TableName() string { return "posts" }

// IsPublished reports whether the post is publicly visible.
func (p PostModel) IsPublished() bool { return p.Status == PostStatusPublished }

// CommentModel is a reader comment on a post.
type CommentModel struct {
	Base
	PostID  string     `json:"postId"  gorm:"type:char(36);index;not null"`
	UserID  string     `json:"userId"  gorm:"type:char(36);index;not null"`
	User    *UserModel `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Content string     `json:"content" gorm:"size:500;not null"`
}

func (CommentModel) TableName() string { return "comments" }

// PostLikeModel records one like per user per post.
type PostLikeModel struct {
	Base
	PostID string `json:"postId" gorm:"type:char(36);not null;uniqueIndex:uniq_post_user"`
	UserID string `json:"userId" gorm:"type:char(36);not null;uniqueIndex:uniq_post_user"`
}

func (PostLikeModel) TableName() string { return "post_likes" }
