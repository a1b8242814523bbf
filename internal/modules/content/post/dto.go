package post

// CreatePostDTO carries the fields for creating a post. Requests arrive as
// multipart form data (with an optional `image` file part) or plain JSON.
type CreatePostDTO struct {
	Title      string   `form:"title"      json:"title"      binding:"required"`
	Content    string   `form:"content"    json:"content"    binding:"required"`
	Excerpt    string   `form:"excerpt"    json:"excerpt"`
	Status     string   `form:"status"     json:"status"`
	CategoryID *string  `form:"categoryId" json:"categoryId"`
	Tags       []string `form:"tags"       json:"tags"`
}

// UpdatePostDTO carries partial updates; nil fields are left untouched.
type UpdatePostDTO struct {
	Title      *string  `form:"title"      json:"title"`
	Content    *string  `form:"content"    json:"content"`
	Excerpt    *string  `form:"excerpt"    json:"excerpt"`
	Status     *string  `form:"status"     json:"status"`
	CategoryID *string  `form:"categoryId" json:"categoryId"`
	Tags       []string `form:"tags"       json:"tags"`
}

type CommentDTO struct {
	Content string `json:"content" binding:"required,max=500"`
}

// likeResult is the toggle-like response payload.
type likeResult struct {
	Likes   int64 `json:"likes"`
	IsLiked bool  `json:"isLiked"`
}
