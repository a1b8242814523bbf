package post

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/middleware"
	"github.com/velora-shop/core/internal/modules/storage"
	"github.com/velora-shop/core/internal/pkg/pagination"
	"github.com/velora-shop/core/internal/pkg/response"
	"github.com/velora-shop/core/internal/repository"
)

const defaultListLimit = 10

// Handler exposes the blog post endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/posts")
	g.GET("", h.list)
	g.GET("/:slug", h.get)
	g.POST("", authMW, adminMW, h.create)
	g.PUT("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.delete)
	g.POST("/:id/comments", authMW, h.addComment)
	g.POST("/:id/like", authMW, h.toggleLike)
}

func (h *Handler) list(c *gin.Context) {
	f := repository.PostFilter{
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Sort:         c.Query("sort"),
	}

	posts, p, err := h.svc.List(pagination.FromContext(c, defaultListLimit), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, posts, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := readFormFile(c, "image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := readFormFile(c, "image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"),
		middleware.CurrentUserID(c), middleware.CurrentRole(c), &dto, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"),
		middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, "post deleted")
}

func (h *Handler) addComment(c *gin.Context) {
	var dto CommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cm, err := h.svc.AddComment(c.Param("id"), middleware.CurrentUserID(c), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cm)
}

func (h *Handler) toggleLike(c *gin.Context) {
	likes, isLiked, err := h.svc.ToggleLike(c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, likeResult{Likes: likes, IsLiked: isLiked})
}

// readFormFile loads an optional multipart file into memory.
// Returns (nil, nil) when the field is absent or the body is not multipart.
func readFormFile(c *gin.Context, field string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return storage.LoadFile(fh)
}
