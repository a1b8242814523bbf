package category

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/pkg/response"
)

// Handler exposes the category and tag endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/categories")
	g.GET("", h.list)
	g.POST("", authMW, adminMW, h.create)
	g.PUT("/:id", authMW, adminMW, h.update)
	g.DELETE("/:id", authMW, adminMW, h.delete)

	rg.GET("/tags", h.listTags)
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cats)
}

func (h *Handler) listTags(c *gin.Context) {
	tags, err := h.svc.ListTags()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, tags)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cat)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, "category deleted")
}
