package product

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/middleware"
	"github.com/velora-shop/core/internal/modules/storage"
	"github.com/velora-shop/core/internal/pkg/pagination"
	"github.com/velora-shop/core/internal/pkg/response"
	"github.com/velora-shop/core/internal/repository"
)

const defaultListLimit = 12

// Handler exposes the product catalog endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the product endpoints. Reviews accept anonymous
// callers; identity, when present, comes from the group-level optional auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/products")
	g.GET("", h.list)
	g.GET("/featured", h.listFeatured)
	g.GET("/:slug", h.get)
	g.POST("", authMW, adminMW, h.create)
	g.PUT("/:id", authMW, adminMW, h.update)
	g.DELETE("/:id", authMW, adminMW, h.delete)
	g.DELETE("/:id/images/:imageId", authMW, adminMW, h.deleteImage)
	g.POST("/:id/reviews", h.addReview)
}

func (h *Handler) list(c *gin.Context) {
	f := repository.ProductFilter{
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		MinPrice:     parseFloatQuery(c, "minPrice"),
		MaxPrice:     parseFloatQuery(c, "maxPrice"),
		Featured:     parseBoolQuery(c, "featured"),
		MinRating:    parseFloatQuery(c, "minRating"),
		Sort:         c.Query("sort"),
	}

	products, p, err := h.svc.List(pagination.FromContext(c, defaultListLimit), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, products, p)
}

func (h *Handler) listFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.svc.ListFeatured(limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, products)
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
	var dto CreateProductDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	images, err := readFormFiles(c, "images")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), &dto, images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProductDTO
	if err := c.ShouldBind(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	images, err := readFormFiles(c, "images")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto, images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, "product deleted")
}

func (h *Handler) deleteImage(c *gin.Context) {
	p, err := h.svc.DeleteImage(c.Request.Context(), c.Param("id"), c.Param("imageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) addReview(c *gin.Context) {
	var dto ReviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var userID *string
	if id := middleware.CurrentUserID(c); id != "" {
		userID = &id
	}

	review, err := h.svc.AddReview(c.Param("id"), userID, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// readFormFiles loads the multipart files under field into memory.
// Returns nil for non-multipart requests.
func readFormFiles(c *gin.Context, field string) ([]*storage.File, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files := make([]*storage.File, 0, len(form.File[field]))
	for _, fh := range form.File[field] {
		f, err := storage.LoadFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func parseFloatQuery(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
