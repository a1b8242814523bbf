package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/middleware"
	"github.com/velora-shop/core/internal/pkg/response"
)

// Handler exposes the auth endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/me", authMW, h.me)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	u, token, err := h.svc.Register(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, authResponse{User: toUserResponse(u), Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	u, token, err := h.svc.Login(&dto)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, authResponse{User: toUserResponse(u), Token: token})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toUserResponse(u))
}
