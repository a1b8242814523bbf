package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/middleware"
	"github.com/velora-shop/core/internal/modules/content/category"
	"github.com/velora-shop/core/internal/modules/content/post"
	"github.com/velora-shop/core/internal/modules/shop/product"
	"github.com/velora-shop/core/internal/modules/storage"
	"github.com/velora-shop/core/internal/modules/syndication/feed"
	"github.com/velora-shop/core/internal/modules/user"
	"github.com/velora-shop/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db

	authMW := middleware.Auth(a.signer)
	optionalAuthMW := middleware.OptionalAuth(a.signer)
	adminMW := middleware.RequireAdmin()

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			response.Fail(c, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		response.OKMsg(c, "ok")
	})

	gateway := storage.New(a.cfg.Storage, a.logger)

	// Root-level endpoints
	feed.RegisterRoutes(r, db, feed.Site{
		Title:       a.cfg.Site.Title,
		Description: a.cfg.Site.Description,
		URL:         a.cfg.Site.URL,
	})

	// Versioned API. Optional auth runs first so the rate limiter can skip
	// authenticated callers.
	api := r.Group(apiPrefix)
	api.Use(optionalAuthMW)
	if a.redis != nil {
		api.Use(middleware.RateLimit(a.redis))
	}

	user.NewHandler(user.NewService(db, a.signer)).RegisterRoutes(api, authMW)
	category.NewHandler(category.NewService(db)).RegisterRoutes(api, authMW, adminMW)
	post.NewHandler(post.NewService(db, gateway, a.cfg.Storage.BlogBucket)).
		RegisterRoutes(api, authMW, adminMW)
	product.NewHandler(product.NewService(db, gateway, a.cfg.Storage.ProductBucket)).
		RegisterRoutes(api, authMW, adminMW)
}
