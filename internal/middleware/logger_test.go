package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerRecordsQueryAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/posts", func(c *gin.Context) {
		c.Set(ContextKeyUserID, "u1")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/posts?sort=popular", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, "/posts", fields["path"])
	assert.Equal(t, "sort=popular", fields["query"])
	assert.Equal(t, "u1", fields["user"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestLoggerOmitsEmptyQueryAndAnonymousUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "query")
	assert.NotContains(t, fields, "user")
}
