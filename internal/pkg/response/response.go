package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/core/internal/pkg/errs"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// envelope is the uniform response shape.
type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// OK sends a 200 response.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// OKMsg sends a 200 response with a message and no data.
func OKMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paged sends a paginated list response.
func Paged(c *gin.Context, data interface{}, p Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

// Fail sends an error response with an explicit status.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: message})
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

// Error maps a service error to its HTTP status and sends it.
func Error(c *gin.Context, err error) {
	var (
		validation *errs.ValidationError
		notFound   *errs.NotFoundError
		duplicate  *errs.DuplicateError
		forbidden  *errs.ForbiddenError
		upload     *errs.UploadError
	)
	switch {
	case errors.As(err, &validation):
		Fail(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &upload):
		Fail(c, http.StatusBadRequest, upload.Error())
	case errors.As(err, &forbidden):
		Fail(c, http.StatusForbidden, forbidden.Error())
	case errors.As(err, &notFound):
		Fail(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &duplicate):
		Fail(c, http.StatusConflict, duplicate.Error())
	default:
		Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
