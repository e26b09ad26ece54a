package handlers

import (
	"IDMS/middlewares"
	"IDMS/repositories"
	"IDMS/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps service and repository errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		middlewares.HttpError(c, "Invalid input", http.StatusBadRequest, err, validationErr.Err)
	case errors.Is(err, services.ErrInvalidInput):
		middlewares.HttpError(c, "Invalid input", http.StatusBadRequest, err, nil)
	case errors.Is(err, repositories.ErrNotFound):
		middlewares.HttpError(c, "Resource not found", http.StatusNotFound, err, nil)
	case errors.Is(err, repositories.ErrDuplicate):
		middlewares.HttpError(c, "Resource already exists", http.StatusConflict, err, nil)
	case errors.Is(err, repositories.ErrProtected):
		middlewares.HttpError(c, "Resource is still referenced", http.StatusConflict, err, nil)
	case errors.Is(err, services.ErrForbidden):
		middlewares.HttpError(c, "Forbidden", http.StatusForbidden, err, nil)
	default:
		middlewares.HttpError(c, "Internal server error", http.StatusInternalServerError, err, nil)
	}
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err, err.Error())
		return false
	}
	return true
}

// uintParam parses a numeric path parameter, answering 400 when it is not one.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		middlewares.HttpError(c, "Invalid ID", http.StatusBadRequest, err, nil)
		return 0, false
	}
	return uint(id), true
}
