package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inklog/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps the normalized error kinds onto HTTP statuses.
// Anything that is not a *service.PostError should not happen, but is
// answered as a generic failure rather than dropped.
func respondServiceError(c *gin.Context, err error) {
	var pe *service.PostError
	if !errors.As(err, &pe) {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch pe.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindPermission:
		status = http.StatusForbidden
	}

	payload := gin.H{"error": pe.Message}
	if pe.Code != "" {
		payload["code"] = pe.Code
	}
	c.JSON(status, payload)
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
