package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAnotherFightActive),
		errors.Is(err, services.ErrFightLocked),
		errors.Is(err, services.ErrPositionLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrFightAlreadyStart),
		errors.Is(err, services.ErrFightCompleted),
		errors.Is(err, services.ErrFightNotStarted),
		errors.Is(err, services.ErrFightAlreadyEnded),
		errors.Is(err, services.ErrInvalidNumber),
		errors.Is(err, services.ErrInvalidFight),
		errors.Is(err, services.ErrInvalidStartTime),
		errors.Is(err, services.ErrInvalidImport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseLimit reads the limit query parameter, capped at 100.
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return 0, false
	}
	if limit > 100 {
		limit = 100
	}
	return limit, true
}
