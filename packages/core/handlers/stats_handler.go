package handlers

import (
	"net/http"

	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats summarises the fight card
// @Summary Get card statistics
// @Description Progress counts, fights per discipline, clubs involved and estimated end of the card
// @Tags fights
// @Produce json
// @Success 200 {object} models.CardStats
// @Failure 500 {object} map[string]string
// @Router /fights/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
