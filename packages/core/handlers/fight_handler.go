package handlers

import (
	"net/http"
	"strconv"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type FightHandler struct {
	fightService *services.FightService
}

func NewFightHandler(fightService *services.FightService) *FightHandler {
	return &FightHandler{
		fightService: fightService,
	}
}

// GetFights lists every fight
// @Summary List fights
// @Description Get all fights ordered by expected start time
// @Tags fights
// @Produce json
// @Success 200 {array} models.Fight
// @Failure 500 {object} map[string]string
// @Router /fights [get]
func (h *FightHandler) GetFights(c *gin.Context) {
	fights, err := h.fightService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fights)
}

// @Summary Get ongoing fight
// @Description Get the fight currently in progress, or null
// @Tags fights
// @Produce json
// @Success 200 {object} models.Fight
// @Router /fights/ongoing [get]
func (h *FightHandler) GetOngoing(c *gin.Context) {
	fight, err := h.fightService.Ongoing(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Get ready fight
// @Description Get the fight that should be called next, or null
// @Tags fights
// @Produce json
// @Success 200 {object} models.Fight
// @Router /fights/ready [get]
func (h *FightHandler) GetReady(c *gin.Context) {
	fight, err := h.fightService.Ready(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Get upcoming fights
// @Description Get fights that have not completed, by fight number
// @Tags fights
// @Produce json
// @Param limit query int false "Number of fights (default: 5, max: 100)"
// @Success 200 {array} models.Fight
// @Failure 400 {object} map[string]string
// @Router /fights/next [get]
func (h *FightHandler) GetNext(c *gin.Context) {
	limit, ok := parseLimit(c, 5)
	if !ok {
		return
	}
	fights, err := h.fightService.Next(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fights)
}

// @Summary Get past fights
// @Description Get completed fights, most recent first
// @Tags fights
// @Produce json
// @Param limit query int false "Number of fights (default: 10, max: 100)"
// @Success 200 {array} models.Fight
// @Failure 400 {object} map[string]string
// @Router /fights/past [get]
func (h *FightHandler) GetPast(c *gin.Context) {
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}
	fights, err := h.fightService.Past(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fights)
}

// GetStatus returns the derived board with per-fight edit and reorder flags
// @Summary Get fight board
// @Description Ongoing, ready and next available fights plus can_edit / can_reorder for every fight
// @Tags fights
// @Produce json
// @Success 200 {object} models.Board
// @Router /fights/status [get]
func (h *FightHandler) GetStatus(c *gin.Context) {
	board, err := h.fightService.Board(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// @Summary Add a fight
// @Description Insert a fight at the given position (default: end of the card)
// @Tags fights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param fight body models.CreateFightRequest true "Fight data"
// @Success 201 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/add [post]
func (h *FightHandler) AddFight(c *gin.Context) {
	var req models.CreateFightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fight, err := h.fightService.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fight)
}

// @Summary Update a fight
// @Description Partially update a fight that has not been called yet
// @Tags fights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Fight ID"
// @Param fight body models.UpdateFightRequest true "Fields to update"
// @Success 200 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id} [patch]
func (h *FightHandler) UpdateFight(c *gin.Context) {
	var req models.UpdateFightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fight, err := h.fightService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Change fight number
// @Description Move a fight to a new position; returns the whole card by fight number
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Param number path int true "New fight number"
// @Success 200 {array} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id}/number/{number} [patch]
func (h *FightHandler) ChangeNumber(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fight number"})
		return
	}

	fights, err := h.fightService.ChangeNumber(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fights)
}

// @Summary Start a fight
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id}/start [post]
func (h *FightHandler) StartFight(c *gin.Context) {
	fight, err := h.fightService.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary End a fight
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /fights/{id}/end [post]
func (h *FightHandler) EndFight(c *gin.Context) {
	fight, err := h.fightService.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Cancel a fight
// @Description Mark a fight as completed without a result
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /fights/{id}/cancel [post]
func (h *FightHandler) CancelFight(c *gin.Context) {
	fight, err := h.fightService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Reset a fight
// @Description Put a fight back in the not-started state
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.Fight
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id}/reset [post]
func (h *FightHandler) ResetFight(c *gin.Context) {
	fight, err := h.fightService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fight)
}

// @Summary Delete a fight
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fight ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /fights/{id} [delete]
func (h *FightHandler) DeleteFight(c *gin.Context) {
	if err := h.fightService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Fight deleted"})
}

// @Summary Clear all fights
// @Tags fights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /fights [delete]
func (h *FightHandler) ClearFights(c *gin.Context) {
	count, err := h.fightService.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Deleted " + strconv.FormatInt(count, 10) + " fights"})
}

// @Summary Set start time
// @Description Retime every fight that has not started from HH:MM[:SS] today
// @Tags fights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.StartTimeRequest true "Start time"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} map[string]string
// @Router /fights/start-time [post]
func (h *FightHandler) SetStartTime(c *gin.Context) {
	var req models.StartTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.fightService.SetStartTime(c.Request.Context(), req.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusOK, models.MessageResponse{Message: "No fights to update"})
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Updated start times for " + strconv.Itoa(count) + " fights"})
}
