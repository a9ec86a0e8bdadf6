package handlers

import (
	"net/http"
	"sort"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the read-only viewer from the cached board.
type PublicHandler struct {
	fightService *services.FightService
}

func NewPublicHandler(fightService *services.FightService) *PublicHandler {
	return &PublicHandler{
		fightService: fightService,
	}
}

func (h *PublicHandler) board(c *gin.Context) (*models.Board, bool) {
	board, err := h.fightService.PublicBoard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return board, true
}

// @Summary Public board
// @Tags public
// @Produce json
// @Success 200 {object} models.Board
// @Router /public/board [get]
func (h *PublicHandler) GetBoard(c *gin.Context) {
	if board, ok := h.board(c); ok {
		c.JSON(http.StatusOK, board)
	}
}

// @Summary Public ongoing fight
// @Tags public
// @Produce json
// @Success 200 {object} models.Fight
// @Router /public/ongoing [get]
func (h *PublicHandler) GetOngoing(c *gin.Context) {
	if board, ok := h.board(c); ok {
		c.JSON(http.StatusOK, board.Ongoing)
	}
}

// @Summary Public ready fight
// @Tags public
// @Produce json
// @Success 200 {object} models.Fight
// @Router /public/ready [get]
func (h *PublicHandler) GetReady(c *gin.Context) {
	if board, ok := h.board(c); ok {
		c.JSON(http.StatusOK, board.Ready)
	}
}

// @Summary Public upcoming fights
// @Tags public
// @Produce json
// @Param limit query int false "Number of fights (default: 5, max: 100)"
// @Success 200 {array} models.Fight
// @Router /public/next [get]
func (h *PublicHandler) GetNext(c *gin.Context) {
	limit, ok := parseLimit(c, 5)
	if !ok {
		return
	}
	board, ok := h.board(c)
	if !ok {
		return
	}

	fights := make([]models.Fight, 0, limit)
	for _, state := range board.Fights {
		if state.Fight.IsCompleted {
			continue
		}
		fights = append(fights, state.Fight)
		if len(fights) == limit {
			break
		}
	}
	c.JSON(http.StatusOK, fights)
}

// @Summary Public past fights
// @Tags public
// @Produce json
// @Param limit query int false "Number of fights (default: 10, max: 100)"
// @Success 200 {array} models.Fight
// @Router /public/past [get]
func (h *PublicHandler) GetPast(c *gin.Context) {
	limit, ok := parseLimit(c, 10)
	if !ok {
		return
	}
	board, ok := h.board(c)
	if !ok {
		return
	}

	var fights []models.Fight
	for _, state := range board.Fights {
		if state.Fight.IsCompleted {
			fights = append(fights, state.Fight)
		}
	}
	sort.Slice(fights, func(i, j int) bool {
		return fights[i].FightNumber > fights[j].FightNumber
	})
	if len(fights) > limit {
		fights = fights[:limit]
	}
	if fights == nil {
		fights = []models.Fight{}
	}
	c.JSON(http.StatusOK, fights)
}
