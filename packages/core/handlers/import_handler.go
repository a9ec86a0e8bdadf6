package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"fight-manager-api/packages/core/export"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportHandler struct {
	importService *services.ImportService
	fightService  *services.FightService
	location      *time.Location
}

func NewImportHandler(importService *services.ImportService, fightService *services.FightService, location *time.Location) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		fightService:  fightService,
		location:      location,
	}
}

// ImportFights replaces the not-started part of the card with a CSV upload
// @Summary Import fights from CSV
// @Description Columns: fighter_a, fighter_a_club, fighter_b, fighter_b_club, weight_class and duration or round_duration/nb_rounds/rest_time; optional fight_type
// @Tags fights
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} map[string]string
// @Router /fights/import [post]
func (h *ImportHandler) ImportFights(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required in the 'file' field"})
		return
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportCSV(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Export the schedule
// @Description Download the card as an Excel workbook
// @Tags fights
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} map[string]string
// @Router /fights/export [get]
func (h *ImportHandler) ExportFights(c *gin.Context) {
	fights, err := h.fightService.ListByNumber(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	workbook, err := export.Generate(fights, h.location)
	if err != nil {
		respondError(c, err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="fights.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := workbook.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
