package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/schedule"

	"gorm.io/gorm"
)

var requiredColumns = []string{
	"fighter_a",
	"fighter_a_club",
	"fighter_b",
	"fighter_b_club",
	"weight_class",
}

var roundColumns = []string{"round_duration", "nb_rounds", "rest_time"}

// ImportService replaces the pending part of the card with fights read from
// a CSV file.
type ImportService struct {
	fights *FightService
}

func NewImportService(fights *FightService) *ImportService {
	return &ImportService{
		fights: fights,
	}
}

// ImportCSV removes every fight that has not started, keeps the rest numbered
// 1..k and appends the valid rows as k+1.. in file order. Invalid rows are
// skipped and reported.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidImport)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	_, hasDuration := colIdx["duration"]
	hasRounds := true
	for _, col := range roundColumns {
		if _, ok := colIdx[col]; !ok {
			hasRounds = false
		}
	}
	if !hasDuration && !hasRounds {
		missing = append(missing, "duration or round_duration/nb_rounds/rest_time")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns: %s", ErrInvalidImport, strings.Join(missing, ", "))
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &models.ImportResult{}
	var parsed []models.Fight
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, models.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if isBlank(row) {
			continue
		}

		fight, err := s.parseRow(row, getCol)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, models.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		parsed = append(parsed, fight)
	}

	s.fights.mu.Lock()
	defer s.fights.mu.Unlock()

	err = s.fights.withTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.fights.load(tx)
		if err != nil {
			return err
		}

		var kept []models.Fight
		for _, f := range existing {
			if f.IsPending() {
				continue
			}
			kept = append(kept, f)
		}
		if err := tx.Where("is_completed = ? AND actual_start IS NULL", false).Delete(&models.Fight{}).Error; err != nil {
			return err
		}

		card := schedule.Compact(kept)
		for i := range parsed {
			parsed[i].FightNumber = len(card) + 1
			card = append(card, parsed[i])
		}
		retimed, _ := schedule.RetimeAll(card, s.fights.now(), s.fights.settings.Buffer)

		if err := saveSchedule(tx, kept, retimed); err != nil {
			return err
		}
		for _, f := range retimed {
			if !f.IsPending() {
				continue
			}
			fight := f
			if err := tx.Create(&fight).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Imported = len(parsed)
	s.fights.invalidate(ctx)
	log.Printf("Imported %d fights (%d skipped)", result.Imported, result.Skipped)
	return result, nil
}

func (s *ImportService) parseRow(row []string, getCol func([]string, string) string) (models.Fight, error) {
	weight, err := strconv.Atoi(getCol(row, "weight_class"))
	if err != nil {
		return models.Fight{}, fmt.Errorf("invalid weight_class %q", getCol(row, "weight_class"))
	}

	req := models.CreateFightRequest{
		FighterA:     getCol(row, "fighter_a"),
		FighterAClub: getCol(row, "fighter_a_club"),
		FighterB:     getCol(row, "fighter_b"),
		FighterBClub: getCol(row, "fighter_b_club"),
		WeightClass:  weight,
		FightType:    getCol(row, "fight_type"),
	}

	if raw := getCol(row, "duration"); raw != "" {
		if req.Duration, err = strconv.Atoi(raw); err != nil {
			return models.Fight{}, fmt.Errorf("invalid duration %q", raw)
		}
	} else {
		values := make([]int, len(roundColumns))
		for i, col := range roundColumns {
			raw := getCol(row, col)
			if values[i], err = strconv.Atoi(raw); err != nil {
				return models.Fight{}, fmt.Errorf("invalid %s %q", col, raw)
			}
		}
		req.RoundDuration = &values[0]
		req.NbRounds = &values[1]
		req.RestTime = &values[2]
	}

	fight, err := s.fights.buildFight(req)
	if err != nil {
		return models.Fight{}, err
	}
	return fight, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
