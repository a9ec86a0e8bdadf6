package services

import (
	"context"
	"time"

	"fight-manager-api/packages/core/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db: db,
	}
}

// GetStats summarises the card: progress counts, fights per discipline, the
// number of clubs involved and when the last fight should end.
func (s *StatsService) GetStats(ctx context.Context) (*models.CardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &models.CardStats{ByType: make(map[models.FightType]int64)}

	if err := db.Model(&models.Fight{}).Count(&stats.TotalFights).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Fight{}).
		Where("is_completed = ? AND is_cancelled = ?", true, false).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Fight{}).
		Where("is_cancelled = ?", true).
		Count(&stats.Cancelled).Error; err != nil {
		return nil, err
	}

	stats.Remaining = stats.TotalFights - stats.Completed - stats.Cancelled

	var perType []struct {
		FightType models.FightType
		Count     int64
	}
	if err := db.Model(&models.Fight{}).
		Select("fight_type, COUNT(*) AS count").
		Group("fight_type").
		Scan(&perType).Error; err != nil {
		return nil, err
	}
	for _, row := range perType {
		stats.ByType[row.FightType] = row.Count
	}

	if err := db.Raw(`SELECT COUNT(*) FROM (
		SELECT fighter_a_club AS club FROM fights
		UNION
		SELECT fighter_b_club AS club FROM fights
	) AS clubs`).Scan(&stats.Clubs).Error; err != nil {
		return nil, err
	}

	// The last fight by number ends the card, whether it has run or not.
	var last models.Fight
	err := db.Where("is_cancelled = ?", false).Order("fight_number DESC").First(&last).Error
	switch {
	case err == gorm.ErrRecordNotFound:
	case err != nil:
		return nil, err
	case last.ActualEnd != nil:
		end := *last.ActualEnd
		stats.EstimatedEnd = &end
	default:
		start := last.ExpectedStart
		if last.ActualStart != nil {
			start = *last.ActualStart
		}
		end := start.Add(time.Duration(last.Duration) * time.Minute)
		stats.EstimatedEnd = &end
	}

	return stats, nil
}
