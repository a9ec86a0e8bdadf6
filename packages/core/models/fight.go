package models

import (
	"fmt"
	"strings"
	"time"
)

type FightType string

const (
	FightTypeBoxing    FightType = "Boxing"
	FightTypeMuayThai  FightType = "Muay Thai"
	FightTypeGrappling FightType = "Grappling"
	FightTypeMMA       FightType = "MMA"
)

// GetAllFightTypes returns the supported disciplines in display order
func GetAllFightTypes() []FightType {
	return []FightType{
		FightTypeBoxing,
		FightTypeMuayThai,
		FightTypeGrappling,
		FightTypeMMA,
	}
}

// ParseFightType matches case-insensitively; an empty value defaults to Boxing
func ParseFightType(s string) (FightType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FightTypeBoxing, nil
	}
	for _, t := range GetAllFightTypes() {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown fight type %q", s)
}

type Fight struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	FightNumber   int        `gorm:"not null;index" json:"fight_number"`
	FighterA      string     `gorm:"size:100;not null" json:"fighter_a"`
	FighterAClub  string     `gorm:"size:100;not null" json:"fighter_a_club"`
	FighterB      string     `gorm:"size:100;not null" json:"fighter_b"`
	FighterBClub  string     `gorm:"size:100;not null" json:"fighter_b_club"`
	WeightClass   int        `gorm:"not null" json:"weight_class"`
	Duration      int        `gorm:"not null" json:"duration"` // minutes
	RoundDuration *int       `json:"round_duration,omitempty"`
	NbRounds      *int       `json:"nb_rounds,omitempty"`
	RestTime      *int       `json:"rest_time,omitempty"`
	FightType     FightType  `gorm:"size:20;not null;default:Boxing" json:"fight_type"`
	ExpectedStart time.Time  `gorm:"index" json:"expected_start"`
	ActualStart   *time.Time `json:"actual_start"`
	ActualEnd     *time.Time `json:"actual_end"`
	IsCompleted   bool       `gorm:"default:false" json:"is_completed"`
	IsCancelled   bool       `gorm:"default:false" json:"is_cancelled"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Fight) TableName() string {
	return "fights"
}

// IsOngoing reports a fight that has started and not ended
func (f *Fight) IsOngoing() bool {
	return f.ActualStart != nil && f.ActualEnd == nil
}

// IsPending reports a fight that is neither completed nor started
func (f *Fight) IsPending() bool {
	return !f.IsCompleted && f.ActualStart == nil
}

// RoundBasedDuration computes the total length in minutes of a round-based fight.
func RoundBasedDuration(roundDuration, nbRounds, restTime int) int {
	if nbRounds <= 0 {
		return 0
	}
	return nbRounds*roundDuration + (nbRounds-1)*restTime
}

// DTOs

type CreateFightRequest struct {
	FighterA      string `json:"fighter_a" binding:"required,max=100"`
	FighterAClub  string `json:"fighter_a_club" binding:"required,max=100"`
	FighterB      string `json:"fighter_b" binding:"required,max=100"`
	FighterBClub  string `json:"fighter_b_club" binding:"required,max=100"`
	WeightClass   int    `json:"weight_class" binding:"required,gt=0"`
	Duration      int    `json:"duration,omitempty" binding:"omitempty,gt=0"`
	RoundDuration *int   `json:"round_duration,omitempty" binding:"omitempty,gt=0"`
	NbRounds      *int   `json:"nb_rounds,omitempty" binding:"omitempty,gt=0"`
	RestTime      *int   `json:"rest_time,omitempty" binding:"omitempty,gte=0"`
	FightType     string `json:"fight_type"`
	Position      *int   `json:"position,omitempty"`
}

type UpdateFightRequest struct {
	FighterA     *string `json:"fighter_a,omitempty"`
	FighterAClub *string `json:"fighter_a_club,omitempty"`
	FighterB     *string `json:"fighter_b,omitempty"`
	FighterBClub *string `json:"fighter_b_club,omitempty"`
	WeightClass  *int    `json:"weight_class,omitempty"`
	Duration     *int    `json:"duration,omitempty"`
	FightType    *string `json:"fight_type,omitempty"`
}

type StartTimeRequest struct {
	StartTime string `json:"start_time" binding:"required" example:"18:30"`
}

// Responses

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

type FightState struct {
	Fight          Fight  `json:"fight"`
	IsOngoing      bool   `json:"is_ongoing"`
	IsReady        bool   `json:"is_ready"`
	IsNext         bool   `json:"is_next_available"`
	CanEdit        bool   `json:"can_edit"`
	CanReorder     bool   `json:"can_reorder"`
	ReorderTooltip string `json:"reorder_tooltip"`
}

type Board struct {
	Ongoing       *Fight       `json:"ongoing"`
	Ready         *Fight       `json:"ready"`
	NextAvailable *Fight       `json:"next_available"`
	Fights        []FightState `json:"fights"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

type MessageResponse struct {
	Message string `json:"message" example:"All fights cleared"`
}
