package models

import "time"

type CardStats struct {
	TotalFights  int64               `json:"total_fights"`
	Completed    int64               `json:"completed"`
	Cancelled    int64               `json:"cancelled"`
	Remaining    int64               `json:"remaining"`
	Clubs        int64               `json:"clubs"`
	ByType       map[FightType]int64 `json:"by_type"`
	EstimatedEnd *time.Time          `json:"estimated_end"`
}
