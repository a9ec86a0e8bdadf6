package client

import (
	"strings"
	"sync"

	"fight-manager-api/packages/core/models"
)

// DefaultClubColors are Material 500/700 tones, distinct enough side by side.
var DefaultClubColors = []string{
	"#2196f3", "#4caf50", "#9c27b0", "#ff9800", "#e91e63",
	"#009688", "#ff5722", "#3f51b5", "#00bcd4", "#c0ca33",
	"#ffb300", "#795548", "#607d8b", "#1976d2", "#388e3c",
	"#7b1fa2", "#f57c00", "#c2185b", "#00796b", "#e64a19",
}

var fightTypeColors = map[models.FightType]string{
	models.FightTypeBoxing:    "#1976d2",
	models.FightTypeMuayThai:  "#d32f2f",
	models.FightTypeGrappling: "#388e3c",
	models.FightTypeMMA:       "#7b1fa2",
}

// Palette hands out colours to clubs in first-seen order and keeps each club
// on the same colour for its lifetime. Names are compared case-insensitively.
// Once every colour is taken the assignment wraps around.
type Palette struct {
	mu       sync.Mutex
	colors   []string
	assigned map[string]string
	next     int
}

func NewPalette(colors []string) *Palette {
	if len(colors) == 0 {
		colors = DefaultClubColors
	}
	return &Palette{
		colors:   colors,
		assigned: make(map[string]string),
	}
}

func (p *Palette) Club(club string) string {
	key := strings.ToLower(strings.TrimSpace(club))
	p.mu.Lock()
	defer p.mu.Unlock()
	if color, ok := p.assigned[key]; ok {
		return color
	}
	color := p.colors[p.next%len(p.colors)]
	p.next++
	p.assigned[key] = color
	return color
}

// FightTypeColor falls back to the boxing colour for unknown types.
func FightTypeColor(t models.FightType) string {
	if color, ok := fightTypeColors[t]; ok {
		return color
	}
	return fightTypeColors[models.FightTypeBoxing]
}
