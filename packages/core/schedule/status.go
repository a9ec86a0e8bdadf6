// Package schedule holds the pure rules of the fight card: which fight is
// ongoing, which one is ready, which fights may still be edited or moved, and
// how numbers and expected start times are propagated. Nothing here touches
// the database; services load fights, apply these rules and persist the result.
package schedule

import (
	"sort"
	"time"

	"fight-manager-api/packages/core/models"
)

// Reorder tooltips, checked in this order.
const (
	TooltipCompleted     = "Cannot reorder completed fights"
	TooltipOngoing       = "Cannot reorder ongoing fight"
	TooltipReady         = "Cannot reorder the next ready fight"
	TooltipNoneAvailable = "No fights available for reordering"
	TooltipBeforeNext    = "Cannot reorder fights before the next available fight"
	TooltipChangeNumber  = "Change fight number"
)

// Status is the derived state of a card. The pointers reference copies, never
// the caller's slice.
type Status struct {
	Ongoing       *models.Fight
	Ready         *models.Fight
	NextAvailable *models.Fight
}

// SortByStart returns a copy ordered by expected start, ties broken by fight number.
func SortByStart(fights []models.Fight) []models.Fight {
	ordered := make([]models.Fight, len(fights))
	copy(ordered, fights)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ExpectedStart.Equal(ordered[j].ExpectedStart) {
			return ordered[i].ExpectedStart.Before(ordered[j].ExpectedStart)
		}
		return ordered[i].FightNumber < ordered[j].FightNumber
	})
	return ordered
}

// SortByNumber returns a copy ordered by fight number.
func SortByNumber(fights []models.Fight) []models.Fight {
	ordered := make([]models.Fight, len(fights))
	copy(ordered, fights)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FightNumber < ordered[j].FightNumber
	})
	return ordered
}

// Evaluate derives ongoing, ready and next-available fights in one pass over a
// start-ordered copy. If several fights look ongoing the earliest one wins.
func Evaluate(fights []models.Fight) Status {
	ordered := SortByStart(fights)

	var st Status
	for i := range ordered {
		if ordered[i].IsOngoing() {
			st.Ongoing = &ordered[i]
			break
		}
	}

	st.Ready = firstPendingAfter(ordered, st.Ongoing)
	if st.Ready != nil {
		st.NextAvailable = firstPendingAfter(ordered, st.Ready)
	}
	return st
}

// firstPendingAfter returns the earliest pending fight strictly after ref, or
// the earliest pending fight at all when ref is nil.
func firstPendingAfter(ordered []models.Fight, ref *models.Fight) *models.Fight {
	for i := range ordered {
		f := &ordered[i]
		if !f.IsPending() {
			continue
		}
		if ref != nil && !f.ExpectedStart.After(ref.ExpectedStart) {
			continue
		}
		return f
	}
	return nil
}

func Ongoing(fights []models.Fight) *models.Fight {
	return Evaluate(fights).Ongoing
}

func Ready(fights []models.Fight) *models.Fight {
	return Evaluate(fights).Ready
}

func NextAvailable(fights []models.Fight) *models.Fight {
	return Evaluate(fights).NextAvailable
}

func CanReorder(fight models.Fight, fights []models.Fight) bool {
	return Evaluate(fights).CanReorder(fight)
}

func CanEdit(fight models.Fight, fights []models.Fight) bool {
	return Evaluate(fights).CanEdit(fight)
}

func ReorderTooltip(fight models.Fight, fights []models.Fight) string {
	return Evaluate(fights).ReorderTooltip(fight)
}

// CanReorder allows moving only fights at or after the next available slot.
func (s Status) CanReorder(fight models.Fight) bool {
	if s.NextAvailable == nil {
		return false
	}
	return fight.FightNumber >= s.NextAvailable.FightNumber
}

// CanEdit locks fights that happened, are running, or are up next.
func (s Status) CanEdit(fight models.Fight) bool {
	if fight.IsCompleted || fight.ActualStart != nil {
		return false
	}
	if s.Ongoing != nil && fight.FightNumber <= s.Ongoing.FightNumber {
		return false
	}
	if s.Ready != nil && fight.FightNumber <= s.Ready.FightNumber {
		return false
	}
	return true
}

func (s Status) ReorderTooltip(fight models.Fight) string {
	if fight.IsCompleted {
		return TooltipCompleted
	}
	if fight.ActualStart != nil {
		return TooltipOngoing
	}
	if s.Ready != nil && fight.ID == s.Ready.ID {
		return TooltipReady
	}
	if s.NextAvailable == nil {
		return TooltipNoneAvailable
	}
	if fight.FightNumber < s.NextAvailable.FightNumber {
		return TooltipBeforeNext
	}
	return TooltipChangeNumber
}

// FirstOpenSlot is the lowest position a new fight may be inserted at without
// displacing a fight that is running, done, or called next.
func (s Status) FirstOpenSlot(fights []models.Fight) int {
	slot := 1
	for _, f := range fights {
		if (f.IsCompleted || f.ActualStart != nil) && f.FightNumber >= slot {
			slot = f.FightNumber + 1
		}
	}
	if s.Ready != nil && s.Ready.FightNumber >= slot {
		slot = s.Ready.FightNumber + 1
	}
	return slot
}

// BuildBoard derives the full board in fight number order.
func BuildBoard(fights []models.Fight, now time.Time) models.Board {
	st := Evaluate(fights)
	board := models.Board{
		Ongoing:       st.Ongoing,
		Ready:         st.Ready,
		NextAvailable: st.NextAvailable,
		Fights:        make([]models.FightState, 0, len(fights)),
		GeneratedAt:   now,
	}
	for _, f := range SortByNumber(fights) {
		board.Fights = append(board.Fights, models.FightState{
			Fight:          f,
			IsOngoing:      st.Ongoing != nil && f.ID == st.Ongoing.ID,
			IsReady:        st.Ready != nil && f.ID == st.Ready.ID,
			IsNext:         st.NextAvailable != nil && f.ID == st.NextAvailable.ID,
			CanEdit:        st.CanEdit(f),
			CanReorder:     st.CanReorder(f),
			ReorderTooltip: st.ReorderTooltip(f),
		})
	}
	return board
}
