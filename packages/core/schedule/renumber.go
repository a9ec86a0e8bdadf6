package schedule

import (
	"errors"
	"fmt"

	"fight-manager-api/packages/core/models"
)

var (
	ErrUnknownFight     = errors.New("fight not found")
	ErrNumberOutOfRange = errors.New("fight number out of range")
)

// Renumber moves the fight with the given id to newNumber and shifts the
// fights in between by one. It returns a new slice in fight number order; the
// input is left untouched.
func Renumber(fights []models.Fight, id string, newNumber int) ([]models.Fight, error) {
	if newNumber < 1 || newNumber > len(fights) {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrNumberOutOfRange, newNumber, len(fights))
	}

	out := SortByNumber(fights)
	idx := -1
	for i := range out {
		if out[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownFight
	}

	oldNumber := out[idx].FightNumber
	for i := range out {
		n := out[i].FightNumber
		switch {
		case i == idx:
			out[i].FightNumber = newNumber
		case newNumber > oldNumber && n > oldNumber && n <= newNumber:
			out[i].FightNumber = n - 1
		case newNumber < oldNumber && n >= newNumber && n < oldNumber:
			out[i].FightNumber = n + 1
		}
	}
	return SortByNumber(out), nil
}

// Insert shifts every fight at or after position up by one and gives the new
// fight that position. position is clamped to 1..len(fights)+1.
func Insert(fights []models.Fight, fight models.Fight, position int) []models.Fight {
	if position < 1 {
		position = 1
	}
	if position > len(fights)+1 {
		position = len(fights) + 1
	}
	out := make([]models.Fight, 0, len(fights)+1)
	for _, f := range fights {
		if f.FightNumber >= position {
			f.FightNumber++
		}
		out = append(out, f)
	}
	fight.FightNumber = position
	out = append(out, fight)
	return SortByNumber(out)
}

// Remove drops the fight with the given id and closes the gap it leaves.
func Remove(fights []models.Fight, id string) ([]models.Fight, error) {
	removed := -1
	for _, f := range fights {
		if f.ID == id {
			removed = f.FightNumber
			break
		}
	}
	if removed < 0 {
		return nil, ErrUnknownFight
	}
	out := make([]models.Fight, 0, len(fights)-1)
	for _, f := range fights {
		if f.ID == id {
			continue
		}
		if f.FightNumber > removed {
			f.FightNumber--
		}
		out = append(out, f)
	}
	return SortByNumber(out), nil
}

// Compact renumbers fights 1..N keeping their relative order.
func Compact(fights []models.Fight) []models.Fight {
	out := SortByNumber(fights)
	for i := range out {
		out[i].FightNumber = i + 1
	}
	return out
}

// IsDense reports whether the numbers form exactly 1..N.
func IsDense(fights []models.Fight) bool {
	seen := make(map[int]bool, len(fights))
	for _, f := range fights {
		if f.FightNumber < 1 || f.FightNumber > len(fights) || seen[f.FightNumber] {
			return false
		}
		seen[f.FightNumber] = true
	}
	return true
}
