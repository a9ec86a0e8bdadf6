package schedule

import (
	"time"

	"fight-manager-api/packages/core/models"
)

// NextStart is when the following fight can begin after one that starts at
// start and lasts duration minutes.
func NextStart(start time.Time, duration int, buffer time.Duration) time.Time {
	return start.Add(time.Duration(duration)*time.Minute + buffer)
}

// Retime assigns consecutive expected starts to pending fights numbered at or
// above minNumber, in fight number order, beginning at from. Fights that have
// started or completed keep their times. It returns the modified copy in fight
// number order and the ids whose expected start changed.
func Retime(fights []models.Fight, from time.Time, buffer time.Duration, minNumber int) ([]models.Fight, []string) {
	out := SortByNumber(fights)
	var changed []string
	current := from
	for i := range out {
		f := &out[i]
		if f.FightNumber < minNumber || !f.IsPending() {
			continue
		}
		if !f.ExpectedStart.Equal(current) {
			f.ExpectedStart = current
			changed = append(changed, f.ID)
		}
		current = NextStart(current, f.Duration, buffer)
	}
	return out, changed
}

// LockedThrough is the highest fight number that has actually started.
// Pending fights at or below it were skipped and keep their times. Fights
// cancelled before starting do not lock anything.
func LockedThrough(fights []models.Fight) int {
	locked := 0
	for _, f := range fights {
		if f.ActualStart != nil && f.FightNumber > locked {
			locked = f.FightNumber
		}
	}
	return locked
}

// Anchor picks where a full retime starts: after the ongoing fight, otherwise
// at the head of the remaining schedule, otherwise now.
func Anchor(fights []models.Fight, now time.Time, buffer time.Duration) time.Time {
	st := Evaluate(fights)
	if st.Ongoing != nil && st.Ongoing.ActualStart != nil {
		return NextStart(*st.Ongoing.ActualStart, st.Ongoing.Duration, buffer)
	}

	locked := LockedThrough(fights)
	var head *models.Fight
	for i := range fights {
		f := &fights[i]
		if !f.IsPending() || f.FightNumber <= locked || f.ExpectedStart.IsZero() {
			continue
		}
		if head == nil || f.ExpectedStart.Before(head.ExpectedStart) {
			head = f
		}
	}
	if head != nil {
		return head.ExpectedStart
	}
	return now
}

// RetimeAll retimes every pending fight after the locked head of the card.
func RetimeAll(fights []models.Fight, now time.Time, buffer time.Duration) ([]models.Fight, []string) {
	return Retime(fights, Anchor(fights, now, buffer), buffer, LockedThrough(fights)+1)
}
