package schedule

import (
	"fmt"
	"testing"
	"time"

	"fight-manager-api/packages/core/models"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func fight(id string, number, startMinute int) models.Fight {
	return models.Fight{
		ID:            id,
		FightNumber:   number,
		FighterA:      "A" + id,
		FighterB:      "B" + id,
		WeightClass:   70,
		Duration:      13,
		FightType:     models.FightTypeBoxing,
		ExpectedStart: at(startMinute),
	}
}

func started(f models.Fight) models.Fight {
	t := f.ExpectedStart
	f.ActualStart = &t
	return f
}

func completed(f models.Fight) models.Fight {
	f = started(f)
	end := f.ActualStart.Add(10 * time.Minute)
	f.ActualEnd = &end
	f.IsCompleted = true
	return f
}

func id(f *models.Fight) string {
	if f == nil {
		return "<none>"
	}
	return f.ID
}

func TestScenarioOngoingReadyNext(t *testing.T) {
	a := started(fight("A", 1, 0))
	b := fight("B", 2, 15)
	c := fight("C", 3, 30)
	fights := []models.Fight{a, b, c}

	if got := id(Ongoing(fights)); got != "A" {
		t.Errorf("Ongoing = %s, want A", got)
	}
	if got := id(Ready(fights)); got != "B" {
		t.Errorf("Ready = %s, want B", got)
	}
	if got := id(NextAvailable(fights)); got != "C" {
		t.Errorf("NextAvailable = %s, want C", got)
	}
	if !CanReorder(c, fights) {
		t.Error("CanReorder(C) = false, want true")
	}
	if CanReorder(b, fights) {
		t.Error("CanReorder(B) = true, want false")
	}
	if CanEdit(b, fights) {
		t.Error("CanEdit(B) = true, want false")
	}
	if !CanEdit(c, fights) {
		t.Error("CanEdit(C) = false, want true")
	}
}

func TestReadyWithoutOngoingPicksEarliestScheduled(t *testing.T) {
	// passed out of order on purpose; the derivation sorts on its own
	fights := []models.Fight{
		fight("late", 1, 40),
		fight("early", 3, 5),
		fight("mid", 2, 20),
	}

	ready := Ready(fights)
	if id(ready) != "early" {
		t.Fatalf("Ready = %s, want early", id(ready))
	}
	for _, f := range fights {
		want := f.FightNumber > ready.FightNumber
		if got := CanEdit(f, fights); got != want {
			t.Errorf("CanEdit(%s) = %v, want %v", f.ID, got, want)
		}
	}
}

func TestReadyAfterOngoingSkipsEarlierPending(t *testing.T) {
	fights := []models.Fight{
		fight("forgotten", 1, 0),
		started(fight("running", 2, 10)),
		fight("after", 3, 25),
	}
	if got := id(Ready(fights)); got != "after" {
		t.Errorf("Ready = %s, want after", got)
	}
}

func TestReadyIgnoresCompletedAndStarted(t *testing.T) {
	fights := []models.Fight{
		completed(fight("done", 1, 0)),
		fight("next", 2, 15),
		fight("later", 3, 30),
	}
	if got := id(Ready(fights)); got != "next" {
		t.Errorf("Ready = %s, want next", got)
	}
	if got := id(Ongoing(fights)); got != "<none>" {
		t.Errorf("Ongoing = %s, want none", got)
	}
}

func TestDerivationsOnEmptyInput(t *testing.T) {
	var fights []models.Fight
	if Ongoing(fights) != nil || Ready(fights) != nil || NextAvailable(fights) != nil {
		t.Fatal("expected no derived fights on empty input")
	}
	orphan := fight("X", 1, 0)
	if CanReorder(orphan, fights) {
		t.Error("CanReorder on empty card should be false")
	}
	if got := ReorderTooltip(orphan, fights); got != TooltipNoneAvailable {
		t.Errorf("tooltip = %q, want %q", got, TooltipNoneAvailable)
	}
}

func TestMultipleOngoingTakesEarliest(t *testing.T) {
	fights := []models.Fight{
		started(fight("second", 2, 15)),
		started(fight("first", 1, 0)),
	}
	if got := id(Ongoing(fights)); got != "first" {
		t.Errorf("Ongoing = %s, want first", got)
	}
}

func TestCanReorderFalseWithoutNextAvailable(t *testing.T) {
	fights := []models.Fight{
		started(fight("A", 1, 0)),
		fight("B", 2, 15),
	}
	if NextAvailable(fights) != nil {
		t.Fatal("expected no next available fight")
	}
	for _, f := range fights {
		if CanReorder(f, fights) {
			t.Errorf("CanReorder(%s) = true with no next available fight", f.ID)
		}
	}
}

func TestCanEditLocksPastAndCurrent(t *testing.T) {
	fights := []models.Fight{
		completed(fight("done", 1, 0)),
		started(fight("running", 2, 15)),
		fight("ready", 3, 30),
		fight("free", 4, 45),
	}
	want := map[string]bool{"done": false, "running": false, "ready": false, "free": true}
	for _, f := range fights {
		if got := CanEdit(f, fights); got != want[f.ID] {
			t.Errorf("CanEdit(%s) = %v, want %v", f.ID, got, want[f.ID])
		}
	}
}

func TestReorderTooltipOrder(t *testing.T) {
	fights := []models.Fight{
		completed(fight("done", 1, 0)),
		started(fight("running", 2, 15)),
		fight("ready", 3, 30),
		fight("next", 4, 45),
		fight("tail", 5, 60),
	}

	tests := []struct {
		fight models.Fight
		want  string
	}{
		{fights[0], TooltipCompleted},
		{fights[1], TooltipOngoing},
		{fights[2], TooltipReady},
		{fights[3], TooltipChangeNumber},
		{fights[4], TooltipChangeNumber},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s -> %s", tt.fight.ID, tt.want), func(t *testing.T) {
			if got := ReorderTooltip(tt.fight, fights); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReorderTooltipBeforeNextAvailable(t *testing.T) {
	// a pending fight numbered before the ready one, scheduled earlier than the
	// ongoing fight, is neither ready nor reorderable
	fights := []models.Fight{
		fight("skipped", 1, 0),
		started(fight("running", 2, 10)),
		fight("ready", 3, 25),
		fight("next", 4, 40),
	}
	if got := ReorderTooltip(fights[0], fights); got != TooltipBeforeNext {
		t.Errorf("got %q, want %q", got, TooltipBeforeNext)
	}
}

func TestFirstOpenSlot(t *testing.T) {
	fights := []models.Fight{
		completed(fight("done", 1, 0)),
		started(fight("running", 2, 15)),
		fight("ready", 3, 30),
		fight("free", 4, 45),
	}
	if got := Evaluate(fights).FirstOpenSlot(fights); got != 4 {
		t.Errorf("FirstOpenSlot = %d, want 4", got)
	}

	fresh := []models.Fight{fight("a", 1, 0), fight("b", 2, 15)}
	if got := Evaluate(fresh).FirstOpenSlot(fresh); got != 2 {
		t.Errorf("FirstOpenSlot = %d, want 2", got)
	}
}

func TestBuildBoard(t *testing.T) {
	fights := []models.Fight{
		fight("C", 3, 30),
		started(fight("A", 1, 0)),
		fight("B", 2, 15),
	}
	board := BuildBoard(fights, base)

	if id(board.Ongoing) != "A" || id(board.Ready) != "B" || id(board.NextAvailable) != "C" {
		t.Fatalf("board = %s/%s/%s, want A/B/C", id(board.Ongoing), id(board.Ready), id(board.NextAvailable))
	}
	if len(board.Fights) != 3 {
		t.Fatalf("len(board.Fights) = %d, want 3", len(board.Fights))
	}
	for i, st := range board.Fights {
		if st.Fight.FightNumber != i+1 {
			t.Errorf("board.Fights[%d] number = %d, want %d", i, st.Fight.FightNumber, i+1)
		}
	}
	if !board.Fights[0].IsOngoing || !board.Fights[1].IsReady || !board.Fights[2].IsNext {
		t.Error("expected flags ongoing/ready/next on fights 1/2/3")
	}
	if !board.Fights[2].CanEdit || !board.Fights[2].CanReorder {
		t.Error("expected fight 3 editable and reorderable")
	}
}
