package schedule

import (
	"errors"
	"fmt"
	"testing"

	"fight-manager-api/packages/core/models"
)

func card(n int) []models.Fight {
	fights := make([]models.Fight, 0, n)
	for i := 1; i <= n; i++ {
		fights = append(fights, fight(fmt.Sprintf("f%d", i), i, (i-1)*15))
	}
	return fights
}

func numbers(fights []models.Fight) map[string]int {
	out := make(map[string]int, len(fights))
	for _, f := range fights {
		out[f.ID] = f.FightNumber
	}
	return out
}

func TestRenumberBackward(t *testing.T) {
	fights := card(10)
	out, err := Renumber(fights, "f5", 2)
	if err != nil {
		t.Fatal(err)
	}

	got := numbers(out)
	want := map[string]int{
		"f1": 1, "f5": 2, "f2": 3, "f3": 4, "f4": 5,
		"f6": 6, "f7": 7, "f8": 8, "f9": 9, "f10": 10,
	}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("%s = %d, want %d", id, got[id], n)
		}
	}
	if !IsDense(out) {
		t.Error("result is not a dense 1..10 permutation")
	}
	if fights[4].FightNumber != 5 {
		t.Error("input slice was modified")
	}
}

func TestRenumberForward(t *testing.T) {
	out, err := Renumber(card(6), "f2", 5)
	if err != nil {
		t.Fatal(err)
	}
	got := numbers(out)
	want := map[string]int{"f1": 1, "f3": 2, "f4": 3, "f5": 4, "f2": 5, "f6": 6}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("%s = %d, want %d", id, got[id], n)
		}
	}
	if !IsDense(out) {
		t.Error("result is not dense")
	}
}

func TestRenumberSamePosition(t *testing.T) {
	out, err := Renumber(card(3), "f2", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := numbers(out); got["f1"] != 1 || got["f2"] != 2 || got["f3"] != 3 {
		t.Errorf("unexpected numbers %v", got)
	}
}

func TestRenumberErrors(t *testing.T) {
	fights := card(4)
	tests := []struct {
		id     string
		number int
		want   error
	}{
		{"f1", 0, ErrNumberOutOfRange},
		{"f1", 5, ErrNumberOutOfRange},
		{"nope", 2, ErrUnknownFight},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%d", tt.id, tt.number), func(t *testing.T) {
			if _, err := Renumber(fights, tt.id, tt.number); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInsertAndRemoveKeepDensity(t *testing.T) {
	fights := card(4)
	out := Insert(fights, models.Fight{ID: "new"}, 2)
	if len(out) != 5 || !IsDense(out) {
		t.Fatalf("insert broke density: %v", numbers(out))
	}
	if got := numbers(out); got["new"] != 2 || got["f2"] != 3 || got["f4"] != 5 {
		t.Errorf("unexpected numbers after insert %v", got)
	}

	out = Insert(out, models.Fight{ID: "tail"}, 99)
	if got := numbers(out); got["tail"] != 6 {
		t.Errorf("tail = %d, want clamped to 6", got["tail"])
	}

	out, err := Remove(out, "f2")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 || !IsDense(out) {
		t.Fatalf("remove broke density: %v", numbers(out))
	}
	if got := numbers(out); got["f3"] != 3 || got["tail"] != 5 {
		t.Errorf("unexpected numbers after remove %v", got)
	}

	if _, err := Remove(out, "missing"); !errors.Is(err, ErrUnknownFight) {
		t.Errorf("err = %v, want ErrUnknownFight", err)
	}
}

func TestCompact(t *testing.T) {
	fights := []models.Fight{
		{ID: "a", FightNumber: 3},
		{ID: "b", FightNumber: 7},
		{ID: "c", FightNumber: 1},
	}
	out := Compact(fights)
	if got := numbers(out); got["c"] != 1 || got["a"] != 2 || got["b"] != 3 {
		t.Errorf("unexpected numbers %v", got)
	}
	if IsDense(fights) {
		t.Error("IsDense should reject gaps")
	}
}
