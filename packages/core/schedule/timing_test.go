package schedule

import (
	"testing"
	"time"

	"fight-manager-api/packages/core/models"
)

func TestRetimeSkipsStartedAndLowerNumbers(t *testing.T) {
	fights := []models.Fight{
		completed(fight("f1", 1, 0)),
		fight("f2", 2, 0),
		fight("f3", 3, 0),
		fight("f4", 4, 0),
	}
	from := at(100)
	out, changed := Retime(fights, from, 2*time.Minute, 3)

	if !out[1].ExpectedStart.Equal(at(0)) {
		t.Errorf("f2 moved to %v, should keep its time", out[1].ExpectedStart)
	}
	if !out[2].ExpectedStart.Equal(from) {
		t.Errorf("f3 = %v, want %v", out[2].ExpectedStart, from)
	}
	// 13 minute fight + 2 minute buffer
	if want := at(115); !out[3].ExpectedStart.Equal(want) {
		t.Errorf("f4 = %v, want %v", out[3].ExpectedStart, want)
	}
	if len(changed) != 2 {
		t.Errorf("changed = %v, want f3 and f4", changed)
	}
}

func TestAnchor(t *testing.T) {
	now := at(500)
	buffer := 2 * time.Minute

	running := started(fight("r", 1, 10))
	withOngoing := []models.Fight{running, fight("n", 2, 400)}
	if got, want := Anchor(withOngoing, now, buffer), at(25); !got.Equal(want) {
		t.Errorf("with ongoing: got %v, want %v", got, want)
	}

	pending := []models.Fight{fight("a", 1, 40), fight("b", 2, 30)}
	if got := Anchor(pending, now, buffer); !got.Equal(at(30)) {
		t.Errorf("pending head: got %v, want %v", got, at(30))
	}

	if got := Anchor(nil, now, buffer); !got.Equal(now) {
		t.Errorf("empty: got %v, want now", got)
	}
}

func TestRetimeAllLeavesSkippedFightsAlone(t *testing.T) {
	fights := []models.Fight{
		fight("skipped", 1, 0),
		started(fight("running", 2, 10)),
		fight("f3", 3, 90),
		fight("f4", 4, 120),
	}
	out, _ := RetimeAll(fights, at(200), 2*time.Minute)

	if !out[0].ExpectedStart.Equal(at(0)) {
		t.Errorf("skipped fight moved to %v", out[0].ExpectedStart)
	}
	if want := at(25); !out[2].ExpectedStart.Equal(want) {
		t.Errorf("f3 = %v, want %v", out[2].ExpectedStart, want)
	}
	if want := at(40); !out[3].ExpectedStart.Equal(want) {
		t.Errorf("f4 = %v, want %v", out[3].ExpectedStart, want)
	}
}

func TestCancelledFightDoesNotLockEarlierFights(t *testing.T) {
	dropped := fight("dropped", 4, 55)
	dropped.IsCompleted = true
	dropped.IsCancelled = true
	fights := []models.Fight{
		started(fight("running", 1, 10)),
		fight("f2", 2, 25),
		fight("f3", 3, 40),
		dropped,
		fight("f5", 5, 25),
		fight("f6", 6, 40),
	}

	if got := LockedThrough(fights); got != 1 {
		t.Fatalf("LockedThrough = %d, want 1", got)
	}

	out, _ := RetimeAll(fights, at(200), 2*time.Minute)
	want := map[string]time.Time{"f2": at(25), "f3": at(40), "dropped": at(55), "f5": at(55), "f6": at(70)}
	for _, f := range out {
		if w, ok := want[f.ID]; ok && !f.ExpectedStart.Equal(w) {
			t.Errorf("%s = %v, want %v", f.ID, f.ExpectedStart, w)
		}
	}
}
