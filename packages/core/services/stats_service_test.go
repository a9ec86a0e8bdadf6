package services

import (
	"context"
	"testing"

	"fight-manager-api/packages/core/models"
)

func TestStatsEmptyCard(t *testing.T) {
	svc, _ := newTestService(t)
	stats, err := NewStatsService(svc.db).GetStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalFights != 0 || stats.Clubs != 0 || stats.EstimatedEnd != nil {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStatsTrackProgress(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	mma := fightRequest(3)
	mma.FightType = "MMA"
	mma.FighterBClub = "Green Club"
	for _, req := range []models.CreateFightRequest{fightRequest(1), fightRequest(2), mma} {
		if _, err := svc.Add(ctx, req); err != nil {
			t.Fatal(err)
		}
	}
	fights, _ := svc.ListByNumber(ctx)

	svc.Start(ctx, fights[0].ID)
	clock.Advance(10)
	svc.End(ctx, fights[0].ID)
	if _, err := svc.Cancel(ctx, fights[2].ID); err != nil {
		t.Fatal(err)
	}

	stats, err := NewStatsService(svc.db).GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalFights != 3 || stats.Completed != 1 || stats.Cancelled != 1 || stats.Remaining != 1 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.Clubs != 3 {
		t.Errorf("clubs = %d, want 3", stats.Clubs)
	}
	if stats.ByType[models.FightTypeBoxing] != 2 || stats.ByType[models.FightTypeMMA] != 1 {
		t.Errorf("by type = %v", stats.ByType)
	}
	if stats.EstimatedEnd == nil || !stats.EstimatedEnd.Equal(minutesAfter(22)) {
		t.Errorf("estimated end = %v, want %v", stats.EstimatedEnd, minutesAfter(22))
	}
}
