package export

import (
	"testing"
	"time"

	"fight-manager-api/packages/core/models"

	"github.com/xuri/excelize/v2"
)

func testCard() []models.Fight {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	running := start
	return []models.Fight{
		{ID: "b", FightNumber: 2, FighterA: "Cid", FighterAClub: "North", FighterB: "Dan", FighterBClub: "South",
			WeightClass: 63, Duration: 10, FightType: models.FightTypeMMA, ExpectedStart: start.Add(12 * time.Minute)},
		{ID: "a", FightNumber: 1, FighterA: "Ana", FighterAClub: "South", FighterB: "Bea", FighterBClub: "East",
			WeightClass: 57, Duration: 10, FightType: models.FightTypeBoxing, ExpectedStart: start, ActualStart: &running},
		{ID: "c", FightNumber: 3, FighterA: "Eve", FighterAClub: "North", FighterB: "Fay", FighterBClub: "West",
			WeightClass: 70, Duration: 10, FightType: models.FightTypeBoxing, ExpectedStart: start.Add(24 * time.Minute)},
	}
}

func TestGenerateWorkbook(t *testing.T) {
	f, err := Generate(testCard(), time.UTC)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	defer f.Close()

	t.Run("schedule in fight number order", func(t *testing.T) {
		rows, err := f.GetRows(ScheduleSheet)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 4 {
			t.Fatalf("got %d rows, want header + 3", len(rows))
		}
		if rows[0][0] != "#" || rows[0][9] != "Status" {
			t.Errorf("header = %v", rows[0])
		}
		if rows[1][4] != "Ana" || rows[1][1] != "18:00" || rows[1][9] != "Ongoing" {
			t.Errorf("row 1 = %v", rows[1])
		}
		if rows[2][9] != "Ready" || rows[3][9] != "Next" {
			t.Errorf("statuses = %q, %q", rows[2][9], rows[3][9])
		}
	})

	t.Run("clubs sheet groups by club", func(t *testing.T) {
		rows, err := f.GetRows(ClubsSheet)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 7 {
			t.Fatalf("got %d rows, want header + 6", len(rows))
		}
		if rows[1][0] != "East" || rows[2][0] != "North" || rows[2][1] != "2" || rows[3][1] != "3" {
			t.Errorf("clubs = %v", rows[1:4])
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should be removed")
		}
	})
}

func TestWriteAndRead(t *testing.T) {
	f, err := Generate(testCard(), time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	path := t.TempDir() + "/card.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	f2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	defer f2.Close()

	val, _ := f2.GetCellValue(ScheduleSheet, "E2")
	if val != "Ana" {
		t.Errorf("re-read E2 = %q, want Ana", val)
	}
}
