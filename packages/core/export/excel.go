package export

import (
	"fmt"
	"sort"
	"time"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/schedule"

	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet = "Schedule"
	ClubsSheet    = "Clubs"
)

var scheduleHeaders = []string{
	"#", "Start", "Type", "Weight", "Fighter A", "Club A", "Fighter B", "Club B", "Duration", "Status",
}

// Generate builds a workbook with the card in fight number order and a sheet
// listing each club's fights. Times are rendered in loc.
func Generate(fights []models.Fight, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, fights, loc); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writeClubsSheet(f, fights, loc); err != nil {
		return nil, fmt.Errorf("writing clubs sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// StatusLabel names where a fight stands on the card.
func StatusLabel(fight models.Fight, st schedule.Status) string {
	switch {
	case fight.IsCancelled:
		return "Cancelled"
	case fight.IsCompleted:
		return "Completed"
	case st.Ongoing != nil && st.Ongoing.ID == fight.ID:
		return "Ongoing"
	case st.Ready != nil && st.Ready.ID == fight.ID:
		return "Ready"
	case st.NextAvailable != nil && st.NextAvailable.ID == fight.ID:
		return "Next"
	default:
		return "Scheduled"
	}
}

func writeScheduleSheet(f *excelize.File, fights []models.Fight, loc *time.Location) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, scheduleHeaders); err != nil {
		return err
	}

	st := schedule.Evaluate(fights)
	for i, fight := range schedule.SortByNumber(fights) {
		row := []interface{}{
			fight.FightNumber,
			fight.ExpectedStart.In(loc).Format("15:04"),
			string(fight.FightType),
			fight.WeightClass,
			fight.FighterA,
			fight.FighterAClub,
			fight.FighterB,
			fight.FighterBClub,
			fight.Duration,
			StatusLabel(fight, st),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	f.SetColWidth(sheet, "A", "D", 10)
	f.SetColWidth(sheet, "E", "H", 24)
	f.SetColWidth(sheet, "I", "J", 12)
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeClubsSheet(f *excelize.File, fights []models.Fight, loc *time.Location) error {
	sheet := ClubsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []string{"Club", "#", "Start", "Fighter", "Opponent"}); err != nil {
		return err
	}

	type entry struct {
		club  string
		fight models.Fight
		name  string
		other string
	}
	var entries []entry
	for _, fight := range fights {
		if fight.IsCancelled {
			continue
		}
		entries = append(entries,
			entry{fight.FighterAClub, fight, fight.FighterA, fight.FighterB},
			entry{fight.FighterBClub, fight, fight.FighterB, fight.FighterA},
		)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].club != entries[j].club {
			return entries[i].club < entries[j].club
		}
		return entries[i].fight.FightNumber < entries[j].fight.FightNumber
	})

	for i, e := range entries {
		row := []interface{}{
			e.club,
			e.fight.FightNumber,
			e.fight.ExpectedStart.In(loc).Format("15:04"),
			e.name,
			e.other,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "D", "E", 24)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C00000"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
