package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"fight-manager-api/packages/client"
	"fight-manager-api/packages/core/models"
)

type renderer struct {
	palette *client.Palette
	color   bool
	loc     *time.Location
}

func newRenderer(color bool) *renderer {
	return &renderer{
		palette: client.NewPalette(nil),
		color:   color,
		loc:     time.Local,
	}
}

// printCard writes the board as a table. Admin views show edit and reorder
// hints; the viewer only shows the markers.
func (r *renderer) printCard(w io.Writer, board models.Board, admin bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "#\tSTATE\tSTART\tFIGHTER A\tFIGHTER B\tKG\tTYPE\tMIN"
	if admin {
		header += "\tID\tEDIT\tREORDER"
	}
	fmt.Fprintln(tw, header)

	for _, st := range board.Fights {
		f := st.Fight
		row := []string{
			strconv.Itoa(f.FightNumber),
			marker(st),
			f.ExpectedStart.In(r.loc).Format("15:04"),
			r.fighter(f.FighterA, f.FighterAClub),
			r.fighter(f.FighterB, f.FighterBClub),
			strconv.Itoa(f.WeightClass),
			r.paint(client.FightTypeColor(f.FightType), string(f.FightType)),
			strconv.Itoa(f.Duration),
		}
		if admin {
			row = append(row, f.ID, yesNo(st.CanEdit), st.ReorderTooltip)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func marker(st models.FightState) string {
	switch {
	case st.Fight.IsCancelled:
		return "CANCELLED"
	case st.Fight.IsCompleted:
		return "DONE"
	case st.IsOngoing:
		return "ONGOING"
	case st.IsReady:
		return "READY"
	case st.IsNext:
		return "NEXT"
	}
	return ""
}

func (r *renderer) fighter(name, club string) string {
	return name + " (" + r.paint(r.palette.Club(club), club) + ")"
}

// paint wraps s in a 24-bit ANSI colour taken from a #rrggbb value.
func (r *renderer) paint(hex, s string) string {
	if !r.color || len(hex) != 7 || hex[0] != '#' {
		return s
	}
	rgb, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", rgb>>16&0xff, rgb>>8&0xff, rgb&0xff, s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
