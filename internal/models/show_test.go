package models

import (
	"testing"

	"github.com/SICQR/hotmess/internal/schedule"
)

func TestShowSlotFromDefinition_PadsClocks(t *testing.T) {
	slot := ShowSlotFromDefinition(schedule.ShowDefinition{
		Title: "Early Doors",
		Days:  []string{"Monday"},
		Start: "7:05",
		End:   " 09:30 ",
	}, 2)
	if slot.Start != "07:05" || slot.End != "09:30" {
		t.Fatalf("expected padded clocks, got %q-%q", slot.Start, slot.End)
	}
	if slot.Position != 2 || !slot.Active {
		t.Fatalf("unexpected slot %+v", slot)
	}

	def := slot.Definition()
	if def.Start != "07:05" || def.Days[0] != "Monday" {
		t.Fatalf("unexpected definition %+v", def)
	}
}

func TestShowSlotFromDefinition_KeepsInvalidClock(t *testing.T) {
	slot := ShowSlotFromDefinition(schedule.ShowDefinition{Title: "Broken", Start: "25:00", End: "nope"}, 0)
	if slot.Start != "25:00" || slot.End != "nope" {
		t.Fatalf("invalid clocks should pass through, got %q-%q", slot.Start, slot.End)
	}
}
