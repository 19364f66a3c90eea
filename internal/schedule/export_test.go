package schedule

import (
	"strings"
	"testing"
	"time"
)

func TestExportICal_WeeklyRules(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	shows := Schedule{
		{Title: "Drive Time Mess", Host: "Mx Chaos", Days: []string{"Monday", "Friday"}, Start: "17:00", End: "19:00"},
		{Title: "Overnight", Days: []string{"Saturday"}, Start: "23:00", End: "02:00"},
		{Title: "Broken", Days: []string{"Saturday"}, Start: "nope", End: "02:00"},
	}
	// Sunday 2026-10-18.
	out := ExportICal("HOTMESS Radio", shows, time.Date(2026, 10, 18, 9, 0, 0, 0, loc))
	body := string(out.Data)

	if out.Filename != "hotmess-radio-schedule-2026-10-18.ics" {
		t.Fatalf("unexpected filename %q", out.Filename)
	}
	if strings.Count(body, "BEGIN:VEVENT") != 1 {
		t.Fatalf("expected exactly one event, got:\n%s", body)
	}
	for _, want := range []string{
		"DTSTART;TZID=Europe/London:20261019T170000\r\n",
		"DTEND;TZID=Europe/London:20261019T190000\r\n",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,FR\r\n",
		"SUMMARY:Drive Time Mess\r\n",
		"DESCRIPTION:Hosted by Mx Chaos\r\n",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestEscapeICalText(t *testing.T) {
	if got := escapeICalText("a,b;c\\d\ne"); got != "a\\,b\\;c\\\\d\\ne" {
		t.Fatalf("unexpected %q", got)
	}
}
