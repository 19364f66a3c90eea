package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	valid := map[string]int{
		"00:00": 0,
		"9:05":  545,
		"17:00": 1020,
		"23:59": 1439,
	}
	for in, want := range valid {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseClock(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"", "24:00", "12:60", "1200", "ab:cd", "12:5", "-1:00", "123:00", "+9:30", "-0:00", "+1:+5", "1:-5", " 9:3 "} {
		if _, err := ParseClock(in); !errors.Is(err, ErrBadClock) {
			t.Fatalf("ParseClock(%q): expected ErrBadClock, got %v", in, err)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(1020); got != "17:00" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatClock(65); got != "01:05" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Friday":   time.Friday,
		"friday":   time.Friday,
		" SUNDAY ": time.Sunday,
		"thu":      time.Thursday,
		"Tue":      time.Tuesday,
	}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		if err != nil {
			t.Fatalf("ParseWeekday(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseWeekday(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "fr", "Fridays", "funday"} {
		if _, err := ParseWeekday(in); !errors.Is(err, ErrUnknownWeekday) {
			t.Fatalf("ParseWeekday(%q): expected ErrUnknownWeekday, got %v", in, err)
		}
	}
}

func TestValidate(t *testing.T) {
	shows := Schedule{
		{Title: "Fine", Days: []string{"Monday"}, Start: "10:00", End: "11:00"},
		{Title: "", Days: []string{"Monday"}, Start: "10:00", End: "11:00"},
		{Title: "Overnight", Days: []string{"Saturday"}, Start: "23:00", End: "01:00"},
		{Title: "Zero", Days: []string{"Saturday"}, Start: "12:00", End: "12:00"},
	}
	issues := Validate(shows)
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", issues)
	}
	if !errors.Is(issues[0], ErrEmptyTitle) || issues[0].Index != 1 {
		t.Fatalf("unexpected first issue %v", issues[0])
	}
	if !errors.Is(issues[1], ErrEmptyWindow) || !errors.Is(issues[2], ErrEmptyWindow) {
		t.Fatalf("expected empty window warnings, got %v", issues[1:])
	}
}

func TestEntryErrorMessage(t *testing.T) {
	err := EntryError{Index: 2, Title: "Drive Time Mess", Err: ErrNoDays}
	if got := err.Error(); got != "entry 2 (Drive Time Mess): no days configured" {
		t.Fatalf("unexpected message %q", got)
	}
}
