package schedule

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// 2026-10-18 is a Sunday.
func sunday(hour, minute int) time.Time {
	return time.Date(2026, 10, 18, hour, minute, 0, 0, time.UTC)
}

func friday(hour, minute int) time.Time {
	return time.Date(2026, 10, 23, hour, minute, 0, 0, time.UTC)
}

func TestResolve_HalfOpenWindow(t *testing.T) {
	shows := Schedule{{Title: "Sunday Service", Days: []string{"Sunday"}, Start: "14:00", End: "16:00"}}

	cases := []struct {
		at      time.Time
		current bool
	}{
		{sunday(13, 59), false},
		{sunday(14, 0), true},
		{sunday(15, 59), true},
		{sunday(16, 0), false},
	}
	for _, tc := range cases {
		res := Resolve(shows, tc.at)
		if (res.Current != nil) != tc.current {
			t.Fatalf("at %s: expected current=%v, got %+v", tc.at.Format("15:04"), tc.current, res.Current)
		}
	}
}

func TestResolve_NextSelection(t *testing.T) {
	shows := Schedule{
		{Title: "Late", Days: []string{"Sunday"}, Start: "20:00", End: "22:00"},
		{Title: "Early", Days: []string{"Sunday"}, Start: "18:00", End: "19:00"},
	}

	if res := Resolve(shows, sunday(17, 0)); res.Next == nil || res.Next.Title != "Early" {
		t.Fatalf("expected next Early at 17:00, got %+v", res.Next)
	}
	if res := Resolve(shows, sunday(19, 0)); res.Next == nil || res.Next.Title != "Late" {
		t.Fatalf("expected next Late at 19:00, got %+v", res.Next)
	}
	if res := Resolve(shows, sunday(21, 0)); res.Next != nil {
		t.Fatalf("expected no next at 21:00, got %+v", res.Next)
	}
}

func TestResolve_NextStartsStrictlyAfterQuery(t *testing.T) {
	shows := Schedule{{Title: "Top Of The Hour", Days: []string{"Sunday"}, Start: "18:00", End: "19:00"}}

	res := Resolve(shows, sunday(18, 0))
	if res.Current == nil || res.Current.Title != "Top Of The Hour" {
		t.Fatalf("expected show to be current at its start, got %+v", res.Current)
	}
	if res.Next != nil {
		t.Fatalf("a show starting at the query minute is not next, got %+v", res.Next)
	}
}

func TestResolve_OverlapFirstInInputWins(t *testing.T) {
	shows := Schedule{
		{Title: "A", Days: []string{"Sunday"}, Start: "14:00", End: "15:00"},
		{Title: "B", Days: []string{"Sunday"}, Start: "14:00", End: "15:00"},
	}
	res := Resolve(shows, sunday(14, 30))
	if res.Current == nil || res.Current.Title != "A" {
		t.Fatalf("expected A, got %+v", res.Current)
	}
}

func TestResolve_OverlapEarlierStartWins(t *testing.T) {
	shows := Schedule{
		{Title: "Inner", Days: []string{"Sunday"}, Start: "14:00", End: "15:00"},
		{Title: "Outer", Days: []string{"Sunday"}, Start: "13:00", End: "17:00"},
	}
	res := Resolve(shows, sunday(14, 30))
	if res.Current == nil || res.Current.Title != "Outer" {
		t.Fatalf("expected Outer (earlier start), got %+v", res.Current)
	}
}

func TestResolve_EmptySchedule(t *testing.T) {
	for _, shows := range []Schedule{nil, {}} {
		res := Resolve(shows, sunday(12, 0))
		if res.Current != nil || res.Next != nil || len(res.Issues) != 0 {
			t.Fatalf("expected empty result, got %+v", res)
		}
	}
}

func TestResolve_OtherDaysIgnored(t *testing.T) {
	shows := Schedule{{Title: "Weekday", Days: []string{"Monday", "Tuesday"}, Start: "00:00", End: "23:59"}}
	for h := 0; h < 24; h++ {
		res := Resolve(shows, sunday(h, 0))
		if res.Current != nil || res.Next != nil {
			t.Fatalf("show not airing sunday returned at %02d:00: %+v", h, res)
		}
	}
}

func TestResolve_DriveTimeExample(t *testing.T) {
	shows := Schedule{
		{Title: "Drive Time Mess", Days: []string{"Friday"}, Start: "17:00", End: "19:00"},
		{Title: "Guest DJ Takeover", Days: []string{"Friday"}, Start: "19:00", End: "22:00"},
	}
	res := Resolve(shows, friday(18, 30))
	if res.Current == nil || res.Current.Title != "Drive Time Mess" {
		t.Fatalf("unexpected current: %+v", res.Current)
	}
	if res.Next == nil || res.Next.Title != "Guest DJ Takeover" {
		t.Fatalf("unexpected next: %+v", res.Next)
	}
	if res.CurrentEnd != 19*60 || res.NextStart != 19*60 {
		t.Fatalf("unexpected offsets end=%d start=%d", res.CurrentEnd, res.NextStart)
	}
}

func TestResolve_InvertedWindowNeverCurrent(t *testing.T) {
	shows := Schedule{{Title: "Overnight", Days: []string{"Sunday"}, Start: "22:00", End: "02:00"}}
	for h := 0; h < 24; h++ {
		if res := Resolve(shows, sunday(h, 30)); res.Current != nil {
			t.Fatalf("inverted window matched at %02d:30", h)
		}
	}
	if res := Resolve(shows, sunday(21, 0)); res.Next == nil {
		t.Fatal("inverted window should still be eligible as next")
	}
}

func TestResolve_MalformedEntriesIsolated(t *testing.T) {
	shows := Schedule{
		{Title: "Broken", Days: []string{"Sunday"}, Start: "14:00", End: "25:00"},
		{Title: "No Colon", Days: []string{"Sunday"}, Start: "1400", End: "1600"},
		{Title: "Nowhere", Start: "14:00", End: "16:00"},
		{Title: "Funday", Days: []string{"Funday"}, Start: "14:00", End: "16:00"},
		{Title: "Good", Days: []string{"Sunday"}, Start: "14:00", End: "16:00"},
	}
	res := Resolve(shows, sunday(14, 30))
	if res.Current == nil || res.Current.Title != "Good" {
		t.Fatalf("expected Good, got %+v", res.Current)
	}
	if len(res.Issues) != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", len(res.Issues), res.Issues)
	}
	if !errors.Is(res.Issues[0], ErrBadClock) {
		t.Fatalf("expected ErrBadClock, got %v", res.Issues[0])
	}
	if !errors.Is(res.Issues[2], ErrNoDays) {
		t.Fatalf("expected ErrNoDays, got %v", res.Issues[2])
	}
	if !errors.Is(res.Issues[3], ErrUnknownWeekday) {
		t.Fatalf("expected ErrUnknownWeekday, got %v", res.Issues[3])
	}
	if res.Issues[1].Index != 1 {
		t.Fatalf("expected issue index 1, got %d", res.Issues[1].Index)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	shows := Schedule{
		{Title: "A", Days: []string{"Sunday"}, Start: "10:00", End: "12:00"},
		{Title: "B", Days: []string{"Sunday"}, Start: "11:00", End: "13:00"},
		{Title: "C", Days: []string{"Sunday"}, Start: "13:00", End: "14:00"},
	}
	first := Resolve(shows, sunday(11, 30))
	second := Resolve(shows, sunday(11, 30))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestResolve_ResultDetachedFromInput(t *testing.T) {
	shows := Schedule{{Title: "Original", Days: []string{"Sunday"}, Start: "10:00", End: "12:00"}}
	res := Resolve(shows, sunday(11, 0))
	shows[0].Title = "Mutated"
	if res.Current.Title != "Original" {
		t.Fatalf("result aliased input slice: %q", res.Current.Title)
	}
}

func TestResolve_ConcurrentCallers(t *testing.T) {
	shows := Schedule{
		{Title: "A", Days: []string{"Sunday"}, Start: "10:00", End: "12:00"},
		{Title: "B", Days: []string{"Sunday"}, Start: "12:00", End: "14:00"},
	}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := Resolve(shows, sunday(11, 0))
			if res.Current == nil || res.Current.Title != "A" || res.Next == nil || res.Next.Title != "B" {
				t.Errorf("unexpected result %+v", res)
			}
		}()
	}
	wg.Wait()
}

func TestResolver_UsesStationZone(t *testing.T) {
	loc := time.FixedZone("BST", 60*60)
	shows := Schedule{{Title: "Breakfast", Days: []string{"Monday"}, Start: "07:00", End: "10:00"}}
	r := NewResolver(loc)

	// 06:30 UTC on Monday is 07:30 in the station zone.
	at := time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC)
	if res := r.Resolve(shows, at); res.Current == nil {
		t.Fatal("expected Breakfast to be current in station zone")
	}
	if res := Resolve(shows, at); res.Current != nil {
		t.Fatal("expected no match when resolving in UTC")
	}
}

func TestResolver_ResolveNowReadsClockOnce(t *testing.T) {
	calls := 0
	r := &Resolver{Location: time.UTC, Now: func() time.Time {
		calls++
		return sunday(15, 0)
	}}
	shows := Schedule{{Title: "Afternoon", Days: []string{"sun"}, Start: "14:00", End: "16:00"}}

	res, at := r.ResolveNow(shows)
	if calls != 1 {
		t.Fatalf("expected one clock read, got %d", calls)
	}
	if !at.Equal(sunday(15, 0)) {
		t.Fatalf("unexpected resolution instant %v", at)
	}
	if res.Current == nil {
		t.Fatal("expected current show")
	}
}

func TestDay_SortedAndFiltered(t *testing.T) {
	shows := Schedule{
		{Title: "Evening", Days: []string{"Sunday"}, Start: "19:00", End: "21:00"},
		{Title: "Broken", Days: []string{"Sunday"}, Start: "x", End: "y"},
		{Title: "Morning", Days: []string{"Sunday", "Monday"}, Start: "08:00", End: "10:00"},
		{Title: "Monday Only", Days: []string{"Monday"}, Start: "12:00", End: "13:00"},
		{Title: "Overnight", Days: []string{"Sunday"}, Start: "23:00", End: "02:00"},
		{Title: "Zero Length", Days: []string{"Sunday"}, Start: "12:00", End: "12:00"},
	}
	got := Day(shows, time.Sunday)
	if len(got) != 2 || got[0].Title != "Morning" || got[1].Title != "Evening" {
		t.Fatalf("unexpected lineup: %+v", got)
	}
}

func TestResolve_SignedClockIsMalformed(t *testing.T) {
	shows := Schedule{
		{Title: "Signed", Days: []string{"Sunday"}, Start: "+1:+5", End: "03:00"},
	}
	res := Resolve(shows, sunday(2, 0))
	if res.Current != nil {
		t.Fatalf("signed clock must not match, got %+v", res.Current)
	}
	if len(res.Issues) != 1 || !errors.Is(res.Issues[0], ErrBadClock) {
		t.Fatalf("expected one ErrBadClock issue, got %v", res.Issues)
	}
}

func TestAt(t *testing.T) {
	got := At(sunday(3, 0), 19*60+30)
	if !got.Equal(sunday(19, 30)) {
		t.Fatalf("unexpected instant %v", got)
	}
}
