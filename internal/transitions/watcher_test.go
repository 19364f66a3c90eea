package transitions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/SICQR/hotmess/internal/events"
	"github.com/SICQR/hotmess/internal/nowplaying"
	"github.com/SICQR/hotmess/internal/schedule"
)

type fakeReader struct {
	shows    schedule.Schedule
	err      error
	resolver *schedule.Resolver
}

func (f *fakeReader) Shows(context.Context) (schedule.Schedule, error) { return f.shows, f.err }
func (f *fakeReader) Resolver() *schedule.Resolver                     { return f.resolver }

func newReader() *fakeReader {
	return &fakeReader{
		shows: schedule.Schedule{
			{Title: "Drive Time Mess", Host: "HOTMESS Drive", Days: []string{"Friday"}, Start: "17:00", End: "19:00"},
			{Title: "Guest DJ Takeover", Host: "Rotating Guests", Days: []string{"Friday"}, Start: "19:00", End: "22:00"},
		},
		resolver: schedule.NewResolver(time.UTC),
	}
}

func friday(h, m int) time.Time {
	return time.Date(2026, 10, 23, h, m, 0, 0, time.UTC)
}

func drain(sub events.Subscriber) []events.Payload {
	var out []events.Payload
	for {
		select {
		case p := <-sub:
			out = append(out, p)
		default:
			return out
		}
	}
}

func TestWatcher_FirstCheckOnlyPrimes(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())

	w.Check(context.Background(), friday(17, 30))
	if got := drain(start); len(got) != 0 {
		t.Fatalf("expected no events on first check, got %v", got)
	}
	if cur := w.Current(); cur == nil || cur.Show != "Drive Time Mess" {
		t.Fatalf("expected current to be recorded, got %+v", cur)
	}
}

func TestWatcher_HandoverPublishesEndThenStart(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	end := bus.Subscribe(events.EventShowEnd)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())
	ctx := context.Background()

	w.Check(ctx, friday(18, 59))
	w.Check(ctx, friday(19, 0))

	ended := drain(end)
	if len(ended) != 1 {
		t.Fatalf("expected one show.end, got %d", len(ended))
	}
	if show := ended[0]["show"].(nowplaying.LineupShow); show.Show != "Drive Time Mess" {
		t.Fatalf("unexpected ended show %+v", show)
	}

	started := drain(start)
	if len(started) != 1 {
		t.Fatalf("expected one show.start, got %d", len(started))
	}
	if show := started[0]["show"].(nowplaying.LineupShow); show.Show != "Guest DJ Takeover" || show.EndsAt != "2026-10-23T22:00:00Z" {
		t.Fatalf("unexpected started show %+v", show)
	}
	if _, ok := started[0]["next"]; ok {
		t.Fatal("nothing airs after the last show of the day")
	}
}

func TestWatcher_StartCarriesNextShow(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())
	ctx := context.Background()

	w.Check(ctx, friday(16, 0))
	w.Check(ctx, friday(17, 0))

	started := drain(start)
	if len(started) != 1 {
		t.Fatalf("expected show.start, got %d", len(started))
	}
	next, ok := started[0]["next"].(nowplaying.LineupShow)
	if !ok || next.Show != "Guest DJ Takeover" {
		t.Fatalf("expected next show in payload, got %+v", started[0]["next"])
	}
}

func TestWatcher_OffAirPublishesOnlyEnd(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	end := bus.Subscribe(events.EventShowEnd)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())
	ctx := context.Background()

	w.Check(ctx, friday(21, 0))
	w.Check(ctx, friday(22, 0))

	if got := drain(end); len(got) != 1 {
		t.Fatalf("expected show.end, got %d", len(got))
	}
	if got := drain(start); len(got) != 0 {
		t.Fatalf("expected no show.start, got %d", len(got))
	}
	if w.Current() != nil {
		t.Fatal("expected nothing on air")
	}
}

func TestWatcher_NoChangeNoEvents(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	end := bus.Subscribe(events.EventShowEnd)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())
	ctx := context.Background()

	w.Check(ctx, friday(17, 10))
	w.Check(ctx, friday(17, 40))

	if len(drain(start))+len(drain(end)) != 0 {
		t.Fatal("expected no events while the same show is on air")
	}
}

func TestWatcher_SourceErrorKeepsState(t *testing.T) {
	bus := events.NewBus()
	end := bus.Subscribe(events.EventShowEnd)
	reader := newReader()
	w := NewWatcher(reader, bus, time.Minute, zerolog.Nop())
	ctx := context.Background()

	w.Check(ctx, friday(17, 30))
	reader.err = errors.New("cms down")
	w.Check(ctx, friday(17, 31))

	if got := drain(end); len(got) != 0 {
		t.Fatalf("source error should not end the show, got %v", got)
	}
	if cur := w.Current(); cur == nil || cur.Show != "Drive Time Mess" {
		t.Fatalf("expected state to be kept, got %+v", cur)
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w := NewWatcher(newReader(), events.NewBus(), 10*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

type fixedLeader bool

func (l fixedLeader) IsLeader() bool { return bool(l) }

func TestWatcher_FollowerTracksButDoesNotPublish(t *testing.T) {
	bus := events.NewBus()
	start := bus.Subscribe(events.EventShowStart)
	end := bus.Subscribe(events.EventShowEnd)
	w := NewWatcher(newReader(), bus, time.Minute, zerolog.Nop())
	w.SetLeader(fixedLeader(false))
	ctx := context.Background()

	w.Check(ctx, friday(18, 59))
	w.Check(ctx, friday(19, 0))

	if len(drain(start))+len(drain(end)) != 0 {
		t.Fatal("follower should not publish transitions")
	}
	if cur := w.Current(); cur == nil || cur.Show != "Guest DJ Takeover" {
		t.Fatalf("follower should still track the show on air, got %+v", cur)
	}
}
