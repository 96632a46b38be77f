package flipper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/control"
	"github.com/FreeMasen/robohome-switcher/internal/flip"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

type mockSource struct {
	flips []flip.Flip
	err   error
	calls int
}

func (m *mockSource) TodayFlips(context.Context, time.Time) ([]flip.Flip, error) {
	m.calls++
	return m.flips, m.err
}

type toggle struct {
	remoteID, switchID int
	direction          flip.Direction
}

type mockPublisher struct {
	sent   []toggle
	failOn int // switch ID to fail on
}

func (m *mockPublisher) PublishToggle(remoteID, switchID int, d flip.Direction) error {
	if m.failOn != 0 && switchID == m.failOn {
		return errors.New("broker unavailable")
	}
	m.sent = append(m.sent, toggle{remoteID, switchID, d})
	return nil
}

// statusLog records status messages in order.
type statusLog struct {
	mu   sync.Mutex
	msgs []control.Kind
	err  error
}

func (s *statusLog) Send(msg control.Message) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg.Kind())
	return nil
}

func (s *statusLog) kinds() []control.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]control.Kind(nil), s.msgs...)
}

type mockRecorder struct {
	kinds []string
}

func (m *mockRecorder) WriteFlip(_, _ int, _ string, kind string) {
	m.kinds = append(m.kinds, kind)
}

// fakeClock is a settable time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, time.UTC)
}

func spec(hour, minute int, m flip.Meridiem) flip.TimeSpec {
	return flip.TimeSpec{Hour: hour, Minute: minute, Meridiem: m, Kind: flip.Custom, Days: flip.EveryDay}
}

func todaysFlips() []flip.Flip {
	return []flip.Flip{
		{ID: 3, Direction: flip.Off, Time: spec(9, 0, flip.PM), SwitchID: 30, RemoteID: 1},
		{ID: 1, Direction: flip.On, Time: spec(6, 0, flip.AM), SwitchID: 10, RemoteID: 1},
		{ID: 2, Direction: flip.Off, Time: spec(7, 15, flip.AM), SwitchID: 20, RemoteID: 2},
	}
}

type harness struct {
	source    *mockSource
	publisher *mockPublisher
	status    *statusLog
	recorder  *mockRecorder
	clock     *fakeClock
	flipper   *Flipper
}

func newHarness(now time.Time) *harness {
	h := &harness{
		source:    &mockSource{flips: todaysFlips()},
		publisher: &mockPublisher{},
		status:    &statusLog{},
		recorder:  &mockRecorder{},
		clock:     &fakeClock{t: now},
	}
	h.flipper = New(Options{
		Source:    h.source,
		Publisher: h.publisher,
		Commands:  control.NewMailbox(),
		Status:    h.status,
		Recorder:  h.recorder,
		Now:       h.clock.Now,
	})
	return h
}

func equalKinds(a, b []control.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestNew_StartsOutOfDate(t *testing.T) {
	h := newHarness(at(4, 7, 30))

	if !h.flipper.IsOutOfDate(h.clock.Now()) {
		t.Error("IsOutOfDate() = false on a new flipper, want true")
	}
	if want := at(3, 0, 0); !h.flipper.CurrentDate().Equal(want) {
		t.Errorf("CurrentDate() = %v, want %v", h.flipper.CurrentDate(), want)
	}
}

func TestCheckDue_StaleRefreshesThenDispatches(t *testing.T) {
	h := newHarness(at(4, 7, 30))

	if err := h.flipper.Handle(context.Background(), control.CheckDue()); err != nil {
		t.Fatalf("Handle(CheckDue) error = %v", err)
	}

	want := []control.Kind{control.KindOutOfDate, control.KindUpdated, control.KindCheckComplete}
	if got := h.status.kinds(); !equalKinds(got, want) {
		t.Errorf("status = %v, want %v", got, want)
	}
	if h.source.calls != 1 {
		t.Errorf("TodayFlips called %d times, want 1", h.source.calls)
	}
	if len(h.publisher.sent) != 2 {
		t.Fatalf("published %d toggles, want 2", len(h.publisher.sent))
	}
	if h.publisher.sent[0] != (toggle{1, 10, flip.On}) || h.publisher.sent[1] != (toggle{2, 20, flip.Off}) {
		t.Errorf("published %v, want switch 10 then 20", h.publisher.sent)
	}
	if pending := h.flipper.Pending(); len(pending) != 1 || pending[0].ID != 3 {
		t.Errorf("Pending() = %v, want only flip 3", pending)
	}
	if h.flipper.IsOutOfDate(h.clock.Now()) {
		t.Error("IsOutOfDate() = true after refresh")
	}
	if len(h.recorder.kinds) != 2 || h.recorder.kinds[0] != "custom" {
		t.Errorf("recorded %v, want two custom flips", h.recorder.kinds)
	}
}

func TestCheckDue_CurrentOnlyDispatches(t *testing.T) {
	h := newHarness(at(4, 5, 0))
	ctx := context.Background()

	if err := h.flipper.Handle(ctx, control.CheckDue()); err != nil {
		t.Fatalf("first CheckDue error = %v", err)
	}
	if len(h.publisher.sent) != 0 {
		t.Fatalf("published %d toggles at 05:00, want 0", len(h.publisher.sent))
	}

	h.status.msgs = nil
	h.clock.t = at(4, 6, 5)
	if err := h.flipper.Handle(ctx, control.CheckDue()); err != nil {
		t.Fatalf("second CheckDue error = %v", err)
	}

	if got, want := h.status.kinds(), []control.Kind{control.KindCheckComplete}; !equalKinds(got, want) {
		t.Errorf("status = %v, want %v", got, want)
	}
	if h.source.calls != 1 {
		t.Errorf("TodayFlips called %d times, want 1", h.source.calls)
	}
	if len(h.publisher.sent) != 1 || h.publisher.sent[0].switchID != 10 {
		t.Errorf("published %v, want switch 10", h.publisher.sent)
	}
}

func TestCheckDue_NewDayRefreshesAgain(t *testing.T) {
	h := newHarness(at(4, 23, 0))
	ctx := context.Background()

	_ = h.flipper.Handle(ctx, control.CheckDue())
	h.clock.t = at(5, 0, 1)
	h.status.msgs = nil

	if err := h.flipper.Handle(ctx, control.CheckDue()); err != nil {
		t.Fatalf("CheckDue error = %v", err)
	}
	if h.source.calls != 2 {
		t.Errorf("TodayFlips called %d times, want 2", h.source.calls)
	}
	if got := h.status.kinds(); len(got) == 0 || got[0] != control.KindOutOfDate {
		t.Errorf("status = %v, want OutOfDate first", got)
	}
}

func TestRefreshRequested_PrunesWithoutPublishing(t *testing.T) {
	h := newHarness(at(4, 7, 30))

	if err := h.flipper.Handle(context.Background(), control.RefreshRequested()); err != nil {
		t.Fatalf("Handle(RefreshRequested) error = %v", err)
	}

	if len(h.publisher.sent) != 0 {
		t.Errorf("published %d toggles, want 0", len(h.publisher.sent))
	}
	if got, want := h.status.kinds(), []control.Kind{control.KindUpdated}; !equalKinds(got, want) {
		t.Errorf("status = %v, want %v", got, want)
	}
	if pending := h.flipper.Pending(); len(pending) != 1 || pending[0].ID != 3 {
		t.Errorf("Pending() = %v, want only flip 3", pending)
	}
}

func TestRefreshRequested_AllDueEmptiesQueue(t *testing.T) {
	h := newHarness(at(4, 23, 59))

	if err := h.flipper.Handle(context.Background(), control.RefreshRequested()); err != nil {
		t.Fatalf("Handle(RefreshRequested) error = %v", err)
	}
	if n := len(h.flipper.Pending()); n != 0 {
		t.Errorf("Pending() has %d flips, want 0", n)
	}
}

func TestHandle_IgnoresOtherMessages(t *testing.T) {
	h := newHarness(at(4, 7, 30))
	ignored := []control.Message{
		control.Tick(), control.OutOfDate(), control.Updated(), control.CheckComplete(),
		control.BrokerRefreshSignal(), control.ErrorOccurred("x"), control.Shutdown(),
	}

	for _, msg := range ignored {
		if err := h.flipper.Handle(context.Background(), msg); err != nil {
			t.Errorf("Handle(%v) error = %v", msg, err)
		}
	}
	if h.source.calls != 0 || len(h.publisher.sent) != 0 || len(h.status.kinds()) != 0 {
		t.Error("ignored messages caused side effects")
	}
}

func TestCheckDue_FetchFailure(t *testing.T) {
	h := newHarness(at(4, 7, 30))
	h.source.err = errors.New("database locked")

	err := h.flipper.Handle(context.Background(), control.CheckDue())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Handle() error = %v, want ErrFetchFailed", err)
	}
	if got, want := h.status.kinds(), []control.Kind{control.KindOutOfDate}; !equalKinds(got, want) {
		t.Errorf("status = %v, want %v", got, want)
	}
	if !h.flipper.IsOutOfDate(h.clock.Now()) {
		t.Error("failed refresh should leave the queue out of date")
	}
}

func TestCheckDue_PublishFailureConsumesFlip(t *testing.T) {
	h := newHarness(at(4, 7, 30))
	h.publisher.failOn = 10

	err := h.flipper.Handle(context.Background(), control.CheckDue())
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("Handle() error = %v, want ErrPublishFailed", err)
	}
	// Flip 1 was popped before the failed publish; flip 2 was never reached.
	pending := h.flipper.Pending()
	if len(pending) != 2 || pending[1].ID != 2 {
		t.Errorf("Pending() = %v, want flips 3 and 2", pending)
	}
	for _, k := range h.status.kinds() {
		if k == control.KindCheckComplete {
			t.Error("CheckComplete sent after a publish failure")
		}
	}
}

func TestCheckDue_StatusFailure(t *testing.T) {
	h := newHarness(at(4, 7, 30))
	h.status.err = control.ErrClosed

	err := h.flipper.Handle(context.Background(), control.CheckDue())
	if !errors.Is(err, ErrStatusFailed) || !errors.Is(err, control.ErrClosed) {
		t.Errorf("Handle() error = %v, want ErrStatusFailed wrapping ErrClosed", err)
	}
	if h.source.calls != 0 {
		t.Error("refresh ran after OutOfDate could not be reported")
	}
}

func TestRun_StopsWhenMailboxClosed(t *testing.T) {
	commands := control.NewMailbox()
	status := &statusLog{}
	source := &mockSource{flips: todaysFlips()}
	clock := &fakeClock{t: at(4, 7, 30)}
	f := New(Options{
		Source:    source,
		Publisher: &mockPublisher{},
		Commands:  commands,
		Status:    status,
		Now:       clock.Now,
	})

	_ = commands.Send(control.CheckDue())
	commands.Close()

	done := make(chan error, 1)
	go func() { done <- f.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after the mailbox closed")
	}
	if got := status.kinds(); len(got) != 3 {
		t.Errorf("status = %v, want the queued CheckDue handled first", got)
	}
}

func TestRun_ReturnsFatalError(t *testing.T) {
	commands := control.NewMailbox()
	f := New(Options{
		Source:    &mockSource{err: errors.New("boom")},
		Publisher: &mockPublisher{},
		Commands:  commands,
		Status:    &statusLog{},
	})
	_ = commands.Send(control.RefreshRequested())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.Run(ctx); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Run() error = %v, want ErrFetchFailed", err)
	}
}
