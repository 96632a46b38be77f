package switcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/FreeMasen/robohome-switcher/internal/flip"
	"github.com/FreeMasen/robohome-switcher/internal/supervisor"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

type mockSource struct {
	flips []flip.Flip
	err   error
}

func (m *mockSource) TodayFlips(context.Context, time.Time) ([]flip.Flip, error) {
	return m.flips, m.err
}

type mockPublisher struct {
	mu   sync.Mutex
	sent []int
	fire chan int
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{fire: make(chan int, 16)}
}

func (m *mockPublisher) PublishToggle(_, switchID int, _ flip.Direction) error {
	m.mu.Lock()
	m.sent = append(m.sent, switchID)
	m.mu.Unlock()
	m.fire <- switchID
	return nil
}

type mockSubscriber struct {
	mu         sync.Mutex
	handler    func(string, []byte, func())
	subscribed chan struct{}
	err        error
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{subscribed: make(chan struct{})}
}

func (m *mockSubscriber) SubscribeAck(_ string, _ byte, handler func(string, []byte, func())) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
	close(m.subscribed)
	return nil
}

func (m *mockSubscriber) Unsubscribe(string) error { return nil }

func (m *mockSubscriber) deliver(t *testing.T, payload string) {
	t.Helper()
	select {
	case <-m.subscribed:
	case <-time.After(time.Second):
		t.Fatal("listener never subscribed")
	}
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()
	handler("robohome/switches/refresh", []byte(payload), func() {})
}

type recordingRecorder struct {
	mu       sync.Mutex
	flips    int
	messages int
}

func (r *recordingRecorder) WriteFlip(int, int, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flips++
}

func (r *recordingRecorder) WriteControlMessage(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages++
}

func morning() time.Time {
	return time.Date(2026, time.March, 4, 7, 30, 0, 0, time.UTC)
}

func dueFlip() flip.Flip {
	return flip.Flip{
		ID:        1,
		Direction: flip.On,
		Time:      flip.TimeSpec{Hour: 7, Minute: 0, Meridiem: flip.AM, Days: flip.EveryDay},
		SwitchID:  42,
		RemoteID:  3,
	}
}

func newTestSwitcher(t *testing.T, source *mockSource, pub *mockPublisher, sub *mockSubscriber, rec Recorder) *Switcher {
	t.Helper()
	sw, err := New(Options{
		Source:       source,
		Publisher:    pub,
		Subscriber:   sub,
		TickInterval: 10 * time.Millisecond,
		RefreshTopic: "robohome/switches/refresh",
		QoS:          1,
		Recorder:     rec,
		Now:          morning,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sw
}

func runAsync(ctx context.Context, sw *Switcher) <-chan error {
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestNew_MissingCollaborators(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no source", Options{Publisher: newMockPublisher(), Subscriber: newMockSubscriber()}},
		{"no publisher", Options{Source: &mockSource{}, Subscriber: newMockSubscriber()}},
		{"no subscriber", Options{Source: &mockSource{}, Publisher: newMockPublisher()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, ErrMissingCollaborator) {
				t.Errorf("New() error = %v, want ErrMissingCollaborator", err)
			}
		})
	}
}

func TestRun_FiresDueFlipAndStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pub := newMockPublisher()
	rec := &recordingRecorder{}
	sw := newTestSwitcher(t, &mockSource{flips: []flip.Flip{dueFlip()}}, pub, newMockSubscriber(), rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, sw)

	select {
	case id := <-pub.fire:
		if id != 42 {
			t.Errorf("published switch %d, want 42", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("due flip was never published")
	}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.sent) != 1 {
		t.Errorf("published %d toggles, want exactly 1", len(pub.sent))
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.flips != 1 || rec.messages == 0 {
		t.Errorf("recorded %d flips and %d messages, want 1 and some", rec.flips, rec.messages)
	}
}

func TestRun_BadBrokerMessageIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sub := newMockSubscriber()
	sw := newTestSwitcher(t, &mockSource{}, newMockPublisher(), sub, nil)
	done := runAsync(context.Background(), sw)

	sub.deliver(t, "reboot")

	err := waitDone(t, done)
	if !errors.Is(err, supervisor.ErrFatalMessage) {
		t.Errorf("Run() error = %v, want ErrFatalMessage", err)
	}
}

func TestRun_FetchFailureStopsGroup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	errDB := errors.New("database is locked")
	sw := newTestSwitcher(t, &mockSource{err: errDB}, newMockPublisher(), newMockSubscriber(), nil)

	err := waitDone(t, runAsync(context.Background(), sw))
	if !errors.Is(err, errDB) {
		t.Errorf("Run() error = %v, want %v", err, errDB)
	}
}

func TestRun_SubscribeFailureStopsGroup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sub := newMockSubscriber()
	sub.err = errors.New("not connected")
	sw := newTestSwitcher(t, &mockSource{}, newMockPublisher(), sub, nil)

	if err := waitDone(t, runAsync(context.Background(), sw)); err == nil {
		t.Error("Run() error = nil, want subscribe failure")
	}
}

func TestRun_ShutdownIsClean(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sw := newTestSwitcher(t, &mockSource{}, newMockPublisher(), newMockSubscriber(), nil)
	if err := sw.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if err := waitDone(t, runAsync(context.Background(), sw)); err != nil {
		t.Errorf("Run() error = %v, want nil after Shutdown", err)
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	sw := newTestSwitcher(t, &mockSource{}, newMockPublisher(), newMockSubscriber(), nil)
	_ = sw.Shutdown()
	_ = sw.Run(context.Background())

	if err := sw.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRun", err)
	}
}
