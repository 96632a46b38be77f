package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/control"
)

type mockRecorder struct {
	messages []string
}

func (m *mockRecorder) WriteControlMessage(component, message string) {
	m.messages = append(m.messages, component+":"+message)
}

func newTestSupervisor() (*Supervisor, *control.Mailbox, *control.Mailbox, *mockRecorder) {
	inbox := control.NewMailbox()
	flipper := control.NewMailbox()
	rec := &mockRecorder{}
	s := New(Options{Inbox: inbox, Flipper: flipper, Recorder: rec})
	return s, inbox, flipper, rec
}

func TestHandle_Routing(t *testing.T) {
	tests := []struct {
		name    string
		in      control.Message
		forward control.Kind // zero means nothing forwarded
	}{
		{"tick", control.Tick(), control.KindCheckDue},
		{"broker refresh", control.BrokerRefreshSignal(), control.KindRefreshRequested},
		{"out of date", control.OutOfDate(), 0},
		{"updated", control.Updated(), 0},
		{"check complete", control.CheckComplete(), 0},
		{"misrouted check due", control.CheckDue(), 0},
		{"misrouted refresh", control.RefreshRequested(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, flipper, _ := newTestSupervisor()

			if err := s.Handle(tt.in); err != nil {
				t.Fatalf("Handle(%v) error = %v", tt.in, err)
			}

			if tt.forward == 0 {
				if flipper.Len() != 0 {
					t.Errorf("forwarded %d messages, want 0", flipper.Len())
				}
				return
			}
			if flipper.Len() != 1 {
				t.Fatalf("forwarded %d messages, want exactly 1", flipper.Len())
			}
			got, _ := flipper.Recv(context.Background())
			if got.Kind() != tt.forward {
				t.Errorf("forwarded %v, want %v", got.Kind(), tt.forward)
			}
		})
	}
}

func TestHandle_ErrorOccurredIsFatal(t *testing.T) {
	s, _, flipper, _ := newTestSupervisor()

	err := s.Handle(control.ErrorOccurred("x"))
	if !errors.Is(err, ErrFatalMessage) {
		t.Fatalf("Handle() error = %v, want ErrFatalMessage", err)
	}
	if !strings.Contains(err.Error(), "x") {
		t.Errorf("error %q does not carry the message text", err)
	}
	if flipper.Len() != 0 {
		t.Error("fatal message was forwarded")
	}
}

func TestHandle_Shutdown(t *testing.T) {
	s, _, _, _ := newTestSupervisor()
	if err := s.Handle(control.Shutdown()); !errors.Is(err, ErrShutdown) {
		t.Errorf("Handle(Shutdown) error = %v, want ErrShutdown", err)
	}
}

func TestHandle_ForwardFailure(t *testing.T) {
	s, _, flipper, _ := newTestSupervisor()
	flipper.Close()

	err := s.Handle(control.Tick())
	if !errors.Is(err, ErrForwardFailed) || !errors.Is(err, control.ErrClosed) {
		t.Errorf("Handle() error = %v, want ErrForwardFailed wrapping ErrClosed", err)
	}
}

func TestHandle_RecordsEveryMessage(t *testing.T) {
	s, _, _, rec := newTestSupervisor()
	_ = s.Handle(control.Tick())
	_ = s.Handle(control.Updated())

	want := []string{"supervisor:Tick", "supervisor:Updated"}
	if len(rec.messages) != len(want) {
		t.Fatalf("recorded %v, want %v", rec.messages, want)
	}
	for i := range want {
		if rec.messages[i] != want[i] {
			t.Errorf("recorded[%d] = %q, want %q", i, rec.messages[i], want[i])
		}
	}
}

func TestRun_TickThenFatal(t *testing.T) {
	s, inbox, flipper, _ := newTestSupervisor()
	_ = inbox.Send(control.Tick())
	_ = inbox.Send(control.ErrorOccurred("x"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Run(ctx)
	if !errors.Is(err, ErrFatalMessage) || !strings.Contains(err.Error(), "x") {
		t.Errorf("Run() error = %v, want fatal error containing %q", err, "x")
	}
	if flipper.Len() != 1 {
		t.Errorf("flipper received %d messages, want exactly 1 CheckDue", flipper.Len())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _, _, _ := newTestSupervisor()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
