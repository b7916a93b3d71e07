package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(Deps{}, ManagerConfig{MaxSessions: 2})

	a, err := m.Create()
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	b, err := m.Create()
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if a.ID() == b.ID() || a.ID() == "" {
		t.Errorf("ids = %q, %q", a.ID(), b.ID())
	}
	if _, err := m.Create(); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("third Create() err = %v, want ErrTooManySessions", err)
	}

	if got, ok := m.Get(a.ID()); !ok || got != a {
		t.Error("Get() should return the created session")
	}
	if !m.Delete(a.ID()) || m.Delete(a.ID()) {
		t.Error("Delete() should succeed once")
	}
	if _, ok := m.Get(a.ID()); ok {
		t.Error("deleted session still reachable")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(Deps{}, ManagerConfig{IdleTTL: time.Minute})
	stale, _ := m.Create()
	fresh, _ := m.Create()
	if _, err := fresh.Send(context.Background(), "Ada"); err != nil {
		t.Fatal(err)
	}

	if n := m.Sweep(time.Now()); n != 0 {
		t.Errorf("Sweep(now) removed %d, want 0", n)
	}
	if n := m.Sweep(time.Now().Add(2 * time.Minute)); n != 2 {
		t.Errorf("Sweep(+2m) removed %d, want 2", n)
	}
	if _, ok := m.Get(stale.ID()); ok {
		t.Error("stale session should be gone")
	}
}

func TestManagerSweepKeepsBusySessions(t *testing.T) {
	m := NewManager(Deps{}, ManagerConfig{IdleTTL: time.Minute})
	s, _ := m.Create()
	if _, err := s.begin(Message{Text: "hi"}, nil); err != nil {
		t.Fatal(err)
	}
	if n := m.Sweep(time.Now().Add(time.Hour)); n != 0 {
		t.Errorf("busy session swept")
	}
	s.finish()
	if n := m.Sweep(time.Now().Add(time.Hour)); n != 1 {
		t.Errorf("Sweep() removed %d after finish, want 1", n)
	}
}

func TestManagerStartStop(t *testing.T) {
	bad := NewManager(Deps{}, ManagerConfig{SweepSpec: "not a spec"})
	if err := bad.Start(); err == nil {
		t.Error("Start() with a bad spec should fail")
	}

	m := NewManager(Deps{}, ManagerConfig{})
	if err := m.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Errorf("second Start() returned error: %v", err)
	}
	m.Stop()
	m.Stop()
}
