package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var ErrTooManySessions = errors.New("too many sessions")

type ManagerConfig struct {
	IdleTTL     time.Duration
	SweepSpec   string
	MaxSessions int
}

// Manager owns the live sessions. Sessions live only in memory and are
// dropped by Sweep once idle past IdleTTL.
type Manager struct {
	deps Deps
	cfg  ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
	cron     *cron.Cron
}

func NewManager(deps Deps, cfg ManagerConfig) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepSpec == "" {
		cfg.SweepSpec = "@every 1m"
	}
	return &Manager{deps: deps, cfg: cfg, sessions: map[string]*Session{}}
}

func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}
	s := NewSession(uuid.NewString(), m.deps)
	m.sessions[s.ID()] = s
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle longer than IdleTTL at now. Sessions with a
// step in flight are kept.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.idle(now, m.cfg.IdleTTL) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(m.cfg.SweepSpec, m.sweepNow); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", m.cfg.SweepSpec, err)
	}
	c.Start()
	m.cron = c
	hlog.Infof("session sweep scheduled: %s ttl=%s", m.cfg.SweepSpec, m.cfg.IdleTTL)
	return nil
}

func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (m *Manager) sweepNow() {
	if n := m.Sweep(time.Now()); n > 0 {
		hlog.Infof("session sweep: removed %d idle sessions, %d live", n, m.Len())
	}
}
