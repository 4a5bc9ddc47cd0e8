package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rada-learning/internal/learning"
	"rada-learning/internal/metrics"
	"rada-learning/internal/models"
)

var ErrNotFound = errors.New("session not found")

// RewardFactory builds the reward hook handed to a new session's engine.
type RewardFactory func(sessionID uuid.UUID, viewer models.Viewer) learning.RewardHook

type Options struct {
	Source    learning.ContentSource
	Rewards   RewardFactory
	Publisher Publisher
	PageSize  int
	IdleTTL   time.Duration
}

// Manager owns every live session.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts,
		sessions: make(map[uuid.UUID]*Session),
		stopChan: make(chan struct{}),
	}
}

// Create loads the catalog and starts a session on the home screen.
func (m *Manager) Create(ctx context.Context, viewer models.Viewer) (*Session, error) {
	modules, err := m.opts.Source.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	id := uuid.New()
	var hook learning.RewardHook
	if m.opts.Rewards != nil {
		hook = m.opts.Rewards(id, viewer)
	}

	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		engine: learning.New(learning.Options{
			Viewer:   viewer,
			Rewards:  hook,
			Catalog:  modules,
			PageSize: m.opts.PageSize,
		}),
		source:     m.opts.Source,
		publisher:  m.opts.Publisher,
		lastActive: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()
	metrics.ActiveSessions.Set(float64(count))

	return s, nil
}

func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	metrics.ActiveSessions.Set(float64(count))
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle since before cutoff and returns how many went.
func (m *Manager) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()
	metrics.ActiveSessions.Set(float64(count))
	return removed
}

// Start runs the idle sweeper until Stop.
func (m *Manager) Start() {
	if m.opts.IdleTTL <= 0 {
		return
	}
	interval := m.opts.IdleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				if n := m.Sweep(time.Now().Add(-m.opts.IdleTTL)); n > 0 {
					log.Printf("Expired %d idle sessions", n)
				}
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}
