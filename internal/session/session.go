package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"rada-learning/internal/learning"
	"rada-learning/internal/models"
)

// Publisher pushes snapshots to live subscribers of a session.
type Publisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

// Action is one engine operation. A non-nil Request asks the session to
// perform that fetch and resolve it.
type Action func(e *learning.Engine) (*learning.Request, error)

// Session hosts one engine. Engine calls run under mu; content fetches run
// outside it so a slow fetch never blocks navigation, and their results are
// resolved against whatever the engine looks like when they come back.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	engine     *learning.Engine
	source     learning.ContentSource
	publisher  Publisher
	lastActive time.Time
	version    uint64 // bumped under mu on every state change

	pubMu     sync.Mutex
	published uint64
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot returns the current view without changing state.
func (s *Session) Snapshot() learning.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.engine.View()
}

// Viewer returns the read-only context the session was created with.
func (s *Session) Viewer() models.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Viewer()
}

// Do applies act and, when it requests content, fetches and resolves it.
// The returned view is always the latest state, also on error. A result
// superseded by later navigation is dropped silently.
func (s *Session) Do(ctx context.Context, act Action) (learning.View, error) {
	s.mu.Lock()
	req, err := act(s.engine)
	s.touch()
	view, version := s.capture()
	s.mu.Unlock()

	if err != nil {
		return view, err
	}
	s.publish(ctx, version, view)
	if req == nil {
		return view, nil
	}

	res := learning.Fetch(ctx, s.source, *req)

	s.mu.Lock()
	err = s.engine.Resolve(res)
	view, version = s.capture()
	s.mu.Unlock()

	if errors.Is(err, learning.ErrStaleResult) {
		log.Printf("Session %s: dropped stale %s result for %s", s.ID, req.Kind, req.ID)
		return view, nil
	}
	s.publish(ctx, version, view)
	return view, err
}

// capture must be called with mu held.
func (s *Session) capture() (learning.View, uint64) {
	s.version++
	return s.engine.View(), s.version
}

// publish sends view unless a newer one has already gone out, so
// subscribers never see the session move backwards.
func (s *Session) publish(ctx context.Context, version uint64, view learning.View) {
	if s.publisher == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if version <= s.published {
		return
	}
	s.published = version
	s.publisher.Publish(ctx, s.ID, models.WSMessage{Type: "snapshot", Payload: view})
}

// Step adapts an engine operation without a fetch to an Action.
func Step(fn func(e *learning.Engine) error) Action {
	return func(e *learning.Engine) (*learning.Request, error) {
		return nil, fn(e)
	}
}
