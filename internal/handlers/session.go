package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rada-learning/internal/catalog"
	"rada-learning/internal/learning"
	"rada-learning/internal/middleware"
	"rada-learning/internal/models"
	"rada-learning/internal/session"
)

type sessionStore interface {
	Create(ctx context.Context, viewer models.Viewer) (*session.Session, error)
	Get(id uuid.UUID) (*session.Session, error)
	Delete(id uuid.UUID) error
}

type snapshotStream interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID uuid.UUID, initial models.WSMessage)
	Close(sessionID uuid.UUID)
}

type SessionHandler struct {
	sessions sessionStore
	stream   snapshotStream
	// When set, only viewers from a verified token may earn XP.
	requireSignedViewer bool
}

func NewSessionHandler(sessions sessionStore, stream snapshotStream, requireSignedViewer bool) *SessionHandler {
	return &SessionHandler{sessions: sessions, stream: stream, requireSignedViewer: requireSignedViewer}
}

type sessionResponse struct {
	SessionID uuid.UUID     `json:"session_id"`
	Viewer    models.Viewer `json:"viewer"`
	View      learning.View `json:"view"`
}

func (h *SessionHandler) viewerFor(r *http.Request, fromBody models.Viewer) models.Viewer {
	if v, ok := middleware.GetViewer(r.Context()); ok {
		return v
	}
	if h.requireSignedViewer {
		fromBody.CanEarnXP = false
	}
	return fromBody
}

// POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Viewer models.Viewer `json:"viewer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	viewer := h.viewerFor(r, req.Viewer)
	s, err := h.sessions.Create(r.Context(), viewer)
	if err != nil {
		log.Printf("Session create failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResp("CONTENT_UNAVAILABLE", "Catalog could not be loaded", r))
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID, Viewer: viewer, View: s.Snapshot()})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		handleEngineError(w, r, err)
		return nil, false
	}
	return s, true
}

// GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: s.ID, Viewer: s.Viewer(), View: s.Snapshot()})
}

// DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(s.ID); err != nil {
		handleEngineError(w, r, err)
		return
	}
	if h.stream != nil {
		h.stream.Close(s.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/sessions/{id}/ws
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.stream.Serve(w, r, s.ID, models.WSMessage{Type: "snapshot", Payload: s.Snapshot()})
}

func (h *SessionHandler) do(w http.ResponseWriter, r *http.Request, act session.Action) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := s.Do(r.Context(), act)
	if err != nil {
		handleEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: s.ID, Viewer: s.Viewer(), View: view})
}

// POST /api/v1/sessions/{id}/home
func (h *SessionHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).Home))
}

// POST /api/v1/sessions/{id}/browse
func (h *SessionHandler) Browse(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).Browse))
}

// POST /api/v1/sessions/{id}/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).Back))
}

// POST /api/v1/sessions/{id}/challenges
func (h *SessionHandler) OpenChallenges(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).OpenChallenges))
}

// POST /api/v1/sessions/{id}/catalog/more
func (h *SessionHandler) ShowMore(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).ShowMore))
}

// POST /api/v1/sessions/{id}/module/retry
func (h *SessionHandler) RetryModule(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, (*learning.Engine).RetryModule)
}

// POST /api/v1/sessions/{id}/lesson/next
func (h *SessionHandler) NextSection(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, (*learning.Engine).NextSection)
}

// POST /api/v1/sessions/{id}/lesson/previous
func (h *SessionHandler) PreviousSection(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).PreviousSection))
}

// POST /api/v1/sessions/{id}/quiz/previous
func (h *SessionHandler) PreviousQuestion(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).PreviousQuestion))
}

// POST /api/v1/sessions/{id}/quiz/retry
func (h *SessionHandler) RetryQuiz(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).RetryQuiz))
}

// POST /api/v1/sessions/{id}/quiz/continue
func (h *SessionHandler) ContinueLearning(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, session.Step((*learning.Engine).ContinueLearning))
}

// POST /api/v1/sessions/{id}/challenges/{challengeId}
func (h *SessionHandler) OpenChallenge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "challengeId")
	h.do(w, r, session.Step(func(e *learning.Engine) error { return e.OpenChallenge(id) }))
}

// POST /api/v1/sessions/{id}/modules/{moduleId}
func (h *SessionHandler) OpenModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "moduleId")
	h.do(w, r, func(e *learning.Engine) (*learning.Request, error) { return e.OpenModule(id) })
}

// POST /api/v1/sessions/{id}/lessons/{lessonId}
func (h *SessionHandler) OpenLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "lessonId")
	h.do(w, r, session.Step(func(e *learning.Engine) error { return e.OpenLesson(id) }))
}

// POST /api/v1/sessions/{id}/quizzes/{quizId}
func (h *SessionHandler) OpenQuiz(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quizId")
	h.do(w, r, func(e *learning.Engine) (*learning.Request, error) { return e.OpenQuiz(id) })
}

// POST /api/v1/sessions/{id}/catalog/filter
func (h *SessionHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query      string `json:"q"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	f := catalog.Filter{Query: req.Query, Category: req.Category, Difficulty: req.Difficulty}
	h.do(w, r, session.Step(func(e *learning.Engine) error { return e.SetFilter(f) }))
}

// POST /api/v1/sessions/{id}/quiz/select
func (h *SessionHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option *int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"option": "required"}, r))
		return
	}
	option := *req.Option
	h.do(w, r, session.Step(func(e *learning.Engine) error { return e.SelectAnswer(option) }))
}

// POST /api/v1/sessions/{id}/quiz/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	// Reward delivery must not be cut short by the client going away.
	ctx := context.WithoutCancel(r.Context())
	h.do(w, r, session.Step(func(e *learning.Engine) error { return e.Advance(ctx) }))
}
