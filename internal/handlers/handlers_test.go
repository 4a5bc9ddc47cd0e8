package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rada-learning/internal/learning"
	"rada-learning/internal/middleware"
	"rada-learning/internal/models"
	"rada-learning/internal/session"
)

type stubContent struct {
	modules []models.Module
	quizzes map[string]models.Quiz
	failGet bool
}

func (s *stubContent) ListModules(context.Context) ([]models.Module, error) {
	out := make([]models.Module, len(s.modules))
	for i, m := range s.modules {
		out[i] = m.Summary()
	}
	return out, nil
}

func (s *stubContent) GetModule(_ context.Context, id string) (*models.Module, error) {
	if s.failGet {
		return nil, errors.New("upstream timeout")
	}
	for _, m := range s.modules {
		if m.ID == id {
			m.Quizzes = nil
			return &m, nil
		}
	}
	return nil, models.ErrContentNotFound
}

func (s *stubContent) GetModuleQuizzes(_ context.Context, moduleID string) ([]models.Quiz, error) {
	var out []models.Quiz
	for _, q := range s.quizzes {
		if q.ModuleID == moduleID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubContent) GetQuiz(_ context.Context, id string) (*models.Quiz, error) {
	q, ok := s.quizzes[id]
	if !ok {
		return nil, models.ErrContentNotFound
	}
	return &q, nil
}

func newStubContent() *stubContent {
	return &stubContent{
		modules: []models.Module{
			{ID: "gov", Title: "How Government Works", Category: "Governance", Difficulty: models.DifficultyBeginner,
				Lessons: []models.Lesson{{ID: "L1", Title: "Three Arms", Content: "Executive, legislature, judiciary."}}},
			{ID: "rights", Title: "Bill of Rights", Category: "Rights", Difficulty: models.DifficultyIntermediate},
			{ID: "county", Title: "County Budgets", Category: "Devolution", Difficulty: models.DifficultyAdvanced},
		},
		quizzes: map[string]models.Quiz{
			"Q1": {ID: "Q1", ModuleID: "gov", Title: "Arms quiz", XPReward: 20, Questions: []models.Question{
				{ID: "q1", QuestionText: "Who makes laws?", Options: []string{"Courts", "Parliament"}, CorrectAnswerIndex: 1},
			}},
		},
	}
}

type stubStream struct {
	closed []uuid.UUID
}

func (s *stubStream) Serve(w http.ResponseWriter, r *http.Request, id uuid.UUID, initial models.WSMessage) {
	writeJSON(w, http.StatusOK, initial)
}

func (s *stubStream) Close(id uuid.UUID) {
	s.closed = append(s.closed, id)
}

func withParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}

func newSessionHandler(src *stubContent) (*SessionHandler, *session.Manager) {
	mgr := session.NewManager(session.Options{Source: src, PageSize: 6})
	return NewSessionHandler(mgr, &stubStream{}, false), mgr
}

func createSession(t *testing.T, h *SessionHandler, body string) sessionResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	return decodeSession(t, rr)
}

func call(h http.HandlerFunc, method, path string, params map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = withParams(req, params)
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestSessionHandler_CreateStartsAtHome(t *testing.T) {
	h, _ := newSessionHandler(newStubContent())

	resp := createSession(t, h, `{"viewer":{"user_id":"u-1","can_earn_xp":true}}`)

	if resp.View.Screen != learning.ScreenHome {
		t.Fatalf("expected home screen, got %s", resp.View.Screen)
	}
	if resp.View.Home == nil || len(resp.View.Home.Featured) != 3 {
		t.Fatalf("expected 3 featured modules, got %+v", resp.View.Home)
	}
	if !resp.Viewer.CanEarnXP {
		t.Fatal("expected unsigned viewer to be trusted when signing is disabled")
	}
}

func TestSessionHandler_CreateEmptyBody(t *testing.T) {
	h, _ := newSessionHandler(newStubContent())
	resp := createSession(t, h, "")
	if resp.Viewer.UserID != "" || resp.Viewer.CanEarnXP {
		t.Fatalf("expected anonymous viewer, got %+v", resp.Viewer)
	}
}

func TestSessionHandler_UnsignedViewerCannotEarnXP(t *testing.T) {
	mgr := session.NewManager(session.Options{Source: newStubContent()})
	h := NewSessionHandler(mgr, nil, true)

	resp := createSession(t, h, `{"viewer":{"user_id":"u-1","can_earn_xp":true}}`)
	if resp.Viewer.CanEarnXP {
		t.Fatal("expected unsigned viewer to be downgraded")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	signed := models.Viewer{UserID: "u-2", Role: "citizen", CanEarnXP: true}
	req = req.WithContext(context.WithValue(req.Context(), middleware.ViewerKey, signed))
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	if got := decodeSession(t, rr).Viewer; got != signed {
		t.Fatalf("expected verified viewer %+v, got %+v", signed, got)
	}
}

func TestSessionHandler_LookupErrors(t *testing.T) {
	h, _ := newSessionHandler(newStubContent())

	rr := call(h.Get, http.MethodGet, "/api/v1/sessions/nope", map[string]string{"id": "nope"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rr.Code)
	}

	id := uuid.New().String()
	rr = call(h.Get, http.MethodGet, "/api/v1/sessions/"+id, map[string]string{"id": id}, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
	if code := decodeError(t, rr).Code; code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestSessionHandler_LessonToQuizFlow(t *testing.T) {
	h, _ := newSessionHandler(newStubContent())
	id := createSession(t, h, `{}`).SessionID.String()
	base := "/api/v1/sessions/" + id
	p := func(extra ...string) map[string]string {
		m := map[string]string{"id": id}
		for i := 0; i+1 < len(extra); i += 2 {
			m[extra[i]] = extra[i+1]
		}
		return m
	}

	rr := call(h.OpenModule, http.MethodPost, base+"/modules/gov", p("moduleId", "gov"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("open module: %d %s", rr.Code, rr.Body.String())
	}
	if v := decodeSession(t, rr).View; v.Module == nil || v.Module.Detail == nil {
		t.Fatalf("expected loaded module, got %+v", v)
	}

	rr = call(h.OpenLesson, http.MethodPost, base+"/lessons/L1", p("lessonId", "L1"), "")
	if v := decodeSession(t, rr).View; v.Screen != learning.ScreenLesson {
		t.Fatalf("expected lesson screen, got %s", v.Screen)
	}

	// Single-section lesson auto-chains into the module's first quiz.
	rr = call(h.NextSection, http.MethodPost, base+"/lesson/next", p(), "")
	v := decodeSession(t, rr).View
	if v.Screen != learning.ScreenQuiz || v.Quiz == nil {
		t.Fatalf("expected quiz screen, got %s", v.Screen)
	}

	rr = call(h.Advance, http.MethodPost, base+"/quiz/advance", p(), "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when advancing without a selection, got %d", rr.Code)
	}

	rr = call(h.SelectAnswer, http.MethodPost, base+"/quiz/select", p(), `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing option, got %d", rr.Code)
	}
	if fields := decodeError(t, rr).Fields; fields["option"] != "required" {
		t.Fatalf("expected option field error, got %v", fields)
	}

	rr = call(h.SelectAnswer, http.MethodPost, base+"/quiz/select", p(), `{"option":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("select: %d %s", rr.Code, rr.Body.String())
	}
	call(h.Advance, http.MethodPost, base+"/quiz/advance", p(), "")

	rr = call(h.SelectAnswer, http.MethodPost, base+"/quiz/select", p(), `{"option":0}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 when changing a checked answer, got %d", rr.Code)
	}

	rr = call(h.Advance, http.MethodPost, base+"/quiz/advance", p(), "")
	v = decodeSession(t, rr).View
	if v.Screen != learning.ScreenQuizResult || v.QuizResult.Result.Percentage != 100 {
		t.Fatalf("expected 100%% result, got %+v", v.QuizResult)
	}

	rr = call(h.ContinueLearning, http.MethodPost, base+"/quiz/continue", p(), "")
	if v := decodeSession(t, rr).View; v.Screen != learning.ScreenModuleDetail {
		t.Fatalf("expected module detail after continue, got %s", v.Screen)
	}
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	src := newStubContent()
	h, _ := newSessionHandler(src)
	id := createSession(t, h, `{}`).SessionID.String()
	base := "/api/v1/sessions/" + id

	rr := call(h.Back, http.MethodPost, base+"/back", map[string]string{"id": id}, "")
	if rr.Code != http.StatusConflict || decodeError(t, rr).Code != "INVALID_TRANSITION" {
		t.Fatalf("expected 409 INVALID_TRANSITION for back on home, got %d", rr.Code)
	}

	rr = call(h.OpenModule, http.MethodPost, base+"/modules/x", map[string]string{"id": id, "moduleId": "x"}, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for module outside catalog, got %d", rr.Code)
	}

	src.failGet = true
	rr = call(h.OpenModule, http.MethodPost, base+"/modules/gov", map[string]string{"id": id, "moduleId": "gov"}, "")
	if rr.Code != http.StatusBadGateway || decodeError(t, rr).Code != "CONTENT_UNAVAILABLE" {
		t.Fatalf("expected 502 CONTENT_UNAVAILABLE, got %d", rr.Code)
	}

	src.failGet = false
	rr = call(h.RetryModule, http.MethodPost, base+"/module/retry", map[string]string{"id": id}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSessionHandler_DeleteClosesStream(t *testing.T) {
	mgr := session.NewManager(session.Options{Source: newStubContent()})
	stream := &stubStream{}
	h := NewSessionHandler(mgr, stream, false)
	sid := createSession(t, h, `{}`).SessionID

	rr := call(h.Delete, http.MethodDelete, "/api/v1/sessions/"+sid.String(), map[string]string{"id": sid.String()}, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if len(stream.closed) != 1 || stream.closed[0] != sid {
		t.Fatalf("expected stream for %s to be closed, got %v", sid, stream.closed)
	}
	if _, err := mgr.Get(sid); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected session to be gone, got %v", err)
	}
}

func TestHandleEngineError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{learning.ErrNoAnswerSelected, http.StatusBadRequest, "VALIDATION_ERROR"},
		{learning.ErrOptionOutOfRange, http.StatusBadRequest, "VALIDATION_ERROR"},
		{learning.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{learning.ErrNoPreviousSection, http.StatusConflict, "INVALID_TRANSITION"},
		{learning.ErrUnknownLesson, http.StatusNotFound, "NOT_FOUND"},
		{session.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{&learning.FetchError{Kind: learning.RequestQuiz, ID: "Q9", Err: models.ErrContentNotFound}, http.StatusNotFound, "NOT_FOUND"},
		{&learning.FetchError{Kind: learning.RequestQuiz, ID: "Q1", Err: errors.New("timeout")}, http.StatusBadGateway, "CONTENT_UNAVAILABLE"},
		{fmt.Errorf("wrapped: %w", learning.ErrEmptyQuiz), http.StatusConflict, "INVALID_TRANSITION"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("X-Request-ID", "req-1")
			rr := httptest.NewRecorder()
			handleEngineError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			apiErr := decodeError(t, rr)
			if apiErr.Code != tc.code || apiErr.RequestID != "req-1" {
				t.Fatalf("unexpected envelope %+v", apiErr)
			}
		})
	}
}

func TestCatalogHandler_List(t *testing.T) {
	h := NewCatalogHandler(newStubContent(), 2)

	rr := call(h.List, http.MethodGet, "/api/v1/catalog", nil, "")
	var page catalogResponse
	json.NewDecoder(rr.Body).Decode(&page)
	if len(page.Modules) != 2 || page.Total != 3 || !page.HasMore {
		t.Fatalf("expected first page of 2/3, got %+v", page.Page)
	}
	if len(page.Facets.Categories) != 3 {
		t.Fatalf("expected 3 category facets, got %v", page.Facets.Categories)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog?q=budget&difficulty=Advanced", nil)
	rr = httptest.NewRecorder()
	h.List(rr, req)
	page = catalogResponse{}
	json.NewDecoder(rr.Body).Decode(&page)
	if len(page.Modules) != 1 || page.Modules[0].ID != "county" {
		t.Fatalf("expected county module, got %+v", page.Modules)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/catalog?limit=zero", nil)
	rr = httptest.NewRecorder()
	h.List(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestCatalogHandler_Challenge(t *testing.T) {
	h := NewCatalogHandler(newStubContent(), 6)

	rr := call(h.Challenge, http.MethodGet, "/api/v1/challenges/attend-baraza", map[string]string{"id": "attend-baraza"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = call(h.Challenge, http.MethodGet, "/api/v1/challenges/none", map[string]string{"id": "none"}, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
