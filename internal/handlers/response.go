package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rada-learning/internal/learning"
	"rada-learning/internal/models"
	"rada-learning/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleEngineError maps engine and session errors onto the API envelope.
func handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var fetchErr *learning.FetchError
	switch {
	case errors.Is(err, learning.ErrNoAnswerSelected),
		errors.Is(err, learning.ErrOptionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	case errors.Is(err, learning.ErrUnknownModule),
		errors.Is(err, learning.ErrUnknownLesson),
		errors.Is(err, learning.ErrUnknownQuiz),
		errors.Is(err, learning.ErrUnknownChallenge),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, models.ErrContentNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", err.Error(), r))
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, errorResp("CONTENT_UNAVAILABLE", "Content could not be loaded. Please try again.", r))
	case errors.Is(err, learning.ErrInvalidTransition),
		errors.Is(err, learning.ErrAnswerLocked),
		errors.Is(err, learning.ErrNoPreviousQuestion),
		errors.Is(err, learning.ErrNoPreviousSection),
		errors.Is(err, learning.ErrEmptyQuiz),
		errors.Is(err, learning.ErrQuizCompleted),
		errors.Is(err, learning.ErrModuleNotLoaded):
		writeJSON(w, http.StatusConflict, errorResp("INVALID_TRANSITION", err.Error(), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Something went wrong", r))
	}
}
