package learning

import (
	"context"

	"rada-learning/internal/models"
)

type RequestKind string

const (
	RequestModule RequestKind = "module"
	RequestQuiz   RequestKind = "quiz"
)

// Request is a content fetch the engine wants performed. Token increases
// monotonically per engine; only the result carrying the latest outstanding
// token is applied.
type Request struct {
	Token uint64      `json:"token"`
	Kind  RequestKind `json:"kind"`
	ID    string      `json:"id"`
}

// Result is the tagged answer to a Request.
type Result struct {
	Token uint64
	Kind  RequestKind
	ID    string

	Module *models.Module // RequestModule; Quizzes filled from GetModuleQuizzes
	Quiz   *models.Quiz   // RequestQuiz
	Err    error
}

// ContentSource is the external content collaborator.
type ContentSource interface {
	ListModules(ctx context.Context) ([]models.Module, error)
	GetModule(ctx context.Context, id string) (*models.Module, error)
	GetModuleQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
}

// RewardHook credits experience points. Implementations should not block;
// the engine ignores their failures beyond logging.
type RewardHook interface {
	AwardXP(ctx context.Context, action string, amount int, refID, refType string) error
}

const (
	ActionCompleteQuiz = "complete_quiz"
	RefTypeQuiz        = "quiz"
)

// Fetch performs req against src and tags the outcome with the request token.
func Fetch(ctx context.Context, src ContentSource, req Request) Result {
	res := Result{Token: req.Token, Kind: req.Kind, ID: req.ID}
	switch req.Kind {
	case RequestModule:
		m, err := src.GetModule(ctx, req.ID)
		if err != nil {
			res.Err = err
			return res
		}
		quizzes, err := src.GetModuleQuizzes(ctx, req.ID)
		if err != nil {
			res.Err = err
			return res
		}
		m.Quizzes = quizzes
		res.Module = m
	case RequestQuiz:
		res.Quiz, res.Err = src.GetQuiz(ctx, req.ID)
	}
	return res
}
