package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"rada-learning/internal/models"
)

// ContentAPI reads learning content from the PoliHub REST API.
type ContentAPI struct {
	client *resty.Client
}

func NewContentAPI(baseURL string) *ContentAPI {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Accept", "application/json")
	return &ContentAPI{client: client}
}

func (a *ContentAPI) get(ctx context.Context, path string, pathParams map[string]string, out interface{}) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParams(pathParams).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("content API request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return models.ErrContentNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("content API returned %d for %s", resp.StatusCode(), resp.Request.URL)
	}
	return nil
}

func (a *ContentAPI) ListModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := a.get(ctx, "/learning/modules", nil, &modules); err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []models.Module{}
	}
	return modules, nil
}

func (a *ContentAPI) GetModule(ctx context.Context, id string) (*models.Module, error) {
	var m models.Module
	if err := a.get(ctx, "/learning/modules/{id}", map[string]string{"id": id}, &m); err != nil {
		return nil, fmt.Errorf("module %s: %w", id, err)
	}
	return &m, nil
}

func (a *ContentAPI) GetModuleQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := a.get(ctx, "/learning/modules/{id}/quizzes", map[string]string{"id": moduleID}, &quizzes); err != nil {
		return nil, fmt.Errorf("quizzes of module %s: %w", moduleID, err)
	}
	return quizzes, nil
}

func (a *ContentAPI) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	var q models.Quiz
	if err := a.get(ctx, "/learning/quizzes/{id}", map[string]string{"id": id}, &q); err != nil {
		return nil, fmt.Errorf("quiz %s: %w", id, err)
	}
	return &q, nil
}
