package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"rada-learning/internal/models"
)

// File is the on-disk catalog format read by the seed importer.
type File struct {
	Modules []models.Module `json:"modules"`
}

// Load decodes and validates a catalog file. Lessons and quizzes inherit the
// module id when they omit it.
func Load(r io.Reader) ([]models.Module, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	var errs []error
	seen := make(map[string]bool)
	for i := range f.Modules {
		m := &f.Modules[i]
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("module #%d: missing id", i))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("module %s: duplicate id", m.ID))
		}
		seen[m.ID] = true
		if m.Title == "" {
			errs = append(errs, fmt.Errorf("module %s: missing title", m.ID))
		}
		switch m.Difficulty {
		case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
		case "":
			m.Difficulty = models.DifficultyBeginner
		default:
			errs = append(errs, fmt.Errorf("module %s: unknown difficulty %q", m.ID, m.Difficulty))
		}
		for j := range m.Lessons {
			if m.Lessons[j].ID == "" {
				errs = append(errs, fmt.Errorf("module %s lesson #%d: missing id", m.ID, j))
			}
			if m.Lessons[j].ModuleID == "" {
				m.Lessons[j].ModuleID = m.ID
			}
		}
		for j := range m.Quizzes {
			q := &m.Quizzes[j]
			if q.ID == "" {
				errs = append(errs, fmt.Errorf("module %s quiz #%d: missing id", m.ID, j))
				continue
			}
			if q.ModuleID == "" {
				q.ModuleID = m.ID
			}
			questionIDs := make(map[string]bool, len(q.Questions))
			for k, question := range q.Questions {
				switch {
				case question.ID == "":
					errs = append(errs, fmt.Errorf("quiz %s question #%d: missing id", q.ID, k))
				case questionIDs[question.ID]:
					errs = append(errs, fmt.Errorf("quiz %s question #%d: duplicate id %q", q.ID, k, question.ID))
				}
				questionIDs[question.ID] = true
				if question.CorrectAnswerIndex < 0 || question.CorrectAnswerIndex >= len(question.Options) {
					errs = append(errs, fmt.Errorf("quiz %s question #%d: correct answer %d outside %d options",
						q.ID, k, question.CorrectAnswerIndex, len(question.Options)))
				}
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Modules, nil
}
