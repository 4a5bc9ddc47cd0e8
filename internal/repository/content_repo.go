package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rada-learning/internal/models"
)

type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const moduleColumns = `id, title, subtitle, category, difficulty, duration, xp_reward`

func scanModule(row pgx.Row, m *models.Module) error {
	var difficulty string
	if err := row.Scan(&m.ID, &m.Title, &m.Subtitle, &m.Category, &difficulty, &m.Duration, &m.XPReward); err != nil {
		return err
	}
	m.Difficulty = models.Difficulty(difficulty)
	return nil
}

func (r *ContentRepo) ListModules(ctx context.Context) ([]models.Module, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY position, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]models.Module, 0)
	for rows.Next() {
		var m models.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// GetModule returns the module with its ordered lessons and sections.
// Quizzes are left empty; see GetModuleQuizzes.
func (r *ContentRepo) GetModule(ctx context.Context, id string) (*models.Module, error) {
	m := &models.Module{}
	err := scanModule(r.pool.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id), m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("module %s: %w", id, models.ErrContentNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, module_id, title, type, duration, position, content, video_url
		 FROM lessons WHERE module_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var l models.Lesson
		var typ string
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &typ, &l.Duration, &l.Order, &l.Content, &l.VideoURL); err != nil {
			rows.Close()
			return nil, err
		}
		l.Type = models.LessonType(typ)
		m.Lessons = append(m.Lessons, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadSections(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ContentRepo) loadSections(ctx context.Context, m *models.Module) error {
	if len(m.Lessons) == 0 {
		return nil
	}
	byLesson := make(map[string]int, len(m.Lessons))
	for i := range m.Lessons {
		byLesson[m.Lessons[i].ID] = i
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.lesson_id, s.type, s.title, s.content, s.video_url
		 FROM lesson_sections s JOIN lessons l ON l.id = s.lesson_id
		 WHERE l.module_id = $1 ORDER BY s.lesson_id, s.position`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lessonID, typ string
		var s models.Section
		if err := rows.Scan(&lessonID, &typ, &s.Title, &s.Content, &s.VideoURL); err != nil {
			return err
		}
		s.Type = models.LessonType(typ)
		if i, ok := byLesson[lessonID]; ok {
			m.Lessons[i].Sections = append(m.Lessons[i].Sections, s)
		}
	}
	return rows.Err()
}

const quizColumns = `id, module_id, title, description, time_limit, passing_score, xp_reward`

func (r *ContentRepo) GetModuleQuizzes(ctx context.Context, moduleID string) ([]models.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE module_id = $1 ORDER BY position`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]models.Quiz, 0)
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.TimeLimit, &q.PassingScore, &q.XPReward); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// GetQuiz returns the quiz with its questions in order.
func (r *ContentRepo) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	q := &models.Quiz{}
	err := r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id).Scan(
		&q.ID, &q.ModuleID, &q.Title, &q.Description, &q.TimeLimit, &q.PassingScore, &q.XPReward,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, models.ErrContentNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text, options, correct_answer_index, explanation
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var question models.Question
		var options []byte
		if err := rows.Scan(&question.ID, &question.QuestionText, &options, &question.CorrectAnswerIndex, &question.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, fmt.Errorf("quiz %s question %s: bad options: %w", id, question.ID, err)
		}
		q.Questions = append(q.Questions, question)
	}
	return q, rows.Err()
}

// UpsertModule replaces a module, its lessons and its quizzes in one
// transaction. position orders the module within the catalog.
func (r *ContentRepo) UpsertModule(ctx context.Context, m *models.Module, position int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO modules (id, title, subtitle, category, difficulty, duration, xp_reward, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET title = $2, subtitle = $3, category = $4, difficulty = $5,
		   duration = $6, xp_reward = $7, position = $8, updated_at = NOW()`,
		m.ID, m.Title, m.Subtitle, m.Category, string(m.Difficulty), m.Duration, m.XPReward, position,
	)
	if err != nil {
		return fmt.Errorf("upsert module %s: %w", m.ID, err)
	}

	// Children are rewritten wholesale; cascades clear sections and questions.
	if _, err := tx.Exec(ctx, "DELETE FROM lessons WHERE module_id = $1", m.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM quizzes WHERE module_id = $1", m.ID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, l := range m.Lessons {
		batch.Queue(
			`INSERT INTO lessons (id, module_id, title, type, duration, position, content, video_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, m.ID, l.Title, string(l.Type), l.Duration, i, l.Content, l.VideoURL,
		)
		for j, s := range l.Sections {
			batch.Queue(
				`INSERT INTO lesson_sections (lesson_id, position, type, title, content, video_url)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				l.ID, j, string(s.Type), s.Title, s.Content, s.VideoURL,
			)
		}
	}
	for i, q := range m.Quizzes {
		batch.Queue(
			`INSERT INTO quizzes (id, module_id, title, description, time_limit, passing_score, xp_reward, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			q.ID, m.ID, q.Title, q.Description, q.TimeLimit, q.EffectivePassingScore(), q.XPReward, i,
		)
		for j, question := range q.Questions {
			options, _ := json.Marshal(question.Options)
			if question.Options == nil {
				options = []byte("[]")
			}
			batch.Queue(
				`INSERT INTO quiz_questions (quiz_id, position, id, question_text, options, correct_answer_index, explanation)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				q.ID, j, question.ID, question.QuestionText, options, question.CorrectAnswerIndex, question.Explanation,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write children of module %s: %w", m.ID, err)
	}

	return tx.Commit(ctx)
}
