package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"exam-assembly-server/logger"
	"exam-assembly-server/models"
)

const uniqueViolation = "23505"

// InitDB initializes the PostgreSQL database connection pool
func InitDB(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore is the Store backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log.With("component", "PostgresStore")}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateSchema sets up the necessary tables.
// In a production environment, use a proper migration tool (e.g., golang-migrate).
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		discipline VARCHAR(255) NOT NULL DEFAULT '',
		topic VARCHAR(255) NOT NULL DEFAULT '',
		difficulty VARCHAR(20) NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')),
		question_type VARCHAR(30) NOT NULL CHECK (question_type IN ('multiple_choice', 'true_false', 'short_answer', 'essay')),
		prompt TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS questions_discipline_idx ON questions (lower(discipline));

	CREATE TABLE IF NOT EXISTS alternatives (
		id SERIAL PRIMARY KEY,
		question_id TEXT NOT NULL,
		position INT NOT NULL,
		alt_text TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL DEFAULT FALSE,
		FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE,
		UNIQUE (question_id, position)
	);

	CREATE TABLE IF NOT EXISTS exams (
		id TEXT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		discipline VARCHAR(255) NOT NULL DEFAULT '',
		topic VARCHAR(255) NOT NULL DEFAULT '',
		total_questions INT NOT NULL,
		distribution JSONB NOT NULL,
		selection_mode VARCHAR(20) NOT NULL CHECK (selection_mode IN ('automatic', 'manual')),
		questions JSONB NOT NULL DEFAULT '[]', -- snapshot of the selected questions
		variant_count INT NOT NULL,
		shuffle_questions BOOLEAN NOT NULL DEFAULT FALSE,
		shuffle_alternatives BOOLEAN NOT NULL DEFAULT FALSE,
		access_code VARCHAR(32) NOT NULL UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exam_variants (
		id SERIAL PRIMARY KEY,
		exam_id TEXT NOT NULL,
		position INT NOT NULL,
		label VARCHAR(50) NOT NULL,
		code VARCHAR(10) NOT NULL,
		questions JSONB NOT NULL,
		answer_key JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE,
		UNIQUE (exam_id, position)
	);

	CREATE TABLE IF NOT EXISTS error_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL, -- e.g., "ingestion", "selection", "variants"
		target TEXT,
		error_message TEXT NOT NULL,
		detail TEXT
	);

	CREATE TABLE IF NOT EXISTS admin_events (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		action VARCHAR(255),
		actor VARCHAR(255), -- User email or 'system'
		target TEXT,        -- e.g., exam id, bank path
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(255) PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_by VARCHAR(255)
	);
	`
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	for key, value := range defaultSettings {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO settings (key, value, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO NOTHING
		`, key, value, fmt.Sprintf("Default setting for %s", key))
		if err != nil {
			s.log.Warn("Failed to insert default setting", "key", key, "error", err)
		}
	}
	return nil
}

const questionSelect = `
	SELECT
		q.id, q.discipline, q.topic, q.difficulty, q.question_type, q.prompt, q.explanation,
		COALESCE(
			json_agg(json_build_object('text', a.alt_text, 'is_correct', a.is_correct) ORDER BY a.position)
				FILTER (WHERE a.id IS NOT NULL),
			'[]'
		) AS alternatives
	FROM questions q
	LEFT JOIN alternatives a ON a.question_id = q.id
`

func scanQuestions(rows pgx.Rows) ([]models.Question, error) {
	defer rows.Close()
	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var altJSON []byte
		if err := rows.Scan(&q.ID, &q.Discipline, &q.Topic, &q.Difficulty, &q.Type, &q.Prompt, &q.Explanation, &altJSON); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		if err := json.Unmarshal(altJSON, &q.Alternatives); err != nil {
			return nil, fmt.Errorf("failed to decode alternatives of question %s: %w", q.ID, err)
		}
		if len(q.Alternatives) == 0 {
			q.Alternatives = nil
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListQuestions returns the question pool narrowed by filter.
func (s *PostgresStore) ListQuestions(ctx context.Context, filter models.PoolFilter) ([]models.Question, error) {
	rows, err := s.pool.Query(ctx, questionSelect+`
		WHERE ($1 = '' OR lower(trim(q.discipline)) = lower($1))
		  AND ($2 = '' OR lower(trim(q.topic)) = lower($2))
		GROUP BY q.id
		ORDER BY q.id
	`, strings.TrimSpace(filter.Discipline), strings.TrimSpace(filter.Topic))
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return scanQuestions(rows)
}

// GetQuestionsByIDs returns the questions with the given ids in the order requested.
// Unknown ids are skipped.
func (s *PostgresStore) GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}
	rows, err := s.pool.Query(ctx, questionSelect+`
		WHERE q.id = ANY($1)
		GROUP BY q.id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by id: %w", err)
	}
	found, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids), nil
}

// UpsertQuestions inserts or replaces questions and their alternatives in one transaction.
func (s *PostgresStore) UpsertQuestions(ctx context.Context, questions []models.Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback on error

	for _, q := range questions {
		_, err := tx.Exec(ctx, `
			INSERT INTO questions (id, discipline, topic, difficulty, question_type, prompt, explanation, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (id) DO UPDATE SET
				discipline = EXCLUDED.discipline,
				topic = EXCLUDED.topic,
				difficulty = EXCLUDED.difficulty,
				question_type = EXCLUDED.question_type,
				prompt = EXCLUDED.prompt,
				explanation = EXCLUDED.explanation,
				updated_at = now()
		`, q.ID, q.Discipline, q.Topic, string(q.Difficulty), string(q.Type), q.Prompt, q.Explanation)
		if err != nil {
			return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM alternatives WHERE question_id = $1`, q.ID); err != nil {
			return fmt.Errorf("failed to clear alternatives of question %s: %w", q.ID, err)
		}
		for i, alt := range q.Alternatives {
			_, err := tx.Exec(ctx, `
				INSERT INTO alternatives (question_id, position, alt_text, is_correct)
				VALUES ($1, $2, $3, $4)
			`, q.ID, i, alt.Text, alt.IsCorrect)
			if err != nil {
				return fmt.Errorf("failed to insert alternative %d of question %s: %w", i, q.ID, err)
			}
		}
	}
	return tx.Commit(ctx)
}

const examSelect = `
	SELECT id, title, discipline, topic, total_questions, distribution, selection_mode, questions,
		variant_count, shuffle_questions, shuffle_alternatives, access_code, created_at, updated_at
	FROM exams
`

func scanExam(row pgx.Row) (*models.Exam, error) {
	var e models.Exam
	var distJSON, questionsJSON []byte
	err := row.Scan(&e.ID, &e.Title, &e.Discipline, &e.Topic, &e.TotalQuestions, &distJSON, &e.SelectionMode,
		&questionsJSON, &e.VariantCount, &e.ShuffleQuestions, &e.ShuffleAlternatives, &e.AccessCode, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan exam: %w", err)
	}
	if err := json.Unmarshal(distJSON, &e.Distribution); err != nil {
		return nil, fmt.Errorf("failed to decode distribution of exam %s: %w", e.ID, err)
	}
	if err := json.Unmarshal(questionsJSON, &e.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of exam %s: %w", e.ID, err)
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// CreateExam inserts a new exam record. CreatedAt and UpdatedAt are set on exam.
func (s *PostgresStore) CreateExam(ctx context.Context, exam *models.Exam) error {
	distJSON, questionsJSON, err := encodeExam(exam)
	if err != nil {
		return err
	}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO exams (id, title, discipline, topic, total_questions, distribution, selection_mode, questions,
			variant_count, shuffle_questions, shuffle_alternatives, access_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, exam.ID, exam.Title, exam.Discipline, exam.Topic, exam.TotalQuestions, distJSON, string(exam.SelectionMode), questionsJSON,
		exam.VariantCount, exam.ShuffleQuestions, exam.ShuffleAlternatives, exam.AccessCode).Scan(&exam.CreatedAt, &exam.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccessCodeTaken
		}
		return fmt.Errorf("failed to insert exam %s: %w", exam.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	return scanExam(s.pool.QueryRow(ctx, examSelect+` WHERE id = $1`, id))
}

func (s *PostgresStore) GetExamByAccessCode(ctx context.Context, code string) (*models.Exam, error) {
	return scanExam(s.pool.QueryRow(ctx, examSelect+` WHERE access_code = $1`, code))
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UpdateExam overwrites the stored assembly state of exam.
func (s *PostgresStore) UpdateExam(ctx context.Context, exam *models.Exam) error {
	return updateExam(ctx, s.pool, exam)
}

func updateExam(ctx context.Context, q querier, exam *models.Exam) error {
	distJSON, questionsJSON, err := encodeExam(exam)
	if err != nil {
		return err
	}
	err = q.QueryRow(ctx, `
		UPDATE exams SET
			title = $2, discipline = $3, topic = $4, total_questions = $5, distribution = $6, selection_mode = $7,
			questions = $8, variant_count = $9, shuffle_questions = $10, shuffle_alternatives = $11,
			access_code = $12, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, exam.ID, exam.Title, exam.Discipline, exam.Topic, exam.TotalQuestions, distJSON, string(exam.SelectionMode), questionsJSON,
		exam.VariantCount, exam.ShuffleQuestions, exam.ShuffleAlternatives, exam.AccessCode).Scan(&exam.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return ErrAccessCodeTaken
		}
		return fmt.Errorf("failed to update exam %s: %w", exam.ID, err)
	}
	return nil
}

func encodeExam(exam *models.Exam) ([]byte, []byte, error) {
	distJSON, err := json.Marshal(exam.Distribution)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal distribution for exam %s: %w", exam.ID, err)
	}
	questions := exam.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal questions for exam %s: %w", exam.ID, err)
	}
	return distJSON, questionsJSON, nil
}

// ReplaceVariants swaps every stored variant of an exam for variants.
func (s *PostgresStore) ReplaceVariants(ctx context.Context, examID string, variants []models.Variant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeVariants(ctx, tx, examID, variants); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveVariants stores exam and its new variants in one transaction, so a failure leaves
// both the exam and its previous variants untouched.
func (s *PostgresStore) SaveVariants(ctx context.Context, exam *models.Exam, variants []models.Variant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updatedAt := exam.UpdatedAt
	if err := updateExam(ctx, tx, exam); err != nil {
		exam.UpdatedAt = updatedAt
		return err
	}
	if err := writeVariants(ctx, tx, exam.ID, variants); err != nil {
		exam.UpdatedAt = updatedAt
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		exam.UpdatedAt = updatedAt
		return fmt.Errorf("failed to commit variants of exam %s: %w", exam.ID, err)
	}
	return nil
}

func writeVariants(ctx context.Context, q querier, examID string, variants []models.Variant) error {
	if _, err := q.Exec(ctx, `DELETE FROM exam_variants WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("failed to clear variants of exam %s: %w", examID, err)
	}
	for i, v := range variants {
		questionsJSON, err := json.Marshal(v.Questions)
		if err != nil {
			return fmt.Errorf("failed to marshal questions of %s: %w", v.Label, err)
		}
		keyJSON, err := json.Marshal(v.AnswerKey)
		if err != nil {
			return fmt.Errorf("failed to marshal answer key of %s: %w", v.Label, err)
		}
		_, err = q.Exec(ctx, `
			INSERT INTO exam_variants (exam_id, position, label, code, questions, answer_key)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, examID, i, v.Label, v.Code, questionsJSON, keyJSON)
		if err != nil {
			return fmt.Errorf("failed to insert %s of exam %s: %w", v.Label, examID, err)
		}
	}
	return nil
}

func (s *PostgresStore) ListVariants(ctx context.Context, examID string) ([]models.Variant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT label, code, questions, answer_key
		FROM exam_variants
		WHERE exam_id = $1
		ORDER BY position
	`, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants of exam %s: %w", examID, err)
	}
	defer rows.Close()

	variants := []models.Variant{}
	for rows.Next() {
		var v models.Variant
		var questionsJSON, keyJSON []byte
		if err := rows.Scan(&v.Label, &v.Code, &questionsJSON, &keyJSON); err != nil {
			return nil, fmt.Errorf("failed to scan variant row: %w", err)
		}
		if err := json.Unmarshal(questionsJSON, &v.Questions); err != nil {
			return nil, fmt.Errorf("failed to decode questions of %s: %w", v.Label, err)
		}
		if err := json.Unmarshal(keyJSON, &v.AnswerKey); err != nil {
			return nil, fmt.Errorf("failed to decode answer key of %s: %w", v.Label, err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// LogError adds an entry to the error_logs table
func (s *PostgresStore) LogError(ctx context.Context, source, target, errMsg, detail string) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO error_logs (source, target, error_message, detail)
		VALUES ($1, $2, $3, $4)
	`, source, target, errMsg, detail)
	if err != nil {
		s.log.Error("Failed to log error to database", "error", err, "original", errMsg)
	}
}

// LogAdminEvent adds an entry to the admin_events table
func (s *PostgresStore) LogAdminEvent(ctx context.Context, actor, action, target, notes string) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin_events (action, actor, target, notes)
		VALUES ($1, $2, $3, $4)
	`, action, actor, target, notes)
	if err != nil {
		s.log.Error("Failed to log admin event to database", "error", err, "action", action, "actor", actor, "target", target)
	}
}

func (s *PostgresStore) ListErrorLogs(ctx context.Context, limit int) ([]models.ErrorLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, source, COALESCE(target, ''), error_message, COALESCE(detail, '')
		FROM error_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query error logs: %w", err)
	}
	defer rows.Close()

	logs := []models.ErrorLog{}
	for rows.Next() {
		var l models.ErrorLog
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Source, &l.Target, &l.ErrorMessage, &l.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan error log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetSetting fetches a setting value from the settings table
func (s *PostgresStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("setting %s not found: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT key, value, COALESCE(description, ''), updated_at, COALESCE(updated_by, '')
		FROM settings
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		var st models.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.Description, &st.UpdatedAt, &st.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *PostgresStore) UpdateSetting(ctx context.Context, key, value, updatedBy string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at, updated_by)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now(),
			updated_by = EXCLUDED.updated_by
	`, key, value, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return nil
}

// DashboardStats gathers the counters shown on the admin dashboard.
func (s *PostgresStore) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	stats := models.DashboardStats{ByDifficulty: make(map[models.Difficulty]int)}

	rows, err := s.pool.Query(ctx, `SELECT difficulty, COUNT(*) FROM questions GROUP BY difficulty`)
	if err != nil {
		return stats, fmt.Errorf("failed to count questions: %w", err)
	}
	for rows.Next() {
		var level models.Difficulty
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			rows.Close()
			return stats, fmt.Errorf("failed to scan question count: %w", err)
		}
		stats.ByDifficulty[level] = n
		stats.QuestionCount += n
	}
	rows.Close()

	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM exams),
			(SELECT COUNT(*) FROM exam_variants),
			(SELECT COUNT(*) FROM error_logs WHERE timestamp > now() - interval '24 hours')
	`).Scan(&stats.ExamCount, &stats.VariantCount, &stats.RecentErrorCount)
	if err != nil {
		return stats, fmt.Errorf("failed to count exams: %w", err)
	}

	eventRows, err := s.pool.Query(ctx, `
		SELECT id, timestamp, COALESCE(action, ''), COALESCE(actor, ''), COALESCE(target, ''), COALESCE(notes, '')
		FROM admin_events
		ORDER BY timestamp DESC, id DESC
		LIMIT 10
	`)
	if err != nil {
		return stats, fmt.Errorf("failed to query admin events: %w", err)
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var ev models.AdminEvent
		if err := eventRows.Scan(&ev.ID, &ev.Timestamp, &ev.Action, &ev.Actor, &ev.Target, &ev.Notes); err != nil {
			return stats, fmt.Errorf("failed to scan admin event: %w", err)
		}
		stats.RecentEvents = append(stats.RecentEvents, ev)
	}
	return stats, eventRows.Err()
}

func orderByIDs(questions []models.Question, ids []string) []models.Question {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}
