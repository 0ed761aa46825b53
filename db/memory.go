package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"exam-assembly-server/models"
)

// MemoryStore is a process-local Store used when no database is configured and in tests.
// Every read and write copies, so callers never share state with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]models.Question
	exams     map[string]models.Exam
	variants  map[string][]models.Variant
	errorLogs []models.ErrorLog
	events    []models.AdminEvent
	settings  map[string]models.Setting
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		questions: make(map[string]models.Question),
		exams:     make(map[string]models.Exam),
		variants:  make(map[string][]models.Variant),
		settings:  make(map[string]models.Setting),
		now:       time.Now,
	}
	for key, value := range defaultSettings {
		s.settings[key] = models.Setting{Key: key, Value: value, Description: "Default setting for " + key, UpdatedAt: s.now()}
	}
	return s
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) ListQuestions(_ context.Context, filter models.PoolFilter) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if filter.Matches(q) {
			out = append(out, q.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetQuestionsByIDs(_ context.Context, ids []string) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			out = append(out, q.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) UpsertQuestions(_ context.Context, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		s.questions[q.ID] = q.Clone()
	}
	return nil
}

func cloneExam(e models.Exam) models.Exam {
	c := e
	c.Distribution = e.Distribution.Clone()
	if e.Questions != nil {
		c.Questions = models.CloneQuestions(e.Questions)
	}
	return c
}

func (s *MemoryStore) codeTakenLocked(code, examID string) bool {
	for id, e := range s.exams {
		if id != examID && e.AccessCode == code {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateExam(_ context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTakenLocked(exam.AccessCode, exam.ID) {
		return ErrAccessCodeTaken
	}
	now := s.now()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	s.exams[exam.ID] = cloneExam(*exam)
	return nil
}

func (s *MemoryStore) GetExam(_ context.Context, id string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneExam(e)
	return &c, nil
}

func (s *MemoryStore) GetExamByAccessCode(_ context.Context, code string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.exams {
		if e.AccessCode == code {
			c := cloneExam(e)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateExam(_ context.Context, exam *models.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.exams[exam.ID]
	if !ok {
		return ErrNotFound
	}
	if s.codeTakenLocked(exam.AccessCode, exam.ID) {
		return ErrAccessCodeTaken
	}
	exam.CreatedAt = existing.CreatedAt
	exam.UpdatedAt = s.now()
	s.exams[exam.ID] = cloneExam(*exam)
	return nil
}

func cloneVariants(vs []models.Variant) []models.Variant {
	out := make([]models.Variant, len(vs))
	for i, v := range vs {
		c := v
		c.Questions = models.CloneQuestions(v.Questions)
		c.AnswerKey = make(models.AnswerKey, len(v.AnswerKey))
		for pos, letter := range v.AnswerKey {
			c.AnswerKey[pos] = letter
		}
		out[i] = c
	}
	return out
}

func (s *MemoryStore) ReplaceVariants(_ context.Context, examID string, variants []models.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exams[examID]; !ok {
		return ErrNotFound
	}
	s.variants[examID] = cloneVariants(variants)
	return nil
}

func (s *MemoryStore) SaveVariants(_ context.Context, exam *models.Exam, variants []models.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.exams[exam.ID]
	if !ok {
		return ErrNotFound
	}
	if s.codeTakenLocked(exam.AccessCode, exam.ID) {
		return ErrAccessCodeTaken
	}
	exam.CreatedAt = existing.CreatedAt
	exam.UpdatedAt = s.now()
	s.exams[exam.ID] = cloneExam(*exam)
	s.variants[exam.ID] = cloneVariants(variants)
	return nil
}

func (s *MemoryStore) ListVariants(_ context.Context, examID string) ([]models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneVariants(s.variants[examID]), nil
}

func (s *MemoryStore) LogError(_ context.Context, source, target, errMsg, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errorLogs = append(s.errorLogs, models.ErrorLog{
		ID:           len(s.errorLogs) + 1,
		Timestamp:    s.now(),
		Source:       source,
		Target:       target,
		ErrorMessage: errMsg,
		Detail:       detail,
	})
}

func (s *MemoryStore) LogAdminEvent(_ context.Context, actor, action, target, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, models.AdminEvent{
		ID:        len(s.events) + 1,
		Timestamp: s.now(),
		Action:    action,
		Actor:     actor,
		Target:    target,
		Notes:     notes,
	})
}

// ListErrorLogs returns up to limit entries, newest first.
func (s *MemoryStore) ListErrorLogs(_ context.Context, limit int) ([]models.ErrorLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ErrorLog{}
	for i := len(s.errorLogs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.errorLogs[i])
	}
	return out, nil
}

func (s *MemoryStore) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return st.Value, nil
}

func (s *MemoryStore) ListSettings(_ context.Context) ([]models.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Setting, 0, len(s.settings))
	for _, st := range s.settings {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) UpdateSetting(_ context.Context, key, value, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.settings[key]
	st.Key = key
	st.Value = value
	st.UpdatedAt = s.now()
	st.UpdatedBy = updatedBy
	s.settings[key] = st
	return nil
}

func (s *MemoryStore) DashboardStats(_ context.Context) (models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DashboardStats{ByDifficulty: make(map[models.Difficulty]int)}
	for _, q := range s.questions {
		stats.ByDifficulty[q.Difficulty]++
		stats.QuestionCount++
	}
	stats.ExamCount = len(s.exams)
	for _, vs := range s.variants {
		stats.VariantCount += len(vs)
	}
	cutoff := s.now().Add(-24 * time.Hour)
	for _, l := range s.errorLogs {
		if l.Timestamp.After(cutoff) {
			stats.RecentErrorCount++
		}
	}
	for i := len(s.events) - 1; i >= 0 && len(stats.RecentEvents) < 10; i-- {
		stats.RecentEvents = append(stats.RecentEvents, s.events[i])
	}
	return stats, nil
}
