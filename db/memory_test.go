package db

import (
	"context"
	"errors"
	"testing"

	"exam-assembly-server/models"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*PostgresStore)(nil)

func question(id, discipline string, level models.Difficulty) models.Question {
	return models.Question{
		ID:         id,
		Discipline: discipline,
		Difficulty: level,
		Type:       models.QuestionTypeMultipleChoice,
		Prompt:     "Prompt " + id,
		Alternatives: []models.Alternative{
			{Text: "right", IsCorrect: true},
			{Text: "wrong"},
		},
	}
}

func TestMemoryStoreQuestions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.UpsertQuestions(ctx, []models.Question{
		question("q2", "Math", models.DifficultyEasy),
		question("q1", "Math", models.DifficultyHard),
		question("q3", "History", models.DifficultyEasy),
	})
	if err != nil {
		t.Fatalf("UpsertQuestions: %v", err)
	}

	got, _ := s.ListQuestions(ctx, models.PoolFilter{Discipline: " math "})
	if len(got) != 2 || got[0].ID != "q1" || got[1].ID != "q2" {
		t.Fatalf("ListQuestions = %+v", got)
	}

	byID, _ := s.GetQuestionsByIDs(ctx, []string{"q3", "missing", "q1"})
	if len(byID) != 2 || byID[0].ID != "q3" || byID[1].ID != "q1" {
		t.Fatalf("GetQuestionsByIDs = %+v", byID)
	}

	// callers must not be able to mutate stored questions
	byID[0].Alternatives[0].Text = "changed"
	again, _ := s.GetQuestionsByIDs(ctx, []string{"q3"})
	if again[0].Alternatives[0].Text != "right" {
		t.Fatalf("stored question was mutated through a returned copy")
	}
}

func TestMemoryStoreExams(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &models.Exam{ID: "e1", Title: "Midterm", AccessCode: "ABC234", Distribution: models.DistributionSpec{models.DifficultyEasy: 1}}
	if err := s.CreateExam(ctx, first); err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Errorf("CreatedAt not set")
	}

	dup := &models.Exam{ID: "e2", Title: "Final", AccessCode: "ABC234"}
	if err := s.CreateExam(ctx, dup); !errors.Is(err, ErrAccessCodeTaken) {
		t.Fatalf("CreateExam with taken code = %v, want ErrAccessCodeTaken", err)
	}

	byCode, err := s.GetExamByAccessCode(ctx, "ABC234")
	if err != nil || byCode.ID != "e1" {
		t.Fatalf("GetExamByAccessCode = %+v, %v", byCode, err)
	}

	byCode.Title = "Changed"
	byCode.Distribution[models.DifficultyEasy] = 9
	if err := s.UpdateExam(ctx, byCode); err != nil {
		t.Fatalf("UpdateExam: %v", err)
	}
	got, _ := s.GetExam(ctx, "e1")
	if got.Title != "Changed" || got.Distribution[models.DifficultyEasy] != 9 {
		t.Fatalf("GetExam after update = %+v", got)
	}

	if _, err := s.GetExam(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetExam(missing) = %v, want ErrNotFound", err)
	}
	if err := s.UpdateExam(ctx, &models.Exam{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateExam(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreVariants(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.ReplaceVariants(ctx, "missing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReplaceVariants on unknown exam = %v", err)
	}

	_ = s.CreateExam(ctx, &models.Exam{ID: "e1", AccessCode: "ABC234"})
	variants := []models.Variant{
		{Label: "Variant A", Code: "A", Questions: []models.Question{question("q1", "", models.DifficultyEasy)}, AnswerKey: models.AnswerKey{1: "A"}},
		{Label: "Variant B", Code: "B", Questions: []models.Question{question("q1", "", models.DifficultyEasy)}, AnswerKey: models.AnswerKey{1: "A"}},
	}
	if err := s.ReplaceVariants(ctx, "e1", variants); err != nil {
		t.Fatalf("ReplaceVariants: %v", err)
	}
	if err := s.ReplaceVariants(ctx, "e1", variants[:1]); err != nil {
		t.Fatalf("ReplaceVariants: %v", err)
	}
	got, _ := s.ListVariants(ctx, "e1")
	if len(got) != 1 || got[0].Label != "Variant A" {
		t.Fatalf("ListVariants = %+v", got)
	}
	got[0].AnswerKey[1] = "Z"
	again, _ := s.ListVariants(ctx, "e1")
	if again[0].AnswerKey[1] != "A" {
		t.Fatalf("stored answer key was mutated through a returned copy")
	}
}

func TestMemoryStoreSaveVariants(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.CreateExam(ctx, &models.Exam{ID: "e1", AccessCode: "ABC234", VariantCount: 1})
	_ = s.CreateExam(ctx, &models.Exam{ID: "e2", AccessCode: "XYZ789"})

	first := []models.Variant{{Label: "Variant A", Code: "A", AnswerKey: models.AnswerKey{1: "A"}}}
	if err := s.SaveVariants(ctx, &models.Exam{ID: "e1", AccessCode: "ABC234", VariantCount: 1}, first); err != nil {
		t.Fatalf("SaveVariants: %v", err)
	}

	// A clashing access code must leave both the exam and its variants as they were.
	clash := &models.Exam{ID: "e1", AccessCode: "XYZ789", VariantCount: 3, ShuffleQuestions: true}
	next := []models.Variant{
		{Label: "Variant A", Code: "A"},
		{Label: "Variant B", Code: "B"},
		{Label: "Variant C", Code: "C"},
	}
	if err := s.SaveVariants(ctx, clash, next); !errors.Is(err, ErrAccessCodeTaken) {
		t.Fatalf("SaveVariants with taken code = %v, want ErrAccessCodeTaken", err)
	}
	exam, _ := s.GetExam(ctx, "e1")
	if exam.VariantCount != 1 || exam.ShuffleQuestions || exam.AccessCode != "ABC234" {
		t.Fatalf("exam changed by failed save: %+v", exam)
	}
	got, _ := s.ListVariants(ctx, "e1")
	if len(got) != 1 {
		t.Fatalf("variants changed by failed save: %+v", got)
	}

	if err := s.SaveVariants(ctx, &models.Exam{ID: "missing"}, next); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SaveVariants on unknown exam = %v, want ErrNotFound", err)
	}
	if got, _ := s.ListVariants(ctx, "missing"); len(got) != 0 {
		t.Fatalf("variants stored for unknown exam: %+v", got)
	}
}

func TestMemoryStoreLogsAndSettings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.LogError(ctx, "ingestion", "bank/a.yaml", "first", "")
	s.LogError(ctx, "ingestion", "bank/b.yaml", "second", "")
	logs, _ := s.ListErrorLogs(ctx, 1)
	if len(logs) != 1 || logs[0].ErrorMessage != "second" {
		t.Fatalf("ListErrorLogs = %+v", logs)
	}

	if v, err := s.GetSetting(ctx, "thin_margin_ratio"); err != nil || v != "1.5" {
		t.Fatalf("default thin_margin_ratio = %q, %v", v, err)
	}
	if err := s.UpdateSetting(ctx, "thin_margin_ratio", "2", "admin@example.com"); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if v, _ := s.GetSetting(ctx, "thin_margin_ratio"); v != "2" {
		t.Fatalf("thin_margin_ratio = %q after update", v)
	}
	if _, err := s.GetSetting(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSetting(nope) = %v", err)
	}

	s.LogAdminEvent(ctx, "admin@example.com", "UPDATE_SETTING", "thin_margin_ratio", "2")
	_ = s.UpsertQuestions(ctx, []models.Question{question("q1", "", models.DifficultyEasy), question("q2", "", models.DifficultyHard)})
	stats, _ := s.DashboardStats(ctx)
	if stats.QuestionCount != 2 || stats.ByDifficulty[models.DifficultyHard] != 1 {
		t.Errorf("question stats = %+v", stats)
	}
	if stats.RecentErrorCount != 2 || len(stats.RecentEvents) != 1 {
		t.Errorf("log stats = %+v", stats)
	}
}
