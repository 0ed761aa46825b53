package models

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the closed set of difficulty levels a question can carry.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every difficulty level in canonical order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDifficulty normalises s and returns the matching difficulty level.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// QuestionType describes how a question is answered.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// HasAlternatives reports whether questions of this type are answered by picking an alternative.
func (t QuestionType) HasAlternatives() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// Alternative is one answer option of a choice question.
type Alternative struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

// Question struct represents a question of the bank.
type Question struct {
	ID           string        `json:"id" yaml:"id"`
	Discipline   string        `json:"discipline" yaml:"discipline"`
	Topic        string        `json:"topic,omitempty" yaml:"topic"`
	Difficulty   Difficulty    `json:"difficulty_level" yaml:"difficulty"`
	Type         QuestionType  `json:"type" yaml:"type"`
	Prompt       string        `json:"prompt" yaml:"prompt"`
	Explanation  string        `json:"explanation,omitempty" yaml:"explanation"`
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives"`
}

// IsMultipleChoice reports whether the question's alternatives may be reordered.
func (q Question) IsMultipleChoice() bool {
	return q.Type == QuestionTypeMultipleChoice
}

// CorrectIndex returns the index of the first alternative flagged correct, or -1.
func (q Question) CorrectIndex() int {
	for i, alt := range q.Alternatives {
		if alt.IsCorrect {
			return i
		}
	}
	return -1
}

// CorrectCount returns how many alternatives are flagged correct.
func (q Question) CorrectCount() int {
	n := 0
	for _, alt := range q.Alternatives {
		if alt.IsCorrect {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	c := q
	if q.Alternatives != nil {
		c.Alternatives = make([]Alternative, len(q.Alternatives))
		copy(c.Alternatives, q.Alternatives)
	}
	return c
}

// CloneQuestions deep-copies every question of qs.
func CloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// PoolFilter narrows the question pool. Empty fields do not filter.
type PoolFilter struct {
	Discipline string `json:"discipline" form:"discipline"`
	Topic      string `json:"topic" form:"topic"`
}

// Matches reports whether q passes the filter.
func (f PoolFilter) Matches(q Question) bool {
	if d := strings.TrimSpace(f.Discipline); d != "" && !strings.EqualFold(d, strings.TrimSpace(q.Discipline)) {
		return false
	}
	if t := strings.TrimSpace(f.Topic); t != "" && !strings.EqualFold(t, strings.TrimSpace(q.Topic)) {
		return false
	}
	return true
}

// DistributionSpec maps each difficulty level to the number of questions required.
type DistributionSpec map[Difficulty]int

// Total returns the sum of all required counts.
func (s DistributionSpec) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Clone returns a copy of the distribution.
func (s DistributionSpec) Clone() DistributionSpec {
	if s == nil {
		return nil
	}
	out := make(DistributionSpec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// DistributionAnalysis is the projection of one difficulty bucket against the pool.
type DistributionAnalysis struct {
	Difficulty Difficulty `json:"difficulty_level"`
	Required   int        `json:"required"`
	Available  int        `json:"available"`
	Selected   int        `json:"selected"`
	CanFulfill bool       `json:"can_fulfill"`
	Shortage   int        `json:"shortage"`
}

// Shortage describes a bucket that cannot be filled.
type Shortage struct {
	Difficulty Difficulty `json:"difficulty_level"`
	Required   int        `json:"required"`
	Available  int        `json:"available"`
	Missing    int        `json:"missing"`
}

// SelectionResult is the outcome of an automatic selection.
type SelectionResult struct {
	Success   bool       `json:"success"`
	Questions []Question `json:"questions"`
	Warnings  []string   `json:"warnings"`
	Errors    []string   `json:"errors"`
	Shortages []Shortage `json:"shortages,omitempty"`
}

// AnswerKey maps a 1-based question position to the letter of its correct alternative.
type AnswerKey map[int]string

// Variant is one scrambled presentation of an exam.
type Variant struct {
	Label     string     `json:"label"`
	Code      string     `json:"code"`
	Questions []Question `json:"questions"`
	AnswerKey AnswerKey  `json:"answer_key"`
}

// AccessCodeValidation is the result of checking an access code's format.
type AccessCodeValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// SelectionMode says how an exam's questions were chosen.
type SelectionMode string

const (
	SelectionAutomatic SelectionMode = "automatic"
	SelectionManual    SelectionMode = "manual"
)

// Exam struct represents the assembly state of one exam. It is plain data so the
// caller owns it and passes it into the engine operations.
type Exam struct {
	ID                  string           `json:"exam_id"`
	Title               string           `json:"title"`
	Discipline          string           `json:"discipline"`
	Topic               string           `json:"topic,omitempty"`
	TotalQuestions      int              `json:"total_questions"`
	Distribution        DistributionSpec `json:"distribution"`
	SelectionMode       SelectionMode    `json:"selection_mode"`
	Questions           []Question       `json:"questions"`
	VariantCount        int              `json:"variant_count"`
	ShuffleQuestions    bool             `json:"shuffle_questions"`
	ShuffleAlternatives bool             `json:"shuffle_alternatives"`
	AccessCode          string           `json:"access_code"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Filter returns the pool filter implied by the exam's discipline and topic.
func (e Exam) Filter() PoolFilter {
	return PoolFilter{Discipline: e.Discipline, Topic: e.Topic}
}

// AnalyzeRequest for the distribution analysis endpoint
type AnalyzeRequest struct {
	Discipline     string           `json:"discipline"`
	Topic          string           `json:"topic"`
	TotalQuestions int              `json:"total_questions" binding:"min=0"`
	Distribution   DistributionSpec `json:"distribution" binding:"required"`
	SelectedIDs    []string         `json:"selected_ids"`
}

// AnalyzeResponse for the distribution analysis endpoint
type AnalyzeResponse struct {
	Valid    bool                   `json:"valid"`
	Analysis []DistributionAnalysis `json:"analysis"`
	Errors   []string               `json:"errors"`
}

// CreateExamRequest for creating an exam record
type CreateExamRequest struct {
	Title               string           `json:"title" binding:"required"`
	Discipline          string           `json:"discipline"`
	Topic               string           `json:"topic"`
	TotalQuestions      int              `json:"total_questions" binding:"min=0"`
	Distribution        DistributionSpec `json:"distribution"`
	SelectionMode       SelectionMode    `json:"selection_mode" binding:"omitempty,oneof=automatic manual"`
	VariantCount        int              `json:"variant_count" binding:"min=0"`
	ShuffleQuestions    bool             `json:"shuffle_questions"`
	ShuffleAlternatives bool             `json:"shuffle_alternatives"`
}

// ExamResponse wraps an exam with its live distribution analysis.
type ExamResponse struct {
	Exam     Exam                   `json:"exam"`
	Analysis []DistributionAnalysis `json:"analysis"`
}

// ManualSelectionRequest for choosing questions by hand
type ManualSelectionRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required"`
}

// GenerateVariantsRequest for producing exam variants
type GenerateVariantsRequest struct {
	VariantCount        *int   `json:"variant_count"`
	ShuffleQuestions    *bool  `json:"shuffle_questions"`
	ShuffleAlternatives *bool  `json:"shuffle_alternatives"`
	Seed                *int64 `json:"seed"`
}

// ValidateAccessCodeRequest for the access code format check
type ValidateAccessCodeRequest struct {
	Code string `json:"code"`
}

// StudentAlternative is an alternative as shown to a student.
type StudentAlternative struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// StudentQuestion is a question as shown to a student, without its answer.
type StudentQuestion struct {
	Position     int                  `json:"position"`
	Type         QuestionType         `json:"type"`
	Prompt       string               `json:"prompt"`
	Alternatives []StudentAlternative `json:"alternatives,omitempty"`
}

// StudentVariant is the read-only payload a student receives after entering an access code.
type StudentVariant struct {
	ExamTitle string            `json:"exam_title"`
	Label     string            `json:"label"`
	Questions []StudentQuestion `json:"questions"`
}

// ErrorLog represents an entry in the error_logs table
type ErrorLog struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	ErrorMessage string    `json:"error_message"`
	Detail       string    `json:"detail"`
}

// AdminEvent represents an entry in the admin_events table
type AdminEvent struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Target    string    `json:"target"`
	Notes     string    `json:"notes"`
}

// Setting represents an entry in the settings table
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   string    `json:"updated_by"`
}

// UpdateSettingRequest for the admin settings form
type UpdateSettingRequest struct {
	Key   string `form:"key" json:"key" binding:"required"`
	Value string `form:"value" json:"value" binding:"required"`
}

// DashboardStats for the admin dashboard
type DashboardStats struct {
	QuestionCount    int                `json:"question_count"`
	ByDifficulty     map[Difficulty]int `json:"by_difficulty"`
	ExamCount        int                `json:"exam_count"`
	VariantCount     int                `json:"variant_count"`
	RecentErrorCount int                `json:"recent_error_count"`
	RecentEvents     []AdminEvent       `json:"recent_events"`
}

// BankYAML for parsing bank.yaml
type BankYAML struct {
	Name                string `yaml:"name"`
	Version             string `yaml:"version"`
	DefaultDistribution string `yaml:"default_distribution"`
}

// RejectedQuestion records a bank entry that failed validation.
type RejectedQuestion struct {
	ID     string `json:"id"`
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// IngestionReport summarises one load of the question bank.
type IngestionReport struct {
	Bank        BankYAML           `json:"bank"`
	Loaded      []Question         `json:"-"`
	LoadedCount int                `json:"loaded"`
	Rejected    []RejectedQuestion `json:"rejected"`
}
