package db

import (
	"context"
	"errors"

	"exam-assembly-server/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAccessCodeTaken is returned when an access code is already used by another exam.
	ErrAccessCodeTaken = errors.New("access code already in use")
)

// Store persists the question pool, exam records, their variants and the admin tables.
type Store interface {
	ListQuestions(ctx context.Context, filter models.PoolFilter) ([]models.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	UpsertQuestions(ctx context.Context, questions []models.Question) error

	CreateExam(ctx context.Context, exam *models.Exam) error
	GetExam(ctx context.Context, id string) (*models.Exam, error)
	GetExamByAccessCode(ctx context.Context, code string) (*models.Exam, error)
	UpdateExam(ctx context.Context, exam *models.Exam) error

	ReplaceVariants(ctx context.Context, examID string, variants []models.Variant) error
	// SaveVariants updates exam and replaces its variants atomically.
	SaveVariants(ctx context.Context, exam *models.Exam, variants []models.Variant) error
	ListVariants(ctx context.Context, examID string) ([]models.Variant, error)

	LogError(ctx context.Context, source, target, errMsg, detail string)
	LogAdminEvent(ctx context.Context, actor, action, target, notes string)
	ListErrorLogs(ctx context.Context, limit int) ([]models.ErrorLog, error)

	GetSetting(ctx context.Context, key string) (string, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
	UpdateSetting(ctx context.Context, key, value, updatedBy string) error

	DashboardStats(ctx context.Context) (models.DashboardStats, error)
	Close()
}

// Setting keys read by the handlers.
const (
	SettingThinMarginRatio     = "thin_margin_ratio"
	SettingDefaultVariantCount = "default_variant_count"
	SettingMaxVariantCount     = "max_variant_count"
	// SettingDefaultDistribution is written by ingestion from the bank's default_distribution
	// and has no row until then.
	SettingDefaultDistribution = "default_distribution"
)

// defaultSettings are inserted when a store is created.
var defaultSettings = map[string]string{
	SettingThinMarginRatio:     "1.5",
	SettingDefaultVariantCount: "2",
	SettingMaxVariantCount:     "26",
}
