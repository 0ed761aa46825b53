package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"exam-assembly-server/accesscode"
	"exam-assembly-server/cache"
	"exam-assembly-server/config"
	"exam-assembly-server/db"
	"exam-assembly-server/exam"
	"exam-assembly-server/logger"
	"exam-assembly-server/middleware"
	"exam-assembly-server/models"
	"exam-assembly-server/utils"
)

const (
	// maxCodeAttempts bounds access code regeneration when a code is already taken.
	maxCodeAttempts = 5

	settingThinMarginRatio     = db.SettingThinMarginRatio
	settingDefaultVariantCount = db.SettingDefaultVariantCount
	settingMaxVariantCount     = db.SettingMaxVariantCount
	settingDefaultDistribution = db.SettingDefaultDistribution
)

// Deps carries what the handlers need.
type Deps struct {
	Store    db.Store
	Cache    cache.VariantCache
	Log      *logger.Logger
	Exam     config.ExamConfig
	Codes    *accesscode.Generator
	BankPath string
}

func actor(c *gin.Context) string {
	if email := c.GetString(middleware.ContextUserEmail); email != "" {
		return email
	}
	return "anonymous"
}

// loadExam fetches the exam named by the :exam_id path parameter. It writes the error
// response itself and returns nil when the exam cannot be loaded.
func (d *Deps) loadExam(c *gin.Context) *models.Exam {
	examID := c.Param("exam_id")
	record, err := d.Store.GetExam(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
			return nil
		}
		d.Log.Error("Error loading exam", "exam_id", examID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load exam"})
		return nil
	}
	return record
}

func (d *Deps) settingFloat(ctx context.Context, key string, fallback float64) float64 {
	raw, err := d.Store.GetSetting(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		d.Log.Warn("Ignoring invalid setting", "key", key, "value", raw)
		return fallback
	}
	return v
}

func (d *Deps) settingInt(ctx context.Context, key string, fallback int) int {
	raw, err := d.Store.GetSetting(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		d.Log.Warn("Ignoring invalid setting", "key", key, "value", raw)
		return fallback
	}
	return v
}

func (d *Deps) thinMarginRatio(ctx context.Context) float64 {
	return d.settingFloat(ctx, settingThinMarginRatio, d.Exam.ThinMarginRatio)
}

func (d *Deps) defaultVariantCount(ctx context.Context) int {
	return d.settingInt(ctx, settingDefaultVariantCount, d.Exam.DefaultVariantCount)
}

func (d *Deps) maxVariantCount(ctx context.Context) int {
	return d.settingInt(ctx, settingMaxVariantCount, d.Exam.MaxVariantCount)
}

// defaultDistribution is the distribution used when a new exam names none: the stored
// setting when it parses, otherwise the configured default.
func (d *Deps) defaultDistribution(ctx context.Context) (models.DistributionSpec, error) {
	if raw, err := d.Store.GetSetting(ctx, settingDefaultDistribution); err == nil {
		spec, err := utils.ParseDistribution(raw)
		if err == nil && spec.Total() > 0 {
			return spec, nil
		}
		d.Log.Warn("Ignoring invalid setting", "key", settingDefaultDistribution, "value", raw)
	}
	return utils.ParseDistribution(d.Exam.DefaultDistribution)
}

// analyze returns the live distribution analysis of an exam against the current pool.
func (d *Deps) analyze(ctx context.Context, record *models.Exam) ([]models.DistributionAnalysis, error) {
	pool, err := d.Store.ListQuestions(ctx, record.Filter())
	if err != nil {
		return nil, err
	}
	return exam.Analyze(pool, record.Filter(), record.Distribution, record.Questions), nil
}

// variantsFor returns an exam's variants from the cache, falling back to the store and
// refilling the cache on a miss.
func (d *Deps) variantsFor(ctx context.Context, examID string) ([]models.Variant, error) {
	if variants, ok, err := d.Cache.Get(ctx, examID); err != nil {
		d.Log.Warn("Variant cache read failed", "exam_id", examID, "error", err)
	} else if ok {
		return variants, nil
	}

	variants, err := d.Store.ListVariants(ctx, examID)
	if err != nil {
		return nil, err
	}
	if len(variants) > 0 {
		if err := d.Cache.Set(ctx, examID, variants); err != nil {
			d.Log.Warn("Variant cache write failed", "exam_id", examID, "error", err)
		}
	}
	return variants, nil
}

// clearVariants drops variants made from a selection that no longer exists.
func (d *Deps) clearVariants(ctx context.Context, examID string) error {
	if err := d.Store.ReplaceVariants(ctx, examID, nil); err != nil {
		return err
	}
	if err := d.Cache.Invalidate(ctx, examID); err != nil {
		d.Log.Warn("Variant cache invalidation failed", "exam_id", examID, "error", err)
	}
	return nil
}
