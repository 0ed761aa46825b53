package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"exam-assembly-server/db"
	"exam-assembly-server/exam"
	"exam-assembly-server/models"
	"exam-assembly-server/utils"
)

// GetQuestions lists the question pool, optionally narrowed by discipline, topic and difficulty.
// GET /api/v1/questions
func GetQuestions(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.PoolFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
			return
		}

		var level models.Difficulty
		if raw := c.Query("difficulty"); raw != "" {
			parsed, err := models.ParseDifficulty(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			level = parsed
		}

		pool, err := d.Store.ListQuestions(c.Request.Context(), filter)
		if err != nil {
			d.Log.Error("Error querying questions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
			return
		}

		questions := make([]models.Question, 0, len(pool))
		for _, q := range pool {
			if level == "" || q.Difficulty == level {
				questions = append(questions, q)
			}
		}
		c.JSON(http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
	}
}

// AnalyzeDistribution projects a distribution against the pool without touching any exam.
// POST /api/v1/distribution/analyze
func AnalyzeDistribution(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		ctx := c.Request.Context()
		filter := models.PoolFilter{Discipline: req.Discipline, Topic: req.Topic}
		pool, err := d.Store.ListQuestions(ctx, filter)
		if err != nil {
			d.Log.Error("Error querying question pool", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
			return
		}
		selected, err := d.Store.GetQuestionsByIDs(ctx, req.SelectedIDs)
		if err != nil {
			d.Log.Error("Error querying selected questions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve selected questions"})
			return
		}

		errs := exam.ValidateDistribution(req.Distribution, req.TotalQuestions)
		c.JSON(http.StatusOK, models.AnalyzeResponse{
			Valid:    len(errs) == 0,
			Analysis: exam.Analyze(pool, filter, req.Distribution, selected),
			Errors:   append([]string{}, errs...),
		})
	}
}

// CreateExam creates an exam record with a fresh access code.
// POST /api/v1/exams
func CreateExam(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateExamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}
		ctx := c.Request.Context()

		spec := req.Distribution
		if len(spec) == 0 {
			parsed, err := d.defaultDistribution(ctx)
			if err != nil {
				d.Log.Error("Invalid default distribution", "value", d.Exam.DefaultDistribution, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Default distribution is misconfigured"})
				return
			}
			spec = parsed
		}
		total := req.TotalQuestions
		if total == 0 {
			total = spec.Total()
		}
		if errs := exam.ValidateDistribution(spec, total); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid distribution", "errors": errs})
			return
		}

		variantCount := req.VariantCount
		if variantCount == 0 {
			variantCount = d.defaultVariantCount(ctx)
		}
		if maxCount := d.maxVariantCount(ctx); variantCount > maxCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("variant_count must be at most %d", maxCount)})
			return
		}

		mode := req.SelectionMode
		if mode == "" {
			mode = models.SelectionAutomatic
		}

		record := &models.Exam{
			ID:                  uuid.NewString(),
			Title:               strings.TrimSpace(req.Title),
			Discipline:          strings.TrimSpace(req.Discipline),
			Topic:               strings.TrimSpace(req.Topic),
			TotalQuestions:      total,
			Distribution:        spec,
			SelectionMode:       mode,
			Questions:           []models.Question{},
			VariantCount:        variantCount,
			ShuffleQuestions:    req.ShuffleQuestions,
			ShuffleAlternatives: req.ShuffleAlternatives,
		}

		var err error
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			record.AccessCode = d.Codes.Generate()
			if err = d.Store.CreateExam(ctx, record); !errors.Is(err, db.ErrAccessCodeTaken) {
				break
			}
			d.Log.Debug("Access code collision, regenerating", "attempt", attempt+1)
		}
		if err != nil {
			d.Log.Error("Error creating exam", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exam"})
			return
		}
		d.Store.LogAdminEvent(ctx, actor(c), "CREATE_EXAM", record.ID, record.Title)

		analysis, err := d.analyze(ctx, record)
		if err != nil {
			d.Log.Error("Error analysing exam", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyse exam"})
			return
		}
		c.JSON(http.StatusCreated, models.ExamResponse{Exam: *record, Analysis: analysis})
	}
}

// GetExam returns an exam with its live distribution analysis.
// GET /api/v1/exams/:exam_id
func GetExam(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		record := d.loadExam(c)
		if record == nil {
			return
		}
		analysis, err := d.analyze(c.Request.Context(), record)
		if err != nil {
			d.Log.Error("Error analysing exam", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyse exam"})
			return
		}
		c.JSON(http.StatusOK, models.ExamResponse{Exam: *record, Analysis: analysis})
	}
}

// AutoSelectQuestions runs an automatic selection and, on success, replaces the exam's
// selection. An optional ?seed= makes the draw reproducible.
// POST /api/v1/exams/:exam_id/selection/auto
func AutoSelectQuestions(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var seed *int64
		if raw := c.Query("seed"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
				return
			}
			seed = &v
		}

		record := d.loadExam(c)
		if record == nil {
			return
		}
		ctx := c.Request.Context()

		pool, err := d.Store.ListQuestions(ctx, record.Filter())
		if err != nil {
			d.Log.Error("Error querying question pool", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
			return
		}

		selector := exam.NewSelector(exam.NewRand(seed), d.thinMarginRatio(ctx))
		result := selector.Select(pool, record.Filter(), record.Distribution, record.TotalQuestions)
		if !result.Success {
			d.Store.LogError(ctx, "selection", record.ID, "Automatic selection failed", strings.Join(result.Errors, "; "))
			c.JSON(http.StatusUnprocessableEntity, result)
			return
		}

		record.Questions = result.Questions
		record.SelectionMode = models.SelectionAutomatic
		if err := d.Store.UpdateExam(ctx, record); err != nil {
			d.Log.Error("Error saving selection", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
			return
		}
		if err := d.clearVariants(ctx, record.ID); err != nil {
			d.Log.Error("Error clearing stale variants", "exam_id", record.ID, "error", err)
		}
		d.Store.LogAdminEvent(ctx, actor(c), "AUTO_SELECT", record.ID, fmt.Sprintf("%d questions", len(result.Questions)))

		c.JSON(http.StatusOK, gin.H{"exam": record, "selection": result})
	}
}

// SetManualSelection replaces the exam's selection with hand-picked question ids.
// PUT /api/v1/exams/:exam_id/selection
func SetManualSelection(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ManualSelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}
		record := d.loadExam(c)
		if record == nil {
			return
		}
		ctx := c.Request.Context()

		selected, err := d.Store.GetQuestionsByIDs(ctx, req.QuestionIDs)
		if err != nil {
			d.Log.Error("Error querying selected questions", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve selected questions"})
			return
		}
		if missing := missingIDs(req.QuestionIDs, selected); len(missing) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown question ids", "question_ids": missing})
			return
		}
		if errs := exam.ValidateManualSelection(selected, record.TotalQuestions); len(errs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid selection", "errors": errs})
			return
		}

		record.Questions = selected
		record.SelectionMode = models.SelectionManual
		if err := d.Store.UpdateExam(ctx, record); err != nil {
			d.Log.Error("Error saving selection", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
			return
		}
		if err := d.clearVariants(ctx, record.ID); err != nil {
			d.Log.Error("Error clearing stale variants", "exam_id", record.ID, "error", err)
		}
		d.Store.LogAdminEvent(ctx, actor(c), "MANUAL_SELECT", record.ID, fmt.Sprintf("%d questions", len(selected)))

		analysis, err := d.analyze(ctx, record)
		if err != nil {
			d.Log.Error("Error analysing exam", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyse exam"})
			return
		}
		c.JSON(http.StatusOK, models.ExamResponse{Exam: *record, Analysis: analysis})
	}
}

func missingIDs(requested []string, found []models.Question) []string {
	have := make(map[string]bool, len(found))
	for _, q := range found {
		have[q.ID] = true
	}
	var missing []string
	for _, id := range requested {
		if !have[id] && !utils.ContainsString(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// GenerateVariants builds the exam's variants from its current selection, replacing any
// earlier ones. Omitted request fields fall back to the exam's settings.
// POST /api/v1/exams/:exam_id/variants
func GenerateVariants(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerateVariantsRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}
		record := d.loadExam(c)
		if record == nil {
			return
		}
		ctx := c.Request.Context()

		if len(record.Questions) == 0 || len(record.Questions) != record.TotalQuestions {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Exam has %d of %d questions selected", len(record.Questions), record.TotalQuestions)})
			return
		}

		count := record.VariantCount
		if req.VariantCount != nil {
			count = *req.VariantCount
		}
		if count < 1 {
			count = d.defaultVariantCount(ctx)
		}
		if maxCount := d.maxVariantCount(ctx); count > maxCount {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("variant_count must be at most %d", maxCount)})
			return
		}
		if req.ShuffleQuestions != nil {
			record.ShuffleQuestions = *req.ShuffleQuestions
		}
		if req.ShuffleAlternatives != nil {
			record.ShuffleAlternatives = *req.ShuffleAlternatives
		}
		record.VariantCount = count

		variants := exam.GenerateVariants(record.Questions, count, record.ShuffleQuestions, record.ShuffleAlternatives, exam.NewRand(req.Seed))
		for _, v := range variants {
			if err := exam.VerifyAnswerKey(v); err != nil {
				d.Store.LogError(ctx, "variants", record.ID, "Answer key verification failed", err.Error())
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Generated variants failed verification"})
				return
			}
		}

		if err := d.Store.SaveVariants(ctx, record, variants); err != nil {
			d.Log.Error("Error saving variants", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save variants"})
			return
		}
		if err := d.Cache.Set(ctx, record.ID, variants); err != nil {
			d.Log.Warn("Variant cache write failed", "exam_id", record.ID, "error", err)
		}
		d.Store.LogAdminEvent(ctx, actor(c), "GENERATE_VARIANTS", record.ID, fmt.Sprintf("%d variants", len(variants)))

		c.JSON(http.StatusCreated, gin.H{"exam_id": record.ID, "variants": variants})
	}
}

// ListVariants returns the exam's generated variants with their answer keys.
// GET /api/v1/exams/:exam_id/variants
func ListVariants(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		record := d.loadExam(c)
		if record == nil {
			return
		}
		variants, err := d.variantsFor(c.Request.Context(), record.ID)
		if err != nil {
			d.Log.Error("Error loading variants", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load variants"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"exam_id": record.ID, "variants": variants})
	}
}

// RegenerateAccessCode gives the exam a new access code.
// POST /api/v1/exams/:exam_id/access_code
func RegenerateAccessCode(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		record := d.loadExam(c)
		if record == nil {
			return
		}
		ctx := c.Request.Context()

		previous := record.AccessCode
		var err error
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			record.AccessCode = d.Codes.Generate()
			if record.AccessCode == previous {
				err = db.ErrAccessCodeTaken
				continue
			}
			if err = d.Store.UpdateExam(ctx, record); !errors.Is(err, db.ErrAccessCodeTaken) {
				break
			}
		}
		if err != nil {
			d.Log.Error("Error regenerating access code", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate access code"})
			return
		}
		d.Store.LogAdminEvent(ctx, actor(c), "REGENERATE_ACCESS_CODE", record.ID, "")
		c.JSON(http.StatusOK, gin.H{"exam_id": record.ID, "access_code": record.AccessCode})
	}
}

// ValidateAccessCode checks the format of an access code.
// POST /api/v1/access_codes/validate
func ValidateAccessCode(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ValidateAccessCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, d.Codes.Validate(req.Code))
	}
}

// GetStudentVariant returns one variant of the exam behind an access code, stripped of
// correctness flags, explanations and the answer key.
// GET /api/v1/access/:code/variants/:variant
func GetStudentVariant(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
		if res := d.Codes.Validate(code); !res.Valid {
			c.JSON(http.StatusBadRequest, gin.H{"error": res.Message})
			return
		}
		ctx := c.Request.Context()

		record, err := d.Store.GetExamByAccessCode(ctx, code)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No exam uses this access code"})
				return
			}
			d.Log.Error("Error loading exam by access code", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load exam"})
			return
		}

		variants, err := d.variantsFor(ctx, record.ID)
		if err != nil {
			d.Log.Error("Error loading variants", "exam_id", record.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load variants"})
			return
		}
		wanted := strings.ToUpper(strings.TrimSpace(c.Param("variant")))
		for _, v := range variants {
			if v.Code == wanted {
				c.JSON(http.StatusOK, studentView(record.Title, v))
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Variant %s not found", wanted)})
	}
}

func studentView(title string, v models.Variant) models.StudentVariant {
	out := models.StudentVariant{
		ExamTitle: title,
		Label:     v.Label,
		Questions: make([]models.StudentQuestion, len(v.Questions)),
	}
	for i, q := range v.Questions {
		sq := models.StudentQuestion{Position: i + 1, Type: q.Type, Prompt: q.Prompt}
		for j, alt := range q.Alternatives {
			sq.Alternatives = append(sq.Alternatives, models.StudentAlternative{
				Letter: utils.IndexToLetter(j),
				Text:   alt.Text,
			})
		}
		out.Questions[i] = sq
	}
	return out
}
