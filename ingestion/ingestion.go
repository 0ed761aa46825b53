package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"exam-assembly-server/db"
	"exam-assembly-server/exam"
	"exam-assembly-server/logger"
	"exam-assembly-server/models"
	"exam-assembly-server/utils"
)

const (
	bankFileName   = "bank.yaml"
	csvFileName    = "questions.csv"
	csvColumnCount = 14 // id, discipline, topic, difficulty, type, prompt, explanation, correct, alt_a..alt_f
	maxCSVAlts     = 6
	sourceName     = "ingestion"
)

// questionFile is one YAML file of the bank. Questions are kept as nodes so rejects can
// point at the line they start on.
type questionFile struct {
	Discipline string      `yaml:"discipline"`
	Topic      string      `yaml:"topic"`
	Questions  []yaml.Node `yaml:"questions"`
}

type loader struct {
	dir    string
	report *models.IngestionReport
	seen   map[string]string // question id -> file it was first loaded from
}

// LoadBank reads a question bank directory: bank.yaml, every other *.yaml/*.yml file and
// an optional questions.csv. Questions that fail validation or repeat an id are listed
// in the report's Rejected entries and left out of Loaded.
func LoadBank(dir string) (*models.IngestionReport, error) {
	bankPath := filepath.Join(dir, bankFileName)
	data, err := os.ReadFile(bankPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", bankPath, err)
	}

	report := &models.IngestionReport{Loaded: []models.Question{}, Rejected: []models.RejectedQuestion{}}
	if err := yaml.Unmarshal(data, &report.Bank); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", bankPath, err)
	}
	if report.Bank.DefaultDistribution != "" {
		spec, err := utils.ParseDistribution(report.Bank.DefaultDistribution)
		if err != nil {
			return nil, fmt.Errorf("invalid default_distribution in %s: %w", bankPath, err)
		}
		if spec.Total() < 1 {
			return nil, fmt.Errorf("default_distribution in %s asks for no questions", bankPath)
		}
	}

	l := &loader{dir: dir, report: report, seen: make(map[string]string)}

	files, err := questionFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if err := l.loadYAML(path); err != nil {
			return nil, err
		}
	}

	csvPath := filepath.Join(dir, csvFileName)
	if _, err := os.Stat(csvPath); err == nil {
		if err := l.loadCSV(csvPath); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", csvPath, err)
	}

	report.LoadedCount = len(report.Loaded)
	return report, nil
}

func questionFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list question files: %w", err)
		}
		for _, m := range matches {
			if filepath.Base(m) != bankFileName {
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (l *loader) rel(path string) string {
	if r, err := filepath.Rel(l.dir, path); err == nil {
		return r
	}
	return path
}

func (l *loader) reject(id, file string, line int, reason string) {
	l.report.Rejected = append(l.report.Rejected, models.RejectedQuestion{ID: id, File: file, Line: line, Reason: reason})
}

// admit validates q and adds it to the report unless its id was already loaded.
func (l *loader) admit(q models.Question, file string, line int) {
	normalize(&q)
	if err := exam.ValidateQuestion(q); err != nil {
		l.reject(q.ID, file, line, err.Error())
		return
	}
	if first, dup := l.seen[q.ID]; dup {
		l.reject(q.ID, file, line, fmt.Sprintf("duplicate id, first loaded from %s", first))
		return
	}
	l.seen[q.ID] = file
	l.report.Loaded = append(l.report.Loaded, q)
}

func normalize(q *models.Question) {
	q.ID = strings.TrimSpace(q.ID)
	q.Discipline = strings.TrimSpace(q.Discipline)
	q.Topic = strings.TrimSpace(q.Topic)
	if d, err := models.ParseDifficulty(string(q.Difficulty)); err == nil {
		q.Difficulty = d
	}
	q.Type = models.QuestionType(strings.ToLower(strings.TrimSpace(string(q.Type))))
	if q.Type == "" {
		q.Type = models.QuestionTypeMultipleChoice
	}
	if len(q.Alternatives) == 0 {
		q.Alternatives = nil
	}
}

func (l *loader) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f questionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	file := l.rel(path)
	for i := range f.Questions {
		node := &f.Questions[i]
		var q models.Question
		if err := node.Decode(&q); err != nil {
			l.reject("", file, node.Line, fmt.Sprintf("cannot decode question: %v", err))
			continue
		}
		if q.Discipline == "" {
			q.Discipline = f.Discipline
		}
		if q.Topic == "" {
			q.Topic = f.Topic
		}
		l.admit(q, file, node.Line)
	}
	return nil
}

// loadCSV reads questions.csv. The first row is a header. The correct column holds the
// letter of the correct alternative and is empty for open questions.
func (l *loader) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	file := l.rel(path)
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // column count is checked per row so one bad row does not abort the file
	reader.TrimLeadingSpace = true

	for record := 1; ; record++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError already carries the physical line.
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		// Quoted fields may span lines, so the record's own start line is reported.
		line, _ := reader.FieldPos(0)
		if record == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "id") {
			continue
		}
		if len(row) != csvColumnCount {
			l.reject(strings.TrimSpace(row[0]), file, line, fmt.Sprintf("expected %d columns, got %d", csvColumnCount, len(row)))
			continue
		}
		q, err := questionFromRow(row)
		if err != nil {
			l.reject(strings.TrimSpace(row[0]), file, line, err.Error())
			continue
		}
		l.admit(q, file, line)
	}
	return nil
}

func questionFromRow(row []string) (models.Question, error) {
	q := models.Question{
		ID:          row[0],
		Discipline:  row[1],
		Topic:       row[2],
		Difficulty:  models.Difficulty(row[3]),
		Type:        models.QuestionType(row[4]),
		Prompt:      strings.TrimSpace(row[5]),
		Explanation: strings.TrimSpace(row[6]),
	}

	// The correct letter names a column, so it is resolved before blank cells are dropped.
	correctCol := -1
	correct := strings.ToUpper(strings.TrimSpace(row[7]))
	if correct != "" {
		correctCol = utils.LetterToIndex(correct)
		if correctCol < 0 || correctCol >= maxCSVAlts {
			return q, fmt.Errorf("correct answer %q does not name one of the %d alternative columns", correct, maxCSVAlts)
		}
		if strings.TrimSpace(row[8+correctCol]) == "" {
			return q, fmt.Errorf("correct answer %q names an empty alternative", correct)
		}
	}

	var alts []models.Alternative
	for col, text := range row[8 : 8+maxCSVAlts] {
		if text = strings.TrimSpace(text); text != "" {
			alts = append(alts, models.Alternative{Text: text, IsCorrect: col == correctCol})
		}
	}
	q.Alternatives = alts
	return q, nil
}

// ProcessBank loads the bank in dir, upserts every valid question into the store and
// records each rejected question in the error log.
func ProcessBank(ctx context.Context, store db.Store, dir string, log *logger.Logger) (*models.IngestionReport, error) {
	report, err := LoadBank(dir)
	if err != nil {
		store.LogError(ctx, sourceName, dir, "Failed to load question bank", err.Error())
		return nil, err
	}

	for _, r := range report.Rejected {
		detail := r.Reason
		if r.Line > 0 {
			detail = fmt.Sprintf("line %d: %s", r.Line, r.Reason)
		}
		store.LogError(ctx, sourceName, r.File, fmt.Sprintf("Rejected question %q", r.ID), detail)
	}

	if len(report.Loaded) > 0 {
		if err := store.UpsertQuestions(ctx, report.Loaded); err != nil {
			store.LogError(ctx, sourceName, dir, "Failed to save questions", err.Error())
			return nil, fmt.Errorf("failed to upsert questions from %s: %w", dir, err)
		}
	}

	// The bank's default distribution becomes the one new exams start from.
	if report.Bank.DefaultDistribution != "" {
		if err := store.UpdateSetting(ctx, db.SettingDefaultDistribution, report.Bank.DefaultDistribution, sourceName); err != nil {
			store.LogError(ctx, sourceName, dir, "Failed to save default distribution", err.Error())
			return nil, fmt.Errorf("failed to save default_distribution from %s: %w", dir, err)
		}
	}

	notes := fmt.Sprintf("bank %q version %q: %d loaded, %d rejected", report.Bank.Name, report.Bank.Version, report.LoadedCount, len(report.Rejected))
	store.LogAdminEvent(ctx, "system", "INGEST_BANK", dir, notes)
	log.Info("Question bank ingested",
		"dir", dir,
		"bank", report.Bank.Name,
		"version", report.Bank.Version,
		"loaded", report.LoadedCount,
		"rejected", len(report.Rejected),
	)
	return report, nil
}
