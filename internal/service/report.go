package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/godilite/evalreport/internal/config"
	"github.com/godilite/evalreport/internal/ingest"
	"github.com/godilite/evalreport/internal/repository/models"
	"github.com/godilite/evalreport/internal/survey"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	dbTimeout = 1 * time.Second

	datasetInstructors = "instructors"
	datasetModules     = "modules"
)

var (
	ErrNoRecords         = errors.New("no records match the criteria")
	ErrDatasetUnreadable = errors.New("dataset unreadable")
	ErrMissingColumn     = errors.New("required column not found")
	ErrTransformFailed   = errors.New("transformation failed")
	ErrInvalidCriteria   = errors.New("invalid criteria")
	ErrNoReports         = errors.New("no report could be produced")
	ErrStorageFailure    = errors.New("storage failure")
)

// ReportService builds the instructor and module report models.
type ReportService struct {
	runs     RunRepository
	layout   config.SurveyConfig
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewReportService creates a new ReportService instance.
func NewReportService(runs RunRepository, layout config.SurveyConfig, logger *zap.Logger) *ReportService {
	if runs == nil {
		panic("runs repository must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &ReportService{
		runs:     runs,
		layout:   layout,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Criteria returns the filter a request resolves to, the configured level
// exclusion included.
func (s *ReportService) Criteria(req Request) (survey.Criteria, error) {
	c := survey.Criteria{
		ExcludeLevelPrefix: s.layout.ExcludeLevelPrefix,
		Module:             req.Module,
		Year:               req.Year,
	}
	if err := s.validate.Struct(c); err != nil {
		return survey.Criteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return c, nil
}

// Generate runs both report passes. Each pass is isolated: a failure in one is
// recorded in the result while the other still completes. An error is
// returned only for invalid criteria or when neither pass produced a report.
func (s *ReportService) Generate(ctx context.Context, req Request) (*Result, error) {
	c, err := s.Criteria(req)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString(), Criteria: c}
	log := s.logger.With(zap.String("run_id", res.RunID))

	res.InstructorErr = isolate(datasetInstructors, func() error {
		set, err := s.instructorPass(req.Instructors, c, res, log)
		res.Instructors = set
		return err
	})
	if res.InstructorErr != nil {
		res.Instructors = nil
		log.Error("instructor reports failed", zap.Error(res.InstructorErr))
	}

	res.ModuleErr = isolate(datasetModules, func() error {
		set, err := s.modulePass(req.Modules, c, res, log)
		res.Modules = set
		return err
	})
	if res.ModuleErr != nil {
		res.Modules = nil
		log.Error("module reports failed", zap.Error(res.ModuleErr))
	}

	s.recordRun(ctx, res, log)

	if res.Instructors == nil && res.Modules == nil {
		return res, fmt.Errorf("%w: %w", ErrNoReports, errors.Join(res.InstructorErr, res.ModuleErr))
	}
	return res, nil
}

// RecentRuns returns the newest stored run summaries.
func (s *ReportService) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	runs, err := s.runs.ListRuns(dbCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return runs, nil
}

func (s *ReportService) instructorPass(src Source, c survey.Criteria, res *Result, log *zap.Logger) (*InstructorSet, error) {
	tbl, err := load(src)
	if err != nil {
		return nil, err
	}

	layout := s.layout.Instructor
	cols := survey.Resolve(tbl.Columns, layout)
	if cols.Instructor == "" {
		return nil, fmt.Errorf("%w: instructor column", ErrMissingColumn)
	}
	s.checkColumns(datasetInstructors, cols, c, res)
	if cols.Class == "" && cols.Comment != "" {
		res.warn(datasetInstructors, "class column not found; comments are not grouped by class")
	}

	filtered, trace := survey.Filter(tbl, cols, c)
	logTrace(log, datasetInstructors, trace)

	set := &InstructorSet{Questions: cols.Questions, Records: filtered.Len(), Reports: []InstructorReport{}}
	if filtered.Len() == 0 {
		res.warn(datasetInstructors, emptyMessage(trace))
		return set, nil
	}

	var breakdown []int
	if c.Module == nil {
		breakdown = s.layout.BreakdownModules
	}
	set.Reports = BuildInstructorReports(filtered, cols, breakdown)

	log.Info("instructor reports built",
		zap.Int("records", filtered.Len()),
		zap.Int("instructors", len(set.Reports)),
		zap.Int("questions", len(cols.Questions)))
	return set, nil
}

func (s *ReportService) modulePass(src Source, c survey.Criteria, res *Result, log *zap.Logger) (*ModuleSet, error) {
	tbl, err := load(src)
	if err != nil {
		return nil, err
	}

	cols := survey.Resolve(tbl.Columns, s.layout.Module)
	s.checkColumns(datasetModules, cols, c, res)
	if cols.Level == "" {
		res.warn(datasetModules, "level column not found; per-level reports are empty")
	}

	filtered, trace := survey.Filter(tbl, cols, c)
	logTrace(log, datasetModules, trace)
	if filtered.Len() == 0 {
		res.warn(datasetModules, emptyMessage(trace))
	}

	set := &ModuleSet{
		Questions: cols.Questions,
		Records:   filtered.Len(),
		Reports:   BuildModuleReports(filtered, cols, s.layout.Levels),
	}
	for _, r := range set.Reports[1:] {
		if r.Records == 0 && filtered.Len() > 0 {
			res.warn(datasetModules, fmt.Sprintf("no data for level %s", r.Level))
		}
	}

	log.Info("module reports built",
		zap.Int("records", filtered.Len()),
		zap.Int("levels", len(set.Reports)-1),
		zap.Int("questions", len(cols.Questions)))
	return set, nil
}

func (s *ReportService) checkColumns(dataset string, cols survey.Columns, c survey.Criteria, res *Result) {
	if len(cols.Questions) == 0 {
		res.warn(dataset, "no question columns resolved")
	}
	if cols.Comment == "" {
		res.warn(dataset, "comment column not found; comments omitted")
	}
	if c.Module != nil && cols.Module == "" {
		res.warn(dataset, "module column not found; module filter not applied")
	}
	if c.Year != nil && cols.Date == "" {
		res.warn(dataset, "date column not found; year filter not applied")
	}
}

func (s *ReportService) recordRun(ctx context.Context, res *Result, log *zap.Logger) {
	run := models.RunSummary{
		ID:           res.RunID,
		CreatedAt:    s.now().UTC(),
		WarningCount: len(res.Warnings),
	}
	if res.Criteria.Year != nil {
		run.Year = *res.Criteria.Year
	}
	if res.Criteria.Module != nil {
		run.Module = *res.Criteria.Module
	}
	if res.Instructors != nil {
		run.InstructorCount = len(res.Instructors.Reports)
	}
	if res.Modules != nil {
		run.LevelCounts = make(map[string]int, len(res.Modules.Reports))
		for _, r := range res.Modules.Reports {
			run.LevelCounts[r.Level] = r.Records
		}
	}
	if res.InstructorErr != nil {
		run.InstructorError = res.InstructorErr.Error()
	}
	if res.ModuleErr != nil {
		run.ModuleError = res.ModuleErr.Error()
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if err := s.runs.SaveRun(dbCtx, run); err != nil {
		log.Warn("failed to record run", zap.Error(fmt.Errorf("%w: %v", ErrStorageFailure, err)))
	}
}

func (r *Result) warn(dataset, msg string) {
	r.Warnings = append(r.Warnings, Warning{Dataset: dataset, Message: msg})
}

func load(src Source) (*survey.Table, error) {
	if len(src.Content) == 0 {
		return nil, fmt.Errorf("%w: %q is empty", ErrDatasetUnreadable, src.Filename)
	}
	tbl, err := ingest.Load(src.Filename, bytes.NewReader(src.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnreadable, err)
	}
	return tbl, nil
}

// isolate runs one pass, converting a panic into ErrTransformFailed.
func isolate(dataset string, pass func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrTransformFailed, dataset, r)
		}
	}()
	return pass()
}

func emptyMessage(trace survey.Trace) string {
	switch trace.EmptiedAt() {
	case survey.StageInput:
		return "dataset has no records"
	case survey.StageLevel:
		return "no data after level filter"
	case survey.StageModule:
		return "no data after module filter"
	case survey.StageYear:
		return "no data after year filter"
	}
	return ErrNoRecords.Error()
}

func logTrace(log *zap.Logger, dataset string, trace survey.Trace) {
	fields := []zap.Field{zap.String("dataset", dataset)}
	for _, s := range trace {
		if s.Active {
			fields = append(fields, zap.Int(string(s.Stage), s.Remaining))
		}
	}
	log.Debug("filter applied", fields...)
}
