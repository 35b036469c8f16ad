package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godilite/evalreport/internal/config"
	"github.com/godilite/evalreport/internal/repository/models"
	"github.com/godilite/evalreport/internal/service/mocks"
	"github.com/godilite/evalreport/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const instructorCSV = `Timestamp,Instructor,Level,Modül,Class,Q1,Q2,Comments
2024-03-01,Jane Doe,A1,2,B-2,Agree,Strongly Agree,Great teacher
2024-03-02,Jane Doe,A2,2,A-1,Disagree,Agree,
2024-03-03,John Roe,T1,2,A-1,Strongly Disagree,Disagree,Excluded level
2023-03-04,John Roe,B1,2,A-1,Strongly Agree,Agree,Wrong year
2024-03-05,John Roe,B1,abc,,Agree,Agree,Bad module
2024-03-06,John Roe,B2,2,,Neutral,Agree,Fine
`

const moduleCSV = `Timestamp,Please choose your level. ,Modül,Q1,Q2,Suggestions / comments
2024-04-01,A1,2,Strongly Agree,Agree,More speaking
2024-04-02,A1,2,Agree,Agree,
2024-04-03,B1,2,Disagree,Neutral,Too long
2024-04-04,T2,2,Agree,Agree,Excluded
`

func testLayout() config.SurveyConfig {
	cfg := config.DefaultSurveyConfig()
	canonical := survey.QuestionSpec{Strategy: survey.StrategyCanonical, Canonical: []string{"Q1", "Q2"}}
	cfg.Instructor.Questions = canonical
	cfg.Instructor.Instructor = survey.ColumnSpec{Name: "Instructor"}
	cfg.Module.Questions = canonical
	return cfg
}

func intPtr(v int) *int { return &v }

func newTestService(repo RunRepository) *ReportService {
	return NewReportService(repo, testLayout(), zap.NewNop())
}

// TestNewReportService tests the constructor
func TestNewReportService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		repo := &mocks.MockRunRepository{}
		logger := zap.NewNop()

		svc := NewReportService(repo, testLayout(), logger)

		assert.NotNil(t, svc)
		assert.Equal(t, repo, svc.runs)
		assert.Equal(t, logger, svc.logger)
	})

	t.Run("nil repository panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewReportService(nil, testLayout(), zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewReportService(&mocks.MockRunRepository{}, testLayout(), nil)
		assert.NotNil(t, svc.logger)
	})
}

func TestGenerate(t *testing.T) {
	repo := &mocks.MockRunRepository{}
	svc := newTestService(repo)

	res, err := svc.Generate(context.Background(), Request{
		Instructors: Source{Filename: "ogrenci.csv", Content: []byte(instructorCSV)},
		Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
		Year:        intPtr(2024),
		Module:      intPtr(2),
	})

	require.NoError(t, err)
	require.NoError(t, res.InstructorErr)
	require.NoError(t, res.ModuleErr)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "T", res.Criteria.ExcludeLevelPrefix)

	t.Run("instructor reports", func(t *testing.T) {
		set := res.Instructors
		require.NotNil(t, set)
		assert.Equal(t, []string{"Q1", "Q2"}, set.Questions)
		assert.Equal(t, 3, set.Records)
		require.Len(t, set.Reports, 2)

		jane := set.Reports[0]
		assert.Equal(t, "Jane Doe", jane.Instructor)
		assert.Equal(t, 3.0, jane.Scores[0].Group.Value)
		// Reference over the three surviving rows: (4+2+3)/3.
		assert.Equal(t, 3.0, jane.Scores[0].Reference.Value)
		assert.Equal(t, 3, jane.Scores[0].Reference.Count)
		assert.Equal(t, []survey.CommentGroup{{Key: "B-2", Comments: []string{"Great teacher"}}}, jane.CommentGroups)
		assert.Empty(t, jane.Modules, "no breakdown when a module is selected")

		john := set.Reports[1]
		assert.Equal(t, 1, john.Records)
		assert.Equal(t, []survey.CommentGroup{{Key: "Unspecified", Comments: []string{"Fine"}}}, john.CommentGroups)
	})

	t.Run("module reports", func(t *testing.T) {
		set := res.Modules
		require.NotNil(t, set)
		require.Len(t, set.Reports, 5)
		assert.Equal(t, OverallLevel, set.Reports[0].Level)
		assert.Equal(t, 3, set.Reports[0].Records)
		assert.Equal(t, []string{"More speaking", "Too long"}, set.Reports[0].Comments)

		assert.Equal(t, "A1", set.Reports[1].Level)
		assert.Equal(t, 4.5, set.Reports[1].Scores[0].Group.Value)

		assert.Equal(t, "A2", set.Reports[2].Level)
		assert.Empty(t, set.Reports[2].Scores)
	})

	t.Run("warnings and run record", func(t *testing.T) {
		assert.Contains(t, res.Warnings, Warning{Dataset: datasetModules, Message: "no data for level A2"})
		assert.Contains(t, res.Warnings, Warning{Dataset: datasetModules, Message: "no data for level B2"})

		require.Len(t, repo.Saved, 1)
		run := repo.Saved[0]
		assert.Equal(t, res.RunID, run.ID)
		assert.Equal(t, 2024, run.Year)
		assert.Equal(t, 2, run.Module)
		assert.Equal(t, 2, run.InstructorCount)
		assert.Equal(t, 3, run.LevelCounts[OverallLevel])
		assert.Equal(t, len(res.Warnings), run.WarningCount)
	})
}

func TestGenerate_BreakdownWithoutModuleFilter(t *testing.T) {
	svc := newTestService(&mocks.MockRunRepository{})

	res, err := svc.Generate(context.Background(), Request{
		Instructors: Source{Filename: "ogrenci.csv", Content: []byte(instructorCSV)},
		Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
	})

	require.NoError(t, err)
	require.NotNil(t, res.Instructors)
	for _, r := range res.Instructors.Reports {
		require.Len(t, r.Modules, 4)
		assert.Equal(t, []int{1, 2, 3, 4}, []int{r.Modules[0].Module, r.Modules[1].Module, r.Modules[2].Module, r.Modules[3].Module})
	}
}

func TestGenerate_IsolatesFailures(t *testing.T) {
	svc := newTestService(&mocks.MockRunRepository{})

	t.Run("unreadable instructor dataset", func(t *testing.T) {
		res, err := svc.Generate(context.Background(), Request{
			Instructors: Source{Filename: "ogrenci.pdf", Content: []byte("%PDF")},
			Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
		})

		require.NoError(t, err)
		assert.ErrorIs(t, res.InstructorErr, ErrDatasetUnreadable)
		assert.Nil(t, res.Instructors)
		require.NotNil(t, res.Modules)
		assert.Len(t, res.Modules.Reports, 5)
	})

	t.Run("missing instructor column", func(t *testing.T) {
		res, err := svc.Generate(context.Background(), Request{
			Instructors: Source{Filename: "ogrenci.csv", Content: []byte("Q1,Q2\nAgree,Agree\n")},
			Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
		})

		require.NoError(t, err)
		assert.ErrorIs(t, res.InstructorErr, ErrMissingColumn)
		assert.NotNil(t, res.Modules)
	})

	t.Run("both datasets fail", func(t *testing.T) {
		res, err := svc.Generate(context.Background(), Request{
			Instructors: Source{Filename: "ogrenci.csv"},
			Modules:     Source{Filename: "module.csv"},
		})

		assert.ErrorIs(t, err, ErrNoReports)
		assert.ErrorIs(t, err, ErrDatasetUnreadable)
		require.NotNil(t, res)
		assert.Error(t, res.ModuleErr)
	})
}

func TestGenerate_EmptyAfterFilter(t *testing.T) {
	svc := newTestService(&mocks.MockRunRepository{})

	res, err := svc.Generate(context.Background(), Request{
		Instructors: Source{Filename: "ogrenci.csv", Content: []byte(instructorCSV)},
		Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
		Year:        intPtr(2030),
	})

	require.NoError(t, err)
	require.NotNil(t, res.Instructors)
	assert.Empty(t, res.Instructors.Reports)
	assert.Contains(t, res.Warnings, Warning{Dataset: datasetInstructors, Message: "no data after year filter"})

	require.NotNil(t, res.Modules)
	require.Len(t, res.Modules.Reports, 5)
	for _, r := range res.Modules.Reports {
		assert.Empty(t, r.Scores)
	}
}

func TestGenerate_QuestionLabelsKeepSurveyWording(t *testing.T) {
	const instructors = "Timestamp,Instructor,Level,The instructor's feedback was useful\n" +
		"2024-03-01,Jane Doe,A1,Agree\n"
	const modules = "Timestamp,Please choose your level.,\"Materials were \"\"clear\"\"\"\n" +
		"2024-04-01,A1,Agree\n"

	layout := config.DefaultSurveyConfig()
	layout.Instructor.Instructor = survey.ColumnSpec{Name: "Instructor"}
	layout.Instructor.Questions = survey.QuestionSpec{
		Strategy:  survey.StrategyCanonical,
		Canonical: []string{"The instructor’s feedback was useful"},
	}
	layout.Module.Questions = survey.QuestionSpec{
		Strategy:  survey.StrategyCanonical,
		Canonical: []string{"Materials were clear"},
	}
	svc := NewReportService(&mocks.MockRunRepository{}, layout, zap.NewNop())

	res, err := svc.Generate(context.Background(), Request{
		Instructors: Source{Filename: "ogrenci.csv", Content: []byte(instructors)},
		Modules:     Source{Filename: "module.csv", Content: []byte(modules)},
	})

	require.NoError(t, err)
	require.NotNil(t, res.Instructors)
	require.Len(t, res.Instructors.Reports, 1)
	assert.Equal(t, []string{"The instructor's feedback was useful"}, res.Instructors.Questions)
	assert.Equal(t, "The instructor's feedback was useful", res.Instructors.Reports[0].Scores[0].Question)

	require.NotNil(t, res.Modules)
	assert.Equal(t, `Materials were "clear"`, res.Modules.Reports[0].Scores[0].Question)
}

func TestGenerate_InvalidCriteria(t *testing.T) {
	svc := newTestService(&mocks.MockRunRepository{})

	for _, m := range []int{0, 6} {
		_, err := svc.Generate(context.Background(), Request{Module: intPtr(m)})
		assert.ErrorIs(t, err, ErrInvalidCriteria)
	}
	_, err := svc.Generate(context.Background(), Request{Year: intPtr(1999)})
	assert.ErrorIs(t, err, ErrInvalidCriteria)
}

func TestGenerate_StorageFailureIsNotFatal(t *testing.T) {
	repo := &mocks.MockRunRepository{
		SaveRunFunc: func(ctx context.Context, run models.RunSummary) error {
			return errors.New("disk full")
		},
	}
	svc := newTestService(repo)

	res, err := svc.Generate(context.Background(), Request{
		Instructors: Source{Filename: "ogrenci.csv", Content: []byte(instructorCSV)},
		Modules:     Source{Filename: "module.csv", Content: []byte(moduleCSV)},
	})

	require.NoError(t, err)
	assert.NotNil(t, res.Instructors)
}

func TestIsolate_RecoversPanics(t *testing.T) {
	err := isolate("instructors", func() error {
		var m map[string]int
		m["boom"]++
		return nil
	})

	assert.ErrorIs(t, err, ErrTransformFailed)
	assert.Contains(t, err.Error(), "instructors")
}

func TestRecentRuns(t *testing.T) {
	t.Run("returns stored runs", func(t *testing.T) {
		repo := &mocks.MockRunRepository{
			ListRunsFunc: func(ctx context.Context, limit int) ([]models.RunSummary, error) {
				assert.Equal(t, 5, limit)
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return []models.RunSummary{{ID: "r1", CreatedAt: time.Now()}}, nil
			},
		}

		runs, err := newTestService(repo).RecentRuns(context.Background(), 5)

		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := &mocks.MockRunRepository{
			ListRunsFunc: func(ctx context.Context, limit int) ([]models.RunSummary, error) {
				return nil, errors.New("database connection failed")
			},
		}

		_, err := newTestService(repo).RecentRuns(context.Background(), 5)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database connection failed")
	})
}
