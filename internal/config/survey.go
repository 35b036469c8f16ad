package config

import (
	"fmt"
	"os"

	"github.com/godilite/evalreport/internal/survey"
	"gopkg.in/yaml.v3"
)

// SurveyConfig describes both survey exports and the report structure.
type SurveyConfig struct {
	Instructor         survey.Layout `yaml:"instructor"`
	Module             survey.Layout `yaml:"module"`
	Levels             []string      `yaml:"levels"`
	ExcludeLevelPrefix string        `yaml:"exclude_level_prefix"`
	BreakdownModules   []int         `yaml:"breakdown_modules"`
}

// DefaultSurveyConfig matches the column layout of the current survey exports.
func DefaultSurveyConfig() SurveyConfig {
	date := survey.ColumnSpec{
		Name:    "Completion time",
		Markers: []string{
			"completion time", "tamamlanma saati", "start time", "başlangıç saati",
			"date", "tarih", "timestamp", "zaman",
		},
	}
	module := survey.ColumnSpec{Name: "Modül", Markers: []string{"modül", "module no", "module"}}

	return SurveyConfig{
		Instructor: survey.Layout{
			Questions:  survey.QuestionSpec{Strategy: survey.StrategyPositional, Start: 21, End: 37},
			Instructor: survey.ColumnSpec{Name: "Öğretim Elemanı", Markers: []string{"öğretim elemanı", "instructor"}},
			Level:      survey.ColumnSpec{Name: "Kur", Markers: []string{"level", "kur"}},
			Module:     module,
			Date:       date,
			Class:      survey.ColumnSpec{Name: "Sınıf", Markers: []string{"sınıf", "class"}},
			Comment:    survey.ColumnSpec{Markers: []string{"comment", "yorum", "görüş"}},
		},
		Module: survey.Layout{
			Questions: survey.QuestionSpec{Strategy: survey.StrategyPositional, Start: 20, End: 27},
			Level:     survey.ColumnSpec{Name: "Please choose your level.", Markers: []string{"level"}},
			Module:    module,
			Date:      date,
			Comment:   survey.ColumnSpec{Markers: []string{"comment", "yorum", "suggestion"}},
		},
		Levels:             []string{"A1", "A2", "B1", "B2"},
		ExcludeLevelPrefix: "T",
		BreakdownModules:   []int{1, 2, 3, 4},
	}
}

// LoadSurveyConfig reads a YAML layout file on top of the defaults. An empty
// path returns the defaults unchanged.
func LoadSurveyConfig(path string) (SurveyConfig, error) {
	cfg := DefaultSurveyConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SurveyConfig{}, fmt.Errorf("read survey config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SurveyConfig{}, fmt.Errorf("parse survey config %s: %w", path, err)
	}
	if len(cfg.Levels) == 0 {
		return SurveyConfig{}, fmt.Errorf("survey config %s: levels must not be empty", path)
	}
	return cfg, nil
}
