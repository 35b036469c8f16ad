package models

import "time"

// RunSummary is the stored outline of one report generation run.
type RunSummary struct {
	ID              string
	CreatedAt       time.Time
	Year            int
	Module          int
	InstructorCount int
	LevelCounts     map[string]int
	WarningCount    int
	InstructorError string
	ModuleError     string
}
