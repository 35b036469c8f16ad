package service

import "github.com/godilite/evalreport/internal/survey"

// OverallLevel labels the module report computed over every level.
const OverallLevel = "OVERALL"

// Source is one uploaded survey export.
type Source struct {
	Filename string
	Content  []byte
}

type Request struct {
	Instructors Source
	Modules     Source
	Year        *int
	Module      *int
}

type ModuleBreakdown struct {
	Module  int                   `json:"module"`
	Records int                   `json:"records"`
	Scores  []survey.AggregateRow `json:"scores"`
}

type InstructorReport struct {
	Instructor    string                `json:"instructor"`
	Records       int                   `json:"records"`
	Scores        []survey.AggregateRow `json:"scores"`
	CommentGroups []survey.CommentGroup `json:"comment_groups"`
	Modules       []ModuleBreakdown     `json:"modules,omitempty"`
}

type ModuleReport struct {
	Level    string                `json:"level"`
	Records  int                   `json:"records"`
	Scores   []survey.AggregateRow `json:"scores"`
	Comments []string              `json:"comments"`
}

// InstructorSet is the outcome of the instructor-evaluation pass.
type InstructorSet struct {
	Questions []string           `json:"questions"`
	Records   int                `json:"records"`
	Reports   []InstructorReport `json:"reports"`
}

// ModuleSet is the outcome of the module-evaluation pass.
type ModuleSet struct {
	Questions []string       `json:"questions"`
	Records   int            `json:"records"`
	Reports   []ModuleReport `json:"reports"`
}

type Warning struct {
	Dataset string `json:"dataset"`
	Message string `json:"message"`
}

// Result carries whatever each pass produced. A failed pass leaves its set
// nil and its error populated; the sibling pass is unaffected.
type Result struct {
	RunID         string
	Criteria      survey.Criteria
	Instructors   *InstructorSet
	Modules       *ModuleSet
	InstructorErr error
	ModuleErr     error
	Warnings      []Warning
}
