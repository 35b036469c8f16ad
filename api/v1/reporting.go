// Package v1 holds the messages and service descriptor of the
// evalreport.v1.Reporting gRPC service. Messages travel with the JSON codec
// registered by this package.
package v1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Upload is one survey export as sent by the client.
type Upload struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

func (x *Upload) GetFilename() string {
	if x != nil {
		return x.Filename
	}
	return ""
}

func (x *Upload) GetContent() []byte {
	if x != nil {
		return x.Content
	}
	return nil
}

type GenerateReportsRequest struct {
	Instructors *Upload                `json:"instructors,omitempty"`
	Modules     *Upload                `json:"modules,omitempty"`
	Year        *wrapperspb.Int32Value `json:"year,omitempty"`
	Module      *wrapperspb.Int32Value `json:"module,omitempty"`
}

func (x *GenerateReportsRequest) GetInstructors() *Upload {
	if x != nil {
		return x.Instructors
	}
	return nil
}

func (x *GenerateReportsRequest) GetModules() *Upload {
	if x != nil {
		return x.Modules
	}
	return nil
}

func (x *GenerateReportsRequest) GetYear() *wrapperspb.Int32Value {
	if x != nil {
		return x.Year
	}
	return nil
}

func (x *GenerateReportsRequest) GetModule() *wrapperspb.Int32Value {
	if x != nil {
		return x.Module
	}
	return nil
}

type Warning struct {
	Dataset string `json:"dataset"`
	Message string `json:"message"`
}

type GenerateReportsResponse struct {
	RunId           string           `json:"run_id"`
	Archive         []byte           `json:"archive"`
	Warnings        []*Warning       `json:"warnings,omitempty"`
	InstructorCount int32            `json:"instructor_count"`
	LevelCounts     map[string]int32 `json:"level_counts,omitempty"`
	InstructorError string           `json:"instructor_error,omitempty"`
	ModuleError     string           `json:"module_error,omitempty"`
}

type ListRunsRequest struct {
	Limit int32 `json:"limit"`
}

func (x *ListRunsRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

type Run struct {
	RunId           string                 `json:"run_id"`
	CreatedAt       *timestamppb.Timestamp `json:"created_at"`
	Year            int32                  `json:"year,omitempty"`
	Module          int32                  `json:"module,omitempty"`
	InstructorCount int32                  `json:"instructor_count"`
	LevelCounts     map[string]int32       `json:"level_counts,omitempty"`
	WarningCount    int32                  `json:"warning_count"`
	InstructorError string                 `json:"instructor_error,omitempty"`
	ModuleError     string                 `json:"module_error,omitempty"`
}

type ListRunsResponse struct {
	Runs []*Run `json:"runs"`
}
