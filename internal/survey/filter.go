package survey

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Criteria narrows a table. Zero values leave a criterion inactive.
type Criteria struct {
	ExcludeLevelPrefix string `json:"exclude_level_prefix,omitempty"`
	Module             *int   `json:"module,omitempty" validate:"omitempty,min=1,max=5"`
	Year               *int   `json:"year,omitempty" validate:"omitempty,min=2000,max=2100"`
}

// Stage names a filter step in a Trace.
type Stage string

const (
	StageInput  Stage = "input"
	StageLevel  Stage = "level"
	StageModule Stage = "module"
	StageYear   Stage = "year"
)

// StageCount is the number of records left after a stage ran.
type StageCount struct {
	Stage     Stage
	Remaining int
	Active    bool
}

// Trace lists record counts per filter stage, in application order.
type Trace []StageCount

// EmptiedAt returns the first active stage that left no records, or "" if
// records survived (or the input was already empty).
func (t Trace) EmptiedAt() Stage {
	for _, s := range t {
		if s.Stage == StageInput && s.Remaining == 0 {
			return StageInput
		}
		if s.Active && s.Remaining == 0 {
			return s.Stage
		}
	}
	return ""
}

// Filter applies c to t: level exclusion, then module, then year. A criterion
// whose column was not resolved is skipped. The input table is not modified.
func Filter(t *Table, cols Columns, c Criteria) (*Table, Trace) {
	if t == nil {
		t = &Table{}
	}
	trace := Trace{{Stage: StageInput, Remaining: t.Len(), Active: true}}
	out := t

	prefix := strings.ToUpper(strings.TrimSpace(c.ExcludeLevelPrefix))
	active := prefix != "" && cols.Level != ""
	if active {
		out = out.Where(func(r Record) bool {
			return !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(r.Get(cols.Level))), prefix)
		})
	}
	trace = append(trace, StageCount{Stage: StageLevel, Remaining: out.Len(), Active: active})

	active = c.Module != nil && cols.Module != ""
	if active {
		want := *c.Module
		out = out.Where(func(r Record) bool {
			m, ok := ParseModule(r.Get(cols.Module))
			return ok && m == want
		})
	}
	trace = append(trace, StageCount{Stage: StageModule, Remaining: out.Len(), Active: active})

	active = c.Year != nil && cols.Date != ""
	if active {
		want := *c.Year
		out = out.Where(func(r Record) bool {
			d, ok := ParseDate(r.Get(cols.Date))
			return ok && d.Year() == want
		})
	}
	trace = append(trace, StageCount{Stage: StageYear, Remaining: out.Len(), Active: active})

	return out, trace
}

// ParseModule coerces a module cell to an integer. "2", " 2 " and "2.0"
// parse; fractional or non-numeric text does not.
func ParseModule(cell string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/06",
}

// ParseDate reads a response date. Besides textual layouts it accepts
// spreadsheet serial numbers, which unformatted xlsx cells carry.
func ParseDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
