package service

import (
	"strings"

	"github.com/godilite/evalreport/internal/survey"
)

// BuildInstructorReports turns a filtered instructor table into one report per
// distinct instructor, in first-seen order. Each instructor is compared with
// the whole table. When breakdown modules are given and the module column is
// known, every report also carries per-module tables compared with that
// module's slice of the table.
func BuildInstructorReports(t *survey.Table, cols survey.Columns, breakdown []int) []InstructorReport {
	questions := cols.Questions
	key := survey.ByColumn(cols.Instructor)
	scores := survey.Aggregate(t, questions, key)
	groups := survey.GroupBy(t, key)

	if cols.Module == "" {
		breakdown = nil
	}
	moduleRefs := make(map[int][]survey.Average, len(breakdown))
	for _, m := range breakdown {
		moduleRefs[m] = survey.Means(t.Where(moduleIs(cols.Module, m)), questions)
	}

	reports := make([]InstructorReport, 0, len(groups))
	for i, g := range groups {
		r := InstructorReport{
			Instructor:    g.Key,
			Records:       scores[i].Records,
			Scores:        scores[i].Rows,
			CommentGroups: survey.GroupedComments(g.Table, cols.Comment, cols.Class),
		}
		for _, m := range breakdown {
			mt := g.Table.Where(moduleIs(cols.Module, m))
			r.Modules = append(r.Modules, ModuleBreakdown{
				Module:  m,
				Records: mt.Len(),
				Scores:  survey.Rows(questions, survey.Means(mt, questions), moduleRefs[m]),
			})
		}
		reports = append(reports, r)
	}
	return reports
}

// BuildModuleReports returns the OVERALL report followed by one report per
// level, always in that shape. Levels without records get empty tables.
func BuildModuleReports(t *survey.Table, cols survey.Columns, levels []string) []ModuleReport {
	reports := make([]ModuleReport, 0, len(levels)+1)
	reports = append(reports, moduleReport(OverallLevel, t, cols))

	for _, level := range levels {
		want := strings.ToUpper(strings.TrimSpace(level))
		lt := &survey.Table{Columns: t.Columns}
		if cols.Level != "" {
			lt = t.Where(func(r survey.Record) bool {
				return strings.ToUpper(strings.TrimSpace(r.Get(cols.Level))) == want
			})
		}
		reports = append(reports, moduleReport(level, lt, cols))
	}
	return reports
}

func moduleReport(label string, t *survey.Table, cols survey.Columns) ModuleReport {
	r := ModuleReport{
		Level:    label,
		Records:  t.Len(),
		Scores:   []survey.AggregateRow{},
		Comments: survey.Comments(t, cols.Comment),
	}
	if t.Len() > 0 {
		r.Scores = survey.Rows(cols.Questions, survey.Means(t, cols.Questions), nil)
	}
	return r
}

func moduleIs(column string, module int) func(survey.Record) bool {
	return func(r survey.Record) bool {
		m, ok := survey.ParseModule(r.Get(column))
		return ok && m == module
	}
}
