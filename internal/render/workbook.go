package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/godilite/evalreport/internal/service"
	"github.com/godilite/evalreport/internal/survey"
	"github.com/xuri/excelize/v2"
)

const (
	placeholder     = "-"
	maxSheetNameLen = 31
	defaultSheet    = "Sheet1"
)

var (
	instructorHeaders = []string{"THE INSTRUCTOR…", "YOUR AVERAGE", "KEPP AVERAGE"}
	moduleHeaders     = []string{"Question", "Average Score"}
)

// sheet is a cursor over one worksheet.
type sheet struct {
	f      *excelize.File
	name   string
	styles map[string]int
	row    int
}

func (s *sheet) set(col, row int, value any, style string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, cell, value); err != nil {
		return err
	}
	if id, ok := s.styles[style]; ok {
		return s.f.SetCellStyle(s.name, cell, cell, id)
	}
	return nil
}

func (s *sheet) score(col, row int, a survey.Average) error {
	if !a.Valid() {
		return s.set(col, row, placeholder, StyleScore)
	}
	return s.set(col, row, a.Value, StyleScore)
}

// table writes a header row and one row per question, returning the first
// and last data row.
func (s *sheet) table(headers []string, rows []survey.AggregateRow, withReference bool) (first, last int, err error) {
	for i, h := range headers {
		if err := s.set(i+1, s.row, h, StyleHeader); err != nil {
			return 0, 0, err
		}
	}
	s.row++
	first = s.row
	for _, r := range rows {
		if err := s.set(1, s.row, r.Question, StyleText); err != nil {
			return 0, 0, err
		}
		if err := s.score(2, s.row, r.Group); err != nil {
			return 0, 0, err
		}
		if withReference {
			if err := s.score(3, s.row, r.Reference); err != nil {
				return 0, 0, err
			}
		}
		s.row++
	}
	return first, s.row - 1, nil
}

// InstructorWorkbook renders one sheet per instructor: the overall table,
// per-module tables, then comment groups in alternating band colors.
func InstructorWorkbook(set *service.InstructorSet, p Palette) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := register(f, p)
	if err != nil {
		f.Close()
		return nil, err
	}

	names := newSheetNames()
	for _, rep := range set.Reports {
		name := names.take(rep.Instructor)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeInstructorSheet(&sheet{f: f, name: name, styles: styles, row: 1}, rep, p); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if len(set.Reports) == 0 {
		s := &sheet{f: f, name: defaultSheet, styles: styles}
		if err := s.set(1, 1, "No instructor data for the selected criteria", StylePlaceholder); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeInstructorSheet(s *sheet, rep service.InstructorReport, p Palette) error {
	if err := s.f.SetColWidth(s.name, "A", "A", 60); err != nil {
		return err
	}
	if err := s.f.SetColWidth(s.name, "B", "C", 15); err != nil {
		return err
	}

	if err := s.set(1, s.row, "TOTAL", StyleTitle); err != nil {
		return err
	}
	s.row++
	if _, _, err := s.table(instructorHeaders, rep.Scores, true); err != nil {
		return err
	}

	for _, m := range rep.Modules {
		s.row++
		if err := s.set(1, s.row, fmt.Sprintf("MOD %d", m.Module), StyleTitle); err != nil {
			return err
		}
		s.row++
		if _, _, err := s.table(instructorHeaders, m.Scores, true); err != nil {
			return err
		}
	}

	if len(rep.CommentGroups) == 0 {
		return nil
	}
	s.row++
	if err := s.set(1, s.row, "COMMENTS", StyleHeader); err != nil {
		return err
	}
	s.row++
	for i, g := range rep.CommentGroups {
		band := StyleText
		if len(p.Bands) > 0 {
			band = bandName(i % len(p.Bands))
		}
		if err := s.set(1, s.row, g.Key, StyleTitle); err != nil {
			return err
		}
		s.row++
		for _, c := range g.Comments {
			if err := s.set(1, s.row, c, band); err != nil {
				return err
			}
			s.row++
		}
	}
	return nil
}

// ModuleWorkbook renders one sheet per module report: the score table, a
// column chart and the comment list, or a placeholder when there is no data.
func ModuleWorkbook(set *service.ModuleSet, p Palette) (*excelize.File, error) {
	f := excelize.NewFile()
	styles, err := register(f, p)
	if err != nil {
		f.Close()
		return nil, err
	}

	names := newSheetNames()
	for _, rep := range set.Reports {
		name := names.take(rep.Level)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeModuleSheet(&sheet{f: f, name: name, styles: styles, row: 1}, rep, p); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	if len(set.Reports) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, err
		}
		f.SetActiveSheet(0)
	}
	return f, nil
}

func writeModuleSheet(s *sheet, rep service.ModuleReport, p Palette) error {
	if rep.Records == 0 || len(rep.Scores) == 0 {
		msg := fmt.Sprintf("No data for Level %s", rep.Level)
		if rep.Level == service.OverallLevel {
			msg = "No data for the selected criteria"
		}
		return s.set(1, 1, msg, StylePlaceholder)
	}

	if err := s.f.SetColWidth(s.name, "A", "A", 70); err != nil {
		return err
	}
	if err := s.f.SetColWidth(s.name, "B", "B", 15); err != nil {
		return err
	}

	first, last, err := s.table(moduleHeaders, rep.Scores, false)
	if err != nil {
		return err
	}
	if err := s.f.AddChart(s.name, "D2", moduleChart(s.name, rep.Level, first, last, p)); err != nil {
		return fmt.Errorf("add chart: %w", err)
	}

	if len(rep.Comments) == 0 {
		return nil
	}
	s.row++
	if err := s.set(1, s.row, "Comments", StyleHeader); err != nil {
		return err
	}
	s.row++
	for _, c := range rep.Comments {
		if err := s.set(1, s.row, c, StyleText); err != nil {
			return err
		}
		s.row++
	}
	return nil
}

func moduleChart(sheetName, level string, first, last int, p Palette) *excelize.Chart {
	ref := "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
	minScore, maxScore := 0.0, 5.0

	title := fmt.Sprintf("%s Level - Module Evaluation", level)
	if level == service.OverallLevel {
		title = "Overall - Module Evaluation"
	}

	series := excelize.ChartSeries{
		Name:       "Average Score",
		Categories: fmt.Sprintf("%s!$A$%d:$A$%d", ref, first, last),
		Values:     fmt.Sprintf("%s!$B$%d:$B$%d", ref, first, last),
	}
	if p.ChartColor != "" {
		series.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{p.ChartColor}}
	}

	return &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{series},
		Title:  []excelize.RichTextRun{{Text: title}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Questions"}}},
		YAxis: excelize.ChartAxis{
			Minimum: &minScore,
			Maximum: &maxScore,
			Title:   []excelize.RichTextRun{{Text: "Score (1-5)"}},
		},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
			NumFmt:  excelize.ChartNumFmt{CustomNumFmt: "0.00"},
		},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 700, Height: 400},
	}
}

// sheetNames hands out valid, unique worksheet names.
type sheetNames map[string]bool

func newSheetNames() sheetNames { return sheetNames{} }

var sheetNameReplacer = strings.NewReplacer(
	"/", "-", `\`, "-", "_", " ",
	"[", "", "]", "", ":", "", "*", "", "?", "",
)

// SheetName cleans a label into a worksheet name.
func SheetName(label string) string {
	name := strings.Trim(strings.TrimSpace(sheetNameReplacer.Replace(label)), "'")
	if name == "" {
		name = "Sheet"
	}
	return truncate(name, maxSheetNameLen)
}

func (n sheetNames) take(label string) string {
	base := SheetName(label)
	name := base
	for i := 2; n[strings.ToLower(name)] || strings.EqualFold(name, defaultSheet); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncate(base, maxSheetNameLen-len(suffix)) + suffix
	}
	n[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
