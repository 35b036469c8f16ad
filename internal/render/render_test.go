package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/godilite/evalreport/internal/service"
	"github.com/godilite/evalreport/internal/survey"
)

func avg(v float64, n int) survey.Average { return survey.Average{Value: v, Count: n} }

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func instructorSet() *service.InstructorSet {
	return &service.InstructorSet{
		Questions: []string{"Q1", "Q2"},
		Records:   3,
		Reports: []service.InstructorReport{
			{
				Instructor: "Jane/Doe_Smith",
				Records:    2,
				Scores: []survey.AggregateRow{
					{Question: "Q1", Group: avg(4.5, 2), Reference: avg(4, 3)},
					{Question: "Q2", Group: survey.Average{}, Reference: avg(3, 1)},
				},
				CommentGroups: []survey.CommentGroup{
					{Key: "A1-01", Comments: []string{"great"}},
					{Key: "A1-02", Comments: []string{"ok", "fine"}},
				},
				Modules: []service.ModuleBreakdown{
					{Module: 1, Records: 2, Scores: []survey.AggregateRow{{Question: "Q1", Group: avg(5, 1), Reference: avg(5, 1)}}},
				},
			},
			{
				Instructor: "Ali",
				Records:    1,
				Scores:     []survey.AggregateRow{{Question: "Q1", Group: avg(3.5, 1), Reference: avg(4, 3)}},
			},
		},
	}
}

func TestInstructorWorkbook(t *testing.T) {
	f, err := InstructorWorkbook(instructorSet(), InstructorPalette())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Jane-Doe Smith", "Ali"}, f.GetSheetList())

	sheet := "Jane-Doe Smith"
	assert.Equal(t, "TOTAL", raw(t, f, sheet, "A1"))
	assert.Equal(t, "YOUR AVERAGE", raw(t, f, sheet, "B2"))
	assert.Equal(t, "KEPP AVERAGE", raw(t, f, sheet, "C2"))
	assert.Equal(t, "Q1", raw(t, f, sheet, "A3"))
	assert.Equal(t, "4.5", raw(t, f, sheet, "B3"))
	assert.Equal(t, "4", raw(t, f, sheet, "C3"))
	assert.Equal(t, "-", raw(t, f, sheet, "B4"), "undefined average renders a placeholder")

	// Blank row, then the module breakdown table.
	assert.Equal(t, "MOD 1", raw(t, f, sheet, "A6"))
	assert.Equal(t, "Q1", raw(t, f, sheet, "A8"))
	assert.Equal(t, "5", raw(t, f, sheet, "B8"))

	assert.Equal(t, "COMMENTS", raw(t, f, sheet, "A10"))
	assert.Equal(t, "A1-01", raw(t, f, sheet, "A11"))
	assert.Equal(t, "great", raw(t, f, sheet, "A12"))
	assert.Equal(t, "A1-02", raw(t, f, sheet, "A13"))
	assert.Equal(t, "fine", raw(t, f, sheet, "A15"))

	first, err := f.GetCellStyle(sheet, "A12")
	require.NoError(t, err)
	second, err := f.GetCellStyle(sheet, "A14")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "comment groups alternate bands")
}

func TestInstructorWorkbook_Empty(t *testing.T) {
	f, err := InstructorWorkbook(&service.InstructorSet{}, InstructorPalette())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{defaultSheet}, f.GetSheetList())
	assert.Contains(t, raw(t, f, defaultSheet, "A1"), "No instructor data")
}

func TestModuleWorkbook(t *testing.T) {
	set := &service.ModuleSet{
		Questions: []string{"Q1", "Q2"},
		Records:   2,
		Reports: []service.ModuleReport{
			{
				Level:   service.OverallLevel,
				Records: 2,
				Scores: []survey.AggregateRow{
					{Question: "Q1", Group: avg(4, 2)},
					{Question: "Q2", Group: avg(2.5, 2)},
				},
				Comments: []string{"more speaking"},
			},
			{Level: "A1", Records: 2, Scores: []survey.AggregateRow{{Question: "Q1", Group: avg(4, 2)}}, Comments: []string{}},
			{Level: "B2", Scores: []survey.AggregateRow{}, Comments: []string{}},
		},
	}

	f, err := ModuleWorkbook(set, ModulePalette())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"OVERALL", "A1", "B2"}, f.GetSheetList())

	assert.Equal(t, "Question", raw(t, f, "OVERALL", "A1"))
	assert.Equal(t, "Average Score", raw(t, f, "OVERALL", "B1"))
	assert.Equal(t, "2.5", raw(t, f, "OVERALL", "B3"))
	assert.Empty(t, raw(t, f, "OVERALL", "C2"), "module reports carry no reference column")
	assert.Equal(t, "Comments", raw(t, f, "OVERALL", "A5"))
	assert.Equal(t, "more speaking", raw(t, f, "OVERALL", "A6"))

	assert.Equal(t, "No data for Level B2", raw(t, f, "B2", "A1"))
}

func TestSheetNames(t *testing.T) {
	assert.Equal(t, "A-B C", SheetName(" A/B_C "))
	assert.Equal(t, "x-y", SheetName(`x\y[]:*?`))
	assert.Equal(t, "Sheet", SheetName("???"))
	assert.Len(t, []rune(SheetName(strings.Repeat("ö", 40))), maxSheetNameLen)

	names := newSheetNames()
	assert.Equal(t, "Ali", names.take("Ali"))
	assert.Equal(t, "ali (2)", names.take("ali"))
	assert.Equal(t, "Sheet1 (2)", names.take("Sheet1"))

	long := strings.Repeat("a", 40)
	first := names.take(long)
	second := names.take(long)
	assert.Len(t, first, maxSheetNameLen)
	assert.Len(t, second, maxSheetNameLen)
	assert.True(t, strings.HasSuffix(second, " (2)"))
}

func TestArchive(t *testing.T) {
	t.Run("both workbooks", func(t *testing.T) {
		res := &service.Result{
			Instructors: instructorSet(),
			Modules:     &service.ModuleSet{Reports: []service.ModuleReport{{Level: service.OverallLevel}}},
		}
		data, err := ArchiveBytes(res)
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		require.Len(t, zr.File, 2)
		assert.Equal(t, InstructorFile, zr.File[0].Name)
		assert.Equal(t, ModuleFile, zr.File[1].Name)

		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(content))
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Ali")
	})

	t.Run("failed pass is left out", func(t *testing.T) {
		data, err := ArchiveBytes(&service.Result{Modules: &service.ModuleSet{}})
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		require.Len(t, zr.File, 1)
		assert.Equal(t, ModuleFile, zr.File[0].Name)
	})

	t.Run("nothing to render", func(t *testing.T) {
		_, err := ArchiveBytes(&service.Result{})
		assert.ErrorIs(t, err, ErrNothingToRender)

		_, err = ArchiveBytes(nil)
		assert.ErrorIs(t, err, ErrNothingToRender)
	})
}
