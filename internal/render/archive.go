package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/godilite/evalreport/internal/service"
	"github.com/xuri/excelize/v2"
)

const (
	InstructorFile = "Instructor_Evaluations.xlsx"
	ModuleFile     = "Module_Evaluation_Report.xlsx"
)

var ErrNothingToRender = errors.New("result holds no report set")

// Archive writes a zip holding one workbook per report set present in res.
func Archive(w io.Writer, res *service.Result) error {
	if res == nil || (res.Instructors == nil && res.Modules == nil) {
		return ErrNothingToRender
	}

	zw := zip.NewWriter(w)
	if res.Instructors != nil {
		f, err := InstructorWorkbook(res.Instructors, InstructorPalette())
		if err != nil {
			return fmt.Errorf("instructor workbook: %w", err)
		}
		if err := addWorkbook(zw, InstructorFile, f); err != nil {
			return err
		}
	}
	if res.Modules != nil {
		f, err := ModuleWorkbook(res.Modules, ModulePalette())
		if err != nil {
			return fmt.Errorf("module workbook: %w", err)
		}
		if err := addWorkbook(zw, ModuleFile, f); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ArchiveBytes is Archive into memory.
func ArchiveBytes(res *service.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Archive(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addWorkbook(zw *zip.Writer, name string, f *excelize.File) error {
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	if _, err := f.WriteTo(entry); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
