package export

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"docassist/internal/common"
	"docassist/internal/normalize"
)

const workbookSheet = "Extracted Data"

// BuildWorkbook renders the canonical record as an XLSX workbook. It is
// the local fallback for runs where the service did not hand back a
// download reference.
func (s *Service) BuildWorkbook(rec *normalize.CanonicalRecord) ([]byte, error) {
	if rec == nil || len(rec.FullData) == 0 {
		return nil, common.SelectionErrorf("no data available for spreadsheet generation")
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(workbookSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, col := range rec.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(workbookSheet, cell, col); err != nil {
			return nil, err
		}
	}

	for r, row := range rec.FullData {
		for cIdx, col := range rec.Columns {
			cell, _ := excelize.CoordinatesToCellName(cIdx+1, r+2)
			if err := f.SetCellValue(workbookSheet, cell, normalize.Cell(row, col)); err != nil {
				return nil, err
			}
		}
	}

	if len(rec.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rec.Columns))
		_ = f.SetColWidth(workbookSheet, "A", last, 24)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveWorkbook builds the workbook and saves it under the output directory.
func (s *Service) SaveWorkbook(rec *normalize.CanonicalRecord, filename string) (string, error) {
	data, err := s.BuildWorkbook(rec)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.outDir, filename)
	if err := afero.WriteFile(s.fs, dest, data, 0o644); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "filename", filename, "rows", rec.RowCount)
	return dest, nil
}
