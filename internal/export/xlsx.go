package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"regintel/internal/domain"
)

var summaryColumns = []string{
	"State ID",
	"Fund ISIN",
	"Doc Version",
	"Claimed Article",
	"Definition Present",
	"DNSH Present",
	"DNSH Coverage",
	"PAI Coverage Ratio",
	"Missing Fields",
	"Confidence",
	"Created At",
}

// WriteSummaryXLSX writes one row per state to an XLSX workbook on w.
func WriteSummaryXLSX(w io.Writer, states []domain.SFDRState) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "States"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, col := range summaryColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("resolving header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i := range states {
		row := stateToRow(&states[i])
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("writing row %d: %w", i+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func stateToRow(s *domain.SFDRState) []any {
	article := ""
	if s.ClaimedArticle != nil {
		article = string(*s.ClaimedArticle)
	}
	definitionPresent := false
	if s.Definition != nil {
		definitionPresent = s.Definition.Present
	}
	dnshPresent := false
	dnshCoverage := ""
	if s.DNSH != nil {
		dnshPresent = s.DNSH.Present
		dnshCoverage = string(s.DNSH.Coverage)
	}
	var paiRatio any
	if s.PAI != nil && s.PAI.MandatoryCoverageRatio != nil {
		paiRatio = *s.PAI.MandatoryCoverageRatio
	} else {
		paiRatio = ""
	}
	return []any{
		s.ID.String(),
		s.FundISIN,
		s.DocVersion,
		article,
		definitionPresent,
		dnshPresent,
		dnshCoverage,
		paiRatio,
		strings.Join(s.MissingFields, ", "),
		s.Confidence,
		s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
