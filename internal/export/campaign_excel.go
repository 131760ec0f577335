package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/cv-screener/internal/model"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/xuri/excelize/v2"
)

const (
	candidatesSheet = "Candidates"
	summarySheet    = "Summary"
)

var candidateHeaders = []string{"Name", "Email", "Role", "Match (%)", "Skills", "Status"}

// WriteCampaignReport renders the visible roster and send status as an xlsx
// workbook.
func WriteCampaignReport(w io.Writer, views []usecase.CandidateView, generatedAt time.Time) error {
	f, err := buildWorkbook(views, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveCampaignReport writes the report to path, adding .xlsx when missing.
func SaveCampaignReport(path string, views []usecase.CandidateView, generatedAt time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := buildWorkbook(views, generatedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func buildWorkbook(views []usecase.CandidateView, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillCandidates(f, views); err != nil {
		f.Close()
		return nil, fmt.Errorf("candidates sheet: %w", err)
	}
	if err := fillSummary(f, views, generatedAt); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	return f, nil
}

func fillCandidates(f *excelize.File, views []usecase.CandidateView) error {
	f.SetColWidth(candidatesSheet, "A", "A", 25)
	f.SetColWidth(candidatesSheet, "B", "B", 30)
	f.SetColWidth(candidatesSheet, "C", "C", 25)
	f.SetColWidth(candidatesSheet, "D", "D", 12)
	f.SetColWidth(candidatesSheet, "E", "E", 40)
	f.SetColWidth(candidatesSheet, "F", "F", 10)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	sentStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for col, header := range candidateHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, v := range views {
		row := i + 2
		f.SetCellValue(candidatesSheet, fmt.Sprintf("A%d", row), v.Name)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("B%d", row), v.Email)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("C%d", row), v.Role)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("D%d", row), v.Match)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("E%d", row), strings.Join(v.Skills, ", "))
		f.SetCellValue(candidatesSheet, fmt.Sprintf("F%d", row), string(v.Status))
		if v.Status == model.StatusSent {
			f.SetCellStyle(candidatesSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), sentStyle)
		}
	}
	return f.SetPanes(candidatesSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func fillSummary(f *excelize.File, views []usecase.CandidateView, generatedAt time.Time) error {
	sent := 0
	for _, v := range views {
		if v.Status == model.StatusSent {
			sent++
		}
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	f.SetColWidth(summarySheet, "A", "A", 20)
	f.SetColWidth(summarySheet, "B", "B", 25)

	rows := [][2]any{
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{"Candidates", len(views)},
		{"Sent", sent},
		{"Pending", len(views) - sent},
	}
	for i, r := range rows {
		row := i + 1
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1])
		f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	}
	return nil
}
