package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/models"
)

// xlsxSpreadsheet keeps results in a local workbook, for deployments
// without Google credentials.
type xlsxSpreadsheet struct {
	mu            sync.Mutex
	resultsPath   string
	resultsSheet  string
	profilesPath  string
	profilesSheet string
	roleColumn    string
	wantedColumn  string
}

func NewXLSXSpreadsheet(cfg config.SpreadsheetConfig) SpreadsheetBackend {
	return &xlsxSpreadsheet{
		resultsPath:   cfg.WorkbookPath,
		resultsSheet:  cfg.ResultsSheetName,
		profilesPath:  cfg.ProfilesWorkbook,
		profilesSheet: cfg.ProfilesSheetName,
		roleColumn:    cfg.RoleColumn,
		wantedColumn:  cfg.ProfileWantedColumn,
	}
}

// ExportRow implements SpreadsheetBackend.
func (x *xlsxSpreadsheet) ExportRow(ctx context.Context, row ExportRow) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.openResults()
	if err != nil {
		return "", err
	}
	defer f.Close()

	rows, err := f.GetRows(x.resultsSheet)
	if err != nil {
		return "", fmt.Errorf("failed to read results sheet: %w", err)
	}

	next := len(rows) + 1
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return "", err
	}

	cells := row.Cells()
	if err := f.SetSheetRow(x.resultsSheet, cell, &cells); err != nil {
		return "", fmt.Errorf("failed to write row: %w", err)
	}

	if err := f.SaveAs(x.resultsPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(cells), next)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s!%s:%s", x.resultsSheet, cell, last), nil
}

// openResults opens the results workbook, creating it with a styled header row
// on first use.
func (x *xlsxSpreadsheet) openResults() (*excelize.File, error) {
	if _, err := os.Stat(x.resultsPath); err == nil {
		f, err := excelize.OpenFile(x.resultsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		if idx, err := f.GetSheetIndex(x.resultsSheet); err == nil && idx >= 0 {
			return f, nil
		}
		if _, err := f.NewSheet(x.resultsSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add results sheet: %w", err)
		}
		if err := x.writeHeader(f); err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", x.resultsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name results sheet: %w", err)
	}
	if err := x.writeHeader(f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (x *xlsxSpreadsheet) writeHeader(f *excelize.File) error {
	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(x.resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(x.resultsSheet, "A1", last, headerStyle)
}

// LookupProfile implements SpreadsheetBackend.
func (x *xlsxSpreadsheet) LookupProfile(ctx context.Context, role string) (*models.JobProfile, error) {
	if x.profilesPath == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := excelize.OpenFile(x.profilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(x.profilesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles sheet: %w", err)
	}

	return findProfile(rows, role, x.roleColumn, x.wantedColumn), nil
}
