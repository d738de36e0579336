package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"alfredoptarigan/screenly/internal/config"
	"alfredoptarigan/screenly/internal/models"
)

type sheetsSpreadsheet struct {
	values        *sheets.SpreadsheetsValuesService
	resultsID     string
	resultsSheet  string
	profilesID    string
	profilesSheet string
	roleColumn    string
	wantedColumn  string
}

func NewSheetsSpreadsheet(ctx context.Context, cfg config.SpreadsheetConfig) (SpreadsheetBackend, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "📊 Google Sheets backend initialized")

	return &sheetsSpreadsheet{
		values:        srv.Spreadsheets.Values,
		resultsID:     ExtractSpreadsheetID(cfg.ResultsSheetURL),
		resultsSheet:  cfg.ResultsSheetName,
		profilesID:    ExtractSpreadsheetID(cfg.ProfilesSheetURL),
		profilesSheet: cfg.ProfilesSheetName,
		roleColumn:    cfg.RoleColumn,
		wantedColumn:  cfg.ProfileWantedColumn,
	}, nil
}

// ExportRow implements SpreadsheetBackend. The returned reference is the A1
// range Google reports for the appended row.
func (s *sheetsSpreadsheet) ExportRow(ctx context.Context, row ExportRow) (string, error) {
	if s.resultsID == "" {
		return "", errors.New("results spreadsheet is not configured")
	}

	resp, err := s.values.
		Append(s.resultsID, s.resultsSheet+"!A1", &sheets.ValueRange{
			Values: [][]interface{}{row.Cells()},
		}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to append row: %w", err)
	}

	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", errors.New("append returned no updated range")
	}

	return resp.Updates.UpdatedRange, nil
}

// LookupProfile implements SpreadsheetBackend.
func (s *sheetsSpreadsheet) LookupProfile(ctx context.Context, role string) (*models.JobProfile, error) {
	if s.profilesID == "" {
		return nil, nil
	}

	resp, err := s.values.Get(s.profilesID, s.profilesSheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles sheet: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}

	return findProfile(rows, role, s.roleColumn, s.wantedColumn), nil
}
