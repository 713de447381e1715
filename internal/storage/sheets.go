/**
* Name: 			sheets.go
* Description: 		Google Sheets API v4 기반 리뷰 테이블 저장소
* Workflow: 		워크시트 조회/생성, 헤더 확인, 행 추가, 전체 행 조회
 */

package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// New worksheets get the same grid size gspread's add_worksheet was given.
const (
	newSheetRows    = 1000
	newSheetColumns = 20
)

// SheetsStore maps tables to worksheets of a single spreadsheet.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	log           *zap.SugaredLogger
}

// NewSheetsStore connects to the Sheets API. Callers pass credentials as
// client options, usually option.WithCredentialsFile.
func NewSheetsStore(ctx context.Context, spreadsheetID string, log *zap.SugaredLogger, opts ...option.ClientOption) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("NewSheetsStore(): spreadsheet ID is empty")
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSheetsStore(): failed to create sheets service: %w", err)
	}
	return &SheetsStore{service: service, spreadsheetID: spreadsheetID, log: log}, nil
}

func (s *SheetsStore) OpenTable(ctx context.Context, name string) (Handle, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return Handle{}, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return Handle{Name: name, ID: sheet.Properties.SheetId}, nil
		}
	}
	return Handle{}, ErrTableNotFound
}

func (s *SheetsStore) CreateTable(ctx context.Context, name string, header []string) (Handle, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: name,
					GridProperties: &sheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetColumns,
					},
				},
			},
		}},
	}
	resp, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return Handle{}, fmt.Errorf("add sheet: %w", err)
	}

	h := Handle{Name: name}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		h.ID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	s.log.Infof("SheetsStore.CreateTable(): added worksheet %s (sheet id %d)", name, h.ID)

	if err := s.AppendRow(ctx, h, header); err != nil {
		return Handle{}, fmt.Errorf("write header: %w", err)
	}
	return h, nil
}

func (s *SheetsStore) HeaderRow(ctx context.Context, h Handle) ([]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(h.Name, "1:1")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get header values: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, h Handle, row []string) error {
	cells := make([]interface{}, len(row))
	for i, c := range row {
		cells[i] = c
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cells}}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, a1Range(h.Name, ""), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append values: %w", err)
	}
	return nil
}

func (s *SheetsStore) ReadTable(ctx context.Context, name string) ([][]string, error) {
	if _, err := s.OpenTable(ctx, name); err != nil {
		return nil, err
	}
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(name, "")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = toStrings(r)
	}
	return rows, nil
}

// a1Range quotes a sheet title for A1 notation, e.g. 'positive_reviews'!1:1.
func a1Range(title, cells string) string {
	quoted := "'" + strings.ReplaceAll(title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}
