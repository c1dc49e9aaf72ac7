// Package sheets appends submission rows to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	valueInputRaw       = "RAW"
)

// Config identifies the spreadsheet by name and the worksheet by position.
type Config struct {
	CredentialsJSON []byte
	SpreadsheetName string
	WorksheetIndex  int
	// ClientOptions are appended after the credentials option.
	ClientOptions []option.ClientOption
}

// Sink は指定スプレッドシートのワークシート末尾に 1 行ずつ追記する。
type Sink struct {
	spreadsheets  *sheets.SpreadsheetsService
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetTitle    string
}

// New は解決済みのスプレッドシート ID とシート名から Sink を構築する。
func New(service *sheets.Service, spreadsheetID, sheetTitle string) *Sink {
	return &Sink{
		spreadsheets:  service.Spreadsheets,
		values:        service.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		sheetTitle:    sheetTitle,
	}
}

// Open はサービスアカウントで認証し、Drive でスプレッドシート名から ID を引き、
// 対象ワークシートのタイトルを解決する。いずれかに失敗した場合は起動失敗として扱う。
func Open(ctx context.Context, cfg Config) (*Sink, error) {
	opts := make([]option.ClientOption, 0, len(cfg.ClientOptions)+2)
	if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts,
			option.WithCredentialsJSON(cfg.CredentialsJSON),
			option.WithScopes(sheets.SpreadsheetsScope, drive.DriveReadonlyScope),
		)
	}
	opts = append(opts, cfg.ClientOptions...)

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create drive client: %w", err)
	}
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create sheets client: %w", err)
	}

	spreadsheetID, err := findSpreadsheet(ctx, driveService, cfg.SpreadsheetName)
	if err != nil {
		return nil, err
	}
	title, err := worksheetTitle(ctx, sheetsService, spreadsheetID, cfg.WorksheetIndex)
	if err != nil {
		return nil, err
	}
	return New(sheetsService, spreadsheetID, title), nil
}

func findSpreadsheet(ctx context.Context, svc *drive.Service, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("sheets: spreadsheet name is empty")
	}
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: lookup spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("sheets: spreadsheet %q not found or not shared with the service account", name)
	}
	return list.Files[0].Id, nil
}

func worksheetTitle(ctx context.Context, svc *sheets.Service, spreadsheetID string, index int) (string, error) {
	spreadsheet, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("sheets: read spreadsheet %s: %w", spreadsheetID, err)
	}
	if index < 0 || index >= len(spreadsheet.Sheets) {
		return "", fmt.Errorf("sheets: worksheet %d out of range, spreadsheet has %d", index, len(spreadsheet.Sheets))
	}
	props := spreadsheet.Sheets[index].Properties
	if props == nil || props.Title == "" {
		return "", fmt.Errorf("sheets: worksheet %d has no title", index)
	}
	return props.Title, nil
}

// AppendRow は行を RAW で追記する。入力値を数式として評価させないため、score 列以外は文字列のまま送る。
func (s *Sink) AppendRow(ctx context.Context, row domain.SubmissionRow) error {
	values := row.Values()
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cells[domain.ScoreColumn] = row.Score

	_, err := s.values.Append(s.spreadsheetID, quoteSheet(s.sheetTitle), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// Ping はスプレッドシートのメタデータを取得して権限と疎通を確認する。
func (s *Sink) Ping(ctx context.Context) error {
	_, err := s.spreadsheets.Get(s.spreadsheetID).
		Fields("spreadsheetId").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: ping %s: %w", s.spreadsheetID, err)
	}
	return nil
}

// SpreadsheetID returns the resolved spreadsheet identifier.
func (s *Sink) SpreadsheetID() string { return s.spreadsheetID }

// SheetTitle returns the resolved worksheet title.
func (s *Sink) SheetTitle() string { return s.sheetTitle }

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func escapeQuery(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
