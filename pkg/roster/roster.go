package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// Row is one parsed roster line. Line is 1-based as shown in a spreadsheet.
type Row struct {
	Line          int    `json:"row"`
	StudentNumber string `json:"student_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
}

// Complete reports whether every column is filled.
func (r Row) Complete() bool {
	return r.StudentNumber != "" && r.FirstName != "" && r.LastName != ""
}

// Parse reads a roster upload, picking the decoder from the file extension.
// Columns are studentNumber, firstName, lastName. A leading header row is skipped
// when its first cell carries no digits. Blank lines are dropped.
func Parse(r io.Reader, filename string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return parseXLSX(r)
	case ".csv", ".txt":
		return parseCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func parseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("excel file does not contain any sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheet, err)
	}
	lines := make([]int, len(records))
	for i := range records {
		lines[i] = i + 1
	}
	return toRows(records, lines), nil
}

func parseCSV(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		reader.Comma = ';'
	}
	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return toRows(records, lines), nil
}

func toRows(records [][]string, lines []int) []Row {
	rows := make([]Row, 0, len(records))
	for i, record := range records {
		cell := func(idx int) string {
			if idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}
		row := Row{Line: lines[i], StudentNumber: cell(0), FirstName: cell(1), LastName: cell(2)}
		if row.StudentNumber == "" && row.FirstName == "" && row.LastName == "" {
			continue
		}
		if i == 0 && !hasDigit(row.StudentNumber) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
