// Package recipients parses uploaded recipient lists.
package recipients

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/pkg/validate"
	"github.com/xuri/excelize/v2"
)

// Extensions lists the recipient list formats Parse understands.
var Extensions = []string{".csv", ".xlsx"}

// Supported reports whether filename has a recognized extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parse reads a .csv or .xlsx recipient list. The header row must contain
// name and email columns (any case); event, date, venue and organizer are
// optional. The first invalid row aborts parsing. All errors wrap
// domain.ErrBadRequest.
func Parse(filename string, r io.Reader) ([]domain.Recipient, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, domain.Errorf(domain.ErrBadRequest, "unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, domain.Errorf(domain.ErrBadRequest, "CSV parsing error: line %d: %v", pe.Line, pe.Err)
		}
		return nil, domain.Errorf(domain.ErrBadRequest, "CSV parsing error")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Errorf(domain.ErrBadRequest, "spreadsheet could not be opened")
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Errorf(domain.ErrBadRequest, "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.Errorf(domain.ErrBadRequest, "spreadsheet could not be read")
	}
	return rows, nil
}

func fromRows(rows [][]string) ([]domain.Recipient, error) {
	if len(rows) == 0 {
		return nil, domain.Errorf(domain.ErrBadRequest, "CSV file is empty or contains no valid data")
	}
	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, domain.Errorf(domain.ErrBadRequest, "CSV must contain columns: name, email")
	}
	if _, ok := cols["email"]; !ok {
		return nil, domain.Errorf(domain.ErrBadRequest, "CSV must contain columns: name, email")
	}

	get := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []domain.Recipient
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rowNum := n + 2 // header is row 1
		name := get(row, "name")
		if name == "" {
			return nil, domain.Errorf(domain.ErrBadRequest, "Row %d: Name is required", rowNum)
		}
		email := strings.ToLower(get(row, "email"))
		if email == "" {
			return nil, domain.Errorf(domain.ErrBadRequest, "Row %d: Email is required", rowNum)
		}
		if !validate.Email(email) {
			return nil, domain.Errorf(domain.ErrBadRequest, "Row %d: Invalid email format", rowNum)
		}
		out = append(out, domain.Recipient{
			Name:      name,
			Email:     email,
			Event:     get(row, "event"),
			Date:      get(row, "date"),
			Venue:     get(row, "venue"),
			Organizer: get(row, "organizer"),
		})
	}
	if len(out) == 0 {
		return nil, domain.Errorf(domain.ErrBadRequest, "CSV file is empty or contains no valid data")
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
