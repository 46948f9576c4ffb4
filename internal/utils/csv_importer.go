package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ArowuTest/sequence-draw-backend/internal/models"
)

// ErrMissingNameColumn is returned when a participant CSV has no name column
var ErrMissingNameColumn = errors.New("display name column not found in CSV")

// RowError describes a CSV row that could not be read
type RowError struct {
	Row     int    `json:"row"` // line number, header is line 1
	Message string `json:"message"`
}

// CSVImport is the result of parsing a participant CSV
type CSVImport struct {
	Entries   []models.BulkEntry `json:"entries"`
	RowErrors []RowError         `json:"rowErrors"`
}

var (
	nameColumns  = []string{"Display Name", "DisplayName", "Name", "Participant"}
	tokenColumns = []string{"Token", "Sequence", "Emoji Sequence", "Code"}
)

// ParseParticipantsCSV reads a header row followed by one participant per row.
// The token column is optional; rows without a token yield entries with an
// empty token, which registration rejects per entry. Unreadable rows are
// reported and skipped.
func ParseParticipantsCSV(r io.Reader) (CSVImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return CSVImport{}, ErrMissingNameColumn
	}
	if err != nil {
		return CSVImport{}, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	nameIdx := findColumnIndex(header, nameColumns)
	tokenIdx := findColumnIndex(header, tokenColumns)
	if nameIdx == -1 {
		return CSVImport{}, ErrMissingNameColumn
	}

	result := CSVImport{
		Entries:   []models.BulkEntry{},
		RowErrors: []RowError{},
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return result, fmt.Errorf("failed to read CSV: %w", err)
			}
			result.RowErrors = append(result.RowErrors, RowError{Row: parseErr.StartLine, Message: parseErr.Err.Error()})
			continue
		}
		row, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if nameIdx >= len(record) {
			result.RowErrors = append(result.RowErrors, RowError{Row: row, Message: "missing display name"})
			continue
		}
		entry := models.BulkEntry{DisplayName: strings.TrimSpace(record[nameIdx])}
		if tokenIdx != -1 && tokenIdx < len(record) {
			entry.Token = strings.TrimSpace(record[tokenIdx])
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// findColumnIndex finds the index of the first header matching any of the
// possible names, ignoring case and surrounding space
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, name := range possibleNames {
			if strings.EqualFold(name, h) {
				return i
			}
		}
	}
	return -1
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
