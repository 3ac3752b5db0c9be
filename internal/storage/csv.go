package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"dupr-sync-service/internal/domain"
)

// ParseRosterCSV reads an exported roster sheet. The header row maps columns
// by name so operators can reorder or omit optional columns; only "name" is
// required. Blank-name rows are kept so a batch run can mark them skipped.
func ParseRosterCSV(reader io.Reader) ([]domain.RosterRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("csv must include a header row")
	}

	headers := make(map[string]int, len(records[0]))
	for idx, col := range records[0] {
		headers[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	if _, ok := headers["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "name")
	}

	rows := make([]domain.RosterRow, 0, len(records)-1)
	for i, record := range records[1:] {
		lineNo := i + 2
		row := domain.RosterRow{
			Num:    i + 1,
			Status: domain.StatusPending,
		}
		if value := strings.TrimSpace(readColumn(headers, record, "num")); value != "" {
			num, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d num: invalid integer %q", lineNo, value)
			}
			row.Num = num
		}
		row.IDCode = readColumn(headers, record, "id")
		row.FullName = strings.TrimSpace(readColumn(headers, record, "name"))
		row.Email = strings.TrimSpace(readColumn(headers, record, "email"))
		row.Phone = strings.TrimSpace(readColumn(headers, record, "phone"))
		row.PriorDoubles = readColumn(headers, record, "prior doubles")
		row.PriorDoublesRel = readColumn(headers, record, "prior doubles reliability")
		row.PriorSingles = readColumn(headers, record, "prior singles")
		row.PriorSinglesRel = readColumn(headers, record, "prior singles reliability")
		row.Notes = readColumn(headers, record, "notes")
		row.DuprID = strings.TrimSpace(readColumn(headers, record, "dupr id"))
		row.DuprRating = readColumn(headers, record, "dupr rating")
		if status := strings.TrimSpace(readColumn(headers, record, "status")); status != "" {
			row.Status = domain.RowStatus(status)
		}
		if value := strings.TrimSpace(readColumn(headers, record, "last updated")); value != "" {
			at, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("line %d last updated: %w", lineNo, err)
			}
			row.LastUpdated = at
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readColumn(headers map[string]int, record []string, name string) string {
	idx, ok := headers[name]
	if !ok || idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
