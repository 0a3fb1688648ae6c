package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"produce-lookup-api/internal/model"
	"produce-lookup-api/pkg/uid"
)

// csvHeader is the fixed column header for import and export.
const csvHeader = "name,plu_code,description"

var (
	// ErrCSVMissingRows indicates the file had fewer than two lines
	// (header plus at least one data row).
	ErrCSVMissingRows = errors.New("CSV file is empty or missing data rows")

	// ErrCSVNoValidRows indicates no data row survived validation.
	ErrCSVNoValidRows = errors.New("no valid rows found in CSV")
)

// unquoteField trims whitespace and one pair of surrounding double
// quotes, matching the export format. There is no escaping: fields
// containing embedded commas or quotes are a known limitation of this
// format and corrupt subsequent columns rather than round-tripping.
func unquoteField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// ImportCSV parses newline-delimited CSV text and bulk-inserts the valid
// rows in one transaction, returning how many were accepted. The first
// line is treated as a header and dropped; blank lines are skipped; rows
// missing a name or PLU code after trimming are discarded.
func (s *ProduceService) ImportCSV(ctx context.Context, text string) (int, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return 0, ErrCSVMissingRows
	}

	items := []model.ProduceItem{}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Naive comma split; quoted fields with embedded commas are
		// not supported (documented limitation).
		parts := strings.Split(line, ",")

		var name, pluCode, description string
		name = unquoteField(parts[0])
		if len(parts) > 1 {
			pluCode = unquoteField(parts[1])
		}
		if len(parts) > 2 {
			description = unquoteField(parts[2])
		}

		if name == "" || pluCode == "" {
			continue
		}

		items = append(items, model.ProduceItem{
			ID:          uid.New(),
			Name:        name,
			PLUCode:     pluCode,
			Description: description,
		})
	}

	if len(items) == 0 {
		return 0, ErrCSVNoValidRows
	}

	if err := s.repo.BulkInsert(ctx, items); err != nil {
		return 0, fmt.Errorf("failed to import produce items: %w", err)
	}

	s.invalidateQueries(ctx)
	s.logger.Infow("imported produce items from CSV", "accepted", len(items))
	return len(items), nil
}

// ExportCSV serializes every item, ordered by name, into a CSV document
// with each field double-quoted. Embedded quotes are not escaped, a
// documented limitation. Returns a date-stamped filename and the bytes.
func (s *ProduceService) ExportCSV(ctx context.Context) (string, []byte, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export produce items: %w", err)
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for _, item := range items {
		// Plain quote wrapping, no escaping, to match the import side.
		b.WriteString("\n")
		b.WriteString(`"` + item.Name + `","` + item.PLUCode + `","` + item.Description + `"`)
	}

	filename := fmt.Sprintf("produce_data_%s.csv", time.Now().Format("2006-01-02"))
	return filename, []byte(b.String()), nil
}
