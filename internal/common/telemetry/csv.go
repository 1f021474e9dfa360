// internal/common/telemetry/csv.go
package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
)

// RequiredColumns are matched after lowercasing and trimming header names.
var RequiredColumns = []string{"date", "stock_volume", "catch_volume"}

// ParseCSV reads stock and catch readings from CSV text with a header row.
// Extra columns are ignored and row order is preserved.
func ParseCSV(r io.Reader) ([]models.TelemetryReading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewCSVColumnsMissingError(RequiredColumns, []string{})
	}
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unreadable CSV header: %v", err))
	}

	found := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		found[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.NewCSVColumnsMissingError(RequiredColumns, found)
		}
	}

	readings := []models.TelemetryReading{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.NewInvalidInputError(fmt.Sprintf("line %d: %v", line, err))
		}
		if isBlank(record) {
			continue
		}

		reading := models.TelemetryReading{Date: field(record, index["date"])}
		if reading.Date == "" {
			reading.Date = models.UnknownDate
		}
		if reading.StockVolume, err = parseVolume(record, index["stock_volume"], "stock_volume", line); err != nil {
			return nil, err
		}
		if reading.CatchVolume, err = parseVolume(record, index["catch_volume"], "catch_volume", line); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// ParseCSVString is ParseCSV over an in-memory document.
func ParseCSVString(s string) ([]models.TelemetryReading, error) {
	return ParseCSV(strings.NewReader(s))
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseVolume(record []string, i int, name string, line int) (float64, error) {
	raw := field(record, i)
	if raw == "" {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("line %d: %s is empty", line, name))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("line %d: %s %q is not a number", line, name, raw))
	}
	if v < 0 {
		return 0, errors.NewInvalidInputError(fmt.Sprintf("line %d: %s must be >= 0", line, name))
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
