package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// extractSheets reads a tabular file into one slice of rows per sheet. The
// first row of each sheet names the columns; rows become key/value payloads
// keyed by those names.
func extractSheets(path, ext string) ([][]datatypes.JSONMap, error) {
	switch ext {
	case ".xlsx":
		return extractExcelSheets(path)
	case ".csv":
		return extractCSVSheets(path)
	default:
		return nil, fmt.Errorf("unsupported tabular file: %q", ext)
	}
}

func columnName(header []string, i int) string {
	if i < len(header) {
		if name := strings.TrimSpace(header[i]); name != "" {
			return name
		}
	}

	return fmt.Sprintf("column_%d", i)
}

func rowsToRecords(rows [][]string) []datatypes.JSONMap {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	records := make([]datatypes.JSONMap, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data := datatypes.JSONMap{}
		for i, cell := range row {
			data[columnName(header, i)] = cell
		}
		records = append(records, data)
	}

	return records
}

func extractExcelSheets(path string) ([][]datatypes.JSONMap, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	var sheets [][]datatypes.JSONMap
	for _, name := range file.GetSheetList() {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, rowsToRecords(rows))
	}

	return sheets, nil
}

// CSV files are a single sheet, sheet 0.
func extractCSVSheets(path string) ([][]datatypes.JSONMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return [][]datatypes.JSONMap{rowsToRecords(rows)}, nil
}
