package scorer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Default rubric locations, tried in this order.
const (
	DefaultRubricXLSX = "Case study for interns.xlsx"
	DefaultRubricCSV  = "rubric.csv"
)

// ErrRubricUnavailable is returned when no rubric can be loaded.
var ErrRubricUnavailable = errors.New("rubric unavailable")

// LoadRubricFrom loads the first candidate path that exists. With no
// candidates the default xlsx and csv locations are tried.
func LoadRubricFrom(paths ...string) ([]RubricRow, error) {
	if len(paths) == 0 {
		paths = []string{DefaultRubricXLSX, DefaultRubricCSV}
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return LoadRubric(p)
		}
	}
	return nil, fmt.Errorf("%w: rubric file missing", ErrRubricUnavailable)
}

// LoadRubric reads a rubric file, choosing the parser by extension. Every
// returned row carries all rubric columns; absent ones are empty strings.
func LoadRubric(path string) ([]RubricRow, error) {
	var (
		rows []RubricRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	case ".tsv":
		rows, err = readDelimited(path, '\t')
	case ".yaml", ".yml":
		rows, err = readYAML(path)
	case ".json":
		rows, err = readJSON(path)
	default:
		rows, err = readDelimited(path, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRubricUnavailable, err)
	}
	return rows, nil
}

func readDelimited(path string, comma rune) ([]RubricRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rowsFromTable(table)
}

func readXLSX(path string) ([]RubricRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", filepath.Base(path))
	}
	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rowsFromTable(table)
}

func readYAML(path string) ([]RubricRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rowsFromDocument(doc)
}

func readJSON(path string) ([]RubricRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rowsFromDocument(doc)
}

// rowsFromTable treats the first row as the header.
func rowsFromTable(table [][]string) ([]RubricRow, error) {
	if len(table) == 0 {
		return nil, errors.New("empty rubric file")
	}
	header := make([]string, len(table[0]))
	for i, cell := range table[0] {
		header[i] = cleanCell(cell)
	}
	cols := resolveColumns(header)
	out := make([]RubricRow, 0, len(table)-1)
	for _, record := range table[1:] {
		if blankRecord(record) {
			continue
		}
		cell := func(col string) string {
			idx := cols[col]
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return cleanCell(record[idx])
		}
		out = append(out, RubricRow{
			CriterionID: cell(ColumnCriterionID),
			Criterion:   cell(ColumnCriterion),
			Description: cell(ColumnDescription),
			Keywords:    cell(ColumnKeywords),
			Weight:      cell(ColumnWeight),
			MinWords:    cell(ColumnMinWords),
			MaxWords:    cell(ColumnMaxWords),
		})
	}
	return out, nil
}

// rowsFromDocument accepts either a list of records or a mapping with a
// "criteria" list, as decoded from YAML or JSON.
func rowsFromDocument(doc any) ([]RubricRow, error) {
	if m, ok := doc.(map[string]any); ok {
		doc = m["criteria"]
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, errors.New("rubric document must be a list of criteria")
	}
	out := make([]RubricRow, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("criterion %d is not a mapping", i+1)
		}
		header := make([]string, 0, len(record))
		values := make([]string, 0, len(record))
		for k, v := range record {
			header = append(header, cleanCell(k))
			values = append(values, stringifyCell(v))
		}
		rows, err := rowsFromTable([][]string{header, values})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		out = append(out, rows[0])
	}
	return out, nil
}

func stringifyCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, stringifyCell(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "\ufeff")
	return strings.TrimSpace(v)
}

// LoadCriteria loads a rubric file and parses it into criteria.
func LoadCriteria(path string) ([]Criterion, error) {
	rows, err := LoadRubric(path)
	if err != nil {
		return nil, err
	}
	return ParseRubric(rows), nil
}
