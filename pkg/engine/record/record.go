// Package record is the staged-data codec. Staged blobs are JSON
// records, one per line; a Row is one decoded record.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Row is one record of a staged dataset.
type Row = map[string]any

// Decode parses a staged blob into rows. Blank lines are skipped.
func Decode(blob []byte) ([]Row, error) {
	rows := []Row{}
	for i, line := range bytes.Split(blob, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("record at line %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode renders rows as a staged blob.
func Encode(rows []Row) ([]byte, error) {
	buf := bytes.Buffer{}
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Columns lists every column name appearing in rows, sorted.
func Columns(rows []Row) []string {
	seen := map[string]bool{}
	columns := []string{}
	for _, row := range rows {
		for name := range row {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// Number coerces a record value to float64. JSON numbers decode as
// float64 already; ints appear when rows are built in code.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
