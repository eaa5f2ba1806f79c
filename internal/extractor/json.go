package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// parseJSON reads a JSON array of invoice objects, or a single object.
// Numbers are normalized to float64 throughout the record.
func parseJSON(filePath string) ([]map[string]any, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to parse JSON: unexpected data after the document")
	}

	var records []map[string]any
	switch v := doc.(type) {
	case []any:
		records = make([]map[string]any, 0, len(v))
		for i, item := range v {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invoice %d is not a JSON object", i+1)
			}
			records = append(records, normalize(record).(map[string]any))
		}
	case map[string]any:
		records = []map[string]any{normalize(v).(map[string]any)}
	default:
		return nil, fmt.Errorf("expected a JSON array or object of invoices")
	}

	return records, nil
}

// normalize converts json.Number values to float64, recursing into nested
// objects and arrays. Numbers that do not fit a float64 stay strings.
func normalize(v any) any {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
