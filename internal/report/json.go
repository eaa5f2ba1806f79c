package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ginjaninja78/invoice-compliance/internal/types"
)

// jsonEntry is one element of the JSON report array.
type jsonEntry struct {
	SourceFile string           `json:"source_file"`
	Position   int              `json:"position"`
	Invoice    map[string]any   `json:"invoice"`
	Resolution types.Resolution `json:"resolution"`
}

// jsonSink collects entries and writes them as one indented array on Close.
type jsonSink struct {
	path    string
	entries []jsonEntry
	closed  bool
}

// NewJSONSink returns a sink writing a JSON array to path.
func NewJSONSink(path string) Sink {
	return &jsonSink{path: path, entries: make([]jsonEntry, 0)}
}

func (s *jsonSink) Write(inv types.Invoice, res types.Resolution) error {
	fields := inv.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	s.entries = append(s.entries, jsonEntry{
		SourceFile: inv.SourceFile,
		Position:   inv.Position,
		Invoice:    fields,
		Resolution: res,
	})
	return nil
}

func (s *jsonSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}
