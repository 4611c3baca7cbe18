package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"riskScope/internal/model"
)

// JsonlStorage is the append-only analysis log: one JSON record per line.
// Existing lines are never rewritten or truncated. Batches are written under
// a lock so concurrent writers do not interleave records.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

// NewJsonlStorage returns a sink for path. The file and its directory are
// created on the first non-empty batch.
func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// Path returns the output file.
func (s *JsonlStorage) Path() string {
	return s.path
}

// PutRecords appends a batch of records as JSON lines.
func (s *JsonlStorage) PutRecords(_ context.Context, records []model.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal analysis record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write analysis record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
