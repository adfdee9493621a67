package hunt

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"socguard/pkg/models"
)

// FileSource reads hunt results from a JSON-lines file, one result per
// line. Blank lines are skipped; a malformed line is an error rather
// than a silent drop, since a dropped batch means ungoverned threats.
type FileSource struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// NewFileSource opens a JSON-lines hunt result file.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hunt file: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &FileSource{file: f, scanner: scanner}, nil
}

// Next returns the next hunt result, or io.EOF when the file ends.
func (s *FileSource) Next(ctx context.Context) (*models.HuntResult, error) {
	for s.scanner.Scan() {
		s.line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		result, err := decode([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("hunt file line %d: %w", s.line, err)
		}
		return result, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read hunt file: %w", err)
	}
	return nil, io.EOF
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

func decode(data []byte) (*models.HuntResult, error) {
	var result models.HuntResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode hunt result: %w", err)
	}
	if result.HuntID == "" {
		result.HuntID = uuid.NewString()[:8]
	}
	return &result, nil
}
