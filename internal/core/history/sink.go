package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/penwyp/go-datimer/internal/core/model"
)

// FileSink mirrors the buffer to a file. Every Rewrite truncates the file and
// writes one "<label> <HH:MM:SS>" line per entry.
type FileSink struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// CreateFileSink creates or truncates path.
func CreateFileSink(path string) (*FileSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{path: path, file: file}, nil
}

// Path returns the file path the sink writes to.
func (s *FileSink) Path() string { return s.path }

// Rewrite replaces the file content with entries.
func (s *FileSink) Rewrite(entries []model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("history file %s is closed", s.path)
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate %s: %w", s.path, err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek %s: %w", s.path, err)
	}

	w := bufio.NewWriter(s.file)
	for _, entry := range entries {
		if _, err := w.WriteString(entry.Line() + "\n"); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Reopen recreates the file at the original path, e.g. after it was removed.
func (s *FileSink) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", s.path, err)
	}
	s.file = file
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
