package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"blockScope/internal/model"
)

// JSONL appends events as JSON lines to a file.
type JSONL struct {
	path string
	mu   sync.Mutex
}

func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

func (s *JSONL) Accept(ctx context.Context, ev model.Event) error {
	return s.AcceptBatch(ctx, []model.Event{ev})
}

// AcceptBatch appends a batch of events as JSON lines.
func (s *JSONL) AcceptBatch(_ context.Context, events []model.Event) error {
	if len(events) == 0 {
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

	return writeLines(file, events)
}

func (s *JSONL) Close() error { return nil }

// Stream writes events as JSON lines to an open writer, such as stdout.
type Stream struct {
	out io.Writer
	mu  sync.Mutex
}

func NewStream(out io.Writer) *Stream {
	return &Stream{out: out}
}

func (s *Stream) Accept(ctx context.Context, ev model.Event) error {
	return s.AcceptBatch(ctx, []model.Event{ev})
}

func (s *Stream) AcceptBatch(_ context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeLines(s.out, events)
}

func (s *Stream) Close() error { return nil }

func writeLines(out io.Writer, events []model.Event) error {
	writer := bufio.NewWriter(out)
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write event: %w", err)
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
