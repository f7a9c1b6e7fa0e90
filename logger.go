package mcpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// InvocationLogger is the interface for per-call tool logging.
type InvocationLogger interface {
	LogInvocation(entry InvocationLog) error
}

// InvocationLogAuto selects a timestamped file under ./logs.
const InvocationLogAuto = "auto"

// NewInvocationLogFilePath returns a timestamped log path for a server name.
func NewInvocationLogFilePath(server string) string {
	return fmt.Sprintf("./logs/%d.%s.json", time.Now().Unix(), server)
}

// InvocationLog represents a single tool call
type InvocationLog struct {
	Tool       string         `json:"tool"`
	Timestamp  time.Time      `json:"timestamp"`
	Input      map[string]any `json:"input,omitempty"`
	Output     string         `json:"output,omitempty"`
	IsError    bool           `json:"is_error,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// FileInvocationLogger accumulates invocations and writes them on Flush.
type FileInvocationLogger struct {
	mu          sync.Mutex
	invocations []InvocationLog
	writer      io.Writer
}

func NewFileInvocationLogger(writer io.Writer) *FileInvocationLogger {
	return &FileInvocationLogger{
		invocations: make([]InvocationLog, 0),
		writer:      writer,
	}
}

// LogInvocation buffers the entry (does not flush immediately)
func (l *FileInvocationLogger) LogInvocation(entry InvocationLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invocations = append(l.invocations, entry)
	return nil
}

// Flush writes all buffered invocations to the writer
func (l *FileInvocationLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"session": map[string]any{
			"timestamp":   time.Now(),
			"invocations": l.invocations,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal invocation log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write invocation log: %w", err)
	}

	l.invocations = l.invocations[:0]
	return nil
}

// NoOpInvocationLogger discards all entries
type NoOpInvocationLogger struct{}

func NewNoOpInvocationLogger() *NoOpInvocationLogger {
	return &NoOpInvocationLogger{}
}

func (nop *NoOpInvocationLogger) LogInvocation(InvocationLog) error {
	return nil
}

// StdoutInvocationLogger writes each entry as a JSON line (for Lambda/CloudWatch)
type StdoutInvocationLogger struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewStdoutInvocationLogger() *StdoutInvocationLogger {
	return &StdoutInvocationLogger{writer: os.Stdout}
}

func (l *StdoutInvocationLogger) LogInvocation(entry InvocationLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.writer, string(data))
	return err
}
