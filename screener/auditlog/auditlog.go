// Package auditlog appends ban/dismiss decisions to a flat log file, one
// line per action.
package auditlog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

type Action string

const (
	ActionBanned          Action = "Banned"
	ActionFlaggedNegative Action = "FlaggedNegative"
)

// Entry is one recorded moderation decision.
type Entry struct {
	Time        time.Time
	SubjectID   string
	SubjectName string
	Action      Action
	ActorID     string
	ActorName   string
}

// Line renders the persisted form:
// [RFC3339] subject=<id> (<name>) action=<action> actor=<id> (<name>)
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] subject=%s (%s) action=%s actor=%s (%s)\n",
		e.Time.UTC().Format(time.RFC3339),
		e.SubjectID, e.SubjectName,
		e.Action,
		e.ActorID, e.ActorName,
	)
}

type Logger interface {
	Append(ctx context.Context, e Entry) error
}

// FileLogger appends entries to a single file. Append-only: the file is
// never rewritten.
type FileLogger struct {
	mu   sync.Mutex
	path string
}

func NewFileLogger(path string) *FileLogger {
	return &FileLogger{path: path}
}

func (l *FileLogger) Append(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(e.Line()); err != nil {
		return fmt.Errorf("appending audit log entry: %w", err)
	}
	return nil
}

var _ Logger = (*FileLogger)(nil)
