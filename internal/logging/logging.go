// Package logging builds the zerolog logger used across the client.
//
// The terminal belongs to the UI, so records go to a file (or any writer
// handed in by tests) rather than stdout.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects sink options before the logger is made.
type Build struct {
	writer io.Writer
	path   string
	level  string
}

// Sink owns the open log file, if any.
type Sink struct {
	File   *os.File
	Logger zerolog.Logger
}

func New() *Build {
	return &Build{}
}

func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Make opens the sink. With neither a path nor a writer the logger discards.
func (b *Build) Make() (*Sink, error) {
	s := &Sink{}
	w := b.writer
	if b.path != "" {
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		s.File = f
		w = zerolog.SyncWriter(f)
	}
	if w == nil {
		w = io.Discard
	}
	s.Logger = zerolog.New(w).Level(ParseLevel(b.level)).With().Timestamp().Logger()
	return s, nil
}

// Close releases the log file.
func (s *Sink) Close() error {
	if s == nil || s.File == nil {
		return nil
	}
	return s.File.Close()
}

// ParseLevel maps a config level name to zerolog, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
