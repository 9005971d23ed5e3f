// Package reports implements the append-only anomaly report sink. Entries
// are written per channel and never read back by the service.
package reports

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Sink records free-form report lines on a named channel. Implementations
// are fire-and-forget: recording never fails the caller.
type Sink interface {
	Record(message, channel string)
}

// FileSink appends report lines to one file per channel under a base
// directory. Every line is prefixed with a ULID so batches can be correlated
// after the fact.
type FileSink struct {
	dir    string
	logger *zap.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewFileSink creates the sink, ensuring the base directory exists.
func NewFileSink(dir string, logger *zap.Logger) (*FileSink, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("report sink: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report sink: create directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{
		dir:     dir,
		logger:  logger,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Record appends the message to the channel's report file. Failures are
// logged and swallowed; the pipeline never depends on report durability.
func (s *FileSink) Record(message, channel string) {
	channel = sanitizeChannel(channel)

	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
	s.mu.Unlock()

	line := fmt.Sprintf("%s %s\r\n", id, message)
	path := filepath.Join(s.dir, "reporte-"+channel+".txt")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Warn("report sink open failed", zap.String("channel", channel), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		s.logger.Warn("report sink write failed", zap.String("channel", channel), zap.Error(err))
	}
}

// sanitizeChannel keeps channel names filesystem-safe.
func sanitizeChannel(channel string) string {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return "general"
	}
	channel = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, channel)
	return channel
}

// NopSink discards every record; useful default for tests and tooling.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(string, string) {}
