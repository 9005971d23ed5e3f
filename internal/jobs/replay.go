package jobs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mdco-storefront/api/internal/platform/requestctx"
	"github.com/mdco-storefront/api/internal/services"
)

// ReplayStats summarises one replay run.
type ReplayStats struct {
	Lines     int `json:"lines"`
	Unique    int `json:"unique"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ReplayDeps collects the replay job's collaborators.
type ReplayDeps struct {
	Pipeline services.ProductPipeline
	// PaceEvery inserts a pause after that many processed entries so a long
	// replay does not hammer the upstreams; zero disables pacing.
	PaceEvery int
	Pause     time.Duration
}

// Replay streams part numbers out of a pipe-delimited export file and pushes
// each one through the product pipeline.
type Replay struct {
	pipeline  services.ProductPipeline
	paceEvery int
	pause     time.Duration
}

// NewReplay validates dependencies and builds a Replay job.
func NewReplay(deps ReplayDeps) (*Replay, error) {
	if deps.Pipeline == nil {
		return nil, errors.New("jobs: pipeline is required")
	}
	return &Replay{
		pipeline:  deps.Pipeline,
		paceEvery: deps.PaceEvery,
		pause:     deps.Pause,
	}, nil
}

// Run replays the window [start, start+count) of deduplicated part numbers
// from file. A count of zero means the rest of the file. Individual failures
// are logged and counted, never fatal; only unreadable input aborts the run.
func (r *Replay) Run(ctx context.Context, file string, start, count int) (ReplayStats, error) {
	var stats ReplayStats

	f, err := os.Open(file)
	if err != nil {
		return stats, fmt.Errorf("jobs: open replay file: %w", err)
	}
	defer f.Close()

	logger := requestctx.Logger(ctx)
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++

		pn := partNumberFromLine(scanner.Text())
		if pn == "" {
			continue
		}
		if _, dup := seen[pn]; dup {
			continue
		}
		seen[pn] = struct{}{}
		stats.Unique++

		index := stats.Unique - 1
		if index < start {
			continue
		}
		if count > 0 && stats.Processed >= count {
			break
		}

		stats.Processed++
		if _, err := r.pipeline.Process(ctx, pn); err != nil {
			stats.Failed++
			logger.Warn("replay entry failed",
				zap.String("partNumber", pn),
				zap.Error(err))
		} else {
			stats.Succeeded++
		}

		if r.paceEvery > 0 && stats.Processed%r.paceEvery == 0 {
			if err := sleepContext(ctx, r.pause); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("jobs: read replay file: %w", err)
	}

	logger.Info("replay finished",
		zap.String("file", file),
		zap.Int("lines", stats.Lines),
		zap.Int("unique", stats.Unique),
		zap.Int("processed", stats.Processed),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// partNumberFromLine extracts the part number from a pipe-delimited export
// line. The identifier sits in the second field; lines without a delimiter
// are treated as bare part numbers.
func partNumberFromLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	fields := strings.Split(line, "|")
	if len(fields) >= 2 {
		return strings.TrimSpace(fields[1])
	}
	return fields[0]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
