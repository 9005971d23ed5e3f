package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdco-storefront/api/internal/domain"
)

type stubPipeline struct {
	process func(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error)
	calls   []string
}

func (s *stubPipeline) Process(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error) {
	s.calls = append(s.calls, partNumber)
	if s.process != nil {
		return s.process(ctx, partNumber)
	}
	return &domain.CanonicalProduct{}, nil
}

func writeReplayFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reporte-productos.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write replay file: %v", err)
	}
	return path
}

func TestReplayDeduplicatesEntries(t *testing.T) {
	file := writeReplayFile(t, ""+
		"01J3ZK|2000378866682|se encuentra publicado\n"+
		"01J3ZL|2000378866682|se encuentra publicado\n"+
		"01J3ZM|MPM00005022786|no se encuentra publicado\n"+
		"\n"+
		"2000111122223\n")

	pipe := &stubPipeline{}
	replay, err := NewReplay(ReplayDeps{Pipeline: pipe})
	if err != nil {
		t.Fatalf("NewReplay: %v", err)
	}

	stats, err := replay.Run(context.Background(), file, 0, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Lines != 4 {
		t.Errorf("Lines = %d, want 4", stats.Lines)
	}
	if stats.Unique != 3 || stats.Processed != 3 || stats.Succeeded != 3 {
		t.Errorf("stats = %+v, want 3 unique processed succeeded", stats)
	}
	want := []string{"2000378866682", "MPM00005022786", "2000111122223"}
	if len(pipe.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", pipe.calls, want)
	}
	for i := range want {
		if pipe.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, pipe.calls[i], want[i])
		}
	}
}

func TestReplayWindow(t *testing.T) {
	file := writeReplayFile(t, ""+
		"a|PN-1|x\n"+
		"b|PN-2|x\n"+
		"c|PN-3|x\n"+
		"d|PN-4|x\n"+
		"e|PN-5|x\n")

	pipe := &stubPipeline{}
	replay, err := NewReplay(ReplayDeps{Pipeline: pipe})
	if err != nil {
		t.Fatalf("NewReplay: %v", err)
	}

	stats, err := replay.Run(context.Background(), file, 1, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
	want := []string{"PN-2", "PN-3"}
	if len(pipe.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", pipe.calls, want)
	}
	for i := range want {
		if pipe.calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, pipe.calls[i], want[i])
		}
	}
}

func TestReplayCountsFailuresWithoutAborting(t *testing.T) {
	file := writeReplayFile(t, "a|PN-1|x\nb|PN-2|x\nc|PN-3|x\n")

	pipe := &stubPipeline{
		process: func(ctx context.Context, pn string) (*domain.CanonicalProduct, error) {
			if pn == "PN-2" {
				return nil, errors.New("upstream down")
			}
			return &domain.CanonicalProduct{}, nil
		},
	}
	replay, err := NewReplay(ReplayDeps{Pipeline: pipe})
	if err != nil {
		t.Fatalf("NewReplay: %v", err)
	}

	stats, err := replay.Run(context.Background(), file, 0, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Processed != 3 || stats.Succeeded != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want processed 3 succeeded 2 failed 1", stats)
	}
}

func TestReplayMissingFile(t *testing.T) {
	replay, err := NewReplay(ReplayDeps{Pipeline: &stubPipeline{}})
	if err != nil {
		t.Fatalf("NewReplay: %v", err)
	}
	if _, err := replay.Run(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), 0, 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReplayRequiresPipeline(t *testing.T) {
	if _, err := NewReplay(ReplayDeps{}); err == nil {
		t.Fatal("expected error for nil pipeline")
	}
}

func TestReplayHonorsContextCancellation(t *testing.T) {
	file := writeReplayFile(t, "a|PN-1|x\nb|PN-2|x\n")

	ctx, cancel := context.WithCancel(context.Background())
	pipe := &stubPipeline{
		process: func(ctx context.Context, pn string) (*domain.CanonicalProduct, error) {
			cancel()
			return &domain.CanonicalProduct{}, nil
		},
	}
	replay, err := NewReplay(ReplayDeps{Pipeline: pipe})
	if err != nil {
		t.Fatalf("NewReplay: %v", err)
	}

	stats, err := replay.Run(ctx, file, 0, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if stats.Processed != 1 {
		t.Errorf("Processed = %d, want 1", stats.Processed)
	}
}

func TestPartNumberFromLine(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"01J3ZK|2000378866682|mensaje", "2000378866682"},
		{"01J3ZK| MPM00005022786 ", "MPM00005022786"},
		{"2000378866682", "2000378866682"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := partNumberFromLine(tc.line); got != tc.want {
			t.Errorf("partNumberFromLine(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
