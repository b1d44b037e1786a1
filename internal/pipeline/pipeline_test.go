package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

const sampleMarkdown = `# Agile Tester Handbook

Intro.

---

Second page.

---

## 2.3 Test Levels

### Scope of Testing
`

func newTestExtractor() *Extractor {
	return NewExtractor(parser.DefaultOptions(), time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractor_ExtractBytes(t *testing.T) {
	ex := newTestExtractor()
	got, err := ex.ExtractBytes(context.Background(), "deck.md", []byte(sampleMarkdown))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cached {
		t.Error("first extraction should not be cached")
	}
	if got.Result.Title != "Agile Tester Handbook  " {
		t.Errorf("unexpected title %q", got.Result.Title)
	}
	want := []outline.Entry{
		{Level: outline.H2, Text: "2.3 Test Levels ", Page: 3},
		{Level: outline.H3, Text: "Scope of Testing ", Page: 3},
	}
	if len(got.Result.Outline) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), got.Result.Outline)
	}
	for i := range want {
		if got.Result.Outline[i] != want[i] {
			t.Errorf("entry[%d]: expected %+v, got %+v", i, want[i], got.Result.Outline[i])
		}
	}

	again, err := ex.ExtractBytes(context.Background(), "copy.md", []byte(sampleMarkdown))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.Cached {
		t.Error("expected second extraction of identical bytes to hit the cache")
	}
	if ex.CachedResults() != 1 {
		t.Errorf("expected 1 cached result, got %d", ex.CachedResults())
	}
	snap := ex.Stats().Snapshot()
	if snap.Documents != 1 || snap.CacheHits != 1 {
		t.Errorf("unexpected stats %+v", snap)
	}
}

func TestExtractor_Errors(t *testing.T) {
	ex := newTestExtractor()

	_, err := ex.ExtractBytes(context.Background(), "slides.pptx", []byte("x"))
	if !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err = ex.ExtractBytes(context.Background(), "blocks.json", []byte(`[{"text":"a","page":0,"font_size":10}]`))
	var ibe *outline.InvalidBlockError
	if !errors.As(err, &ibe) {
		t.Errorf("expected InvalidBlockError, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.ExtractBytes(ctx, "a.md", []byte("# A")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if ex.Stats().Snapshot().Failures != 2 {
		t.Errorf("expected 2 recorded failures, got %d", ex.Stats().Snapshot().Failures)
	}
}

func TestExtractor_ExtractBlocks(t *testing.T) {
	ex := newTestExtractor()
	got, err := ex.ExtractBlocks(context.Background(), []outline.TextBlock{
		{Text: "2.3 Test Levels", Page: 3, FontSize: 11},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Result.Outline) != 1 || got.Result.Title != outline.UntitledDocument {
		t.Errorf("unexpected result %+v", got.Result)
	}
}

func TestWriteResult_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResult(&buf, outline.Result{
		Title:   "Über <Agile>  ",
		Outline: []outline.Entry{{Level: outline.H1, Text: "Revision History ", Page: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{
    "title": "Über <Agile>  ",
    "outline": [
        {
            "level": "H1",
            "text": "Revision History ",
            "page": 2
        }
    ]
}
`
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteResult(&buf, outline.Result{Title: outline.UntitledDocument}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"outline": []`) {
		t.Errorf("expected empty outline array, got %s", buf.String())
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, newTestExtractor(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	orch.Start(context.Background())
	defer orch.Stop()

	good := NewJob("deck.md", []byte(sampleMarkdown))
	bad := NewJob("deck.pptx", []byte("x"))
	for _, j := range []*Job{good, bad} {
		if err := orch.Submit(j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	waitDone(t, orch, good.ID)
	waitDone(t, orch, bad.ID)

	if s := orch.GetJob(good.ID).Snapshot(); s.Status != StatusCompleted || len(s.Result.Outline) != 2 {
		t.Errorf("unexpected good job %+v", s)
	}
	if s := orch.GetJob(bad.ID).Snapshot(); s.Status != StatusFailed || s.Phase != string(StatusParsing) {
		t.Errorf("unexpected bad job %+v", s)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, newTestExtractor(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := orch.Submit(NewJob("a.md", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.md", nil)
	if err := orch.Submit(second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if orch.GetJob(second.ID).Snapshot().Status != StatusFailed {
		t.Error("rejected job should be recorded as failed")
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}

	orch.Stop()
	if err := orch.Submit(NewJob("c.md", nil)); err == nil {
		t.Error("expected submit after stop to fail")
	}
}

func waitDone(t *testing.T, orch *Orchestrator, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if orch.GetJob(id).Snapshot().Status.Done() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
}

func TestRunBatch(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")

	files := map[string]string{
		"deck.md":      sampleMarkdown,
		"notes.txt":    "Cover Title Line\n\f2.1 Intro Section\n",
		"blocks.json":  `[{"page":2,"font_size":10}]`,
		"ignored.pptx": "x",
		"report.md":    "# Report\n",
		"report.txt":   "Report Body\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(in, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := RunBatch(context.Background(), newTestExtractor(), in, out, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Files) != 5 {
		t.Fatalf("expected 5 files, got %+v", report.Files)
	}
	if report.Failed() != 1 || report.Files[0].Input != "blocks.json" || report.Files[0].Error == "" {
		t.Errorf("expected only blocks.json to fail, got %+v", report.Files)
	}

	raw, err := os.ReadFile(filepath.Join(out, "deck.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var res outline.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(res.Outline) != 2 {
		t.Errorf("expected 2 entries in deck.json, got %+v", res.Outline)
	}

	for _, name := range []string{"notes.json", "report.md.json", "report.txt.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "blocks.json")); !os.IsNotExist(err) {
		t.Error("failed input should produce no output")
	}
}

func TestRunBatch_MissingInputDir(t *testing.T) {
	_, err := RunBatch(context.Background(), newTestExtractor(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected error for missing input dir")
	}
}
