package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/parser"
)

// BatchFile is the outcome for one input file of a batch run.
type BatchFile struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Headings int    `json:"headings"`
	Cached   bool   `json:"cached,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BatchReport summarizes a batch run. Files is sorted by input name.
type BatchReport struct {
	Files    []BatchFile   `json:"files"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed counts files that produced no output.
func (r *BatchReport) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Error != "" {
			n++
		}
	}
	return n
}

// RunBatch outlines every supported file directly inside inDir and writes
// <name>.json for each into outDir, at most workers at a time. A failing
// file is recorded in the report and does not stop the others; the returned
// error covers only directory-level problems and cancellation.
func RunBatch(ctx context.Context, ex *Extractor, inDir, outDir string, workers int, log *slog.Logger) (*BatchReport, error) {
	start := time.Now()
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var inputs []string
	for _, e := range entries {
		if e.Type().IsRegular() && parser.IsSupportedExtension(e.Name()) {
			inputs = append(inputs, e.Name())
		}
	}
	sort.Strings(inputs)
	outputs := outputNames(inputs)

	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	report := &BatchReport{Files: make([]BatchFile, 0, len(inputs))}
	record := func(f BatchFile) {
		mu.Lock()
		defer mu.Unlock()
		report.Files = append(report.Files, f)
	}

	for _, name := range inputs {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			flog := log.With("input", name)
			res := BatchFile{Input: name}

			out, err := ex.ExtractFile(gctx, filepath.Join(inDir, name))
			if err == nil {
				res.Output = outputs[name]
				err = writeResultFile(filepath.Join(outDir, res.Output), out.Result)
			}
			if err != nil {
				flog.Error("batch file failed", "error", err)
				res.Output = ""
				res.Error = err.Error()
				record(res)
				return nil
			}

			res.Headings = len(out.Result.Outline)
			res.Cached = out.Cached
			flog.Info("batch file written", "output", res.Output, "headings", res.Headings)
			record(res)
			return nil
		})
	}
	err = g.Wait()

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Input < report.Files[j].Input })
	report.Duration = time.Since(start)
	log.Info("batch complete",
		"files", len(report.Files),
		"failed", report.Failed(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, err
}

// outputNames maps each input to <stem>.json, falling back to
// <name>.json when two inputs share a stem.
func outputNames(inputs []string) map[string]string {
	stems := make(map[string]int, len(inputs))
	for _, name := range inputs {
		stems[stem(name)]++
	}
	out := make(map[string]string, len(inputs))
	for _, name := range inputs {
		if stems[stem(name)] > 1 {
			out[name] = name + ".json"
		} else {
			out[name] = stem(name) + ".json"
		}
	}
	return out
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
