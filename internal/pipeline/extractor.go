package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Extraction is the outcome of running one document through a block source
// and the outline classifier.
type Extraction struct {
	Result   outline.Result
	Blocks   int
	Cached   bool
	Duration time.Duration
}

// Extractor parses documents into blocks and classifies them. Results are
// cached by content hash, so resubmitting the same bytes is free.
type Extractor struct {
	parserOpts  parser.Options
	outlineOpts outline.Options
	results     *cache.Cache
	stats       *Stats
	log         *slog.Logger
}

func NewExtractor(parserOpts parser.Options, cacheTTL time.Duration, log *slog.Logger) *Extractor {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{
		parserOpts:  parserOpts,
		outlineOpts: outline.Options{Logger: log},
		results:     cache.New(cacheTTL, 2*cacheTTL),
		stats:       NewStats(time.Hour),
		log:         log,
	}
}

// Stats returns the extractor's running statistics.
func (e *Extractor) Stats() *Stats {
	return e.stats
}

// CachedResults is the number of results currently cached.
func (e *Extractor) CachedResults() int {
	return e.results.ItemCount()
}

// ExtractFile reads path and extracts it, choosing the block source by the
// file's extension.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.ExtractBytes(ctx, filepath.Base(path), data)
}

// ExtractBytes extracts the outline of a document held in memory.
func (e *Extractor) ExtractBytes(ctx context.Context, filename string, data []byte) (*Extraction, error) {
	return e.extract(ctx, filename, data, func(JobStatus) {})
}

// ExtractBlocks classifies blocks that were produced elsewhere.
func (e *Extractor) ExtractBlocks(ctx context.Context, blocks []outline.TextBlock) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := outline.Extract(blocks, e.outlineOpts)
	if err != nil {
		e.stats.RecordFailure()
		return nil, err
	}
	ex := &Extraction{Result: res, Blocks: len(blocks), Duration: time.Since(start)}
	e.stats.RecordSuccess(ex.Duration, ex.Blocks, len(res.Outline))
	return ex, nil
}

// extract reports each phase it enters through phase, so a worker can mirror
// progress onto its job.
func (e *Extractor) extract(ctx context.Context, filename string, data []byte, phase func(JobStatus)) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheKey(filename, data)
	if v, ok := e.results.Get(key); ok {
		e.stats.RecordCacheHit()
		res := v.(outline.Result)
		return &Extraction{Result: res, Cached: true}, nil
	}

	start := time.Now()
	log := e.log.With("file", filename)

	phase(StatusParsing)
	p, err := parser.ForFile(filename, e.parserOpts)
	if err != nil {
		e.stats.RecordFailure()
		return nil, err
	}
	blocks, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		e.stats.RecordFailure()
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phase(StatusClassifying)
	opts := e.outlineOpts
	opts.Logger = log
	res, err := outline.Extract(blocks, opts)
	if err != nil {
		e.stats.RecordFailure()
		return nil, fmt.Errorf("classify %s: %w", filename, err)
	}

	ex := &Extraction{Result: res, Blocks: len(blocks), Duration: time.Since(start)}
	e.stats.RecordSuccess(ex.Duration, ex.Blocks, len(res.Outline))
	e.results.Set(key, res, cache.DefaultExpiration)
	log.Info("outline extracted",
		"blocks", ex.Blocks,
		"headings", len(res.Outline),
		"duration_ms", ex.Duration.Milliseconds(),
	)
	return ex, nil
}

// cacheKey includes the extension because the same bytes read as .txt and
// as .csv yield different blocks.
func cacheKey(filename string, data []byte) string {
	return ContentHashHex(data) + strings.ToLower(filepath.Ext(filename))
}
