package batch

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/grader/internal/checker"
	"github.com/nao1215/grader/internal/document"
	"github.com/nao1215/grader/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of targets graded at once when no
// WithConcurrency option is given.
const DefaultConcurrency = 4

// Loader turns a target into a parsed document.
type Loader interface {
	Load(ctx context.Context, target string) (*document.Document, error)
}

// TargetLoader loads URLs with a Fetcher and everything else from disk.
type TargetLoader struct {
	Fetcher *document.Fetcher
}

// Load implements Loader.
func (l *TargetLoader) Load(ctx context.Context, target string) (*document.Document, error) {
	if IsURL(target) {
		return l.Fetcher.Fetch(ctx, target)
	}
	return document.LoadFile(target)
}

// IsURL reports whether target should be fetched over HTTP.
func IsURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Processor grades targets concurrently.
type Processor struct {
	loader      Loader
	checks      model.CheckList
	checksFile  string
	concurrency int
	logger      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for per-target progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithConcurrency sets the maximum number of targets graded at once.
// Non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithChecksFile records the checks file path on every Run.
func WithChecksFile(path string) Option {
	return func(p *Processor) {
		p.checksFile = path
	}
}

// NewProcessor creates a Processor that grades documents obtained from
// loader against checks.
func NewProcessor(loader Loader, checks model.CheckList, opts ...Option) *Processor {
	p := &Processor{
		loader:      loader,
		checks:      checks.Sorted(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Process grades every target and returns one Run per target in input order.
// Per-target failures are stored in Run.Error. The returned error is non-nil
// only when ctx is cancelled; targets not yet started are then marked with
// the context error.
func (p *Processor) Process(ctx context.Context, targets []string) ([]*model.Run, error) {
	p.logger.Info("starting batch",
		"targets", len(targets),
		"concurrency", p.concurrency,
	)
	start := time.Now()

	runs := make([]*model.Run, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				runs[i] = p.failed(target, err)
				return err
			}
			runs[i] = p.grade(gctx, target)
			return nil
		})
	}

	err := g.Wait()

	p.logger.Info("batch complete",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
	return runs, err
}

// grade loads and checks a single target.
func (p *Processor) grade(ctx context.Context, target string) *model.Run {
	p.logger.Debug("grading", "target", target)

	doc, err := p.loader.Load(ctx, target)
	if err != nil {
		p.logger.Warn("load failed", "target", target, "error", err)
		return p.failed(target, err)
	}

	result, err := checker.CheckList(doc, p.checks)
	if err != nil {
		p.logger.Warn("check failed", "target", target, "error", err)
		return p.failed(target, err)
	}

	run := model.NewRun(target)
	run.DocumentHash = doc.Hash
	run.ChecksFile = p.checksFile
	run.Result = result
	return run
}

func (p *Processor) failed(target string, err error) *model.Run {
	run := model.NewRun(target)
	run.ChecksFile = p.checksFile
	run.Error = err.Error()
	return run
}
