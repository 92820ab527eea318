// Package indexer drives a lexeme statistics build: it checks page
// eligibility, reads and counts pages concurrently, merges the counts into
// a corpus in navigation order, selects terms and assembles the artifact.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/counter"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/selector"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/site"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/tracing"
)

// Options wires an Engine. Metrics may be nil.
type Options struct {
	Indexer   config.IndexerConfig
	Selector  config.SelectorConfig
	Tokenizer *tokenizer.Tokenizer
	Filter    site.Filter
	Source    site.Source
	Metrics   *metrics.Metrics
}

// Report summarises a build. It is diagnostic only and never part of the
// artifact.
type Report struct {
	// Candidates is the number of page records found in the navigation.
	Candidates int
	// Processed counts eligible page occurrences, duplicates included.
	Processed int
	Skipped   int
	Reasons   map[site.SkipReason]int
	// Documents is the number of distinct document ids processed.
	Documents int
	// Terms is the number of distinct terms before selection.
	Terms int
	// Tokens is the number of counted terms after per-page capping.
	Tokens   int
	Selected int
}

type Engine struct {
	cfg     config.IndexerConfig
	params  selector.Params
	tok     *tokenizer.Tokenizer
	filter  site.Filter
	source  site.Source
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// slot is the per-page result of the parallel phase.
type slot struct {
	reason site.SkipReason
	counts counter.Counts
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Tokenizer == nil {
		return nil, fmt.Errorf("engine requires a tokenizer")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("engine requires a page source")
	}
	workers := opts.Indexer.Workers
	if workers < 1 {
		workers = 1
	}
	opts.Indexer.Workers = workers
	return &Engine{
		cfg: opts.Indexer,
		params: selector.Params{
			MinTotal:        opts.Selector.MinTotal,
			MinDF:           opts.Selector.MinDF,
			MaxDFRatio:      opts.Selector.MaxDFRatio,
			MinEntropy:      opts.Selector.MinEntropy,
			TopPagesPerWord: opts.Selector.TopPagesPerWord,
			MaxWordsGlobal:  opts.Selector.MaxWordsGlobal,
		},
		tok:     opts.Tokenizer,
		filter:  opts.Filter,
		source:  opts.Source,
		metrics: opts.Metrics,
		logger:  slog.Default().With("component", "indexer"),
	}, nil
}

// Build computes the artifact for pages, given in navigation order. Pages
// that are ineligible or unreadable are skipped and reported; only context
// cancellation fails a build.
func (e *Engine) Build(ctx context.Context, pages []site.Page) (*artifact.Artifact, Report, error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, "build")
	defer span.End()
	report := Report{
		Candidates: len(pages),
		Reasons:    make(map[site.SkipReason]int),
	}
	e.logger.Info("navigation walked", "pages_in_site_data", len(pages))

	slots, err := e.countPages(ctx, pages)
	if err != nil {
		return nil, report, err
	}

	_, mergeSpan := tracing.Start(ctx, "merge")
	corpus := index.NewCorpus()
	docs := make(index.DocumentIndex)
	for i, p := range pages {
		s := slots[i]
		if s.reason != site.SkipNone {
			report.Skipped++
			report.Reasons[s.reason]++
			continue
		}
		docs[p.Hash] = index.PageRef{Title: p.Title, Path: p.Path}
		corpus.Add(p.Hash, s.counts)
		report.Processed++
		report.Tokens += s.counts.Total()
	}
	report.Terms = corpus.Len()
	report.Documents = corpus.DocCount()
	mergeSpan.SetAttr("terms", report.Terms)
	mergeSpan.End()
	e.logger.Info("pages counted",
		"processed_pages", report.Processed,
		"skipped_pages", report.Skipped,
		"distinct_documents", report.Documents,
		"unique_words_indexed", report.Terms,
	)

	totalPages := max(1, report.Processed)
	_, selectSpan := tracing.Start(ctx, "select")
	sel := selector.Select(corpus, totalPages, e.params)
	report.Selected = len(sel.Words)
	selectSpan.SetAttr("selected", report.Selected)
	selectSpan.End()

	tc := e.tok.Config()
	src := artifact.Source{
		Mode:            artifact.Mode,
		IncludeExts:     e.filter.IncludeExts,
		MaxWordsPerPage: e.cfg.MaxWordsPerPage,
		TotalPages:      totalPages,
		Filters: artifact.Filters{
			MinTokenLen: tc.MinTokenLen,
			MinASCIILen: tc.MinASCIILen,
			MinTotal:    e.params.MinTotal,
			MinDF:       e.params.MinDF,
			MaxDFRatio:  e.params.MaxDFRatio,
			MinEntropy:  e.params.MinEntropy,
			StemASCII:   tc.StemASCII,
		},
		Shrink: artifact.Shrink{
			TopPagesPerWord: e.params.TopPagesPerWord,
			MaxWordsGlobal:  e.params.MaxWordsGlobal,
		},
	}
	art := artifact.Assemble(src, docs, sel)

	elapsed := time.Since(start)
	e.logger.Info("terms selected",
		"candidates", sel.Candidates,
		"selected", report.Selected,
		"total_pages", totalPages,
		"duration", elapsed,
	)
	e.record(report, sel.Candidates, elapsed)
	return art, report, nil
}

// countPages checks, reads and counts every page with at most Workers in
// flight. Results land in per-page slots so the merge can run in
// navigation order.
func (e *Engine) countPages(ctx context.Context, pages []site.Page) ([]slot, error) {
	ctx, span := tracing.Start(ctx, "count")
	defer span.End()
	span.SetAttr("pages", len(pages))
	slots := make([]slot, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			abs, reason := e.filter.Check(p)
			if reason != site.SkipNone {
				slots[i].reason = reason
				if reason == site.SkipMissingFile {
					e.logger.Warn("source file missing", "missing_md_file", p.MDPath, "abs_path", abs, "hash", p.Hash)
				} else {
					e.logger.Debug("page skipped", "reason", reason, "hash", p.Hash, "md_path", p.MDPath)
				}
				return nil
			}
			text, err := e.source.Read(gctx, abs)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.logger.Warn("page read failed", "path", abs, "error", err)
				slots[i].reason = site.SkipReadFailed
				return nil
			}
			slots[i].counts = counter.Count(e.tok.Terms(text), e.cfg.MaxWordsPerPage)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	return slots, nil
}

func (e *Engine) record(r Report, candidates int, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.PagesTotal.WithLabelValues("processed").Add(float64(r.Processed))
	e.metrics.PagesTotal.WithLabelValues("skipped").Add(float64(r.Skipped))
	for _, reason := range site.SkipReasons {
		if n := r.Reasons[reason]; n > 0 {
			e.metrics.PagesSkipped.WithLabelValues(string(reason)).Add(float64(n))
		}
	}
	e.metrics.TokensCounted.Add(float64(r.Tokens))
	e.metrics.CorpusTerms.Set(float64(r.Terms))
	e.metrics.CandidateTerms.Set(float64(candidates))
	e.metrics.SelectedTerms.Set(float64(r.Selected))
	e.metrics.BuildDuration.Observe(elapsed.Seconds())
}
