package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/publish"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/site"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/tracing"
)

// execute runs one build and rewrites the host document. Metrics export and
// publication happen after the write and never fail the run.
func execute(ctx context.Context, cfg *config.Config) error {
	log := logger.WithComponent("lexstats")
	m := metrics.New()
	ctx, span := tracing.Start(ctx, "lexstats")
	defer func() {
		span.End()
		span.Log(log)
	}()

	hostPath := cfg.Site.Resolve(cfg.Site.SiteDataJSON)
	doc, err := site.ReadHostDocument(hostPath)
	if err != nil {
		return err
	}
	nav, err := doc.Navigation()
	if err != nil {
		return fmt.Errorf("host document %s: %w", hostPath, err)
	}

	stopWords := loadList(log, "stopwords", cfg.Site.Resolve(cfg.Site.StopWords), site.LoadWordSet)
	ignore := loadList(log, "ignore_files", cfg.Site.Resolve(cfg.Site.IgnoreFiles), site.LoadIgnoreList)

	tok := tokenizer.New(tokenizer.Config{
		UseSegmenter:    cfg.Tokenizer.UseJieba,
		KeepPunctuation: cfg.Tokenizer.KeepPunctuation,
		LowercaseASCII:  cfg.Tokenizer.LowercaseASCII,
		MinTokenLen:     cfg.Tokenizer.MinTokenLen,
		MinASCIILen:     cfg.Tokenizer.MinASCIILen,
		StemASCII:       cfg.Tokenizer.StemASCII,
		StopWords:       stopWords,
	}, denseSegmenter(log, cfg))

	source, err := site.NewFileSource(cfg.Site.Encoding, cfg.Site.StripMarkdown)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidConfig, "%v", err)
	}

	engine, err := indexer.NewEngine(indexer.Options{
		Indexer:   cfg.Indexer,
		Selector:  cfg.Selector,
		Tokenizer: tok,
		Filter:    site.NewFilter(cfg.Site.ProjectRoot, cfg.Indexer.IncludeExts, ignore),
		Source:    source,
		Metrics:   m,
	})
	if err != nil {
		return apperrors.Newf(apperrors.ErrInternal, "%v", err)
	}

	art, _, err := engine.Build(ctx, site.CollectPages(nav))
	if err != nil {
		return err
	}
	data, err := art.JSON()
	if err != nil {
		return apperrors.Newf(apperrors.ErrInternal, "encoding artifact: %v", err)
	}
	if err := doc.Set(cfg.Site.OutputKey, json.RawMessage(data)); err != nil {
		return err
	}
	_, writeSpan := tracing.Start(ctx, "write")
	err = site.WriteHostDocument(hostPath, doc)
	writeSpan.End()
	if err != nil {
		return err
	}
	m.MarkSuccess(time.Now())
	log.Info("host document updated",
		"path", hostPath,
		"key", cfg.Site.OutputKey,
		"words", len(art.SelectedWords),
		"total_pages", art.Source.TotalPages,
	)

	publishArtifact(ctx, log, cfg, m, art, data)

	if cfg.Metrics.Enabled {
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			log.Warn("metrics export failed", "path", cfg.Metrics.TextfilePath, "error", err)
		}
	}
	return nil
}

// loadList loads an optional list file. A missing file is normal; any other
// failure is logged and the empty result is used.
func loadList[T any](log *slog.Logger, name, path string, load func(string) (T, error)) T {
	v, err := load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("list not found", "list", name, "path", path)
	default:
		log.Warn("list unreadable, using empty list", "list", name, "path", path, "error", err)
	}
	return v
}

// denseSegmenter returns the jieba segmenter when one is configured and
// loads, and nil otherwise, which selects per-character splitting.
func denseSegmenter(log *slog.Logger, cfg *config.Config) tokenizer.Segmenter {
	if !cfg.Tokenizer.UseJieba {
		return nil
	}
	if cfg.Tokenizer.JiebaDict == "" {
		log.Info("no jieba dictionary configured, splitting dense text per character")
		return nil
	}
	dict := cfg.Site.Resolve(cfg.Tokenizer.JiebaDict)
	seg, err := tokenizer.NewJiebaSegmenter(dict)
	if err != nil {
		log.Warn("jieba unavailable, splitting dense text per character", "dict", dict, "error", err)
		return nil
	}
	return seg
}

func publishArtifact(ctx context.Context, log *slog.Logger, cfg *config.Config, m *metrics.Metrics, art *artifact.Artifact, data []byte) {
	var sinks []publish.Sink
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, skipping publication", "addr", cfg.Redis.Addr, "error", err)
			m.PublishTotal.WithLabelValues("redis", "error").Inc()
		} else {
			defer client.Close()
			sinks = append(sinks, publish.NewRedisSink(client, cfg.Redis.KeyPrefix))
		}
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		sinks = append(sinks, publish.NewKafkaSink(producer))
	}
	if len(sinks) == 0 {
		return
	}
	ctx, span := tracing.Start(ctx, "publish")
	defer span.End()

	digest, err := art.Digest()
	if err != nil {
		log.Warn("artifact digest failed, skipping publication", "error", err)
		return
	}
	notice := publish.Notice{
		Digest:      digest,
		TotalPages:  art.Source.TotalPages,
		Words:       len(art.SelectedWords),
		GeneratedAt: time.Now().UTC(),
		Artifact:    data,
	}
	fanout := publish.NewFanout(publish.Options{
		Timeout: cfg.Publish.Timeout,
		Retry:   resilience.Backoff{MaxAttempts: cfg.Publish.MaxAttempts},
		Metrics: m,
	}, sinks...)
	// Failures are logged and counted by the fanout.
	_ = fanout.Publish(ctx, notice)
}
