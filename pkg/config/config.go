// Package config loads and validates lexstats configuration from a YAML
// file with environment-variable overrides. Command-line flags are applied
// on top by the command itself.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
)

// Config is the top-level configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Selector  SelectorConfig  `yaml:"selector"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Publish   PublishConfig   `yaml:"publish"`
}

// SiteConfig locates the project and its data files. Relative paths are
// resolved against ProjectRoot.
type SiteConfig struct {
	ProjectRoot   string `yaml:"projectRoot"`
	SiteDataJSON  string `yaml:"siteDataJson"`
	StopWords     string `yaml:"stopWords"`
	IgnoreFiles   string `yaml:"ignoreFiles"`
	Encoding      string `yaml:"encoding"`
	StripMarkdown bool   `yaml:"stripMarkdown"`
	OutputKey     string `yaml:"outputKey"`
}

// Resolve returns p made absolute against the project root.
func (s SiteConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.ProjectRoot, p)
}

// TokenizerConfig controls segmentation and token filtering.
type TokenizerConfig struct {
	UseJieba        bool   `yaml:"useJieba"`
	JiebaDict       string `yaml:"jiebaDict"`
	KeepPunctuation bool   `yaml:"keepPunctuation"`
	LowercaseASCII  bool   `yaml:"lowercaseAscii"`
	MinTokenLen     int    `yaml:"minTokenLen"`
	MinASCIILen     int    `yaml:"minAsciiLen"`
	StemASCII       bool   `yaml:"stemAscii"`
}

// IndexerConfig controls which pages are read and how much of each is kept.
type IndexerConfig struct {
	IncludeExts     []string `yaml:"includeExts"`
	MaxWordsPerPage int      `yaml:"maxWordsPerPage"`
	// Workers bounds concurrent page reads and counting.
	Workers int `yaml:"workers"`
}

// SelectorConfig holds the term selection thresholds and shrink limits.
type SelectorConfig struct {
	MinTotal        int     `yaml:"minTotal"`
	MinDF           int     `yaml:"minDf"`
	MaxDFRatio      float64 `yaml:"maxDfRatio"`
	MinEntropy      float64 `yaml:"minEntropy"`
	TopPagesPerWord int     `yaml:"topPagesPerWord"`
	MaxWordsGlobal  int     `yaml:"maxWordsGlobal"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls export of run metrics in the Prometheus text
// format, for a node_exporter textfile collector.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TextfilePath string `yaml:"textfilePath"`
}

// RedisConfig controls optional publication of the artifact to Redis.
type RedisConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"poolSize"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// KafkaConfig controls the optional stats-updated notification.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// PublishConfig bounds publication to Redis and Kafka.
type PublishConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "parsing config file %s: %v", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			ProjectRoot:  ".",
			SiteDataJSON: filepath.Join("public", "vmdjson", "site-data.json"),
			StopWords:    filepath.Join("public", "stopwords.txt"),
			IgnoreFiles:  filepath.Join("public", "ignore_files.txt"),
			Encoding:     "utf-8",
			OutputKey:    "lexemeStats",
		},
		Tokenizer: TokenizerConfig{
			UseJieba:       true,
			LowercaseASCII: true,
			MinTokenLen:    1,
			MinASCIILen:    2,
		},
		Indexer: IndexerConfig{
			IncludeExts:     []string{".md"},
			MaxWordsPerPage: 1500,
			Workers:         4,
		},
		Selector: SelectorConfig{
			MinTotal:        1,
			MinDF:           1,
			MaxDFRatio:      1.0,
			MinEntropy:      0.0,
			TopPagesPerWord: 10,
			MaxWordsGlobal:  3000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  4,
			KeyPrefix: "lexstats",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "lexeme-stats-updated",
		},
		Publish: PublishConfig{
			Timeout:     10 * time.Second,
			MaxAttempts: 3,
		},
	}
}

// Validate rejects settings the pipeline cannot run with and normalises the
// extension list.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Site.SiteDataJSON) == "" {
		problems = append(problems, "site data json path is empty")
	}
	if strings.TrimSpace(c.Site.OutputKey) == "" {
		problems = append(problems, "output key is empty")
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"minTokenLen", float64(c.Tokenizer.MinTokenLen)},
		{"minAsciiLen", float64(c.Tokenizer.MinASCIILen)},
		{"maxWordsPerPage", float64(c.Indexer.MaxWordsPerPage)},
		{"minTotal", float64(c.Selector.MinTotal)},
		{"minDf", float64(c.Selector.MinDF)},
		{"maxDfRatio", c.Selector.MaxDFRatio},
		{"minEntropy", c.Selector.MinEntropy},
		{"topPagesPerWord", float64(c.Selector.TopPagesPerWord)},
		{"maxWordsGlobal", float64(c.Selector.MaxWordsGlobal)},
		{"publish.maxAttempts", float64(c.Publish.MaxAttempts)},
		{"publish.timeout", c.Publish.Timeout.Seconds()},
	}
	for _, v := range nonNegative {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			problems = append(problems, fmt.Sprintf("%s must be a finite number (got %v)", v.name, v.value))
			continue
		}
		if v.value < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative (got %v)", v.name, v.value))
		}
	}
	if c.Metrics.Enabled && c.Metrics.TextfilePath == "" {
		problems = append(problems, "metrics enabled without a textfile path")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		problems = append(problems, "kafka enabled without brokers or topic")
	}
	if len(problems) > 0 {
		return apperrors.New(apperrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}

	c.Indexer.IncludeExts = ParseExts(strings.Join(c.Indexer.IncludeExts, ","))
	if c.Indexer.Workers < 1 {
		c.Indexer.Workers = 1
	}
	return nil
}

// ParseExts splits a comma-separated extension list, dropping blanks. An
// empty result falls back to ".md".
func ParseExts(s string) []string {
	var exts []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			exts = append(exts, e)
		}
	}
	if len(exts) == 0 {
		return []string{".md"}
	}
	return exts
}

// applyEnvOverrides reads LEX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEX_PROJECT_ROOT"); v != "" {
		cfg.Site.ProjectRoot = v
	}
	if v := os.Getenv("LEX_SITE_DATA_JSON"); v != "" {
		cfg.Site.SiteDataJSON = v
	}
	if v := os.Getenv("LEX_JIEBA_DICT"); v != "" {
		cfg.Tokenizer.JiebaDict = v
	}
	if v := os.Getenv("LEX_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("LEX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LEX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LEX_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.TextfilePath = v
	}
	if v := os.Getenv("LEX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LEX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LEX_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LEX_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
}
