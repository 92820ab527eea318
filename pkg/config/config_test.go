package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Indexer.MaxWordsPerPage != 1500 || cfg.Selector.TopPagesPerWord != 10 || cfg.Selector.MaxWordsGlobal != 3000 {
		t.Errorf("unexpected shrink defaults: %+v %+v", cfg.Indexer, cfg.Selector)
	}
	if cfg.Tokenizer.MinTokenLen != 1 || cfg.Tokenizer.MinASCIILen != 2 || !cfg.Tokenizer.LowercaseASCII {
		t.Errorf("unexpected tokenizer defaults: %+v", cfg.Tokenizer)
	}
	if cfg.Site.OutputKey != "lexemeStats" {
		t.Errorf("OutputKey = %q", cfg.Site.OutputKey)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexstats.yaml")
	data := []byte(`
site:
  projectRoot: /srv/site
  stripMarkdown: true
indexer:
  includeExts: [".md", " .MDX ", ""]
selector:
  minEntropy: 0.5
  maxWordsGlobal: 100
logging:
  level: debug
publish:
  timeout: 3s
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEX_LOGGING_FORMAT", "json")
	t.Setenv("LEX_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LEX_INDEXER_WORKERS", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Site.ProjectRoot != "/srv/site" || !cfg.Site.StripMarkdown {
		t.Errorf("site = %+v", cfg.Site)
	}
	if !slices.Equal(cfg.Indexer.IncludeExts, []string{".md", ".MDX"}) {
		t.Errorf("IncludeExts = %q", cfg.Indexer.IncludeExts)
	}
	if cfg.Selector.MinEntropy != 0.5 || cfg.Selector.MaxWordsGlobal != 100 || cfg.Selector.TopPagesPerWord != 10 {
		t.Errorf("selector = %+v", cfg.Selector)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !slices.Equal(cfg.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Publish.Timeout != 3*time.Second || cfg.Publish.MaxAttempts != 3 {
		t.Errorf("publish = %+v", cfg.Publish)
	}
	if cfg.Indexer.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Indexer.Workers)
	}
	if got := cfg.Site.Resolve("public/stopwords.txt"); got != filepath.Join("/srv/site", "public", "stopwords.txt") {
		t.Errorf("Resolve = %q", got)
	}
	if got := cfg.Site.Resolve("/etc/x"); got != "/etc/x" {
		t.Errorf("Resolve(abs) = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("selector: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("Load(bad) = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"ratio above one allowed", func(c *Config) { c.Selector.MaxDFRatio = 2 }, true},
		{"negative ratio", func(c *Config) { c.Selector.MaxDFRatio = -0.1 }, false},
		{"negative cap", func(c *Config) { c.Indexer.MaxWordsPerPage = -1 }, false},
		{"negative entropy", func(c *Config) { c.Selector.MinEntropy = -1 }, false},
		{"NaN ratio", func(c *Config) { c.Selector.MaxDFRatio = math.NaN() }, false},
		{"infinite ratio", func(c *Config) { c.Selector.MaxDFRatio = math.Inf(1) }, false},
		{"infinite entropy", func(c *Config) { c.Selector.MinEntropy = math.Inf(1) }, false},
		{"negative infinite entropy", func(c *Config) { c.Selector.MinEntropy = math.Inf(-1) }, false},
		{"empty host path", func(c *Config) { c.Site.SiteDataJSON = " " }, false},
		{"metrics without path", func(c *Config) { c.Metrics.Enabled = true }, false},
		{"kafka without topic", func(c *Config) { c.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"b:9092"}} }, false},
		{"negative publish timeout", func(c *Config) { c.Publish.Timeout = -time.Second }, false},
		{"zero workers raised", func(c *Config) { c.Indexer.Workers = 0 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
			if tc.ok && cfg.Indexer.Workers < 1 {
				t.Errorf("Workers = %d after Validate", cfg.Indexer.Workers)
			}
		})
	}
}

func TestParseExts(t *testing.T) {
	if got := ParseExts(" .md, .txt ,,"); !slices.Equal(got, []string{".md", ".txt"}) {
		t.Errorf("ParseExts = %q", got)
	}
	if got := ParseExts(" , "); !slices.Equal(got, []string{".md"}) {
		t.Errorf("ParseExts(blank) = %q", got)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "lexstats.example.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Metrics.TextfilePath = cfg.Metrics.TextfilePath
	if cfg.Selector != want.Selector || cfg.Tokenizer != want.Tokenizer || cfg.Site != want.Site || cfg.Publish != want.Publish {
		t.Errorf("example config drifted from defaults:\n got %+v\nwant %+v", cfg, want)
	}
}
