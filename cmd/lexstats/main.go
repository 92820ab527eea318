// Command lexstats computes lexeme statistics for a static site's pages and
// merges them into the site-data JSON document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "lexstats: %v\n", err)
		} else {
			err = nil
		}
	}
	os.Exit(apperrors.ExitCode(err))
}

// run parses args, loads configuration and executes one build.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("lexstats", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	var configPath string
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file")
	ov := registerOverrides(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return apperrors.New(apperrors.ErrInvalidInput, err.Error())
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ov.apply(flagSet, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	return execute(ctx, cfg)
}

// overrides holds command-line values. Only flags set explicitly replace
// the loaded configuration.
type overrides struct {
	siteDataJSON    string
	projectRoot     string
	stopWords       string
	ignoreFiles     string
	noJieba         bool
	jiebaDict       string
	keepPunctuation bool
	minTokenLen     int
	minASCIILen     int
	encoding        string
	exts            string
	maxWordsPerPage int
	minTotal        int
	minDF           int
	maxDFRatio      float64
	minEntropy      float64
	topPagesPerWord int
	maxWordsGlobal  int
	stripMarkdown   bool
	stem            bool
	workers         int
	metricsTextfile string
	logLevel        string
	outputKey       string
}

func registerOverrides(fs *pflag.FlagSet) *overrides {
	d := config.Default()
	o := &overrides{}
	fs.StringVar(&o.siteDataJSON, "site-data-json", d.Site.SiteDataJSON, "site-data JSON document to read and update")
	fs.StringVar(&o.projectRoot, "project-root", d.Site.ProjectRoot, "directory page source paths are relative to")
	fs.StringVar(&o.stopWords, "stopwords", d.Site.StopWords, "stop-word list, one per line")
	fs.StringVar(&o.ignoreFiles, "ignore-files", d.Site.IgnoreFiles, "list of source paths to skip, one per line")
	fs.BoolVar(&o.noJieba, "no-jieba", false, "split dense-script text into single characters")
	fs.StringVar(&o.jiebaDict, "jieba-dict", d.Tokenizer.JiebaDict, "jieba dictionary file for dense-script segmentation")
	fs.BoolVar(&o.keepPunctuation, "keep-punctuation", d.Tokenizer.KeepPunctuation, "keep single-symbol tokens")
	fs.IntVar(&o.minTokenLen, "min-token-len", d.Tokenizer.MinTokenLen, "minimum token length in characters")
	fs.IntVar(&o.minASCIILen, "min-ascii-len", d.Tokenizer.MinASCIILen, "minimum length of ASCII words")
	fs.StringVar(&o.encoding, "encoding", d.Site.Encoding, "text encoding of page sources")
	fs.StringVar(&o.exts, "exts", ".md", "comma-separated source extensions to include")
	fs.IntVar(&o.maxWordsPerPage, "max-words-per-page", d.Indexer.MaxWordsPerPage, "distinct terms kept per page (0 = unlimited)")
	fs.IntVar(&o.minTotal, "min-total", d.Selector.MinTotal, "minimum total occurrences of a term")
	fs.IntVar(&o.minDF, "min-df", d.Selector.MinDF, "minimum number of pages containing a term")
	fs.Float64Var(&o.maxDFRatio, "max-df-ratio", d.Selector.MaxDFRatio, "maximum fraction of pages containing a term")
	fs.Float64Var(&o.minEntropy, "min-entropy", d.Selector.MinEntropy, "minimum Shannon entropy of a term's distribution, in bits")
	fs.IntVar(&o.topPagesPerWord, "top-pages-per-word", d.Selector.TopPagesPerWord, "occurrence records kept per term (0 = unlimited)")
	fs.IntVar(&o.maxWordsGlobal, "max-words-global", d.Selector.MaxWordsGlobal, "terms kept in total (0 = unlimited)")
	fs.BoolVar(&o.stripMarkdown, "strip-markdown", d.Site.StripMarkdown, "index rendered text instead of markdown source")
	fs.BoolVar(&o.stem, "stem", d.Tokenizer.StemASCII, "reduce English words to their stem")
	fs.IntVar(&o.workers, "workers", d.Indexer.Workers, "pages read and counted concurrently")
	fs.StringVar(&o.metricsTextfile, "metrics-textfile", "", "write run metrics in Prometheus text format to this file")
	fs.StringVar(&o.logLevel, "log-level", d.Logging.Level, "log level: debug, info, warn or error")
	fs.StringVar(&o.outputKey, "output-key", d.Site.OutputKey, "member of the site-data document that receives the statistics")
	return o
}

func (o *overrides) apply(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "site-data-json":
			cfg.Site.SiteDataJSON = o.siteDataJSON
		case "project-root":
			cfg.Site.ProjectRoot = o.projectRoot
		case "stopwords":
			cfg.Site.StopWords = o.stopWords
		case "ignore-files":
			cfg.Site.IgnoreFiles = o.ignoreFiles
		case "no-jieba":
			cfg.Tokenizer.UseJieba = !o.noJieba
		case "jieba-dict":
			cfg.Tokenizer.JiebaDict = o.jiebaDict
		case "keep-punctuation":
			cfg.Tokenizer.KeepPunctuation = o.keepPunctuation
		case "min-token-len":
			cfg.Tokenizer.MinTokenLen = o.minTokenLen
		case "min-ascii-len":
			cfg.Tokenizer.MinASCIILen = o.minASCIILen
		case "encoding":
			cfg.Site.Encoding = o.encoding
		case "exts":
			cfg.Indexer.IncludeExts = config.ParseExts(o.exts)
		case "max-words-per-page":
			cfg.Indexer.MaxWordsPerPage = o.maxWordsPerPage
		case "min-total":
			cfg.Selector.MinTotal = o.minTotal
		case "min-df":
			cfg.Selector.MinDF = o.minDF
		case "max-df-ratio":
			cfg.Selector.MaxDFRatio = o.maxDFRatio
		case "min-entropy":
			cfg.Selector.MinEntropy = o.minEntropy
		case "top-pages-per-word":
			cfg.Selector.TopPagesPerWord = o.topPagesPerWord
		case "max-words-global":
			cfg.Selector.MaxWordsGlobal = o.maxWordsGlobal
		case "strip-markdown":
			cfg.Site.StripMarkdown = o.stripMarkdown
		case "stem":
			cfg.Tokenizer.StemASCII = o.stem
		case "workers":
			cfg.Indexer.Workers = o.workers
		case "metrics-textfile":
			cfg.Metrics.Enabled = o.metricsTextfile != ""
			cfg.Metrics.TextfilePath = o.metricsTextfile
		case "log-level":
			cfg.Logging.Level = o.logLevel
		case "output-key":
			cfg.Site.OutputKey = o.outputKey
		}
	})
}
