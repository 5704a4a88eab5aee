// Package config loads and validates the run configuration.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// matcher providers
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// journal backends
const (
	JournalCSV    = "csv"
	JournalSQLite = "sqlite"
	JournalNone   = "none"
)

// Config fully parsed run configuration.
type Config struct {
	Data      DataConfig
	Matcher   MatcherConfig
	Portfolio PortfolioConfig
	Backtest  BacktestConfig
	Journal   JournalConfig
	Output    OutputConfig
}

// DataConfig input file locations and cleaning overrides.
type DataConfig struct {
	TradesFile     string
	MembershipFile string
	FirmsFile      string
	PricesDir      string
	BenchmarkFile  string
	// KeepSmallTrades keeps "< 1K" sized trades instead of dropping them.
	KeepSmallTrades bool
	// KeepChildTrades keeps child-owned trades instead of dropping them.
	KeepChildTrades bool
}

// MatcherConfig entity matcher settings.
type MatcherConfig struct {
	// Provider "openai" for an OpenAI-compatible embeddings API, "local" for
	// the offline trigram embedder.
	Provider string
	APIURL   string
	// APIKeyEnv name of the environment variable holding the API key, so the
	// key itself never lives in the config file.
	APIKeyEnv string
	Model     string
	// Threshold minimum match strength for a trade to be flagged, in [0,1).
	Threshold float64
	// Concurrency embedding workers for the committee x industry grid.
	Concurrency int
}

// APIKey resolves the API key from the configured environment variable.
func (m MatcherConfig) APIKey() string {
	return os.Getenv(m.APIKeyEnv)
}

// PortfolioConfig position construction settings.
type PortfolioConfig struct {
	// ShortScale fraction of wealth sold short when the short leg is
	// non-empty.
	ShortScale decimal.Decimal
}

// BacktestConfig simulation settings.
type BacktestConfig struct {
	InitialWealth decimal.Decimal
	StartDate     time.Time
	// EndDate last disclosure date included. Each weekly portfolio formed
	// on a Friday is valued the following Friday, so the price and
	// benchmark files must extend at least one week past EndDate; a run
	// whose benchmark data stops short fails rather than truncating.
	EndDate         time.Time
	BenchmarkTicker string
}

// JournalConfig decision audit settings.
type JournalConfig struct {
	// Type "csv", "sqlite" or "none".
	Type string
	Path string
}

// OutputConfig where the result tables go.
type OutputConfig struct {
	Dir string
}

// fileConfig is the raw YAML shape; numeric and date fields come in as
// strings and are parsed during Load.
type fileConfig struct {
	Data struct {
		TradesFile     string `yaml:"trades_file"`
		MembershipFile string `yaml:"membership_file"`
		FirmsFile      string `yaml:"firms_file"`
		PricesDir      string `yaml:"prices_dir"`
		BenchmarkFile  string `yaml:"benchmark_file"`

		KeepSmallTrades bool `yaml:"keep_small_trades"`
		KeepChildTrades bool `yaml:"keep_child_trades"`
	} `yaml:"data"`
	Matcher struct {
		Provider  string `yaml:"provider"`
		APIURL    string `yaml:"api_url"`
		APIKeyEnv string `yaml:"api_key_env"`
		Model     string `yaml:"model"`
		// pointers so an explicit zero is distinguishable from an unset field
		Threshold   *float64 `yaml:"threshold"`
		Concurrency *int     `yaml:"concurrency"`
	} `yaml:"matcher"`
	Portfolio struct {
		ShortScale string `yaml:"short_scale"`
	} `yaml:"portfolio"`
	Backtest struct {
		InitialWealth   string `yaml:"initial_wealth"`
		StartDate       string `yaml:"start_date"`
		EndDate         string `yaml:"end_date"`
		BenchmarkTicker string `yaml:"benchmark_ticker"`
	} `yaml:"backtest"`
	Journal struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
}

// Default returns the configuration used when the file leaves a field unset.
func Default() Config {
	return Config{
		Data: DataConfig{
			TradesFile:     "data/trades.csv",
			MembershipFile: "data/committee_membership.yml",
			FirmsFile:      "data/firms.csv",
			PricesDir:      "data/prices",
			BenchmarkFile:  "data/benchmark.csv",
		},
		Matcher: MatcherConfig{
			Provider:    ProviderLocal,
			APIKeyEnv:   "EMBEDDINGS_API_KEY",
			Threshold:   0.7,
			Concurrency: 8,
		},
		Portfolio: PortfolioConfig{
			ShortScale: decimal.RequireFromString("0.3"),
		},
		Backtest: BacktestConfig{
			InitialWealth:   decimal.NewFromInt(10000),
			BenchmarkTicker: "SPX",
		},
		Journal: JournalConfig{
			Type: JournalCSV,
			Path: "out/journal.csv",
		},
		Output: OutputConfig{
			Dir: "out",
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	cfg := Default()

	setString(&cfg.Data.TradesFile, fc.Data.TradesFile)
	setString(&cfg.Data.MembershipFile, fc.Data.MembershipFile)
	setString(&cfg.Data.FirmsFile, fc.Data.FirmsFile)
	setString(&cfg.Data.PricesDir, fc.Data.PricesDir)
	setString(&cfg.Data.BenchmarkFile, fc.Data.BenchmarkFile)
	cfg.Data.KeepSmallTrades = fc.Data.KeepSmallTrades
	cfg.Data.KeepChildTrades = fc.Data.KeepChildTrades

	setString(&cfg.Matcher.Provider, fc.Matcher.Provider)
	setString(&cfg.Matcher.APIURL, fc.Matcher.APIURL)
	setString(&cfg.Matcher.APIKeyEnv, fc.Matcher.APIKeyEnv)
	setString(&cfg.Matcher.Model, fc.Matcher.Model)
	if fc.Matcher.Threshold != nil {
		cfg.Matcher.Threshold = *fc.Matcher.Threshold
	}
	if fc.Matcher.Concurrency != nil {
		cfg.Matcher.Concurrency = *fc.Matcher.Concurrency
	}

	if fc.Portfolio.ShortScale != "" {
		cfg.Portfolio.ShortScale, err = decimal.NewFromString(fc.Portfolio.ShortScale)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse short_scale")
		}
	}

	if fc.Backtest.InitialWealth != "" {
		cfg.Backtest.InitialWealth, err = decimal.NewFromString(fc.Backtest.InitialWealth)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse initial_wealth")
		}
	}
	if fc.Backtest.StartDate != "" {
		cfg.Backtest.StartDate, err = time.Parse(time.DateOnly, fc.Backtest.StartDate)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse start_date")
		}
	}
	if fc.Backtest.EndDate != "" {
		cfg.Backtest.EndDate, err = time.Parse(time.DateOnly, fc.Backtest.EndDate)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse end_date")
		}
	}
	setString(&cfg.Backtest.BenchmarkTicker, fc.Backtest.BenchmarkTicker)

	setString(&cfg.Journal.Type, fc.Journal.Type)
	setString(&cfg.Journal.Path, fc.Journal.Path)
	setString(&cfg.Output.Dir, fc.Output.Dir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Validate checks field ranges and cross-field requirements.
func (c Config) Validate() error {
	switch c.Matcher.Provider {
	case ProviderLocal:
	case ProviderOpenAI:
		if c.Matcher.APIURL == "" {
			return errors.New("matcher.api_url is required for the openai provider")
		}
		if c.Matcher.Model == "" {
			return errors.New("matcher.model is required for the openai provider")
		}
	default:
		return errors.Errorf("unknown matcher provider %q", c.Matcher.Provider)
	}

	if c.Matcher.Threshold < 0 || c.Matcher.Threshold >= 1 {
		return errors.Errorf("matcher.threshold %v outside [0,1)", c.Matcher.Threshold)
	}
	if c.Matcher.Concurrency < 1 {
		return errors.New("matcher.concurrency must be at least 1")
	}

	if c.Portfolio.ShortScale.IsNegative() || c.Portfolio.ShortScale.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.Errorf("portfolio.short_scale %s outside [0,1)", c.Portfolio.ShortScale)
	}

	if c.Backtest.InitialWealth.LessThanOrEqual(decimal.Zero) {
		return errors.New("backtest.initial_wealth must be positive")
	}
	if c.Backtest.StartDate.IsZero() || c.Backtest.EndDate.IsZero() {
		return errors.New("backtest.start_date and backtest.end_date are required")
	}
	if c.Backtest.EndDate.Before(c.Backtest.StartDate) {
		return errors.New("backtest.end_date precedes backtest.start_date")
	}
	if c.Backtest.BenchmarkTicker == "" {
		return errors.New("backtest.benchmark_ticker is required")
	}

	switch c.Journal.Type {
	case JournalNone:
	case JournalCSV, JournalSQLite:
		if c.Journal.Path == "" {
			return errors.Errorf("journal.path is required for the %s journal", c.Journal.Type)
		}
	default:
		return errors.Errorf("unknown journal type %q", c.Journal.Type)
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	return nil
}
