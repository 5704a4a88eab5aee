// Package setup provides the interactive terminal wizard that writes a run
// configuration file.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gavel-labs/gavel/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// generatedConfig mirrors the config file layout so the wizard output loads
// straight back through config.Load.
type generatedConfig struct {
	Data struct {
		TradesFile     string `yaml:"trades_file"`
		MembershipFile string `yaml:"membership_file"`
		FirmsFile      string `yaml:"firms_file"`
		PricesDir      string `yaml:"prices_dir"`
		BenchmarkFile  string `yaml:"benchmark_file"`
	} `yaml:"data"`
	Matcher struct {
		Provider  string  `yaml:"provider"`
		APIURL    string  `yaml:"api_url,omitempty"`
		APIKeyEnv string  `yaml:"api_key_env,omitempty"`
		Model     string  `yaml:"model,omitempty"`
		Threshold float64 `yaml:"threshold"`
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
		Path string `yaml:"path,omitempty"`
	} `yaml:"journal"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
}

// RunTUI launches the terminal configuration wizard and writes config.yaml.
func RunTUI() error {
	defaults := config.Default()

	var (
		tradesFile     = defaults.Data.TradesFile
		membershipFile = defaults.Data.MembershipFile
		firmsFile      = defaults.Data.FirmsFile
		pricesDir      = defaults.Data.PricesDir
		benchmarkFile  = defaults.Data.BenchmarkFile

		provider     string
		apiURL       = "https://api.openai.com/v1/embeddings"
		apiKeyEnv    = defaults.Matcher.APIKeyEnv
		model        = "text-embedding-3-small"
		thresholdStr = "0.7"

		shortScaleStr    = "0.3"
		initialWealthStr = "10000"
		startDateStr     string
		endDateStr       string
		benchmarkTicker  = defaults.Backtest.BenchmarkTicker

		journalType = defaults.Journal.Type
		journalPath = defaults.Journal.Path
		outputDir   = defaults.Output.Dir

		confirm bool
	)

	// step 1: input data
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GAVEL CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point gavel at your data and pick a matching strategy.\n"))

	fmt.Println(stepStyle.Render("STEP 1: INPUT DATA"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trades CSV").
				Description("Capitol Trades disclosure export").
				Value(&tradesFile).
				Validate(notEmpty),
			huh.NewInput().
				Title("Committee Membership YAML").
				Value(&membershipFile).
				Validate(notEmpty),
			huh.NewInput().
				Title("Firms CSV").
				Description("ticker,sector,industry table").
				Value(&firmsFile).
				Validate(notEmpty),
			huh.NewInput().
				Title("Price Directory").
				Description("One <TICKER>.csv per name").
				Value(&pricesDir).
				Validate(notEmpty),
			huh.NewInput().
				Title("Benchmark CSV").
				Value(&benchmarkFile).
				Validate(notEmpty),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: matcher
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GAVEL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ENTITY MATCHER"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Embedding Provider").
				Options(
					huh.NewOption("OpenAI-compatible API", config.ProviderOpenAI),
					huh.NewOption("Local (offline, no API)", config.ProviderLocal),
				).
				Value(&provider),
			huh.NewInput().
				Title("Match Threshold").
				Description("Minimum strength to flag a trade (0-1)").
				Value(&thresholdStr).
				Validate(validateUnitInterval),
		),
	).Run()
	if err != nil {
		return err
	}

	if provider == config.ProviderOpenAI {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Embeddings API URL").
					Value(&apiURL).
					Validate(notEmpty),
				huh.NewInput().
					Title("API Key Environment Variable").
					Description("The key is read from this variable at run time").
					Value(&apiKeyEnv).
					Validate(notEmpty),
				huh.NewInput().
					Title("Model Name").
					Value(&model).
					Validate(notEmpty),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// step 3: backtest
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GAVEL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: BACKTEST"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start Date").
				Description("YYYY-MM-DD").
				Value(&startDateStr).
				Validate(validateDate),
			huh.NewInput().
				Title("End Date").
				Description("YYYY-MM-DD, price files must extend a week past it").
				Value(&endDateStr).
				Validate(validateDate),
			huh.NewInput().
				Title("Initial Wealth").
				Value(&initialWealthStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Short Scale").
				Description("Fraction of wealth sold short (0-1)").
				Value(&shortScaleStr).
				Validate(validateUnitInterval),
			huh.NewInput().
				Title("Benchmark Ticker").
				Value(&benchmarkTicker).
				Validate(notEmpty),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 4: outputs
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GAVEL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: OUTPUTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Decision Journal").
				Options(
					huh.NewOption("CSV file", config.JournalCSV),
					huh.NewOption("SQLite database", config.JournalSQLite),
					huh.NewOption("None", config.JournalNone),
				).
				Value(&journalType),
			huh.NewInput().
				Title("Output Directory").
				Value(&outputDir).
				Validate(notEmpty),
		),
	).Run()
	if err != nil {
		return err
	}

	if journalType == config.JournalSQLite {
		journalPath = outputDir + "/journal.db"
	} else {
		journalPath = outputDir + "/journal.csv"
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("GAVEL CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Trades: %s\nMatcher: %s (threshold %s)\nPeriod: %s to %s\nInitial Wealth: %s\nBenchmark: %s\nJournal: %s\n",
		tradesFile, provider, thresholdStr, startDateStr, endDateStr, initialWealthStr, benchmarkTicker, journalType,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	var gen generatedConfig
	gen.Data.TradesFile = tradesFile
	gen.Data.MembershipFile = membershipFile
	gen.Data.FirmsFile = firmsFile
	gen.Data.PricesDir = pricesDir
	gen.Data.BenchmarkFile = benchmarkFile
	gen.Matcher.Provider = provider
	gen.Matcher.Threshold = mustFloat(thresholdStr)
	if provider == config.ProviderOpenAI {
		gen.Matcher.APIURL = apiURL
		gen.Matcher.APIKeyEnv = apiKeyEnv
		gen.Matcher.Model = model
	}
	gen.Portfolio.ShortScale = shortScaleStr
	gen.Backtest.InitialWealth = initialWealthStr
	gen.Backtest.StartDate = startDateStr
	gen.Backtest.EndDate = endDateStr
	gen.Backtest.BenchmarkTicker = benchmarkTicker
	gen.Journal.Type = journalType
	if journalType != config.JournalNone {
		gen.Journal.Path = journalPath
	}
	gen.Output.Dir = outputDir

	data, err := yaml.Marshal(gen)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", filename)))
	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func validateDate(s string) error {
	_, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("must be YYYY-MM-DD")
	}
	return nil
}

func validateUnitInterval(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("must be in [0,1)")
	}
	return nil
}

func validatePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func mustFloat(s string) float64 {
	d, _ := decimal.NewFromString(s)
	f, _ := d.Float64()
	return f
}
