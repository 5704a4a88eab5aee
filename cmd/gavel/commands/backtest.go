package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gavel-labs/gavel/config"
	"github.com/gavel-labs/gavel/internal/clients"
	"github.com/gavel-labs/gavel/internal/dataset"
	"github.com/gavel-labs/gavel/internal/domain"
	"github.com/gavel-labs/gavel/internal/journal"
	"github.com/gavel-labs/gavel/internal/report"
	"github.com/gavel-labs/gavel/internal/services/backtest"
	"github.com/gavel-labs/gavel/internal/services/matcher"
	"github.com/gavel-labs/gavel/internal/services/portfolio"
	"github.com/gavel-labs/gavel/internal/services/signal"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the full pipeline and write wealth.csv and composition.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		return runBacktest(cmd.Context(), logger, cfg)
	},
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(ctx context.Context, logger *zap.Logger, cfg config.Config) error {
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	roster, err := dataset.LoadRoster(cfg.Data.MembershipFile, cfg.Data.FirmsFile, logger)
	if err != nil {
		return err
	}

	prices := dataset.NewPriceStore(logger)
	if err := prices.LoadDir(cfg.Data.PricesDir); err != nil {
		return err
	}
	if err := prices.LoadFile(cfg.Data.BenchmarkFile, cfg.Backtest.BenchmarkTicker); err != nil {
		return errors.Wrap(err, "load benchmark")
	}
	logger.Debug("price universe", zap.Strings("tickers", prices.Tickers()))

	filters := dataset.TradeFilters{
		KeepSmall: cfg.Data.KeepSmallTrades,
		KeepChild: cfg.Data.KeepChildTrades,
	}
	trades, err := dataset.LoadTrades(cfg.Data.TradesFile, filters, logger)
	if err != nil {
		return err
	}
	trades = dataset.FilterPriced(trades, prices, logger)

	matches, err := buildMatches(ctx, logger, cfg, roster)
	if err != nil {
		return err
	}

	jrnl, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer jrnl.Close()

	generator, err := signal.NewGenerator(logger, roster, matches, cfg.Matcher.Threshold, jrnl, runID)
	if err != nil {
		return err
	}
	signals, err := generator.Flag(trades)
	if err != nil {
		return err
	}

	targets, err := portfolio.NewBuilder(logger).Build(signals, cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(logger, prices, backtest.Config{
		InitialWealth:   cfg.Backtest.InitialWealth,
		ShortScale:      cfg.Portfolio.ShortScale,
		BenchmarkTicker: cfg.Backtest.BenchmarkTicker,
	})
	if err != nil {
		return err
	}
	result, err := engine.Run(targets)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	wealthPath := filepath.Join(cfg.Output.Dir, "wealth.csv")
	if err := report.WriteWealthCSV(wealthPath, result.Wealth); err != nil {
		return err
	}
	compositionPath := filepath.Join(cfg.Output.Dir, "composition.csv")
	if err := report.WriteCompositionCSV(compositionPath, result.Composition); err != nil {
		return err
	}
	summaryPath := filepath.Join(cfg.Output.Dir, "summary.yaml")
	if err := report.WriteSummary(summaryPath, runID, result.Summary); err != nil {
		return err
	}
	logger.Info("wrote results",
		zap.String("wealth", wealthPath),
		zap.String("composition", compositionPath),
		zap.String("summary", summaryPath))

	s := result.Summary
	fmt.Printf("periods:          %d\n", s.Periods)
	fmt.Printf("total return:     %.2f%%\n", s.TotalReturn*100)
	fmt.Printf("benchmark return: %.2f%%\n", s.BenchmarkTotalReturn*100)
	fmt.Printf("excess return:    %.2f%%\n", s.ExcessReturn*100)
	fmt.Printf("cagr:             %.2f%%\n", s.CAGR*100)
	fmt.Printf("max drawdown:     %.2f%%\n", s.MaxDrawdown*100)

	return nil
}

func buildMatches(ctx context.Context, logger *zap.Logger, cfg config.Config, roster *domain.Roster) (*matcher.Set, error) {
	var emb clients.Embedder
	switch cfg.Matcher.Provider {
	case config.ProviderOpenAI:
		emb = clients.NewOpenAICompatibleEmbeddingClient(cfg.Matcher.APIURL, cfg.Matcher.APIKey(), cfg.Matcher.Model)
	default:
		emb = clients.NewTrigramEmbedder()
	}

	m, err := matcher.NewMatcher(logger, emb, cfg.Matcher.Concurrency)
	if err != nil {
		return nil, err
	}
	return m.MatchAll(ctx, roster.Committees(), roster.Firms())
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case config.JournalCSV:
		return journal.NewCSV(cfg.Path)
	case config.JournalSQLite:
		return journal.NewSQLite(cfg.Path)
	default:
		return journal.Nop{}, nil
	}
}
