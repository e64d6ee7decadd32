package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-insights/internal/repository/sqlite"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/dafibh/fortuna/fortuna-insights/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// app carries the configuration shared by every subcommand
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	now     func() time.Time
}

// session is an opened store with the services built on top of it
type session struct {
	store        *sqlite.Store
	workspaceID  int32
	transactions *service.TransactionService
	budgets      *service.BudgetService
	analytics    *service.AnalyticsService
}

func (s *session) Close() error {
	return s.store.Close()
}

func newRootCmd(out io.Writer, now func() time.Time) *cobra.Command {
	a := &app{v: viper.New(), out: out, now: now}

	cmd := &cobra.Command{
		Use:   "fortuna",
		Short: "Budget variance, KPIs and forecasts from a local ledger",
		Long: `fortuna records income, expense and transfer transactions in a local SQLite file
and derives budget variance reports, KPI dashboards and cash forecasts from them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.initConfig() },
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/fortuna/config.yaml)")
	flags.String("db", "", "SQLite database path (default: $HOME/.local/share/fortuna/fortuna.db)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Int32("workspace", 1, "workspace the ledger entries belong to")
	flags.String("format", formatTable, "output format (table, json)")

	_ = a.v.BindPFlag("db", flags.Lookup("db"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("workspace", flags.Lookup("workspace"))
	_ = a.v.BindPFlag("format", flags.Lookup("format"))

	cmd.AddCommand(a.addCmd())
	cmd.AddCommand(a.budgetCmd())
	cmd.AddCommand(a.varianceCmd())
	cmd.AddCommand(a.kpisCmd())
	cmd.AddCommand(a.forecastCmd())
	cmd.AddCommand(a.periodsCmd())

	cmd.SetOut(out)
	return cmd
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "fortuna"))
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("FORTUNA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	a.v.SetDefault("analytics.investment_category", "Investment")
	a.v.SetDefault("analytics.trend_window", 6)
	a.v.SetDefault("analytics.short_window", 3)
	a.v.SetDefault("analytics.forecast_months", 3)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %s", a.v.GetString("log_level"))
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	switch a.format() {
	case formatTable, formatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be table or json)", a.format())
	}
	return nil
}

func (a *app) format() string {
	return strings.ToLower(a.v.GetString("format"))
}

func (a *app) dbPath() (string, error) {
	if p := a.v.GetString("db"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "fortuna", "fortuna.db"), nil
}

// open opens the store and wires the services. Callers must Close the session.
func (a *app) open(ctx context.Context) (*session, error) {
	path, err := a.dbPath()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", path).Msg("Opened ledger")

	transactionRepo := sqlite.NewTransactionRepository(store)
	budgetRepo := sqlite.NewBudgetRepository(store)
	publisher := &websocket.NoOpPublisher{}

	analytics := service.NewAnalyticsService(transactionRepo, budgetRepo, service.AnalyticsOptions{
		InvestmentCategory: a.v.GetString("analytics.investment_category"),
		TrendWindow:        a.v.GetInt("analytics.trend_window"),
		ShortWindow:        a.v.GetInt("analytics.short_window"),
		ForecastMonths:     a.v.GetInt("analytics.forecast_months"),
	})
	analytics.SetClock(a.now)

	return &session{
		store:        store,
		workspaceID:  a.v.GetInt32("workspace"),
		transactions: service.NewTransactionService(transactionRepo, publisher),
		budgets:      service.NewBudgetService(budgetRepo, publisher),
		analytics:    analytics,
	}, nil
}

// withSession opens a session for the duration of fn
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
