package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/boristopalov/olearn/pkg/adversary"
	"github.com/boristopalov/olearn/pkg/adversary/oblivious"
	"github.com/boristopalov/olearn/pkg/config"
	"github.com/boristopalov/olearn/pkg/loss"
)

type options struct {
	configPath string
	dim        int
	lb         float64
	ub         float64
	seed       uint64
	rounds     int
	history    int
	verbose    bool
	point      []float64
}

type revealRecord struct {
	RunID        string    `json:"run_id"`
	Round        int       `json:"round"`
	Coefficients []float64 `json:"coefficients"`
}

type banditRecord struct {
	RunID string  `json:"run_id"`
	Round int     `json:"round"`
	Loss  float64 `json:"loss"`
}

func main() {
	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "olearn",
		Short:        "olearn reveals losses from seeded adversaries for online-learning experiments.",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML file with adversary settings")
	flags.IntVar(&opts.dim, "dim", 1, "dimension of the revealed losses")
	flags.Float64Var(&opts.lb, "lb", 0, "inclusive lower bound of the coefficients")
	flags.Float64Var(&opts.ub, "ub", 1, "exclusive upper bound of the coefficients")
	flags.Uint64Var(&opts.seed, "seed", oblivious.DefaultSeed, "seed of the generator")
	flags.IntVar(&opts.rounds, "rounds", 1, "number of rounds to reveal")
	flags.IntVar(&opts.history, "history", 0, "number of revealed losses kept for the summary")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	revealCmd := &cobra.Command{
		Use:   "reveal",
		Short: "Print the coefficients revealed in each round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReveal(cmd, opts, lookupEnv)
		},
	}

	banditCmd := &cobra.Command{
		Use:   "bandit",
		Short: "Print the bandit loss of a fixed point in each round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBandit(cmd, opts, lookupEnv)
		},
	}
	banditCmd.Flags().Float64SliceVar(&opts.point, "point", nil, "comma separated point to evaluate")
	if err := banditCmd.MarkFlagRequired("point"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(revealCmd, banditCmd)
	return rootCmd
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, opts *options, lookupEnv func(string) (string, bool)) (config.AdversaryConfig, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("dim") {
		cfg.Dim = opts.dim
	}
	if flags.Changed("lb") {
		cfg.LowerBound = opts.lb
	}
	if flags.Changed("ub") {
		cfg.UpperBound = opts.ub
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("rounds") {
		cfg.Rounds = opts.rounds
	}
	if flags.Changed("history") {
		cfg.History = opts.history
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func setup(cmd *cobra.Command, opts *options, lookupEnv func(string) (string, bool)) (config.AdversaryConfig, *adversary.Recorder[loss.LinearLoss], *slog.Logger, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := resolveConfig(cmd, opts, lookupEnv)
	if err != nil {
		return cfg, nil, logger, fmt.Errorf("failed to resolve config: %w", err)
	}
	lin, err := oblivious.FromConfig(cfg)
	if err != nil {
		return cfg, nil, logger, fmt.Errorf("failed to create adversary: %w", err)
	}
	logger.Debug("created linear adversary",
		"dim", cfg.Dim, "lb", cfg.LowerBound, "ub", cfg.UpperBound, "seed", cfg.Seed, "rounds", cfg.Rounds)
	return cfg, adversary.NewRecorder[loss.LinearLoss](lin, cfg.History), logger, nil
}

func runReveal(cmd *cobra.Command, opts *options, lookupEnv func(string) (string, bool)) error {
	cfg, rec, logger, err := setup(cmd, opts, lookupEnv)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	enc := json.NewEncoder(cmd.OutOrStdout())

	for round := 0; round < cfg.Rounds; round++ {
		l := rec.Reveal()
		if err := enc.Encode(revealRecord{RunID: runID, Round: round, Coefficients: l.Coefficients()}); err != nil {
			return fmt.Errorf("failed to write round %d: %w", round, err)
		}
	}
	logSummary(logger, runID, rec)
	return nil
}

func runBandit(cmd *cobra.Command, opts *options, lookupEnv func(string) (string, bool)) error {
	cfg, rec, logger, err := setup(cmd, opts, lookupEnv)
	if err != nil {
		return err
	}
	if len(opts.point) != cfg.Dim {
		return fmt.Errorf("point has %d entries, want %d: %w", len(opts.point), cfg.Dim, loss.ErrDimensionMismatch)
	}
	runID := uuid.NewString()
	enc := json.NewEncoder(cmd.OutOrStdout())
	bandit := adversary.NewBandit[[]float64, loss.LinearLoss](rec)

	for round := 0; round < cfg.Rounds; round++ {
		v := bandit.Evaluate(opts.point)
		if err := enc.Encode(banditRecord{RunID: runID, Round: round, Loss: v}); err != nil {
			return fmt.Errorf("failed to write round %d: %w", round, err)
		}
	}
	logSummary(logger, runID, rec)
	return nil
}

func logSummary(logger *slog.Logger, runID string, rec *adversary.Recorder[loss.LinearLoss]) {
	history := rec.History()
	logger.Debug("run finished", "run_id", runID, "rounds", rec.Rounds(), "retained", len(history))
	for i, l := range history {
		logger.Debug("retained loss", "index", i, "coefficients", l.Coefficients())
	}
}
