package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bizobs/journeyload/internal/config"
	"github.com/bizobs/journeyload/internal/engine"
	"github.com/bizobs/journeyload/internal/journey"
	"github.com/bizobs/journeyload/internal/output"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a journey load test",
	Long: `Run a load test from a journey definition file.

Config file mode:
  journeyload run --journey argos.yaml --config loadtest.yaml

Quick CLI mode:
  journeyload run --journey argos.yaml \
    --url http://localhost:8080 \
    --workers 10 \
    --iterations 50`,
	RunE: runLoadTest,
}

func init() {
	runCmd.Flags().StringP("journey", "j", "", "journey definition file (required)")
	runCmd.Flags().StringP("config", "c", "", "run configuration file")
	runCmd.Flags().String("url", "", "target base URL")
	runCmd.Flags().IntP("workers", "w", 0, "number of concurrent virtual users")
	runCmd.Flags().IntP("iterations", "i", 0, "iterations per virtual user")
	runCmd.Flags().String("run-label", "", "override the run label (LTN tag)")
	runCmd.Flags().Int64("seed", 0, "profile assignment seed (0 = time-based)")
	runCmd.Flags().Float64("pacing", 0, "per-worker iteration rate cap (iterations/sec)")
	runCmd.Flags().BoolP("verbose", "v", false, "verbose (development) logging")
	runCmd.Flags().Bool("no-color", false, "disable colored output")
	runCmd.Flags().String("report", "", "write an HTML report to this path")
	runCmd.MarkFlagRequired("journey")
}

func runLoadTest(cmd *cobra.Command, args []string) error {
	journeyFile, _ := cmd.Flags().GetString("journey")
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg, err := loadRunConfig(cmd, configFile)
	if err != nil {
		return err
	}

	def, err := journey.Load(journeyFile)
	if err != nil {
		return err
	}

	log, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	runner, err := engine.NewRunner(cfg, def, log)
	if err != nil {
		return err
	}

	// Ctrl-C aborts in-flight requests and discards incomplete iterations.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	console := output.NewConsole(os.Stdout, noColor)
	console.PrintSummary(runner.RunLabel(), summary)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		report := output.RunReport{
			TestName:    runner.RunLabel(),
			CompanyName: def.CompanyName,
			Domain:      def.Domain,
			RunID:       cfg.RunID,
			GeneratedAt: time.Now(),
			Summary:     summary,
		}
		if err := output.WriteHTMLReport(report, reportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", reportPath)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d journeys failed", summary.Failed, summary.Journeys)
	}
	return nil
}

// loadRunConfig builds the run configuration from the optional config file
// with CLI flags taking precedence.
func loadRunConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	} else {
		cfg = config.Default()
	}

	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.BaseURL = url
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	if iterations, _ := cmd.Flags().GetInt("iterations"); iterations > 0 {
		cfg.Iterations = iterations
	}
	if label, _ := cmd.Flags().GetString("run-label"); label != "" {
		cfg.RunLabel = label
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		cfg.Seed = seed
	}
	if pacing, _ := cmd.Flags().GetFloat64("pacing"); pacing > 0 {
		cfg.PacingRPS = pacing
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
