package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/disclosurelab/esgscore/internal/config"
	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/panel"
	"github.com/disclosurelab/esgscore/internal/store"
)

var panelCmd = &cobra.Command{
	Use:   "panel <dir>",
	Short: "Score a directory of disclosure reports into panel data",
	Long: `Process every {stock-code}-{year}-{company-name}.{pdf|txt} file in a
directory, one file at a time. Each report is extracted, scored, and appended
to the success set; files that fail are recorded with their error and never
abort the batch.

Outputs a success CSV (or XLSX), a failures CSV, and a processing log.

Examples:
  # Score all reports in ./reports
  panel ./reports --out panel.csv --failures-out failed.csv

  # Restrict to the 2015-2023 window and persist the run
  panel ./reports --min-year 2015 --max-year 2023 --save

  # Excel output for the research team
  panel ./reports --format xlsx --out panel.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runPanel,
}

func init() {
	f := panelCmd.Flags()
	f.String("out", "panel.csv", "success output path")
	f.String("failures-out", "failures.csv", "failures output path")
	f.String("format", "csv", "success output format: csv or xlsx")
	f.Int("min-year", 0, "minimum report year (0 = no bound, overrides config)")
	f.Int("max-year", 0, "maximum report year (0 = no bound, overrides config)")
	f.Int("limit", 0, "max number of files to process (0 = all)")
	f.Bool("save", false, "persist run and scores to the store")
	f.String("log", "", "processing log path (default esg_analysis_<timestamp>.log)")

	rootCmd.AddCommand(panelCmd)
}

func runPanel(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := args[0]
	outPath, _ := cmd.Flags().GetString("out")
	failuresPath, _ := cmd.Flags().GetString("failures-out")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	if format != "csv" && format != "xlsx" {
		return eris.Errorf("panel: --format must be csv or xlsx (got %q)", format)
	}

	// A batch run always leaves a processing log on disk. Reuse the sink from
	// config when one is set and no explicit --log overrides it.
	logPath, _ := cmd.Flags().GetString("log")
	if logPath != "" || cfg.Log.File == "" {
		lc := cfg.Log
		lc.File = logPath
		if lc.File == "" {
			lc.File = defaultPanelLogPath(time.Now())
		}
		if err := config.InitLogger(lc); err != nil {
			return eris.Wrap(err, "panel: init processing log")
		}
		zap.L().Info("processing log opened", zap.String("file", lc.File))
	}

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}

	opts := applyPanelOverrides(cmd, panel.Options{
		MinYear: cfg.Panel.MinYear,
		MaxYear: cfg.Panel.MaxYear,
		Limit:   cfg.Panel.Limit,
	})

	var (
		st  store.Store
		run *model.PanelRun
	)
	if save {
		st, err = store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "panel: open store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "panel: migrate store")
		}
		run, err = st.CreateRun(ctx, dir)
		if err != nil {
			return eris.Wrap(err, "panel: create run")
		}
	}

	runner := panel.NewRunner(analyzer, opts)
	outcome, err := runner.Run(ctx, dir)
	if err != nil {
		if st != nil && run != nil {
			if cErr := st.CompleteRun(ctx, run.ID, model.RunStatusFailed, 0, 0); cErr != nil {
				zap.L().Warn("failed to mark run failed", zap.Error(cErr))
			}
		}
		return eris.Wrap(err, "panel: run")
	}

	if err := writePanelOutputs(outcome, format, outPath, failuresPath); err != nil {
		return err
	}

	if st != nil && run != nil {
		if err := st.SaveScores(ctx, run.ID, outcome.Results); err != nil {
			return eris.Wrap(err, "panel: save scores")
		}
		if err := st.CompleteRun(ctx, run.ID, model.RunStatusComplete, len(outcome.Results), len(outcome.Failures)); err != nil {
			return eris.Wrap(err, "panel: complete run")
		}
		fmt.Printf("Run %s saved (%d scores)\n", run.ID, len(outcome.Results))
	}

	printPanelSummary(outcome)
	return nil
}

// defaultPanelLogPath names the processing log after the run start time.
func defaultPanelLogPath(now time.Time) string {
	return fmt.Sprintf("esg_analysis_%s.log", now.Format("20060102_150405"))
}

// applyPanelOverrides returns the base options with CLI flag overrides applied.
func applyPanelOverrides(cmd *cobra.Command, base panel.Options) panel.Options {
	o := base
	if v, _ := cmd.Flags().GetInt("min-year"); v > 0 {
		o.MinYear = v
	}
	if v, _ := cmd.Flags().GetInt("max-year"); v > 0 {
		o.MaxYear = v
	}
	if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
		o.Limit = v
	}
	return o
}

func writePanelOutputs(outcome *model.BatchOutcome, format, outPath, failuresPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return eris.Wrapf(err, "panel: create output file %s", outPath)
	}
	defer out.Close() //nolint:errcheck

	switch format {
	case "xlsx":
		err = panel.WriteResultsXLSX(out, outcome.Results)
	default:
		err = panel.WriteResultsCSV(out, outcome.Results)
	}
	if err != nil {
		return err
	}

	failures, err := os.Create(failuresPath)
	if err != nil {
		return eris.Wrapf(err, "panel: create failures file %s", failuresPath)
	}
	defer failures.Close() //nolint:errcheck

	return panel.WriteFailuresCSV(failures, outcome.Failures)
}

func printPanelSummary(outcome *model.BatchOutcome) {
	total := len(outcome.Results) + len(outcome.Failures)
	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Files processed: %d\n", total)
	fmt.Printf("Scored:          %d\n", len(outcome.Results))
	fmt.Printf("Failed:          %d\n", len(outcome.Failures))

	if len(outcome.Results) == 0 {
		return
	}
	var sum, max float64
	min := 4.0
	for _, r := range outcome.Results {
		sum += r.Total
		if r.Total > max {
			max = r.Total
		}
		if r.Total < min {
			min = r.Total
		}
	}
	fmt.Printf("Score range:     %.2f - %.2f\n", min, max)
	fmt.Printf("Average score:   %.2f\n", sum/float64(len(outcome.Results)))
}
