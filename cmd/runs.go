package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/store"
)

var (
	runsLimit int
	runsID    string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved panel runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "runs: migrate store")
		}

		if runsID != "" {
			return showRun(cmd, st)
		}

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}
		if len(runs) == 0 {
			fmt.Println("No runs found.")
			return nil
		}

		fmt.Printf("%-36s %-10s %9s %7s %-20s %s\n", "ID", "Status", "Scored", "Failed", "Started", "Directory")
		fmt.Println(strings.Repeat("-", 110))
		for _, r := range runs {
			fmt.Printf("%-36s %-10s %9d %7d %-20s %s\n",
				r.ID, r.Status, r.Succeeded, r.Failed,
				r.StartedAt.Format("2006-01-02 15:04:05"), r.Directory)
		}
		return nil
	},
}

func showRun(cmd *cobra.Command, st store.Store) error {
	ctx := cmd.Context()

	run, err := st.GetRun(ctx, runsID)
	if err != nil {
		return eris.Wrapf(err, "runs: get %s", runsID)
	}
	scores, err := st.ListScores(ctx, runsID)
	if err != nil {
		return eris.Wrapf(err, "runs: scores for %s", runsID)
	}

	fmt.Printf("Run:       %s\n", run.ID)
	fmt.Printf("Directory: %s\n", run.Directory)
	fmt.Printf("Status:    %s\n", run.Status)
	fmt.Printf("Scored:    %d\n", run.Succeeded)
	fmt.Printf("Failed:    %d\n", run.Failed)

	if len(scores) == 0 {
		return nil
	}
	fmt.Printf("\n%-8s %-6s %-30s", "Stock", "Year", "Company")
	for _, dim := range model.Dimensions() {
		fmt.Printf(" %22s", string(dim))
	}
	fmt.Printf(" %7s\n", "total")
	for _, s := range scores {
		name := truncateName(s.Report.Company, 30)
		fmt.Printf("%-8s %-6d %-30s", s.Report.StockCode, s.Report.Year, name)
		for _, dim := range model.Dimensions() {
			fmt.Printf(" %22.2f", s.Dimensions[dim])
		}
		fmt.Printf(" %7.2f\n", s.Total)
	}
	return nil
}

// truncateName shortens a display name to max runes. Byte slicing would cut
// multi-byte company names mid-rune.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "max runs to list")
	runsCmd.Flags().StringVar(&runsID, "id", "", "show one run with its scores")
	rootCmd.AddCommand(runsCmd)
}
