package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/disclosurelab/esgscore/internal/model"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Score a single disclosure report",
	Long: `Extract text from one PDF or TXT report and print its quality scores.

Extraction and scoring errors are surfaced directly (nonzero exit); use the
panel command to process whole directories with per-file failure isolation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeFormat != "json" && analyzeFormat != "table" {
			return eris.Errorf("analyze: --format must be json or table (got %q)", analyzeFormat)
		}

		analyzer, err := newAnalyzer()
		if err != nil {
			return err
		}

		result, err := analyzer.AnalyzeFile(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "analyze %s", args[0])
		}

		if analyzeFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Map())
		}

		printResult(result)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(analyzeCmd)
}

func printResult(r *model.ScoreResult) {
	if r.Report.StockCode != "" {
		fmt.Printf("Stock:   %s\n", r.Report.StockCode)
		fmt.Printf("Year:    %d\n", r.Report.Year)
		fmt.Printf("Company: %s\n", r.Report.Company)
	} else {
		fmt.Printf("File:    %s\n", r.Report.Filename)
	}
	fmt.Println()
	for _, dim := range model.Dimensions() {
		fmt.Printf("  %-25s %.2f\n", string(dim), r.Dimensions[dim])
	}
	fmt.Printf("  %-25s %.2f / 3.00\n", "total_score", r.Total)

	if len(r.Matched) > 0 {
		fmt.Println("\nMatched patterns:")
		for _, dim := range model.Dimensions() {
			if hits := r.Matched[dim]; len(hits) > 0 {
				fmt.Printf("  %-25s %v\n", string(dim), hits)
			}
		}
	}
}
