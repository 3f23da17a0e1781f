package main

import (
	"fmt"
	"time"

	"github.com/jonathan/tender-intel/internal/scoring"
	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <payload>",
	Short: "Rate every tender in a payload",
	Long: "Rate each tender on fit, industry, risk, revenue and company suitability, combine the ratings " +
		"into a composite score and priority, and print the breakdown as JSON or YAML.",
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreFormat     string
	scoreOutputFile string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "json", "Output format: json or yaml")
	scoreCmd.Flags().StringVarP(&scoreOutputFile, "out", "o", "", "Write output to a file instead of stdout")

	rootCmd.AddCommand(scoreCmd)
}

// ScoredTender is one entry of the score command's output.
type ScoredTender struct {
	Ref    string         `json:"ref,omitempty"`
	Title  string         `json:"title"`
	Report scoring.Report `json:"report"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cfg)
	defer cancel()

	p, err := loadPayload(ctx, args[0], cfg)
	if err != nil {
		return err
	}

	scored := scoreTenders(p.Tenders, time.Now().In(cfg.Schedule.Location()))
	data, err := encodeOutput(scored, scoreFormat)
	if err != nil {
		return err
	}

	if scoreOutputFile != "" {
		if err := writeFileAtomic(scoreOutputFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s (tenders=%d)\n", scoreOutputFile, len(scored))
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func scoreTenders(tenders []tender.Record, now time.Time) []ScoredTender {
	out := make([]ScoredTender, len(tenders))
	for i, rec := range tenders {
		out[i] = ScoredTender{Ref: rec.Ref, Title: rec.Title, Report: scoring.Score(rec, now)}
	}
	return out
}
