package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/observability"
	"github.com/jonathan/tender-intel/internal/payload"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <payload>",
	Short: "Generate summary.json from a tender payload",
	Long:  "Count tenders by company, priority and source, list the ten most suitable, and write the result atomically.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

var (
	summaryOutputFile string
	summaryBuildSHA   string
	summaryPrint      bool
)

func init() {
	summaryCmd.Flags().StringVarP(&summaryOutputFile, "out", "o", "", "Path to write summary.json (required)")
	summaryCmd.Flags().StringVar(&summaryBuildSHA, "sha", "", "Build SHA (default: GITHUB_SHA or VERCEL_GIT_COMMIT_SHA)")
	summaryCmd.Flags().BoolVar(&summaryPrint, "print", false, "Also print the summary as a text report")
	_ = summaryCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	sha := summaryBuildSHA
	if sha == "" {
		sha = buildSHAFromEnv()
	}

	s, err := writeSummary(summaryOutputFile, p, sha, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s (tenders=%d)\n", summaryOutputFile, p.Len())
	if summaryPrint {
		observability.NewPrinter(cmd.OutOrStdout()).PrintSummary(s)
	}
	return nil
}

// writeSummary builds the summary for p and writes it to path.
func writeSummary(path string, p *payload.Payload, sha string, now time.Time) (dashboard.Summary, error) {
	s := dashboard.BuildSummary(p.Tenders, p.Meta, sha, now)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return s, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return s, writeFileAtomic(path, buf.Bytes())
}

// buildSHAFromEnv returns the short commit SHA exported by CI, if any.
func buildSHAFromEnv() string {
	for _, key := range []string{"GITHUB_SHA", "VERCEL_GIT_COMMIT_SHA"} {
		if sha := os.Getenv(key); sha != "" {
			if len(sha) > 7 {
				sha = sha[:7]
			}
			return sha
		}
	}
	return ""
}
