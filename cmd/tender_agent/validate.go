package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jonathan/tender-intel/internal/config"
	"github.com/jonathan/tender-intel/internal/payload"
	"github.com/jonathan/tender-intel/internal/schemas"
	schemafiles "github.com/jonathan/tender-intel/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <payload>",
	Short: "Validate a tender payload and optionally a summary file",
	Long: "Check that a tenders payload (file, URL or \"-\" for stdin) has the shape the dashboard expects, " +
		"and optionally that a generated summary.json does too.",
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateSummaryPath string

func init() {
	validateCmd.Flags().StringVar(&validateSummaryPath, "summary", "", "Optional path to summary.json to validate as well")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cfg)
	defer cancel()

	return validateFiles(ctx, cmd.OutOrStdout(), args[0], validateSummaryPath, cfg)
}

// validateFiles validates the payload at src and, when set, the summary file,
// then prints one OK line.
func validateFiles(ctx context.Context, w io.Writer, src, summaryPath string, cfg *config.Config) error {
	p, err := loadPayload(ctx, src, cfg)
	if err != nil {
		return err
	}

	line := fmt.Sprintf("OK: %s parsed; tenders=%d; has_meta=%t", src, p.Len(), hasMeta(p.Meta))

	if summaryPath != "" {
		data, err := readInput(ctx, summaryPath, cfg)
		if err != nil {
			return err
		}
		if err := schemas.ValidateDocument(schemafiles.Summary, data); err != nil {
			return fmt.Errorf("invalid summary %s: %w", summaryPath, err)
		}
		line += "; summary=" + summaryPath
	}

	_, err = fmt.Fprintln(w, line)
	return err
}

func hasMeta(m payload.Meta) bool {
	return m.LastSync != "" || m.NextRun != "" || m.BuildID != "" || m.BuildSHA != "" ||
		m.GeneratedAt != "" || len(m.ScraperHealth) > 0
}
