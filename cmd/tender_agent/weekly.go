package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jonathan/tender-intel/internal/config"
	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/notify"
	"github.com/jonathan/tender-intel/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly <payload>",
	Short: "Build the weekly tender report",
	Long: "Summarise the past week of a tender payload: totals, tenders added, company, priority and status " +
		"breakdowns, tenders closing within seven days, open HIGH priority tenders and the leading industries. " +
		"With --email the text report is sent through Amazon SES to the notify recipients.",
	Args: cobra.ExactArgs(1),
	RunE: runWeekly,
}

var (
	weeklyFormat     string
	weeklyOutputFile string
	weeklyEmail      bool
)

// newSESClient is replaced in tests.
var newSESClient = func(ctx context.Context, region string) (notify.SESService, error) {
	return notify.NewSES(ctx, region)
}

func init() {
	weeklyCmd.Flags().StringVarP(&weeklyFormat, "format", "f", "text", "Output format: json, yaml or text")
	weeklyCmd.Flags().StringVarP(&weeklyOutputFile, "out", "o", "", "Write output to a file instead of stdout")
	weeklyCmd.Flags().BoolVar(&weeklyEmail, "email", false, "Email the text report to notify.to (requires notify.enabled)")

	rootCmd.AddCommand(weeklyCmd)
}

func runWeekly(cmd *cobra.Command, args []string) error {
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

	now := time.Now().In(cfg.Schedule.Location())
	w := dashboard.BuildWeekly(p.Tenders, now)

	var data []byte
	if weeklyFormat == "text" {
		data = weeklyText(w)
	} else {
		data, err = encodeOutput(w, weeklyFormat)
	}
	if err != nil {
		return err
	}

	if weeklyOutputFile != "" {
		if err := writeFileAtomic(weeklyOutputFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s (tenders=%d)\n", weeklyOutputFile, w.Total)
	} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if !weeklyEmail {
		return nil
	}
	id, err := emailWeekly(ctx, cfg, w, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: emailed weekly report to %d recipients (message %s)\n", len(cfg.Notify.To), id)
	return nil
}

func weeklyText(w dashboard.Weekly) []byte {
	var buf bytes.Buffer
	observability.NewPrinter(&buf).PrintWeekly(w)
	return buf.Bytes()
}

// emailWeekly sends the text report through SES and returns the message id.
func emailWeekly(ctx context.Context, cfg *config.Config, w dashboard.Weekly, now time.Time) (string, error) {
	if !cfg.Notify.Enabled {
		return "", fmt.Errorf("--email needs notify.enabled (or TENDER_NOTIFY_ENABLED=true)")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return "", err
	}
	defer func() { _ = log.Sync() }()

	client, err := newSESClient(ctx, cfg.Notify.Region)
	if err != nil {
		return "", err
	}

	subject := fmt.Sprintf("%s - %s", cfg.Notify.Subject, now.Format("2006-01-02"))
	mailer := notify.NewMailer(client, cfg.Notify.From, cfg.Notify.To, log.With(zap.String("component", "weekly")))
	return mailer.Send(ctx, subject, string(weeklyText(w)))
}
