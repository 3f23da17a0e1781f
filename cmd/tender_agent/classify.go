package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/tender-intel/internal/dashboard"
	"github.com/jonathan/tender-intel/internal/observability"
	"github.com/jonathan/tender-intel/internal/tender"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <payload>",
	Short: "Classify a tender payload and print dashboard rows",
	Long: "Classify every open tender in a payload file or URL (\"-\" reads stdin), recommend a bid decision " +
		"and print the ordered rows as JSON, YAML or a text report.",
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

var (
	classifyFormat     string
	classifyFilter     string
	classifyHideOut    bool
	classifyScore      bool
	classifyOutputFile string
)

func init() {
	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "json", "Output format: json, yaml or text")
	classifyCmd.Flags().StringVar(&classifyFilter, "filter", "all", "Row filter: all, TES, Phakathi, Both, HIGH, MEDIUM, LOW")
	classifyCmd.Flags().BoolVar(&classifyHideOut, "hide-out-of-scope", false, "Drop tenders classified as out of scope (default from dashboard.hide_out_of_scope)")
	classifyCmd.Flags().BoolVar(&classifyScore, "score-missing", false, "Rate tenders that carry no scores before classifying (default from dashboard.score_missing)")
	classifyCmd.Flags().StringVarP(&classifyOutputFile, "out", "o", "", "Write output to a file instead of stdout")

	rootCmd.AddCommand(classifyCmd)
}

// ClassifyOutput is what the classify command prints.
type ClassifyOutput struct {
	Filter dashboard.Filter `json:"filter"`
	KPIs   dashboard.KPIs   `json:"kpis"`
	Rows   []dashboard.Row  `json:"rows"`
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	filter, err := dashboard.ParseFilter(classifyFilter)
	if err != nil {
		return err
	}

	hideOut := cfg.Dashboard.HideOutOfScope
	if cmd.Flags().Changed("hide-out-of-scope") {
		hideOut = classifyHideOut
	}
	scoreMissing := cfg.Dashboard.ScoreMissing
	if cmd.Flags().Changed("score-missing") {
		scoreMissing = classifyScore
	}

	out, err := classifyRows(ctx, p.Tenders, dashboard.RowOptions{
		Filter:         filter,
		HideOutOfScope: hideOut,
		ScoreMissing:   scoreMissing,
		Now:            time.Now().In(cfg.Schedule.Location()),
		Concurrency:    cfg.Dashboard.Concurrency,
	})
	if err != nil {
		return err
	}

	var data []byte
	if classifyFormat == "text" {
		data = renderText(out)
	} else {
		data, err = encodeOutput(out, classifyFormat)
	}
	if err != nil {
		return err
	}

	if classifyOutputFile != "" {
		if err := writeFileAtomic(classifyOutputFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s (rows=%d)\n", classifyOutputFile, len(out.Rows))
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func classifyRows(ctx context.Context, tenders []tender.Record, opts dashboard.RowOptions) (*ClassifyOutput, error) {
	rows, err := dashboard.BuildRows(ctx, tenders, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to classify tenders: %w", err)
	}
	return &ClassifyOutput{Filter: opts.Filter, KPIs: dashboard.ComputeKPIs(rows), Rows: rows}, nil
}

// renderText prints the KPI box followed by every row.
func renderText(out *ClassifyOutput) []byte {
	var buf bytes.Buffer
	p := observability.NewPrinter(&buf)
	p.PrintKPIs(out.Filter, out.KPIs)
	p.PrintRows(out.Rows, len(out.Rows))
	return buf.Bytes()
}

// encodeOutput renders v as indented JSON or as YAML with the same keys.
func encodeOutput(v any, format string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	switch format {
	case "json", "":
		return buf.Bytes(), nil
	case "yaml", "yml":
		return jsonToYAML(buf.Bytes())
	default:
		return nil, fmt.Errorf("unknown output format %q (want json, yaml or text)", format)
	}
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key order.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read JSON as YAML: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles JSON input carries. Scalars
// keep their tags, so strings that look like other types stay quoted.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
