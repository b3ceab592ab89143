package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"automata-hq/triton/pkg/audit"
	auditstorage "automata-hq/triton/pkg/audit/storage"
	"automata-hq/triton/pkg/cli"
	"automata-hq/triton/pkg/config"
)

var historyFlags struct {
	ruleID string
	status string
	since  string
	limit  int
	output string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the execution history",
	Long: `Query recorded rule executions from the audit database.

Records are returned newest first and can be filtered by rule, outcome, and
age.

Examples:
  # Last 20 executions
  triton history --limit 20

  # Failures of one rule in the past day
  triton history --rule rule-factura --status failure --since 24h

  # Everything since a point in time, as JSON
  triton history --since 2026-08-01T00:00:00Z --output json`,
	RunE: queryHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.ruleID, "rule", "", "filter by rule ID")
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by status: success, failure")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only records newer than this (duration like 24h, or RFC3339 timestamp)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "maximum records to return (0 for all)")
	historyCmd.Flags().StringVarP(&historyFlags.output, "output", "o", "text", "output format: text, json")
}

func queryHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}
	if cfg.Audit.Backend != "sqlite" {
		return cli.NewConfigError(cfgFile, "history requires the sqlite audit backend")
	}

	query, err := buildQuery()
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	storage, err := auditstorage.NewSQLiteStorage(auditstorage.DefaultSQLiteConfig(cfg.Audit.Path))
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer storage.Close()

	records, err := storage.List(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	formatter := cli.NewFormatter(cli.OutputFormat(historyFlags.output))
	if historyFlags.output == string(cli.FormatJSON) {
		return formatter.FormatTo(os.Stdout, records)
	}
	return formatter.FormatTo(os.Stdout, renderRecords(records))
}

// buildQuery translates the command flags into a storage query.
func buildQuery() (*audit.Query, error) {
	query := &audit.Query{
		RuleID: historyFlags.ruleID,
		Limit:  historyFlags.limit,
	}

	switch historyFlags.status {
	case "":
	case string(audit.StatusSuccess), string(audit.StatusFailure):
		query.Status = audit.Status(historyFlags.status)
	default:
		return nil, fmt.Errorf("invalid status %q: want success or failure", historyFlags.status)
	}

	if historyFlags.since != "" {
		if d, err := time.ParseDuration(historyFlags.since); err == nil {
			query.Since = time.Now().Add(-d)
		} else if t, err := time.Parse(time.RFC3339, historyFlags.since); err == nil {
			query.Since = t
		} else {
			return nil, fmt.Errorf("invalid --since %q: want a duration like 24h or an RFC3339 timestamp", historyFlags.since)
		}
	}

	return query, nil
}

// renderRecords formats execution records as one line per record.
func renderRecords(records []*audit.ExecutionRecord) string {
	if len(records) == 0 {
		return "no execution records found"
	}

	var b strings.Builder
	for _, r := range records {
		detail := r.ResultSummary
		if r.Status == audit.StatusFailure {
			detail = r.ErrorMessage
		}
		fmt.Fprintf(&b, "%s  %-7s  %-20s  %4dms  %s\n",
			r.ExecutedAt.Format(time.RFC3339),
			r.Status,
			r.RuleID,
			r.DurationMs,
			detail,
		)
	}
	fmt.Fprintf(&b, "\n%d record(s)", len(records))
	return b.String()
}
