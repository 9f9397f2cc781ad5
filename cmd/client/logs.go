package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aerogate/internal/accesslog"
	"aerogate/internal/tui"
)

var (
	logsStatus string
	logsSearch string
	logsLimit  int
	logsOutput string
	watchEvery time.Duration
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List the access log",
	Long: `List access-log rows, newest first.

Examples:
  aerogate logs
  aerogate logs --status denied
  aerogate logs --search LNG-04 --output yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := accesslog.ParseStatusFilter(logsStatus)
		if err != nil {
			return err
		}
		filter := accesslog.Filter{Status: status, Query: logsSearch}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		entries, err := api.Logs(ctx, filter, logsLimit)
		if err != nil {
			return err
		}
		return writeEntries(cmd.OutOrStdout(), logsOutput, entries)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the access log live",
	Long: `watch polls the access log and redraws it.

Keys: tab cycles all/granted/denied, / searches by name, id or terminal,
r refreshes, q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fetch := func(ctx context.Context) ([]accesslog.Entry, error) {
			return api.Logs(ctx, accesslog.Filter{}, 0)
		}
		m := tui.NewWatchModel(api.Base(), fetch, watchEvery)
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func writeEntries(w io.Writer, format string, entries []accesslog.Entry) error {
	switch format {
	case "table", "":
		fmt.Fprintln(w, tui.LogTable(entries))
		fmt.Fprintln(w, tui.SummaryLine(accesslog.Counts(entries)))
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

func init() {
	f := logsCmd.Flags()
	f.StringVar(&logsStatus, "status", "all", "filter by outcome: all, granted or denied")
	f.StringVarP(&logsSearch, "search", "q", "", "match name, id or terminal")
	f.IntVarP(&logsLimit, "limit", "n", 0, "newest rows to fetch (0 for all)")
	f.StringVarP(&logsOutput, "output", "o", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(logsCmd)

	watchCmd.Flags().DurationVar(&watchEvery, "every", tui.DefaultRefresh, "refresh interval")
	rootCmd.AddCommand(watchCmd)
}
