package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

func logsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Work with the activity-log API",
	}

	cmd.AddCommand(
		logsListCommand(app),
		logsShowCommand(app),
		logsDeleteCommand(app),
		logsImportCommand(app),
		logsStatsCommand(app),
	)

	return cmd
}

func logsListCommand(app func() *App) *cobra.Command {
	var (
		filter logapi.Filter
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity-log entries, from the cache when the API is down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				entries []activity.Entry
				err     error
			)
			if cached {
				entries, err = app().cache.List(cmd.Context(), filter)
			} else {
				entries, err = app().logs.List(cmd.Context(), filter)
			}
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tTIME\tACTION\tCOMPANY\tUSER\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, app().formatter.Absolute(e.Timestamp), e.Action, e.Company, e.Username, e.Details)
			}
			return tw.Flush()
		},
	}

	addFilterFlags(cmd, &filter)
	cmd.Flags().BoolVar(&cached, "cached", false, "read the local cache without calling the API")
	return cmd
}

func logsShowCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry from the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLogID(args[0])
			if err != nil {
				return err
			}

			e, err := app().api.GetLog(cmd.Context(), id)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(e)
		},
	}
}

func logsDeleteCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one entry from the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLogID(args[0])
			if err != nil {
				return err
			}

			if err := app().api.DeleteLog(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted log %d\n", id)
			return nil
		},
	}
}

func logsImportCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Queue a JSON array of entries for bulk import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := afero.ReadFile(app().opts.Fs, args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var entries []activity.Entry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}
			if len(entries) == 0 {
				return domain.ErrEmptyBatch
			}
			if len(entries) > domain.MaxBulkEntries {
				return fmt.Errorf("%w: %d > %d", domain.ErrBatchTooLarge, len(entries), domain.MaxBulkEntries)
			}

			res, err := app().api.BulkImport(cmd.Context(), entries)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d entries (batch %s)\n", res.Queued, res.BatchID)
			return nil
		},
	}
}

func logsStatsCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show activity-log statistics from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app().api.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total entries: %d\n", stats.Total)
			if stats.LastActivity != nil {
				fmt.Fprintf(out, "Last activity: %s\n", app().formatter.Relative(*stats.LastActivity))
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "\nACTION\tCOUNT")
			for _, action := range activity.CanonicalActions {
				fmt.Fprintf(tw, "%s\t%d\n", action, stats.ByAction[action])
			}
			if len(stats.TopCompanies) > 0 {
				fmt.Fprintln(tw, "\nCOMPANY\tCOUNT")
				for _, c := range stats.TopCompanies {
					fmt.Fprintf(tw, "%s\t%d\n", c.Company, c.Count)
				}
			}
			return tw.Flush()
		},
	}
}

func parseLogID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("log id must be a positive integer: %q", s)
	}
	return id, nil
}

func parseFlagTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be an RFC 3339 timestamp", name)
	}
	return ts, nil
}
