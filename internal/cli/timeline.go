package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/timeline"
)

func timelineCommand(app func() *App) *cobra.Command {
	var (
		filter logapi.Filter
		since  string
		until  string
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the activity timeline, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if filter.From, err = parseFlagTime("since", since); err != nil {
				return err
			}
			if filter.To, err = parseFlagTime("until", until); err != nil {
				return err
			}

			entries, err := app().logs.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			printTimeline(cmd.OutOrStdout(), app().formatter.Build(entries))
			return nil
		},
	}

	addFilterFlags(cmd, &filter)
	cmd.Flags().StringVar(&since, "since", "", "only entries at or after this RFC 3339 time")
	cmd.Flags().StringVar(&until, "until", "", "only entries at or before this RFC 3339 time")
	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *logapi.Filter) {
	flags := cmd.Flags()
	flags.StringVar(&f.Action, "action", "", "filter by action")
	flags.StringVar(&f.Company, "company", "", "filter by company (case-insensitive)")
	flags.StringVar(&f.Username, "username", "", "filter by user")
	flags.StringVar(&f.JobID, "job-id", "", "filter by job id")
	flags.IntVar(&f.Limit, "limit", 0, "maximum number of entries (0 for all)")
}

func printTimeline(w io.Writer, t timeline.Timeline) {
	if len(t.Items) == 0 {
		fmt.Fprintln(w, "No activity yet")
		return
	}

	tw := newTable(w)
	for _, item := range t.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.When, item.Label, subject(item.Entry), item.Entry.Details)
		if len(item.Chips) > 0 {
			chips := make([]string, len(item.Chips))
			for i, c := range item.Chips {
				chips[i] = c.Key + "=" + c.Value
			}
			fmt.Fprintf(tw, "\t\t\t[%s]\n", strings.Join(chips, " "))
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d entries: %d created, %d updated, %d status updates, %d deleted\n",
		len(t.Items), t.Counts.Of(activity.ActionCreated), t.Counts.Of(activity.ActionUpdated),
		t.Counts.Of(activity.ActionStatusUpdate), t.Counts.Of(activity.ActionDeleted))
}

func subject(e activity.Entry) string {
	switch {
	case e.Company != "" && e.JobTitle != "":
		return e.JobTitle + " @ " + e.Company
	case e.Company != "":
		return e.Company
	}
	return e.JobTitle
}
