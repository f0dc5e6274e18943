package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the tracker command tree around opts
func NewRootCommand(opts *Options) *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:           "tracker",
		Short:         "Track job applications and their activity log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := NewApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			app = a
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.APIURL, "api-url", opts.APIURL, "activity-log API base URL (TRACKER_API_URL)")
	flags.StringVar(&opts.StateDir, "state-dir", opts.StateDir, "directory for local state (TRACKER_STATE_DIR)")
	flags.DurationVar(&opts.Delay, "delay", opts.Delay, "simulated processing delay for ask (TRACKER_DELAY)")
	flags.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "overall timeout per API call (TRACKER_TIMEOUT)")
	flags.IntVar(&opts.Retries, "retries", opts.Retries, "retries per API call (TRACKER_RETRIES)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "log debug output to stderr")

	current := func() *App { return app }

	root.AddCommand(
		loginCommand(current),
		logoutCommand(current),
		whoamiCommand(current),
		themeCommand(current),
		jobsCommand(current),
		askCommand(current),
		timelineCommand(current),
		logsCommand(current),
		healthCommand(current),
	)

	return root
}
