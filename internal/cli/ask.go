package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/job-tracker/internal/tracker/query"
)

func askCommand(app func() *App) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Summarize a company or your whole search",
		Long: "Summarize a company or your whole search. Mention a tracked company\n" +
			"by name, or ask for a summary of all applications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(out, "Try asking:")
				for _, s := range query.Suggestions {
					fmt.Fprintf(out, "  - %s\n", s)
				}
				return nil
			}

			if app().opts.Delay > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Thinking...")
			}

			doc, err := app().assistant.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if markdown {
				fmt.Fprintln(out, doc.Markdown())
			} else {
				fmt.Fprintln(out, doc.Text())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the answer as markdown")
	return cmd
}
