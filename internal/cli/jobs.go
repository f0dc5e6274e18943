package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/job-tracker/internal/client/store"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
)

func jobsCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job applications",
	}

	cmd.AddCommand(
		jobsListCommand(app),
		jobsShowCommand(app),
		jobsAddCommand(app),
		jobsEditCommand(app),
		jobsStageCommand(app),
		jobsDeleteCommand(app),
	)

	return cmd
}

// recordFlags binds the free-text fields of a Record
type recordFlags struct {
	company, position, recruiter, manager, notes, managerNotes string
}

func (f *recordFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.company, "company", "", "company name")
	flags.StringVar(&f.position, "position", "", "position title")
	flags.StringVar(&f.recruiter, "recruiter", "", "recruiter name")
	flags.StringVar(&f.manager, "hiring-manager", "", "hiring manager name")
	flags.StringVar(&f.notes, "notes", "", "notes")
	flags.StringVar(&f.managerNotes, "hiring-manager-notes", "", "notes about the hiring manager")
}

// apply copies the flags that were set on the command line into r
func (f *recordFlags) apply(cmd *cobra.Command, r *job.Record) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("company", &r.Company, f.company)
	set("position", &r.Position, f.position)
	set("recruiter", &r.RecruiterName, f.recruiter)
	set("hiring-manager", &r.HiringManager, f.manager)
	set("notes", &r.Notes, f.notes)
	set("hiring-manager-notes", &r.HiringManagerNotes, f.managerNotes)
}

func jobsListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List job applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app().jobs.List()
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No applications yet")
				return nil
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tCOMPANY\tPOSITION\tSTATUS\tADDED")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Company, r.Position, r.Pill(), app().formatter.Relative(r.CreatedAt))
			}
			return tw.Flush()
		},
	}
}

func jobsShowCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one application with every stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app().jobs.Get(args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func jobsAddCommand(app func() *App) *cobra.Command {
	var f recordFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a job application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r job.Record
			f.apply(cmd, &r)

			r, err := app().jobs.Add(cmd.Context(), r)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at %s (id %s)\n", displayPosition(r), r.Company, r.ID)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func jobsEditCommand(app func() *App) *cobra.Command {
	var f recordFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit the details of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app().jobs.Get(args[0])
			if err != nil {
				return err
			}
			f.apply(cmd, &r)

			r, err = app().jobs.Update(cmd.Context(), r)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s at %s\n", displayPosition(r), r.Company)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func jobsStageCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <id> <field> <value>",
		Short: "Move an application to a new stage",
		Long:  "Move an application to a new stage.\n\nFields: " + stageFieldKeys(),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := job.LookupStageField(args[1])
			if err != nil {
				return fmt.Errorf("%w (fields: %s)", err, stageFieldKeys())
			}

			change, err := app().jobs.UpdateStage(cmd.Context(), args[0], field, args[2])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !change.Changed() {
				fmt.Fprintf(out, "%s is already %s\n", field.Label, change.After.Stage(field))
				return nil
			}

			fmt.Fprintf(out, "%s: %s -> %s [%s]\n",
				field.Label, change.Before.Stage(field), change.After.Stage(field), change.After.Pill())
			if change.Celebrates() {
				printCelebration(out, change)
			}
			return nil
		},
	}
}

func jobsDeleteCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().jobs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted application %s\n", args[0])
			return nil
		},
	}
}

func printRecord(w io.Writer, r job.Record) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Company\t%s\n", r.Company)
	fmt.Fprintf(tw, "Position\t%s\n", r.Position)
	fmt.Fprintf(tw, "Status\t%s\n", r.Pill())
	fmt.Fprintf(tw, "Recruiter\t%s\n", r.RecruiterName)
	fmt.Fprintf(tw, "Hiring Manager\t%s\n", r.HiringManager)
	for _, f := range job.StageFields {
		fmt.Fprintf(tw, "%s\t%s\n", f.Label, r.Stage(f))
	}
	if r.Notes != "" {
		fmt.Fprintf(tw, "Notes\t%s\n", r.Notes)
	}
	if r.HiringManagerNotes != "" {
		fmt.Fprintf(tw, "Hiring Manager Notes\t%s\n", r.HiringManagerNotes)
	}
	tw.Flush()
}

func printCelebration(w io.Writer, change store.StageChange) {
	banner := strings.Repeat("*", 40)
	fmt.Fprintln(w, banner)
	if change.After.Decision == job.DecisionAccepted {
		fmt.Fprintf(w, "  Congratulations on accepting the offer from %s!\n", change.After.Company)
	} else {
		fmt.Fprintf(w, "  Congratulations! %s extended you an offer!\n", change.After.Company)
	}
	fmt.Fprintln(w, banner)
}

func displayPosition(r job.Record) string {
	if r.Position == "" {
		return "application"
	}
	return r.Position
}

func stageFieldKeys() string {
	keys := make([]string, len(job.StageFields))
	for i, f := range job.StageFields {
		keys[i] = f.Key
	}
	return strings.Join(keys, ", ")
}
