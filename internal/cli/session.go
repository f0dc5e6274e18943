package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/job-tracker/internal/client/store"
)

func loginCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app().session.Login(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
			return nil
		},
	}
}

func logoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app().session.Current()
			if errors.Is(err, store.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (since %s)\n", user.Username, app().formatter.Absolute(user.LoggedInAt))
			return nil
		},
	}
}

func themeCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the theme preference",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(store.ThemeLight), string(store.ThemeDark), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app().session

			var (
				theme store.Theme
				err   error
			)
			switch {
			case len(args) == 0:
				theme, err = s.Theme()
			case args[0] == "toggle":
				theme, err = s.ToggleTheme()
			default:
				theme = store.Theme(args[0])
				err = s.SetTheme(theme)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", theme)
			return nil
		},
	}
}
