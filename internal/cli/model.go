package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"keyboardai/internal/locator"
)

func newModelCmd(st *state) *cobra.Command {
	model := &cobra.Command{Use: "model", Short: "Manage the shared model asset"}

	install := &cobra.Command{
		Use:   "install",
		Short: "Copy the bundled model into the shared store (no-op if present)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			m, err := a.InstallModel(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s (%s)\n", m.Path, locator.FileSize(m.Path))
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the model from the shared store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.ResetModel(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		},
	}

	locate := &cobra.Command{
		Use:   "locate",
		Short: "Print the path the engine would load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			m, err := a.Locator().Locate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Path)
			return nil
		},
	}

	info := &cobra.Command{
		Use:   "info",
		Short: "Show the installed model and engine status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd, a.Status())
		},
	}

	model.AddCommand(install, reset, locate, info)
	return model
}
