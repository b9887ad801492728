package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd(st *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the shared store, model and native backend without loading the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			checks := a.Doctor()
			if asJSON {
				return printJSON(cmd, checks)
			}
			for _, c := range checks {
				mark := "[ok]"
				if !c.OK {
					mark = "[!!]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-18s %s\n", mark, c.Name, c.Detail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
