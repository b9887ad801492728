package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"keyboardai/pkg/types"
)

func newSettingsCmd(st *state) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Read or change routing and remote settings"}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current settings as JSON (the API key is never printed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd, a.Settings())
		},
	}

	var (
		endpoint, apiKey           string
		preferLocal, allowFallback bool
	)
	set := &cobra.Command{
		Use:     "set",
		Short:   "Change settings; only the flags given are written",
		Example: "  keyboardai settings set --endpoint api.example.com --allow-fallback\n  keyboardai settings set --api-key \"\"   # clear the key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in types.Settings
			f := cmd.Flags()
			if f.Changed("endpoint") {
				in.Endpoint = &endpoint
			}
			if f.Changed("api-key") {
				in.APIKey = &apiKey
			}
			if f.Changed("prefer-local") {
				in.PreferLocal = &preferLocal
			}
			if f.Changed("allow-fallback") {
				in.AllowFallback = &allowFallback
			}
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := a.ApplySettings(in)
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	f := set.Flags()
	f.StringVar(&endpoint, "endpoint", "", "Remote endpoint; a missing scheme becomes https://, empty clears it")
	f.StringVar(&apiKey, "api-key", "", "Remote API key; empty clears it")
	f.BoolVar(&preferLocal, "prefer-local", true, "Prefer the on-device model")
	f.BoolVar(&allowFallback, "allow-fallback", false, "Fall back to the remote service when the local model fails")

	settings.AddCommand(get, set)
	return settings
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
