package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"keyboardai/internal/prefs"
	"keyboardai/internal/prompt"
	"keyboardai/internal/router"
)

func newTransformCmd(st *state) *cobra.Command {
	var (
		mode, style string
		key         prefs.StickyKey
		asContext   bool
		saveReply   bool
	)
	cmd := &cobra.Command{
		Use:   "transform <text...|->",
		Short: "Enhance text or draft a reply",
		Long: "Enhance text or draft a reply. Pass - to read the text from stdin.\n" +
			"Without --mode/--style the choice remembered for the field (--return-key, --keyboard-type, --autocap) is used;\n" +
			"passing either flag remembers the new choice for that field.",
		Example: "  keyboardai transform --mode reply --style friendly \"hey are we still on for lunch\"\n" +
			"  pbpaste | keyboardai transform --return-key send --context -",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}

			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			settings := a.Prefs()

			pref := settings.Sticky(key)
			changed := false
			if cmd.Flags().Changed("mode") {
				if pref.Mode, err = prompt.ParseMode(mode); err != nil {
					return err
				}
				changed = true
			}
			if cmd.Flags().Changed("style") {
				if pref.Style, err = prompt.ParseStyle(style); err != nil {
					return err
				}
				changed = true
			}
			if changed {
				if err := settings.SaveSticky(key, pref); err != nil {
					st.log.Warn().Err(err).Msg("remember mode/style")
				}
			}
			if asContext && pref.Mode == prompt.ModeReply {
				text = prompt.ReplySource(text)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("nothing to transform")
			}

			out, err := a.Transform(cmd.Context(), text, pref.Mode, pref.Style)
			if err != nil {
				if router.IsLocalModelUnavailable(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), router.InstallHint)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if saveReply && pref.Mode == prompt.ModeReply {
				if err := settings.SetLastReply(out); err != nil {
					st.log.Warn().Err(err).Msg("save reply")
				}
			}
			if settings.HintUsesRemaining() > 0 {
				if _, err := settings.DecrementHint(); err == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Tip: use --return-key to let keyboardai remember your mode and style per field.")
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&mode, "mode", "", "enhance|reply")
	f.StringVar(&style, "style", "", "formal|friendly|lovely|concise|technical")
	f.StringVar(&key.ReturnKey, "return-key", "default", "Return key of the target field (send and done default to reply)")
	f.StringVar(&key.KeyboardType, "keyboard-type", "default", "Keyboard type of the target field")
	f.StringVar(&key.AutoCap, "autocap", "sentences", "Autocapitalization of the target field")
	f.BoolVar(&asContext, "context", false, "Treat input as conversation context: keep the last 20 lines, drop quotes and signatures")
	f.BoolVar(&saveReply, "save-reply", false, "Store a generated reply so `reply last` can insert it later")
	return cmd
}

func newReplyCmd(st *state) *cobra.Command {
	reply := &cobra.Command{Use: "reply", Short: "Replies handed over between surfaces"}
	var keep bool
	last := &cobra.Command{
		Use:   "last",
		Short: "Print the saved reply and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			r := a.Prefs().LastReply()
			if r == "" {
				return fmt.Errorf("no saved reply")
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			if keep {
				return nil
			}
			return a.Prefs().ClearLastReply()
		},
	}
	last.Flags().BoolVar(&keep, "keep", false, "Do not clear the saved reply")
	reply.AddCommand(last)
	return reply
}
