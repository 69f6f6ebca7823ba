package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func (a *App) conflictsCmd() *cobra.Command {
	var copyText bool

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Show groups of clashing records",
		Long: `Show every group of records whose time ranges overlap within the
visible window. Records are grouped transitively: if A clashes with B and
B with C, all three form one group.`,
		Example: `  clashmap conflicts
  clashmap conflicts --copy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.buildBoard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			groups := b.Result.Groups
			if len(groups) == 0 {
				fmt.Fprintln(out, formatDone("No conflicts in the visible window."))
			}

			var text strings.Builder
			for i, g := range groups {
				block := formatGroup(i, g, b.Window.Location)
				text.WriteString(block)

				header, rest, _ := strings.Cut(block, "\n")
				fmt.Fprintln(out, formatConflict(header))
				fmt.Fprint(out, rest)
				fmt.Fprintln(out)
			}

			if len(groups) > 0 {
				fmt.Fprintf(out, "%s across %s\n",
					pluralize(len(groups), "conflict group"),
					pluralize(len(b.Result.Conflicting), "record"))
			}
			if n := len(b.Overdue); n > 0 {
				fmt.Fprintln(out, formatOverdue(fmt.Sprintf("%s overdue", pluralize(n, "record"))))
			}
			if n := b.Dropped(); n > 0 {
				fmt.Fprintln(out, formatMuted(fmt.Sprintf("%s skipped: missing or invalid date/time", pluralize(n, "record"))))
			}

			if copyText && text.Len() > 0 {
				if err := clipboard.WriteAll(text.String()); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(out, formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyText, "copy", "c", false, "Copy the conflict report to the clipboard")

	return cmd
}
