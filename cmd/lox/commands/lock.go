package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/lox/internal/app"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock [environments...]",
		Short: "Resolve environments and update the lock file",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			overrides, _ := cmd.Flags().GetString("overrides")

			outcomes, err := c.app.Lock(cmd.Context(), app.LockOptions{
				Environments:  args,
				Force:         force,
				OverridesPath: overrides,
			})
			for _, outcome := range outcomes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", outcome.Status, outcome.Pair.String())
			}
			return err
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Re-solve every environment, ignoring lock freshness")
	cmd.Flags().String("overrides", "", "Path to a gzip-compressed JSON name override mapping")
	return cmd
}
