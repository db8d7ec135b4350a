package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitpay/internal/settlement"
)

func newBalancesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balances <group-id>",
		Short: "Print a group's balances and settlement plan from the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			group, err := store.GetGroup(ctx, args[0])
			if err != nil {
				return err
			}
			expenses, err := store.ListExpensesByGroup(ctx, group.ID)
			if err != nil {
				return err
			}
			balances := settlement.GroupBalances(expenses, group.Members)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%d members, %d expenses)\n\n", group.Name, len(group.Members), len(expenses))
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MEMBER\tBALANCE")
			for _, b := range balances {
				fmt.Fprintf(tw, "%s\t%s\n", b.UserName, b.Amount.StringFixed(2))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(w)

			return writePlan(w, settlement.BuildPlanResult(balances))
		},
	}
}
