package commands

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitpay/internal/settlement"
	"github.com/mmynk/splitpay/internal/wallet"
)

func newReconcileCommand(flags *globalFlags) *cobra.Command {
	var (
		r      settlement.Reconciliation
		amount string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Record a confirmed transfer whose settlement record is missing",
		Long: `Records a transfer that was paid on-chain but could not be written to the
database (a record_failed leg). Pass --mark-settled only when it was the
last outstanding leg of the payer's batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			r.Amount, err = decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if r.FromUserID == "" || r.ToUserID == "" {
				return errors.New("--from and --to are required")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			// Nothing is submitted while reconciling.
			executor := settlement.NewExecutor(store, wallet.NewResolver(store), nil)
			record, settled, err := executor.ReconcileTransfer(cmd.Context(), r)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded settlement %s (%s, tx %s)\n",
				record.ID, record.Amount.StringFixed(2), record.TxHash)
			if r.MarkSettled {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d split(s) settled\n", settled)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&r.GroupID, "group", "", "group ID (required)")
	cmd.Flags().StringVar(&r.FromUserID, "from", "", "paying user ID")
	cmd.Flags().StringVar(&r.ToUserID, "to", "", "receiving user ID")
	cmd.Flags().StringVar(&amount, "amount", "", "transferred amount (required)")
	cmd.Flags().StringVar(&r.TxHash, "tx-hash", "", "confirmed transaction hash (required)")
	cmd.Flags().StringVar(&r.Memo, "memo", "", "memo sent with the transfer (default: the group's settlement memo)")
	cmd.Flags().BoolVar(&r.MarkSettled, "mark-settled", false, "also mark the payer's splits settled")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("tx-hash")

	return cmd
}
