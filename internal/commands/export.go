package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitpay/internal/export"
)

func newExportCommand(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <group-id>",
		Short: "Write a group's expenses, settlements and balances to an .xlsx file",
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

			ledger, err := export.Load(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("splitpay-%s.xlsx", ledger.Group.ID)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			if err := export.Write(f, ledger); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default splitpay-<group-id>.xlsx)")

	return cmd
}
