package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitpay/internal/calculator"
	"github.com/mmynk/splitpay/internal/settlement"
)

// balanceEntry is one row of a balances file.
type balanceEntry struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Amount   decimal.Decimal `json:"amount"`
}

func newPlanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan <balances.json>",
		Short: "Compute a settlement plan from a balances file",
		Long: `Reads a JSON array of {"user_id", "user_name", "amount"} objects, where a
positive amount is owed to the user and a negative amount is owed by them,
and prints the simplified transfers. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balances, err := readBalances(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			result := settlement.BuildPlanResult(balances)
			if asJSON {
				return writePlanJSON(cmd.OutOrStdout(), result)
			}
			return writePlan(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")

	return cmd
}

func readBalances(stdin io.Reader, path string) ([]calculator.BalanceInput, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening balances: %w", err)
		}
		defer f.Close()
		r = f
	}

	var entries []balanceEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding balances: %w", err)
	}

	balances := make([]calculator.BalanceInput, 0, len(entries))
	for i, e := range entries {
		if e.UserID == "" {
			return nil, fmt.Errorf("balance %d: user_id is required", i)
		}
		name := e.UserName
		if name == "" {
			name = e.UserID
		}
		balances = append(balances, calculator.BalanceInput{UserID: e.UserID, UserName: name, Amount: e.Amount})
	}
	return balances, nil
}

func writePlan(w io.Writer, result settlement.PlanResult) error {
	fmt.Fprintf(w, "Status: %s\n", result.Status)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	if result.Plan.TransactionCount == 0 {
		fmt.Fprintln(w, "Nothing to settle.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tAMOUNT")
	for _, t := range result.Plan.Transfers {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", displayName(t.FromName, t.From), displayName(t.ToName, t.To), t.Amount.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d transfer(s), %s total\n", result.Plan.TransactionCount, result.Plan.TotalAmount.StringFixed(2))
	if result.Validation.Valid {
		fmt.Fprintln(w, "Validation: ok")
	} else {
		fmt.Fprintln(w, "Validation: FAILED")
	}
	return nil
}

type planTransferJSON struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type planJSON struct {
	Status           string             `json:"status"`
	Transfers        []planTransferJSON `json:"transfers"`
	TotalAmount      string             `json:"total_amount"`
	TransactionCount int                `json:"transaction_count"`
	Warnings         []string           `json:"warnings,omitempty"`
	Valid            bool               `json:"valid"`
}

func writePlanJSON(w io.Writer, result settlement.PlanResult) error {
	out := planJSON{
		Status:           result.Status.String(),
		Transfers:        make([]planTransferJSON, 0, len(result.Plan.Transfers)),
		TotalAmount:      result.Plan.TotalAmount.StringFixed(2),
		TransactionCount: result.Plan.TransactionCount,
		Warnings:         result.Warnings,
		Valid:            result.Validation.Valid,
	}
	for _, t := range result.Plan.Transfers {
		out.Transfers = append(out.Transfers, planTransferJSON{From: t.From, To: t.To, Amount: t.Amount.StringFixed(2)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
