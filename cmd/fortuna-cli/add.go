package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) addCmd() *cobra.Command {
	var (
		txType, amount, category, date string
		description, company, project  string
		fromCompany, toCompany         string
		reimbursement                  bool
		reimbursedTo                   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income, expense or transfer.

Transfers move money between two companies and need --from and --to; they never count
as income or expense.`,
		Example: `  fortuna add --type expense --amount 42.50 --category Food --date 2025-04-03
  fortuna add --type income --amount 3000 --category Sales --company Acme
  fortuna add --type transfer --amount 500 --from Acme --to Beta`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}

			input := service.TransactionInput{
				Amount:          value,
				Type:            domain.TransactionType(strings.ToLower(txType)),
				Category:        category,
				Description:     optional(description),
				Company:         optional(company),
				Project:         optional(project),
				IsReimbursement: reimbursement,
				ReimbursedTo:    optional(reimbursedTo),
				FromCompany:     optional(fromCompany),
				ToCompany:       optional(toCompany),
			}
			if date != "" {
				d, err := parseDate(date)
				if err != nil {
					return err
				}
				input.Date = &d
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				tx, err := s.transactions.CreateTransaction(ctx, s.workspaceID, input)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, tx)
				}
				fmt.Fprintf(a.out, "%s %s %s %s on %s (%s)\n",
					goodStyle.Render("Recorded"),
					tx.Type, money(tx.Amount), describeTarget(tx), formatDate(tx.Date), subtleStyle.Render(tx.ID.String()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "income, expense or transfer")
	cmd.Flags().StringVar(&amount, "amount", "", "non-negative amount")
	cmd.Flags().StringVar(&category, "category", "", "category (required unless transfer)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&description, "description", "", "free text note")
	cmd.Flags().StringVar(&company, "company", "", "company the transaction belongs to")
	cmd.Flags().StringVar(&project, "project", "", "project the transaction belongs to")
	cmd.Flags().StringVar(&fromCompany, "from", "", "source company of a transfer")
	cmd.Flags().StringVar(&toCompany, "to", "", "destination company of a transfer")
	cmd.Flags().BoolVar(&reimbursement, "reimbursement", false, "mark an expense as awaiting reimbursement")
	cmd.Flags().StringVar(&reimbursedTo, "reimbursed-to", "", "who the reimbursement is owed to")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func describeTarget(tx *domain.Transaction) string {
	if tx.IsTransferRecord() {
		return fmt.Sprintf("%s → %s", derefOr(tx.FromCompany, "?"), derefOr(tx.ToCompany, "?"))
	}
	return tx.Category
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
