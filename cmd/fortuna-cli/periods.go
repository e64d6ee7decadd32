package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/spf13/cobra"
)

func (a *app) periodsCmd() *cobra.Command {
	var (
		period string
		window int
	)

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "Show income and expense totals for the most recent periods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			periodType, err := util.ParsePeriodType(period)
			if err != nil {
				return err
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				buckets, err := s.analytics.GetPeriodBuckets(ctx, s.workspaceID, periodType, window)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, buckets)
				}

				fmt.Fprintln(a.out, titleStyle.Render("Income and expense by period"))
				t := newTable("Period", "Income", "Expense", "Net", "Transactions")
				for _, b := range buckets {
					net := b.Income.Sub(b.Expense)
					t.add(b.PeriodLabel, money(b.Income), money(b.Expense), signed(net, money(net)), strconv.Itoa(b.TransactionCount))
				}
				t.render(a.out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", string(domain.PeriodMonthly), "monthly, quarterly or annual")
	cmd.Flags().IntVar(&window, "window", 6, "number of periods ending with the current one")
	return cmd
}
