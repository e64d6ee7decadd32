package main

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/spf13/cobra"
)

func (a *app) varianceCmd() *cobra.Command {
	var (
		period, company string
		year, index     int
	)

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Compare budgets against actual spending for one period",
		Example: `  fortuna variance
  fortuna variance --period quarterly --year 2025 --index 2
  fortuna variance --company Acme --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			periodType, err := util.ParsePeriodType(period)
			if err != nil {
				return err
			}
			now := a.now().UTC()
			if year == 0 {
				year = now.Year()
			}
			if index == 0 {
				index = util.CurrentIndex(periodType, now)
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				summary, err := s.analytics.GetBudgetSummary(ctx, s.workspaceID, periodType, year, index, company)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, summary)
				}
				renderVariance(a, summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", string(domain.PeriodMonthly), "monthly, quarterly or annual")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().IntVar(&index, "index", 0, "month 1-12 or quarter 1-4 (default: current)")
	cmd.Flags().StringVar(&company, "company", "", "only budgets and spending of this company")
	return cmd
}

func renderVariance(a *app, summary *domain.BudgetSummary) {
	fmt.Fprintln(a.out, titleStyle.Render("Budget variance "+util.PeriodLabel(summary.Period)))

	if len(summary.Categories) == 0 {
		fmt.Fprintln(a.out, subtleStyle.Render("No budgets or spending in this period."))
		return
	}

	t := newTable("Category", "Budget", "Actual", "Variance", "%")
	for _, row := range summary.Categories {
		t.add(row.Category, money(row.BudgetAmount), money(row.ActualAmount),
			signed(row.Variance, money(row.Variance)),
			signed(row.Variance, row.VariancePercentage.StringFixed(2)))
	}
	t.add(totalStyle.Render("Total"), totalStyle.Render(money(summary.TotalBudget)), totalStyle.Render(money(summary.TotalActual)),
		signed(summary.Variance, money(summary.Variance)),
		signed(summary.Variance, summary.VariancePercentage.StringFixed(2)))
	t.render(a.out)
}
