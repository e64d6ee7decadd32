package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) forecastCmd() *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project next month's income, expense and balance from recent averages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months == 0 {
				months = a.v.GetInt("analytics.forecast_months")
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				result, err := s.analytics.GetForecast(ctx, s.workspaceID, months)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, result)
				}

				fmt.Fprintln(a.out, titleStyle.Render(fmt.Sprintf("Next month, from a %d month average", months)))
				t := newTable("", "Amount")
				t.add("Current balance", money(result.CurrentBalance))
				t.add("Predicted income", money(result.PredictedIncome))
				t.add("Predicted expense", money(result.PredictedExpense))
				t.add(totalStyle.Render("Predicted balance"), signed(result.PredictedBalance, money(result.PredictedBalance)))
				t.render(a.out)

				if len(result.TopExpenseCategories) > 0 {
					fmt.Fprintln(a.out)
					fmt.Fprintln(a.out, titleStyle.Render("Top expense categories"))
					top := newTable("Category", "Monthly")
					for _, c := range result.TopExpenseCategories {
						top.add(c.Category, money(c.Amount))
					}
					top.render(a.out)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "months to average over (default: analytics.forecast_months)")
	return cmd
}
