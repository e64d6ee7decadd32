package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/dafibh/fortuna/fortuna-insights/internal/service"
	"github.com/dafibh/fortuna/fortuna-insights/internal/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgets",
	}
	cmd.AddCommand(a.budgetSetCmd())
	cmd.AddCommand(a.budgetListCmd())
	return cmd
}

func (a *app) budgetSetCmd() *cobra.Command {
	var (
		category, amount, period, budgetType, company string
		year, index                                   int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace the budget of a category for one period",
		Example: `  fortuna budget set --category Rent --amount 1200 --period monthly --year 2025 --index 4
  fortuna budget set --category Tools --amount 5000 --period annual --year 2025`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(strings.TrimSpace(amount))
			if err != nil {
				return fmt.Errorf("invalid amount %q", amount)
			}
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

			input := service.BudgetInput{
				Category: category,
				Amount:   value,
				Period:   periodType,
				Year:     year,
				Month:    index,
				Type:     domain.TransactionType(strings.ToLower(budgetType)),
				Company:  optional(company),
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				existing, err := findBudget(ctx, s, input)
				if err != nil {
					return err
				}

				var saved *domain.Budget
				verb := "Created"
				if existing != nil {
					saved, err = s.budgets.UpdateBudget(ctx, s.workspaceID, existing.ID, input)
					verb = "Updated"
				} else {
					saved, err = s.budgets.CreateBudget(ctx, s.workspaceID, input)
				}
				if err != nil {
					return err
				}

				if a.format() == formatJSON {
					return writeJSON(a.out, saved)
				}
				p, _ := util.NewPeriod(saved.Period, saved.Year, saved.Month)
				fmt.Fprintf(a.out, "%s %s budget %s for %s: %s\n",
					goodStyle.Render(verb), saved.Type, saved.Category, util.PeriodLabel(p), money(saved.Amount))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "budget category")
	cmd.Flags().StringVar(&amount, "amount", "", "budgeted amount")
	cmd.Flags().StringVar(&period, "period", string(domain.PeriodMonthly), "monthly, quarterly or annual")
	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default: current)")
	cmd.Flags().IntVar(&index, "index", 0, "month 1-12 or quarter 1-4 (default: current)")
	cmd.Flags().StringVar(&budgetType, "type", string(domain.TransactionTypeExpense), "expense or income")
	cmd.Flags().StringVar(&company, "company", "", "limit the budget to one company")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// findBudget returns the budget occupying the same slot as input, if any
func findBudget(ctx context.Context, s *session, input service.BudgetInput) (*domain.Budget, error) {
	month := input.Month
	if input.Period == domain.PeriodAnnual {
		month = 1
	}
	budgets, err := s.budgets.GetBudgets(ctx, s.workspaceID, &domain.BudgetFilters{
		Period: &input.Period,
		Year:   &input.Year,
		Month:  &month,
		Type:   &input.Type,
	})
	if err != nil {
		return nil, err
	}

	company := derefOr(input.Company, "")
	for _, b := range budgets {
		if strings.EqualFold(b.Category, strings.TrimSpace(input.Category)) && derefOr(b.Company, "") == company {
			return b, nil
		}
	}
	return nil, nil
}

func (a *app) budgetListCmd() *cobra.Command {
	var (
		period string
		year   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := &domain.BudgetFilters{}
			if period != "" {
				periodType, err := util.ParsePeriodType(period)
				if err != nil {
					return err
				}
				filters.Period = &periodType
			}
			if year != 0 {
				filters.Year = &year
			}

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				budgets, err := s.budgets.GetBudgets(ctx, s.workspaceID, filters)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, budgets)
				}
				if len(budgets) == 0 {
					fmt.Fprintln(a.out, subtleStyle.Render("No budgets found. Use 'fortuna budget set' to create one."))
					return nil
				}

				t := newTable("Category", "Period", "Type", "Company", "Amount")
				for _, b := range budgets {
					p, _ := util.NewPeriod(b.Period, b.Year, b.Month)
					t.add(b.Category, util.PeriodLabel(p), string(b.Type), derefOr(b.Company, "all"), money(b.Amount))
				}
				t.render(a.out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "only this period type")
	cmd.Flags().IntVar(&year, "year", 0, "only this year")
	return cmd
}
