package main

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-insights/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) kpisCmd() *cobra.Command {
	var withForecast bool

	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Show the KPI dashboard for the current month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				dashboard, err := s.analytics.GetKPIDashboard(ctx, s.workspaceID, withForecast)
				if err != nil {
					return err
				}
				if a.format() == formatJSON {
					return writeJSON(a.out, dashboard)
				}

				groups := []struct {
					title   string
					metrics []domain.KPIMetric
				}{
					{"Profitability", dashboard.Profitability},
					{"Liquidity", dashboard.Liquidity},
					{"Turnover", dashboard.Turnover},
					{"Custom", dashboard.Custom},
				}
				for i, g := range groups {
					if len(g.metrics) == 0 {
						continue
					}
					if i > 0 {
						fmt.Fprintln(a.out)
					}
					fmt.Fprintln(a.out, titleStyle.Render(g.title))
					t := newTable("Metric", "Value", "Trend", "")
					for _, m := range g.metrics {
						t.add(m.Title, metricValue(m), trendText(m.Trend), subtleStyle.Render(m.ComparisonLabel))
					}
					t.render(a.out)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withForecast, "forecast", true, "include forecast based metrics")
	return cmd
}
