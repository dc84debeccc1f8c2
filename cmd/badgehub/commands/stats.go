package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/internal/cli/output"
	"github.com/badgehub/badgehub/pkg/metadata"
)

var statsOutput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hub-wide statistics",
	Long: `Show aggregate counts: projects, authors, registered badges, and
install, launch and crash totals with the number of distinct projects each
touched.

Examples:
  badgehub stats
  badgehub stats -o json`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var refreshReportsCmd = &cobra.Command{
	Use:   "refresh-reports",
	Short: "Recompute aggregate reports",
	Long: `Recompute the aggregate views behind 'badgehub stats'. The postgres
engine refreshes its materialized view; the GORM engines compute stats live
and have nothing to refresh. A configured stats cache is invalidated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), "refresh-reports", func(ctx context.Context, svc *metadata.Service) error {
			if err := svc.RefreshReports(ctx); err != nil {
				return err
			}
			output.NewPrinter(cmd.OutOrStdout(), output.FormatTable).Success("Reports refreshed")
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// statsTable renders Stats as one row per counter.
type statsTable struct {
	*metadata.Stats
}

func (s statsTable) Headers() []string {
	return []string{"Metric", "Total", "Projects"}
}

func (s statsTable) Rows() [][]string {
	n := func(v int64) string { return strconv.FormatInt(v, 10) }
	return [][]string{
		{"projects", n(s.Projects), ""},
		{"authors", n(s.Authors), ""},
		{"badges", n(s.Badges), ""},
		{"installs", n(s.Installs), n(s.InstalledProjects)},
		{"launches", n(s.Launches), n(s.LaunchedProjects)},
		{"crashes", n(s.Crashes), n(s.CrashedProjects)},
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statsOutput)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), "stats", func(ctx context.Context, svc *metadata.Service) error {
		stats, err := svc.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		p := output.NewPrinter(cmd.OutOrStdout(), format)
		if format == output.FormatTable {
			return p.Print(statsTable{stats})
		}
		return p.Print(stats)
	})
}
