package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arts-recruitment/dashboard/config"
	"github.com/arts-recruitment/dashboard/internal/application/query"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print enrollment trends and high-school recruits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if !a.cfg.Features.IsEnabled(config.FeatureRecruitmentReport) {
				return fmt.Errorf("feature %q is disabled", config.FeatureRecruitmentReport)
			}
			store, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}

			res, err := query.NewReportHandler(store).Handle(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printReport(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	return cmd
}

func printReport(out io.Writer, res *query.ReportResult) error {
	fmt.Fprintf(out, "Recruitment report (%s)\n\nEnrollment trends\n", res.GeneratedAt)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append([]string{"SCHOOL", "PROGRAM"}, res.Years...), "\t"))
	for _, row := range res.Trends {
		cols := []string{row.School, row.Program}
		for _, y := range res.Years {
			cols = append(cols, fmt.Sprint(row.Counts[y]))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if res.LatestYear == "" {
		_, err := fmt.Fprintln(out, "\nNo enrollment data.")
		return err
	}

	fmt.Fprintf(out, "\nPotential recruits (grade 8 in %s): %d\n", res.LatestYear, len(res.Recruits))
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCHOOL\tPROGRAM\tNAME\tID\tCOURSE")
	for _, r := range res.Recruits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.School, r.Program, r.Name, r.StudentID, r.Course)
	}
	return tw.Flush()
}
