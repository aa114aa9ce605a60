package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arts-recruitment/dashboard/internal/application/query"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var (
		q      query.GetDashboardQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print a classified program roster",
		Long: "Loads the dataset and prints one program's students with their " +
			"classification. Without --school the first school and its default " +
			"program are used, as in the dashboard.",
		Example: "  dashboard classify --school \"Lakeside Middle School\" --program Band --filter nerd",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			store, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}

			rosters := query.NewRosterService(a.newClassifier(), nil, a.log)
			res, err := query.NewGetDashboardHandler(store, rosters).Handle(cmd.Context(), q)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printRoster(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&q.School, "school", "", "school name")
	cmd.Flags().StringVar(&q.Program, "program", "", "program name (Band, Choir, Dance, Theatre)")
	cmd.Flags().StringVarP(&q.Search, "query", "q", "", "name or ID substring")
	cmd.Flags().StringVar(&q.Filter, "filter", "", "classification filter: all, nerd, late, withdrew")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printRoster(out io.Writer, res *query.GetDashboardResult) error {
	if res.Roster == nil {
		_, err := fmt.Fprintf(out, "%s has no programs\n", res.State.School)
		return err
	}
	r := res.Roster

	fmt.Fprintf(out, "%s / %s (current year %s)\n\n", r.School, r.Program, r.CurrentYear)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := append([]string{"ID", "NAME", "YEARS"}, r.Years...)
	header = append(header, "CLASSIFICATION")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range r.Rows {
		cols := []string{row.ID, row.Name, fmt.Sprint(row.YearsEnrolled)}
		for _, cell := range row.Cells {
			cols = append(cols, cellText(cell))
		}
		label := ""
		if row.Classification != nil {
			label = row.Classification.Label
		}
		cols = append(cols, label)
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\n%d of %d shown | nerd %d | late %d | withdrew %d | unclassified %d\n",
		r.Visible, r.Total, r.Counts.Nerd, r.Counts.Late, r.Counts.Withdrew, r.Counts.Unclassified)
	return err
}

func cellText(c query.YearCellDTO) string {
	if !c.Enrolled {
		return "-"
	}
	if c.Grade == "" {
		return "✓"
	}
	return c.Grade
}
