package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arts-recruitment/dashboard/internal/infrastructure/ingest"
	"github.com/arts-recruitment/dashboard/pkg/logger"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		root    string
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build dashboard_data.json from the xlsx roster exports",
		Long: "Walks ROOT/<School>/<Program>/<Year>.xlsx and writes the dataset " +
			"document the dashboard reads.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			ic := a.cfg.Ingest
			if cmd.Flags().Changed("root") {
				ic.Root = root
			}
			if cmd.Flags().Changed("output") {
				ic.Output = output
			}
			if cmd.Flags().Changed("workers") {
				ic.Workers = workers
			}

			gcfg := ingest.DefaultConfig(ic.Root)
			if len(ic.TeacherSchools) > 0 {
				gcfg.TeacherSchools = ic.TeacherSchools
			}
			if ic.FallbackProgram != "" {
				gcfg.FallbackProgram = ic.FallbackProgram
			}
			gcfg.Workers = ic.Workers

			doc, err := ingest.NewGenerator(gcfg, a.log).WriteFile(cmd.Context(), ic.Output)
			if err != nil {
				return fmt.Errorf("generate dataset: %w", err)
			}

			a.log.Info("generation complete",
				logger.String("output", ic.Output),
				logger.Int("schools", len(doc.Schools)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d schools, generated %s)\n",
				ic.Output, len(doc.Schools), doc.Metadata.GeneratedAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "export tree root (overrides INGEST_ROOT)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (overrides INGEST_OUTPUT)")
	cmd.Flags().IntVar(&workers, "workers", 0, "schools read concurrently (overrides INGEST_WORKERS)")
	return cmd
}
