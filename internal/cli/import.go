package cli

import (
	"fmt"

	"brainquiz/internal/app"
	"brainquiz/internal/importer"
	"github.com/spf13/cobra"
)

// NewImportCmd loads questions from a CSV file into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <questions.csv>",
		Short: "Import questions from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errNoPostgres
			}

			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			report, err := importer.LoadFile(cmd.Context(), args[0], app.NewQuestionService(b.questions))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d question(s), skipped %d duplicate(s)\n", report.Inserted, report.Duplicates)
			return nil
		},
	}
}
