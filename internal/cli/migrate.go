package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			version, err := e.db.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at version %d\n", e.settings.Database.Path, version)
			return nil
		},
	}
}
