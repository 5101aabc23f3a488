package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables in the remote table store",
		Example: `  # List all tables
  leapboard tables

  # List tables under a project prefix
  leapboard tables --prefix project/starmind`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ConfigFrom(cmd.Context())
			if err := cfg.Validate(); err != nil {
				return err
			}

			client := newClient(cmd, cfg)
			names, err := client.ListTables(cmd.Context(), datastore.ListTablesRequest{Prefix: prefix})
			if err != nil {
				return fmt.Errorf("failed to list tables: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range names.Tables {
				_, _ = fmt.Fprintln(out, name)
			}
			_, _ = fmt.Fprintf(out, "(%d tables)\n", len(names.Tables))
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list tables under this prefix")

	return cmd
}
