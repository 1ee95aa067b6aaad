package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/livequery/internal/source"
)

// NewTablesCommand creates the tables command, which prints the source
// tables a query reads - the scope a controller would observe for it.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	var sqlText string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the tables a query reads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sqlText == "" {
				return fmt.Errorf("--sql is required")
			}
			tables, err := source.SourceTables(sqlText)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(tables))
			for t := range tables {
				names = append(names, t)
			}
			sort.Strings(names)

			if opts.Format == "json" {
				data, err := json.Marshal(names)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sqlText, "sql", "", "query to analyze")
	return cmd
}
