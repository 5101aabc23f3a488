package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Columns  []string
	Filters  []string
	OrderBy  []string
	PageNum  int
	PageSize int
	Format   string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Query a table and print decoded records",
		Long: `Query a single table in the remote table store. Values are decoded
from their wire encoding before rendering.

Filters use the form <property>:<operator>:<value>, e.g.
sys/model_name:EQUAL:resnet-18. IN and NOT_IN take comma-separated
values, BETWEEN takes a low~high range.`,
		Example: `  # First page of the summary table
  leapboard query project/starmind/eval/summary

  # Filtered, sorted, as JSON
  leapboard query project/starmind/eval/summary \
    --filter sys/model_name:EQUAL:resnet-18 \
    --order-by sys/id:desc --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ConfigFrom(cmd.Context())
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "Columns to return (default: all)")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "Filter as <property>:<operator>:<value> (repeatable)")
	cmd.Flags().StringArrayVar(&opts.OrderBy, "order-by", nil, "Sort as <column>[:desc] (repeatable)")
	cmd.Flags().IntVar(&opts.PageNum, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&opts.PageSize, "size", 0, "Page size (default: configured page size)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "Output format (table|json|csv|markdown)")

	return cmd
}

func runQuery(cmd *cobra.Command, tableName string, opts *QueryOptions) error {
	cfg := ConfigFrom(cmd.Context())

	filters, err := parseFilters(opts.Filters)
	if err != nil {
		return err
	}

	orderBy, err := parseOrderBy(opts.OrderBy)
	if err != nil {
		return err
	}

	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = cfg.Datastore.PageSize
	}

	req := datastore.BuildQuery(datastore.QueryOptions{
		TableName: tableName,
		Columns:   opts.Columns,
		Filters:   filters,
		OrderBy:   orderBy,
		PageNum:   opts.PageNum,
		PageSize:  pageSize,
	})

	client := newClient(cmd, cfg)
	list, err := client.QueryTable(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	rec := datastore.NewReconciler(datastore.DefaultDecodeCacheSize)
	result := rec.Reconcile(list.Records, list.ColumnTypes, list.ColumnHints)

	for _, decodeErr := range result.Errors {
		LoggerFrom(cmd.Context()).Warn("record decode failed", "error", decodeErr)
	}

	return renderRecords(cmd.OutOrStdout(), result, opts.Format)
}

// parseFilters converts <property>:<operator>:<value> strings. The value
// may itself contain colons.
func parseFilters(raw []string) ([]datastore.SimpleFilter, error) {
	filters := make([]datastore.SimpleFilter, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid filter %q, expected <property>:<operator>:<value>", s)
		}
		filters = append(filters, datastore.SimpleFilter{
			Property: parts[0],
			Op:       datastore.Operator(strings.ToUpper(parts[1])),
			Value:    parts[2],
		})
	}
	return filters, nil
}

// parseOrderBy converts <column>[:desc] strings.
func parseOrderBy(raw []string) ([]datastore.OrderBy, error) {
	orderBy := make([]datastore.OrderBy, 0, len(raw))
	for _, s := range raw {
		column, direction, _ := strings.Cut(s, ":")
		if column == "" {
			return nil, fmt.Errorf("invalid order-by %q, expected <column>[:desc]", s)
		}
		descending := false
		switch strings.ToLower(direction) {
		case "", "asc":
		case "desc":
			descending = true
		default:
			return nil, fmt.Errorf("invalid order-by direction %q", direction)
		}
		orderBy = append(orderBy, datastore.OrderBy{ColumnName: column, Descending: descending})
	}
	return orderBy, nil
}
