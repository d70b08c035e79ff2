package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/logger"
	"github.com/Aleph-Alpha/querybridge/v1/querybuilder"
)

type globalFlags struct {
	configPath string
	logLevel   string
	output     string
}

type selectFlags struct {
	table   string
	columns []string
	joins   []string
	where   []string
	orWhere []string
	orderBy string
	desc    bool
	limit   int
	timeout time.Duration
}

// openClient loads the connection config and opens its client.
func openClient(ctx context.Context, flags *globalFlags) (querybuilder.Client, *logger.Logger, error) {
	cfg, err := connection.Load(afero.NewOsFs(), flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLoggerClient(logger.Config{Level: flags.logLevel, ServiceName: "querybuilder"})
	log.Debug("Loaded connection config", nil, cfg.LogFields())

	client, err := querybuilder.NewClient(ctx, cfg, querybuilder.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return client, log, nil
}

func newSelectCommand(flags *globalFlags) *cobra.Command {
	sf := &selectFlags{}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Run a select chain and print the rows",
		Long: `Run Select/From/Where/OrderBy/Limit against the configured database.

Conditions are written as "column operator value", for example:

  querybuilder select -c mysql.yaml -t users --columns id,name \
    --where "id > 1" --where "name LIKE %John%" --order-by name --limit 2

The first --where becomes Where, the following ones AndWhere. Numbers and
booleans are bound with their type, everything else as a string.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), sf.timeout)
			defer cancel()

			client, log, err := openClient(ctx, flags)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.GracefulShutdown(context.Background()); err != nil {
					log.Warn("Failed to close client", err, nil)
				}
			}()

			qb, err := buildSelect(client.Query(ctx), sf)
			if err != nil {
				return err
			}

			rows, err := qb.Get()
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), flags.output, rows)
		},
	}

	cmd.Flags().StringVarP(&sf.table, "table", "t", "", "Table or collection to query")
	cmd.Flags().StringSliceVar(&sf.columns, "columns", nil, "Columns to select (default all)")
	cmd.Flags().StringArrayVarP(&sf.where, "where", "w", nil, `Condition "column operator value", joined with AND`)
	cmd.Flags().StringArrayVar(&sf.orWhere, "or-where", nil, `Condition "column operator value", joined with OR`)
	cmd.Flags().StringArrayVar(&sf.joins, "join", nil, `Join "table column1 operator column2"`)
	cmd.Flags().StringVar(&sf.orderBy, "order-by", "", "Column to order by")
	cmd.Flags().BoolVar(&sf.desc, "desc", false, "Order descending")
	cmd.Flags().IntVarP(&sf.limit, "limit", "l", 0, "Maximum number of rows (0 means no limit)")
	cmd.Flags().DurationVar(&sf.timeout, "timeout", 30*time.Second, "Query timeout")

	return cmd
}

// buildSelect applies the select flags to qb. The chain's own sticky error is
// returned alongside flag parsing errors.
func buildSelect(qb builder.QueryBuilder, sf *selectFlags) (builder.QueryBuilder, error) {
	qb = qb.Select(sf.columns...)
	if sf.table != "" {
		qb = qb.From(sf.table)
	}

	for _, expr := range sf.joins {
		j, err := parseJoin(expr)
		if err != nil {
			return nil, err
		}
		qb = qb.Join(j.table, j.column1, j.operator, j.column2)
	}

	for i, expr := range sf.where {
		c, err := parseCondition(expr)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			qb = qb.Where(c.column, c.operator, c.value)
		} else {
			qb = qb.AndWhere(c.column, c.operator, c.value)
		}
	}
	for _, expr := range sf.orWhere {
		c, err := parseCondition(expr)
		if err != nil {
			return nil, err
		}
		qb = qb.OrWhere(c.column, c.operator, c.value)
	}

	if sf.orderBy != "" {
		direction := builder.Ascending
		if sf.desc {
			direction = builder.Descending
		}
		qb = qb.OrderBy(sf.orderBy, direction)
	}
	if sf.limit > 0 {
		qb = qb.Limit(sf.limit)
	}
	return qb, qb.Err()
}

func newExampleCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Run the sample users query",
		Long: `Run the sample query against a "users" table or collection:

  relational: SELECT id, name FROM users WHERE id > 1 AND name LIKE '%John%' ORDER BY name ASC LIMIT 2
  mongodb:    {id: {$gt: 1}, $and: [{name: {$regex: "John"}}]} sorted by name, limit 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, log, err := openClient(ctx, flags)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.GracefulShutdown(context.Background()); err != nil {
					log.Warn("Failed to close client", err, nil)
				}
			}()

			rows, err := exampleQuery(client.Query(ctx), client.Engine()).Get()
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), flags.output, rows)
		},
	}
}

// exampleQuery builds the sample users chain with the operators of engine.
func exampleQuery(qb builder.QueryBuilder, engine connection.Engine) builder.QueryBuilder {
	if engine.IsDocument() {
		return qb.Select("id", "name").
			From("users").
			Where("id", "$gt", 1).
			AndWhere("name", "$regex", "John").
			OrderBy("name", builder.Ascending).
			Limit(1)
	}
	return qb.Select("id", "name").
		From("users").
		Where("id", ">", 1).
		AndWhere("name", "LIKE", "%John%").
		OrderBy("name", builder.Ascending).
		Limit(2)
}
