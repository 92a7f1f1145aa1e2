package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/autom8ter/orderkit"
	"github.com/autom8ter/orderkit/errors"
	"github.com/autom8ter/orderkit/util"
	"github.com/spf13/cobra"
)

// explainFile is a set of candidate indexes and the order by clauses to explain against them
type explainFile struct {
	Indexes    []orderkit.Index   `json:"indexes"`
	Statements []explainStatement `json:"statements"`
}

type explainStatement struct {
	OrderBy []orderkit.OrderBy `json:"orderBy"`
	// Lookup is the chain of indexes used to locate documents; a single index is used as is
	Lookup []orderkit.Index `json:"lookup"`
}

func readExplainFile(path string) (*explainFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.NotFound, "failed to read %s", path)
	}
	jsonContent, err := util.YAMLToJSON(content)
	if err != nil {
		return nil, errors.Wrap(err, errors.Validation, "failed to parse %s", path)
	}
	var f explainFile
	if err := json.Unmarshal(jsonContent, &f); err != nil {
		return nil, errors.Wrap(err, errors.Validation, "failed to parse %s", path)
	}
	for _, i := range f.Indexes {
		if err := i.Validate(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

func (f *explainFile) orderStatements() ([]orderkit.OrderStatement, error) {
	indexes := make([]orderkit.IndexDescriptor, 0, len(f.Indexes))
	for _, i := range f.Indexes {
		indexes = append(indexes, i)
	}
	var stmts []orderkit.OrderStatement
	for _, s := range f.Statements {
		stmt := orderkit.OrderStatement{
			Indexes: indexes,
			OrderBy: s.OrderBy,
		}
		switch len(s.Lookup) {
		case 0:
		case 1:
			stmt.Lookup = s.Lookup[0]
		default:
			chained, err := orderkit.NewChainedIndex(s.Lookup...)
			if err != nil {
				return nil, err
			}
			stmt.Lookup = chained
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func explainCmd() *cobra.Command {
	var (
		file     string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "explain which index satisfies each order by clause",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := orderkit.NewLogger(logLevel, map[string]any{"cmd": "explain"})
			if err != nil {
				return err
			}
			f, err := readExplainFile(file)
			if err != nil {
				return err
			}
			stmts, err := f.orderStatements()
			if err != nil {
				return err
			}
			explains, err := orderkit.NewExecutor(orderkit.WithLogger(logger)).ExplainOrders(context.Background(), stmts)
			if err != nil {
				return err
			}
			bits, err := json.MarshalIndent(explains, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bits))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "plan.yaml", "path to a yaml/json file of indexes and order by statements")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "error", "log level")
	return cmd
}
