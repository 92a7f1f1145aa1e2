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

// updateFile seeds a collection and describes an update statement against it
type updateFile struct {
	Collection string               `json:"collection"`
	Documents  []*orderkit.Document `json:"documents"`
	Args       map[string]any       `json:"args"`
	Patch      map[string]any       `json:"patch"`
	Select     []string             `json:"select"`

	// Indexes and OrderBy describe the statement's order by clause, if any
	Indexes []orderkit.Index   `json:"indexes"`
	OrderBy []orderkit.OrderBy `json:"orderBy"`
}

// updateOutput is the update result plus the order by metrics when the config records metrics
type updateOutput struct {
	orderkit.Result
	Explain *orderkit.Explain `json:"explain,omitempty"`
}

func readUpdateFile(path string) (*updateFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.NotFound, "failed to read %s", path)
	}
	jsonContent, err := util.YAMLToJSON(content)
	if err != nil {
		return nil, errors.Wrap(err, errors.Validation, "failed to parse %s", path)
	}
	f := &updateFile{Collection: "documents"}
	if err := json.Unmarshal(jsonContent, f); err != nil {
		return nil, errors.Wrap(err, errors.Validation, "failed to parse %s", path)
	}
	for _, i := range f.Indexes {
		if err := i.Validate(); err != nil {
			return nil, err
		}
	}
	if len(f.Patch) == 0 {
		return nil, errors.New(errors.Validation, "%s: empty patch", path)
	}
	return f, nil
}

func loadConfig(path string) (orderkit.Config, error) {
	if path == "" {
		return orderkit.DefaultConfig(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return orderkit.Config{}, errors.Wrap(err, errors.NotFound, "failed to read %s", path)
	}
	return orderkit.LoadConfig(content)
}

func updateCmd() *cobra.Command {
	var (
		file       string
		configPath string
		returnMode string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "seed a collection from a fixture, run an update against it and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if returnMode == "" {
				returnMode = string(cfg.ReturnMode)
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			f, err := readUpdateFile(file)
			if err != nil {
				return err
			}
			cmdCtx := orderkit.NewCommandContext(map[string]any{"collection": f.Collection})
			cmdCtx.SetRecordMetrics(cfg.RecordMetrics)
			ctx = cmdCtx.ToContext(ctx)
			db, err := cfg.OpenStorage()
			if err != nil {
				return err
			}
			defer db.Close()
			source := orderkit.NewKVSource(db, f.Collection, "")
			if err := source.Put(ctx, f.Documents...); err != nil {
				return err
			}
			stmt := orderkit.UpdateStatement{
				Source: source,
				Args:   f.Args,
				Patch:  f.Patch,
				Return: orderkit.ReturnMode(returnMode),
			}
			if len(f.Select) > 0 {
				stmt.Projection = orderkit.SelectFields(f.Select...)
			}
			exec := orderkit.NewExecutor(orderkit.WithLogger(logger))
			var plan orderkit.OrderPlan
			if len(f.OrderBy) > 0 {
				indexes := make([]orderkit.IndexDescriptor, 0, len(f.Indexes))
				for _, i := range f.Indexes {
					indexes = append(indexes, i)
				}
				if plan, err = exec.ExplainOrder(ctx, orderkit.OrderStatement{
					Indexes: indexes,
					OrderBy: f.OrderBy,
				}); err != nil {
					return err
				}
			}
			result, err := exec.Update(ctx, stmt)
			if err != nil {
				return err
			}
			out := updateOutput{Result: result}
			if cmdCtx.IsRecordingMetrics() && len(f.OrderBy) > 0 {
				explain, err := orderkit.ExplainMetrics(cmdCtx.Metrics())
				if err != nil {
					return err
				}
				explain.Plan = plan
				out.Explain = &explain
			}
			bits, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bits))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixture.yaml", "path to a yaml/json update fixture")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a yaml/json config (default: in-memory badger)")
	cmd.Flags().StringVarP(&returnMode, "return", "r", "", "return mode: COUNT, BEFORE or AFTER (default: the config's return mode)")
	return cmd
}
