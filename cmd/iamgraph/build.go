package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/export"
	"github.com/alevsk/iamgraph/internal/loader"
	"github.com/alevsk/iamgraph/internal/logger"
)

var (
	buildOutputFormat string
)

var buildCmd = &cobra.Command{
	Use:   "build [source]",
	Short: "Build a graph from a collected-data document",
	Long: `Build loads a collected-data document from a local file, a remote URL, or a
directory of per-collector fragments, and prints the resulting graph.

Examples:
  # Build from a local document
  iamgraph build collected.json

  # Build from a remote document
  iamgraph build https://example.com/collected.json

  # Build from a folder of fragments named by a manifest.json
  iamgraph build ./collected/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		l := loader.New(&loader.Options{
			MaxConcurrency: cfg.Loader.MaxConcurrency,
			HTTPTimeout:    cfg.Loader.HTTPTimeout,
		})
		doc, err := l.Load(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		opts := builder.DefaultOptions()
		if len(cfg.Analysis.TrustedDomains) > 0 {
			opts.TrustedDomains = cfg.Analysis.TrustedDomains
		}
		g, meta := builder.Build(doc, opts)

		typ, err := export.ParseType(buildOutputFormat)
		if err != nil {
			return err
		}
		formatter, err := export.NewFormatter(typ)
		if err != nil {
			return err
		}
		out, err := formatter.Format(export.FromGraph(g))
		if err != nil {
			return fmt.Errorf("build failed: formatting output: %w", err)
		}
		fmt.Println(out)

		for _, w := range meta.Warnings {
			logger.Warn().Msg(w)
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutputFormat, "output", "o", "table", "output format (table, json, yaml)")
}
