package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/export"
	"github.com/alevsk/iamgraph/internal/loader"
	"github.com/alevsk/iamgraph/internal/store"
)

var (
	analyzeOutputFormat string
	analyzePersist      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Build a graph and enumerate its attack paths",
	Long: `Analyze loads a collected-data document, builds the graph, and runs the
full attack-path analysis: single-hop and multi-hop privilege escalation,
lateral movement, risk scoring, critical-node identification and
vulnerability detection.

Examples:
  # Analyze a local document
  iamgraph analyze collected.json

  # Analyze and persist the run for later retrieval via the API
  iamgraph analyze collected.json --persist`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]

		l := loader.New(&loader.Options{
			MaxConcurrency: cfg.Loader.MaxConcurrency,
			HTTPTimeout:    cfg.Loader.HTTPTimeout,
		})
		doc, err := l.Load(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("analyze failed: %w", err)
		}

		bopts := builder.DefaultOptions()
		if len(cfg.Analysis.TrustedDomains) > 0 {
			bopts.TrustedDomains = cfg.Analysis.TrustedDomains
		}
		g, _ := builder.Build(doc, bopts)

		acfg := analyzer.DefaultConfig()
		if cfg.Analysis.MaxPathLength > 0 {
			acfg.MaxPathLength = cfg.Analysis.MaxPathLength
		}
		if cfg.Analysis.MaxPathsPerPair > 0 {
			acfg.MaxPathsPerPair = cfg.Analysis.MaxPathsPerPair
		}
		result := analyzer.New(acfg).Run(g)

		if analyzePersist {
			st, err := store.Open(cfg.Store.DSN)
			if err != nil {
				return fmt.Errorf("analyze failed: opening store: %w", err)
			}
			defer st.Close()
			if err := st.SaveRun(cmd.Context(), result); err != nil {
				return fmt.Errorf("analyze failed: persisting run: %w", err)
			}
		}

		typ, err := export.ParseType(analyzeOutputFormat)
		if err != nil {
			return err
		}
		formatter, err := export.NewFormatter(typ)
		if err != nil {
			return err
		}
		out, err := formatter.Format(export.FromAnalysis(result))
		if err != nil {
			return fmt.Errorf("analyze failed: formatting output: %w", err)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutputFormat, "output", "o", "table", "output format (table, json, yaml)")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "persist", false, "persist the analysis run via store.dsn for later retrieval")
}
