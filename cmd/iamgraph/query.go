package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/graph"
	"github.com/alevsk/iamgraph/internal/loader"
	"github.com/alevsk/iamgraph/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer point queries against a freshly built graph",
}

// loadGraph is shared by every query/simulate subcommand: each invocation
// is a one-shot process, so the graph is rebuilt from source every time
// rather than kept resident like the API server's in-memory snapshot.
func loadGraph(cmd *cobra.Command, source string) (*graph.Graph, error) {
	l := loader.New(&loader.Options{
		MaxConcurrency: cfg.Loader.MaxConcurrency,
		HTTPTimeout:    cfg.Loader.HTTPTimeout,
	})
	doc, err := l.Load(cmd.Context(), source)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", source, err)
	}
	opts := builder.DefaultOptions()
	if len(cfg.Analysis.TrustedDomains) > 0 {
		opts.TrustedDomains = cfg.Analysis.TrustedDomains
	}
	g, _ := builder.Build(doc, opts)
	return g, nil
}

func queryEngine(g *graph.Graph) *query.Engine {
	acfg := analyzer.DefaultConfig()
	if cfg.Analysis.MaxPathLength > 0 {
		acfg.MaxPathLength = cfg.Analysis.MaxPathLength
	}
	if cfg.Analysis.MaxPathsPerPair > 0 {
		acfg.MaxPathsPerPair = cfg.Analysis.MaxPathsPerPair
	}
	return query.New(g, acfg)
}

func printJSON(v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

var shortestPathCmd = &cobra.Command{
	Use:   "shortest-path [source] [from] [to]",
	Short: "Find the shortest attack path between two nodes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		path := queryEngine(g).FindShortestPath(args[1], args[2])
		if path == nil {
			return fmt.Errorf("no path from %s to %s", args[1], args[2])
		}
		return printJSON(path)
	},
}

var allPathsMaxLength int

var allPathsCmd = &cobra.Command{
	Use:   "all-paths [source] [from] [to]",
	Short: "Enumerate every simple attack path between two nodes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		paths := queryEngine(g).FindAllPaths(args[1], args[2], allPathsMaxLength)
		return printJSON(paths)
	},
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions [source] [node]",
	Short: "Resolve the effective permissions held by a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		return printJSON(queryEngine(g).GetNodePermissions(args[1]))
	},
}

var canAccessCmd = &cobra.Command{
	Use:   "can-access [source] [principal] [resource]",
	Short: "Report whether a principal can reach a resource",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd, args[0])
		if err != nil {
			return err
		}
		reachable := queryEngine(g).CanAccessResource(args[1], args[2])
		return printJSON(map[string]bool{"reachable": reachable})
	},
}

func init() {
	allPathsCmd.Flags().IntVar(&allPathsMaxLength, "max-length", 0, "maximum path length in edges (0 uses analysis.max_path_length)")

	queryCmd.AddCommand(shortestPathCmd)
	queryCmd.AddCommand(allPathsCmd)
	queryCmd.AddCommand(permissionsCmd)
	queryCmd.AddCommand(canAccessCmd)
}
