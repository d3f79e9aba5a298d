package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alevsk/iamgraph/internal/config"
	"github.com/alevsk/iamgraph/internal/logger"
)

var (
	configPath string
	debug      bool
)

var cfg = &config.Config{}

var rootCmd = &cobra.Command{
	Use:   "iamgraph",
	Short: "iamgraph - a cloud IAM attack-path graph analyzer",
	Long: GetBanner() + `
iamgraph builds a graph of a cloud environment's IAM bindings, resources and
identities, then enumerates privilege-escalation and lateral-movement attack
paths across it, scores nodes by risk, and answers point queries and
what-if simulations against the result.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		if debug {
			cfg.Debug = true
		}

		logger.Init(cfg)

		if configPath != "" || os.Getenv(config.IAMGraphConfigPathEnvVar) != "" {
			logger.Debug().Msgf("Using config file: %s", configPath)
		} else {
			logger.Debug().Msg("Using default configuration")
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: config.yml in current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging and additional debug information")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cmd := rootCmd
		if c, err2 := rootCmd.ExecuteC(); err2 == nil {
			cmd = c
		}
		fmt.Println(cmd.UsageString())
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
