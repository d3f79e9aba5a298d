package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alevsk/iamgraph/internal/api"
	"github.com/alevsk/iamgraph/internal/cache"
	"github.com/alevsk/iamgraph/internal/config"
	"github.com/alevsk/iamgraph/internal/logger"
	"github.com/alevsk/iamgraph/internal/store"
)

var (
	serverHost     string
	serverPort     int
	serverTimeout  string
	serverLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the iamgraph API server",
	PreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("timeout") {
			if duration, err := time.ParseDuration(serverTimeout); err == nil {
				cfg.Server.Timeout = duration
			}
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Server.LogLevel = serverLogLevel
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("serve: opening store: %w", err)
		}
		defer st.Close()

		ch, err := cache.Open(cfg.Cache.RedisAddr)
		if err != nil {
			return fmt.Errorf("serve: opening cache: %w", err)
		}
		defer ch.Close()

		cfg.Watch(func(next *config.Config) {
			logger.Info().Msg("serve: configuration file changed, new settings apply to the next restart")
		})

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		return api.NewServer(cfg, st, ch).Start(addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (default: 0.0.0.0)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default: 8080)")
	serveCmd.Flags().StringVarP(&serverTimeout, "timeout", "t", "", "Server timeout (e.g., 30s, 1m)")
	serveCmd.Flags().StringVarP(&serverLogLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	if err := viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("server.log_level", serveCmd.Flags().Lookup("log-level")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}
