package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MarkoPoloResearchLab/settlement/internal/config"
)

const (
	flagConfig         = "config"
	flagDatabaseURL    = "database-url"
	flagStoreDriver    = "store-driver"
	flagHTTPListenAddr = "http-listen-addr"
	flagGRPCListenAddr = "grpc-listen-addr"
	flagLogFormat      = "log-format"
	flagLogLevel       = "log-level"
)

var flagKeys = map[string]string{
	flagDatabaseURL:    "database_url",
	flagStoreDriver:    "store_driver",
	flagHTTPListenAddr: "http_listen_addr",
	flagGRPCListenAddr: "grpc_listen_addr",
	flagLogFormat:      "log_format",
	flagLogLevel:       "log_level",
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "settlementd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &config.Config{}
	defaults := config.Default()
	cmd := &cobra.Command{
		Use:           "settlementd",
		Short:         "Pet-care booking settlement and escrow service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "Path to a YAML config file")
	flags.String(flagDatabaseURL, defaults.DatabaseURL, "Database connection string (sqlite://, postgres:// or mongodb://)")
	flags.String(flagStoreDriver, defaults.StoreDriver, "Store driver: gorm, pgx, mongo or memory")
	flags.String(flagHTTPListenAddr, defaults.HTTPListenAddr, "HTTP listen address, empty to disable")
	flags.String(flagGRPCListenAddr, defaults.GRPCListenAddr, "gRPC listen address, empty to disable")
	flags.String(flagLogFormat, defaults.LogFormat, "Log format: json or console")
	flags.String(flagLogLevel, defaults.LogLevel, "Log level")

	cmd.AddCommand(newServeCommand(cfg), newMigrateCommand(cfg), newRecoverCommand(cfg))
	return cmd
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC APIs with the release scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *cfg)
		},
	}
}

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the store schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), *cfg, cmd.OutOrStdout())
		},
	}
}

func newRecoverCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Release every held booking whose hold has expired and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runRecover(ctx, *cfg, cmd.OutOrStdout())
		},
	}
}

func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	v := viper.New()
	for flagName, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}
	configFile, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return err
	}
	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	*cfg = loaded
	return nil
}
