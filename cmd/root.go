package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hostexport/internal/config"
	"hostexport/internal/logger"
)

var version = "1.0.0"

var (
	cfg      *config.Config
	baseLog  = zerolog.Nop()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "hostexport",
	Short: "Export Hospitable reservations to CSV reports and an accounting ledger",
	Long: `hostexport pulls the reservations of one Hospitable property for a date
range and writes them as a flat CSV report. With accounting enabled it also
derives a long-format ledger export mapping every booking amount to an
account.

Configuration is read from the environment, optionally seeded from a .env
file. Command line flags override the environment.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent(baseLog, "root")
		log.Debug().
			Str("version", version).
			Msg("hostexport executed without a command")

		fmt.Println("Welcome to hostexport!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent(baseLog, "cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		_ = closeLog()
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL (trace, debug, info, warn, error)")
}

// setup loads the environment and builds the run logger shared by all commands.
func setup(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	envErr := godotenv.Load(envFile)

	cfg = config.Load()
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log, closeFn, err := logger.New(cfg.GetLoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize logger: %v\n", err)
		log, closeFn, err = logger.New(logger.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	closeLog = closeFn
	baseLog = logger.WithRunID(log, uuid.NewString())

	if envErr != nil {
		// Running purely from the environment is fine
		baseLog.Debug().Err(envErr).Str("file", envFile).Msg("Environment file not loaded")
	}

	baseLog.Debug().
		Str("version", version).
		Str("command", cmd.Name()).
		Msg("Starting hostexport")
	return nil
}
