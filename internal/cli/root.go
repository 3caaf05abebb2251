// Package cli provides the command-line interface for orbit.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/version"
)

var (
	// Global flags
	cfgFile  string
	clientID string
	apiKey   string
	verbose  bool
	debug    bool

	// Loaded in PersistentPreRunE
	appConfig *config.AppConfig

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "orbit",
		Short: "Orbit - cloud drive client",
		Long: `Orbit ` + version.Version + ` - Built: ` + version.BuildTime + `
Browse, search and upload to your drive from the terminal.

With no connection record saved, orbit signs in to a demo drive.
Save a client id and API key with 'orbit config set' to use a live
backend configured in orbit.ini.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAppConfig(cfgFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			appConfig = cfg

			logger = logging.NewLogger(logging.Options{
				Component: "cli",
				File:      config.ResolveLogFile(cfg.LogFile),
			})
			level := logging.ParseLevel(cfg.LogLevel)
			if verbose || debug {
				level = zerolog.DebugLevel
			}
			logging.SetGlobalLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.config/orbit/orbit.ini)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Client id for this run (overrides the saved record)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for this run (overrides the saved record)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)
	if logger != nil {
		logger.Close()
	}

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewComponentLogger("cli")
	}
	return logger
}

// GetContext returns the global CLI context.
// It is cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// GetAppConfig returns the loaded app config, or defaults before PersistentPreRunE.
func GetAppConfig() *config.AppConfig {
	if appConfig == nil {
		appConfig = config.NewAppConfig()
	}
	return appConfig
}

// configPath returns --config or the default orbit.ini location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultAppConfigPath()
}
