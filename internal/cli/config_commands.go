package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/settings"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the connection record and app config",
		Long: `Configuration commands for orbit.

Commands:
  show  - Display the connection record and app config
  set   - Save the connection record
  path  - Show configuration file locations`,
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetAppConfig()
			out := cmd.OutOrStdout()

			store, err := settings.OpenStore(cfg.Settings)
			if err != nil {
				return err
			}
			s := settings.New(store, GetLogger().Named("settings"))
			defer s.Close()

			stored, err := s.Load(GetContext())
			if err != nil {
				return err
			}
			creds, source := config.ResolveCredentials(models.Credentials{ClientID: clientID, APIKey: apiKey}, stored)
			masked := creds.Masked()
			if source == "" {
				source = "none (demo mode)"
			}

			fmt.Fprintln(out, "Connection")
			fmt.Fprintf(out, "  Client ID:       %s\n", valueOrDash(masked.ClientID))
			fmt.Fprintf(out, "  API Key:         %s\n", valueOrDash(masked.APIKey))
			fmt.Fprintf(out, "  Source:          %s\n", source)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "App")
			fmt.Fprintf(out, "  Log level:       %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "  View mode:       %s\n", cfg.ViewMode)
			fmt.Fprintf(out, "  Upload policy:   %s\n", cfg.Upload.Policy)
			fmt.Fprintf(out, "  Latency:         login %s, navigation %s, upload %s\n",
				cfg.Latency.Login, cfg.Latency.Navigation, cfg.Latency.Upload)
			fmt.Fprintf(out, "  Settings store:  %s\n", describeStore(cfg.Settings))
			fmt.Fprintf(out, "  Live provider:   %s\n", describeLive(cfg.Live))
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	var (
		setClientID string
		setAPIKey   string
		policy      string
		provider    string
		bucket      string
		container   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the connection record and app settings",
		Long: `Save the connection record (client id and API key) to the settings
store, overwriting the previous record. App settings flags update orbit.ini.

Examples:
  orbit config set --client-id AKIA... --api-key secret
  orbit config set --client-id "" --api-key ""      # back to demo mode
  orbit config set --policy queue
  orbit config set --provider s3 --bucket my-drive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			flags := cmd.Flags()

			if flags.Changed("client-id") || flags.Changed("api-key") {
				bus := events.NewEventBus(constants.EventBusDefaultBuffer)
				defer bus.Close()

				engine, _, err := newEngine(GetContext(), GetAppConfig(), bus, GetLogger())
				if err != nil {
					return err
				}
				defer engine.Close()

				creds := engine.Config()
				if flags.Changed("client-id") {
					creds.ClientID = setClientID
				}
				if flags.Changed("api-key") {
					creds.APIKey = setAPIKey
				}
				if err := engine.SaveConfig(GetContext(), creds); err != nil {
					return err
				}
				fmt.Fprintln(out, "Connection record saved")
			}

			if flags.Changed("policy") || flags.Changed("provider") || flags.Changed("bucket") || flags.Changed("container") {
				cfg := GetAppConfig()
				if flags.Changed("policy") {
					cfg.Upload.Policy = strings.ToLower(policy)
				}
				if flags.Changed("provider") {
					cfg.Live.Provider = strings.ToLower(provider)
				}
				if flags.Changed("bucket") {
					cfg.Live.Bucket = bucket
				}
				if flags.Changed("container") {
					cfg.Live.Container = container
				}
				if err := cfg.Validate(); err != nil {
					return err
				}

				path, err := configPath()
				if err != nil {
					return err
				}
				if err := config.SaveAppConfig(cfg, path); err != nil {
					return err
				}
				fmt.Fprintf(out, "App config saved to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&setClientID, "client-id", "", "Client id (S3 access key id or Azure account name)")
	cmd.Flags().StringVar(&setAPIKey, "api-key", "", "API key (S3 secret key or Azure account key)")
	cmd.Flags().StringVar(&policy, "policy", "", "Upload policy: reject or queue")
	cmd.Flags().StringVar(&provider, "provider", "", "Live provider: s3, azure or empty")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket")
	cmd.Flags().StringVar(&container, "container", "", "Azure container")
	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg := GetAppConfig()
			fmt.Fprintf(cmd.OutOrStdout(), "App config:  %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Settings:    %s\n", describeStore(cfg.Settings))
			fmt.Fprintf(cmd.OutOrStdout(), "Logs:        %s\n", config.LogDirectory())
			return nil
		},
	}
}

func describeStore(s config.SettingsConfig) string {
	if s.Backend == "redis" {
		return fmt.Sprintf("redis %s db %d", s.RedisAddr, s.RedisDB)
	}
	return "file " + s.Path
}

func describeLive(l config.LiveConfig) string {
	switch l.Provider {
	case "s3":
		desc := "s3 bucket " + l.Bucket
		if l.Endpoint != "" {
			desc += " at " + l.Endpoint
		}
		return desc
	case "azure":
		return "azure container " + l.Container
	default:
		return "none"
	}
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
