package cli

import (
	"github.com/spf13/cobra"

	"github.com/nhle/transcript-insights/internal/model"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printf(cmd.OutOrStdout(), "%s\n", opts.configPath)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "api.base_url: %s\n", cfg.API.BaseURL)
			printf(out, "api.timeout_sec: %d\n", cfg.API.TimeoutSec)
			printf(out, "storage.path: %s\n", cfg.Storage.Path)
			printf(out, "auth.login_delay_ms: %d\n", cfg.Auth.LoginDelayMS)
			printf(out, "mailbox.enabled: %t\n", cfg.Mailbox.Enabled)
			printf(out, "mailbox.host: %s\n", cfg.Mailbox.Host)
			printf(out, "mailbox.port: %s\n", cfg.Mailbox.Port)
			printf(out, "mailbox.username: %s\n", cfg.Mailbox.Username)
			printf(out, "mailbox.tls: %t\n", cfg.Mailbox.TLS)
			printf(out, "mailbox.drafts: %s\n", cfg.Mailbox.Drafts)
			printf(out, "display.theme: %s\n", cfg.Display.Theme)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := model.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if err := model.SaveConfig(opts.configPath, cfg); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}

	cmd.AddCommand(path, show, initCmd)
	return cmd
}
