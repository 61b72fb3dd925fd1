package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subsync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
		printOnly  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := io.WriteString(cmd.OutOrStdout(), config.Sample())
				return err
			}
			target, err := resolveInitPath(targetPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set opensubtitles.api_key and subdl.api_key (or OPENSUBTITLES_API_KEY and SUBDL_API_KEY), then run doctor.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the sample to stdout instead of writing a file")
	return cmd
}

func resolveInitPath(value string) (string, error) {
	if value = strings.TrimSpace(value); value == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// newConfigValidateCommand loads the file itself so it can report where the
// configuration came from.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration and show the resolved settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			source := path
			if !exists {
				source = "defaults (no file at " + path + ")"
			}
			rows := [][]string{
				{"Source", source},
				{"Bind", cfg.Server.Bind},
				{"Auth token", yesNo(cfg.Server.Token != "")},
				{"Request timeout", cfg.RequestTimeout().String()},
				{"OpenSubtitles", providerState(cfg.OpenSubtitles.Enabled, cfg.OpenSubtitles.APIKey)},
				{"SubDL", providerState(cfg.SubDL.Enabled, cfg.SubDL.APIKey)},
				{"Translation engine", cfg.Translate.Engine},
				{"Translation memory", yesNo(cfg.Translate.MemoryEnabled)},
				{"Concurrency", strconv.Itoa(cfg.Translate.Concurrency)},
				{"Data dir", cfg.Paths.DataDir},
				{"Cache dir", cfg.Paths.CacheDir},
			}
			if err := writeRows(out, []string{"Setting", "Value"}, rows, nil); err != nil {
				return err
			}
			for _, missing := range cfg.MissingCredentials() {
				fmt.Fprintf(out, "Warning: %s is not set; that provider will be skipped\n", missing)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func providerState(enabled bool, apiKey string) string {
	switch {
	case !enabled:
		return "disabled"
	case apiKey == "":
		return "enabled, no api key"
	default:
		return "enabled"
	}
}
