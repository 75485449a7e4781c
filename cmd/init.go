package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/folio-dev/folio/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .folio.yml",
	Long: `Write a .folio.yml with the default configuration into the current
directory, as a starting point for customization.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing .folio.yml")
}

func runInit(cmd *cobra.Command, args []string) error {
	const path = ".folio.yml"

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.Config{
		Server: config.ServerConfig{
			Host: config.DefaultHost,
		},
		Watch: config.WatchConfig{
			Debounce: config.DefaultDebounce,
		},
		Compile: config.CompileConfig{
			Scale:       config.DefaultScale,
			EvictionAge: config.DefaultEvictionAge,
		},
		Fonts: config.FontsConfig{
			System: true,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Println("Wrote", path)
	return nil
}
