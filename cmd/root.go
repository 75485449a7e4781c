// Package cmd provides the command-line interface for folio.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--host, --debounce, etc.)
//  2. FOLIO_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (FOLIO_SERVER_HOST, etc.)
//  4. Configuration file (.folio.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "A live document preview tool",
	Long: `Folio watches a document and its dependencies, recompiles on every
relevant change, and streams the rendered pages to connected viewers
over WebSocket.

Quick Start:
  folio init                   Write a default .folio.yml
  folio watch main.doc         Watch a document and serve previews
  folio fonts                  List discovered font families`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .folio.yml, can also use FOLIO_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FOLIO_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".folio")
	}

	// FOLIO_SERVER_HOST, FOLIO_WATCH_DEBOUNCE, ...
	viper.SetEnvPrefix("FOLIO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file falls back to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
