// Package cmd implements the command-line interface of the event scraper.
package cmd

import (
	"fmt"
	"os"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/logger"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(config.Setup)

	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	lo.Must0(viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.PersistentFlags().String("browser-path", "", "Explicit Chrome/Chromium binary")
	lo.Must0(viper.BindPFlag(config.KeyBrowserPath, rootCmd.PersistentFlags().Lookup("browser-path")))

	rootCmd.PersistentFlags().Bool("headless", true, "Run the browser without a window")
	lo.Must0(viper.BindPFlag(config.KeyBrowserHeadless, rootCmd.PersistentFlags().Lookup("headless")))

	rootCmd.PersistentFlags().Int("max-scroll-attempts", 8, "Upper bound of scroll rounds per source")
	lo.Must0(viper.BindPFlag(config.KeyMaxScrollAttempts, rootCmd.PersistentFlags().Lookup("max-scroll-attempts")))
}

// rootCmd is the entry point of the eventscraper binary
var rootCmd = &cobra.Command{
	Use:          "eventscraper",
	Short:        "Aggregate hackathon listings from Devfolio, Devpost and Unstop",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Configure(viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyEnvironment))
	},
}

// Execute runs the command selected on the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the merged flag, environment and default configuration
func loadConfig() (*config.Config, error) {
	cfg := config.FromViper(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
