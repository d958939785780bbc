package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/handlers"
	"sjsage522/eventscraper/internal"
	"sjsage522/eventscraper/services/export"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringP("output", "o", "aggregated_events_direct_run.json", "File the scraped events are written to")
	lo.Must0(viper.BindPFlag(config.KeyOutputFile, scrapeCmd.Flags().Lookup("output")))
}

// scrapeCmd runs one aggregation from the command line
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape every source once and save the events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := internal.NewDependencies(ctx, cfg)
		defer deps.Cleanup()

		return runDirect(ctx, deps.Aggregator(), export.NewOsWriter(), cmd.OutOrStdout(), cfg.OutputFile)
	},
}

// runDirect scrapes once, prints a summary and saves the events to path when there are any
func runDirect(ctx context.Context, runner handlers.Runner, writer *export.Writer, out io.Writer, path string) error {
	fmt.Fprintln(out, "Running scraper directly...")
	result := runner.Run(ctx)

	fmt.Fprintln(out, "\n--- Direct Execution Results ---")
	fmt.Fprintf(out, "Message: %s\n", lo.Ternary(result.Message != "", result.Message, "N/A"))
	fmt.Fprintf(out, "Total Events Scraped: %d\n", result.TotalEvents)

	switch {
	case len(result.Events) > 0:
		fmt.Fprintln(out, "First 2 events (if available):")
		for i, event := range lo.Slice(result.Events, 0, 2) {
			fmt.Fprintf(out, "Event %d: %s from %s\n", i+1, event.Title, event.Source)
		}

		fmt.Fprintf(out, "\nSaving all events to %s...\n", path)
		if err := writer.WriteEvents(path, result.Events); err != nil {
			fmt.Fprintf(out, "Error writing to JSON file %s: %v\n", path, err)
			return err
		}
		fmt.Fprintf(out, "Data saved successfully to %s.\n", path)
	case result.Failed():
		fmt.Fprintf(out, "Error during scraping: %s\n", result.Error)
		fmt.Fprintf(out, "Details: %s\n", result.Details)
		return fmt.Errorf("%s: %s", result.Error, result.Details)
	default:
		fmt.Fprintln(out, "No events were scraped or an unknown issue occurred.")
	}

	fmt.Fprintln(out, "--- Direct Execution Finished ---")
	return nil
}
