package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/rachadinha/internal/config"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+err.Error()))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rachadinha",
		Short:         "Rachadinha - split a bar tab between friends",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(computeCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(parseAmountCmd())
	rootCmd.AddCommand(serviceChargeCmd())

	return rootCmd
}

// loadDefaults reads the same environment as the server for defaults.
func loadDefaults() (*config.Config, defaults, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, defaults{}, err
	}
	return cfg, defaults{serviceCharge: cfg.DefaultServiceCharge, flatFee: cfg.DefaultFlatFee}, nil
}
