package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pickmyelective/electives/internal/version"
)

func main() {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "electives-indexer",
		Short:         "Embed the course corpus and manage served collections",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: config/<ENV>.yaml)")

	root.AddCommand(indexCMD(&opts), verifyCMD(&opts), swapCMD(&opts))
	if err := root.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
