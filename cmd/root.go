/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"haven/domain"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "haven",
	Short: "Pooled-deposit vault with multi-strategy yield",
	Long: `haven keeps a share-based vault ledger whose deposits are routed to
three yield strategies, and runs the harvester that realizes their yield.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		domain.ReadConfig(cfgFile)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}
