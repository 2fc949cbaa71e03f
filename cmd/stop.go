/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"haven/domain"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stops the harvest bot",
	Long:  `Stops the harvest bot, which is started previously by 'start' command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("stop called.")

		data, err := os.ReadFile(domain.GetPidFile())
		if err != nil {
			return fmt.Errorf("no running bot found: %w", err)
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("invalid pid file %v: %w", domain.GetPidFile(), err)
		}

		// the bot removes its pid file once it has stopped
		process, err := os.FindProcess(pid)
		if err != nil {
			return err
		}
		return process.Signal(syscall.SIGTERM)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
