/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"stakepool/domain/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stops the pool monitor",
	Long:  `Stops the pool monitor, which is started previously by 'start' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("stop called.")

		// the running 'start' command wrote its pid and waits for SIGTERM.
		content, err := os.ReadFile(config.GetPidFile())
		if err != nil {
			log.Fatalf("⛔️ No running monitor found - %v", err.Error())
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
		if err != nil {
			log.Fatalf("⛔️ Invalid pid file %v", config.GetPidFile())
		}
		if err = syscall.Kill(pid, syscall.SIGTERM); err != nil {
			log.Fatalf("⛔️ Unable to stop process %v - %v", pid, err.Error())
		}
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
