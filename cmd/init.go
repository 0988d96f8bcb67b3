/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"stakepool/domain/config"
	"stakepool/interface/repository"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the database schema and the pool",
	Long: `Creates the tables if they are missing and initializes the pool from the
configured addresses, assets, base APY and fee rate. A pool can be initialized once.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("init called.")

		requirePostgres("init")
		defaultDependencyInject()

		if err := repository.Migrate(dbHandler); err != nil {
			log.Fatalf("⛔️ Unable to create database schema - %v", err.Error())
		}

		pool, err := poolInteractor.Initialize(config.PoolParams())
		if err != nil {
			log.Fatalf("⛔️ Unable to initialize the pool - %v", err.Error())
		}
		printOutPool(pool)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
