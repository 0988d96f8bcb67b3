/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"strconv"

	"stakepool/domain"
	"stakepool/domain/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tonkeeper/tongo"
)

// adminCmd groups the owner-only commands. The configured owner address is
// the caller of all of them.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Changes pool parameters as the owner",
}

var setAPYCmd = &cobra.Command{
	Use:   "set-apy <base-apy>",
	Short: "Sets the base APY, where 1000 means 10%",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value := parseRate(args[0])
		runAdmin(func() error {
			return poolInteractor.SetBaseAPY(config.GetOwnerAddress(), value)
		})
	},
}

var setFeeCmd = &cobra.Command{
	Use:   "set-fee <fee-rate>",
	Short: "Sets the fee rate, where 1 means 0.01%",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		value := parseRate(args[0])
		runAdmin(func() error {
			return poolInteractor.SetFeeRate(config.GetOwnerAddress(), value)
		})
	},
}

var setTreasuryCmd = &cobra.Command{
	Use:   "set-treasury <address>",
	Short: "Sets the account rewards are paid from",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		accid := parseAddress(args[0])
		runAdmin(func() error {
			return poolInteractor.SetRewardTreasury(config.GetOwnerAddress(), accid)
		})
	},
}

var setFeeCollectorCmd = &cobra.Command{
	Use:   "set-fee-collector <address>",
	Short: "Sets the account fees are sent to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		accid := parseAddress(args[0])
		runAdmin(func() error {
			return poolInteractor.SetFeeCollector(config.GetOwnerAddress(), accid)
		})
	},
}

var transferOwnershipCmd = &cobra.Command{
	Use:   "transfer-ownership <address>",
	Short: "Hands the pool over to a new owner",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		accid := parseAddress(args[0])
		runAdmin(func() error {
			return poolInteractor.TransferOwnership(config.GetOwnerAddress(), accid)
		})
	},
}

var renounceCmd = &cobra.Command{
	Use:   "renounce",
	Short: "Renounces ownership, which the pool never allows",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAdmin(func() error {
			return poolInteractor.RenounceOwnership(config.GetOwnerAddress())
		})
	},
}

func runAdmin(task func() error) {
	requirePostgres("admin")
	defaultDependencyInject()

	if err := task(); err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	pool, err := poolInteractor.Pool()
	if err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	printOutPool(pool)
}

func parseRate(value string) uint64 {
	rate, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Fatalf("⛔️ Invalid rate %q, an integer of 1/%v is expected", value, domain.Accuracy)
	}
	return rate
}

func parseAddress(value string) tongo.AccountID {
	accid, err := domain.ParseAccount(value)
	if err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	return accid
}

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.AddCommand(setAPYCmd)
	adminCmd.AddCommand(setFeeCmd)
	adminCmd.AddCommand(setTreasuryCmd)
	adminCmd.AddCommand(setFeeCollectorCmd)
	adminCmd.AddCommand(transferOwnershipCmd)
	adminCmd.AddCommand(renounceCmd)
}
