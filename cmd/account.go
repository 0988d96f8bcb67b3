/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"strings"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tonkeeper/tongo"
)

var accountFrom string
var accountTo string

// accountCmd runs participant operations on behalf of --from. Amounts are in
// base units of the stake asset.
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Runs pool operations for a participant",
}

var depositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Stakes an amount for --to, pulled from --from through its allowance",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		amount := parseAmount(args[0])
		runAccount(func(from, to tongo.AccountID) error {
			return poolInteractor.Deposit(from, amount, to)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <amount>",
	Short: "Withdraws stake and realized reward to --to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		amount := parseAmount(args[0])
		runAccount(func(from, to tongo.AccountID) error {
			return poolInteractor.Withdraw(from, amount, to)
		})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Pays the pending reward to --to",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAccount(func(from, to tongo.AccountID) error {
			return poolInteractor.Claim(from, to)
		})
	},
}

var emergencyWithdrawCmd = &cobra.Command{
	Use:   "emergency-withdraw",
	Short: "Returns the whole stake to --to and forfeits the pending reward",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAccount(func(from, to tongo.AccountID) error {
			return poolInteractor.EmergencyWithdraw(from, to)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Settles the reward of --from without moving funds",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runAccount(func(from, to tongo.AccountID) error {
			return poolInteractor.Update(from)
		})
	},
}

func runAccount(task func(from, to tongo.AccountID) error) {
	from := parseAddress(accountFrom)
	to := from
	if accountTo != "" {
		to = parseAddress(accountTo)
	}

	requirePostgres("account")
	defaultDependencyInject()

	if err := task(from, to); err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	pool, err := poolInteractor.Pool()
	if err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	info, err := poolInteractor.UserInfo(from)
	if err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
	printOutUserInfo(pool, info)
}

func parseAmount(value string) *uint256.Int {
	amount, err := uint256.FromDecimal(strings.ReplaceAll(value, "_", ""))
	if err != nil {
		log.Fatalf("⛔️ Invalid amount %q - %v", value, err.Error())
	}
	return amount
}

func init() {
	rootCmd.AddCommand(accountCmd)

	accountCmd.PersistentFlags().StringVar(&accountFrom, "from", "", "participant address")
	accountCmd.PersistentFlags().StringVar(&accountTo, "to", "", "recipient address (default is --from)")
	accountCmd.MarkPersistentFlagRequired("from")

	for _, command := range []*cobra.Command{depositCmd, withdrawCmd, claimCmd, emergencyWithdrawCmd, updateCmd} {
		accountCmd.AddCommand(command)
	}
}
