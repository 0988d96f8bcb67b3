/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"stakepool/domain/util"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var ledgerAsset string

// ledgerCmd operates the asset ledgers the pool moves funds on. Amounts are in
// base units.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Funds accounts and records approvals on the asset ledgers",
}

var fundCmd = &cobra.Command{
	Use:   "fund <address> <amount>",
	Short: "Mints an amount of --asset to the address",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		accid := parseAddress(args[0])
		amount := parseAmount(args[1])
		runLedger(func(symbol string) error {
			if err := ledgerInteractor.Fund(symbol, accid, amount); err != nil {
				return err
			}
			balance, err := ledgerInteractor.Balance(symbol, accid)
			if err != nil {
				return err
			}
			fmt.Printf("Balance: %v\n", balance.Dec())
			return nil
		})
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <owner> <spender> <amount|max>",
	Short: "Sets the allowance of owner to spender on --asset",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		owner := parseAddress(args[0])
		spender := parseAddress(args[1])
		amount := new(uint256.Int).SetAllOne()
		if !strings.EqualFold(args[2], "max") {
			amount = parseAmount(args[2])
		}
		runLedger(func(symbol string) error {
			if err := ledgerInteractor.Approve(symbol, owner, spender, amount); err != nil {
				return err
			}
			allowance, err := ledgerInteractor.Allowance(symbol, owner, spender)
			if err != nil {
				return err
			}
			fmt.Printf("Allowance: %v\n", allowance.Dec())
			return nil
		})
	},
}

var fillTreasuryCmd = &cobra.Command{
	Use:   "fill-treasury <amount>",
	Short: "Tops the reward treasury up to an amount and lets the pool spend it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := parseAmount(args[0])
		runLedger(func(string) error {
			available, err := ledgerInteractor.FillTreasury(target)
			if err != nil {
				return err
			}
			pool, err := poolInteractor.Pool()
			if err != nil {
				return err
			}
			fmt.Printf("In treasury:      %v\n", util.AmountString(&available.InTreasury, pool.Decimals, pool.RewardAsset))
			fmt.Printf("Allowed for pool: %v\n", util.AmountString(&available.AllowedForPool, pool.Decimals, pool.RewardAsset))
			return nil
		})
	},
}

func runLedger(task func(symbol string) error) {
	requirePostgres("ledger")
	defaultDependencyInject()

	symbol := ledgerAsset
	if symbol == "" {
		pool, err := poolInteractor.Pool()
		if err != nil {
			log.Fatalf("⛔️ %v", err.Error())
		}
		symbol = pool.StakeAsset
	}

	if err := task(symbol); err != nil {
		log.Fatalf("⛔️ %v", err.Error())
	}
}

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.PersistentFlags().StringVar(&ledgerAsset, "asset", "", "asset symbol (default is the stake asset)")

	ledgerCmd.AddCommand(fundCmd)
	ledgerCmd.AddCommand(approveCmd)
	ledgerCmd.AddCommand(fillTreasuryCmd)
}
