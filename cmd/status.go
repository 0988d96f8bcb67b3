/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"stakepool/domain"
	"stakepool/domain/config"
	"stakepool/domain/util"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusAccount string
var statusEvents int
var statusAll bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the pool, its treasury and optionally an account",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()

		pool, err := poolInteractor.Pool()
		if err != nil {
			log.Fatalf("⛔️ Pool is not available - %v", err.Error())
		}
		printOutPool(pool)

		available, err := poolInteractor.AvailableReward()
		if err != nil {
			log.Fatalf("⛔️ Unable to read the treasury - %v", err.Error())
		}
		fmt.Printf("In treasury   : %v\n", util.AmountString(&available.InTreasury, pool.Decimals, pool.RewardAsset))
		fmt.Printf("Allowed       : %v\n", util.AmountString(&available.AllowedForPool, pool.Decimals, pool.RewardAsset))
		if memo, err := monitorInteractor.LastCheck(); err == nil && memo != nil {
			fmt.Printf("Last check    : %v (%v)\n", memo.State, util.UnixTimeString(uint64(memo.CheckTime)))
		}

		if statusAll && poolRepository != nil {
			accounts, err := poolRepository.FindAllAccounts()
			if err != nil {
				log.Fatalf("⛔️ Unable to read the accounts - %v", err.Error())
			}
			printOutAccounts(pool, accounts)
		}

		if statusAccount == "" {
			return
		}
		accid, err := domain.ParseAccount(statusAccount)
		if err != nil {
			log.Fatalf("⛔️ %v", err.Error())
		}
		info, err := poolInteractor.UserInfo(accid)
		if err != nil {
			log.Fatalf("⛔️ Unable to read the account - %v", err.Error())
		}
		printOutUserInfo(pool, info)

		if eventRepository == nil || statusEvents <= 0 {
			return
		}
		events, err := eventRepository.FindByAccount(accid, statusEvents)
		if err != nil {
			log.Fatalf("⛔️ Unable to read the events - %v", err.Error())
		}
		printOutEvents(pool, events)
	},
}

func printOutUserInfo(pool *domain.PoolState, info *domain.UserInfo) {
	fmt.Printf("------------- ACCOUNT -----------------\n")
	fmt.Printf("Account       : %v\n", config.HumanAddress(info.Account))
	fmt.Printf("Staked        : %v\n", util.AmountString(&info.Amount, pool.Decimals, pool.StakeAsset))
	fmt.Printf("Reward APY    : %v\n", util.RateString(info.RewardAPY, domain.Accuracy))
	fmt.Printf("Pending       : %v\n", util.AmountString(&info.PendingReward, pool.Decimals, pool.RewardAsset))
	fmt.Printf("Reward debt   : %v\n", util.AmountString(&info.RewardDebt, pool.Decimals, pool.RewardAsset))
	fmt.Printf("Last reward   : %v\n", util.UnixTimeString(info.LastRewardTime))
}

func printOutAccounts(pool *domain.PoolState, accounts []*domain.AccountState) {
	fmt.Printf("------------- ACCOUNT LIST -----------------\n")
	for i, account := range accounts {
		fmt.Printf("#%03d - %v %v (%v)\n", i+1, config.HumanAddress(account.Account),
			util.AmountString(&account.StakedAmount, pool.Decimals, pool.StakeAsset),
			util.RateString(domain.AccountAPY(pool, account), domain.Accuracy))
	}
}

func printOutEvents(pool *domain.PoolState, events []domain.Event) {
	fmt.Printf("------------- EVENTS -----------------\n")
	for i, event := range events {
		fmt.Printf("#%03d - %-18v %v", i+1, event.Kind, util.UnixTimeString(event.Time))
		switch event.Kind {
		case domain.EventAdmin:
			fmt.Printf(" %v=%v", event.Action, event.Value)
		case domain.EventUpdate:
			fmt.Printf(" staked %v", util.AmountString(&event.StakedAmount, pool.Decimals, pool.StakeAsset))
		default:
			fmt.Printf(" %v", event.Amount.Dec())
		}
		fmt.Printf("\n")
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAccount, "account", "", "account address to show")
	statusCmd.Flags().BoolVar(&statusAll, "all", false, "list every stored account")
	statusCmd.Flags().IntVar(&statusEvents, "events", 10, "number of latest account events to show")
}
