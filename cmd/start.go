/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"stakepool/domain"
	"stakepool/domain/config"
	"stakepool/domain/util"
	"stakepool/interface/exporter"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var quit = make(chan bool)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the pool monitor",
	Long: `Starts watching the pool and its treasury and serves the metrics.
To stop it, run 'stop' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("start called.")

		defaultDependencyInject()
		exporter.Init()

		pool, err := poolInteractor.Pool()
		if err != nil {
			log.Fatalf("⛔️ Pool is not available, run 'init' first - %v", err.Error())
		}
		printOutPool(pool)

		poolInteractor.Subscribe(logEvent)
		writePidFile()
		defer removePidFile()

		server := serveMetrics(config.GetMetricsAddress())
		monitor()
		monitorTicker := schedule(monitor, config.GetMonitorInterval(), quit)

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Infof("Got signal '%v', stopping", s)

		monitorTicker.Stop()
		close(quit)
		if server != nil {
			server.Close()
		}
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func monitor() {
	status, err := monitorInteractor.Check()
	if err != nil {
		log.Errorf("❌ Failed to check the treasury - %v", err.Error())
		return
	}
	log.Debugf("🔵 Treasury state is %v", status.State)
}

func serveMetrics(address string) *http.Server {
	if address == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: address, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("❌ Metrics server stopped - %v", err.Error())
		}
	}()
	log.Infof("🔵 Serving metrics on %v/metrics", address)
	return server
}

func logEvent(event domain.Event) {
	log.WithFields(log.Fields{
		"kind":    event.Kind,
		"account": config.HumanAddress(event.Account),
		"amount":  event.Amount.Dec(),
	}).Info("🔵 pool event")
}

func writePidFile() {
	if config.GetPidFile() == "" {
		return
	}
	err := os.WriteFile(config.GetPidFile(), []byte(strconv.Itoa(os.Getpid())), 0644)
	if err != nil {
		log.Warnf("🟡 Unable to write pid file - %v", err.Error())
	}
}

func removePidFile() {
	if config.GetPidFile() != "" {
		os.Remove(config.GetPidFile())
	}
}

func printOutPool(pool *domain.PoolState) {
	fmt.Printf("------------- STAKING POOL -----------------\n")
	fmt.Printf("Network       : %v\n", config.GetNetwork())
	fmt.Printf("Pool          : %v\n", config.HumanAddress(pool.PoolAddress))
	fmt.Printf("Owner         : %v\n", config.HumanAddress(pool.Owner))
	fmt.Printf("Treasury      : %v\n", config.HumanAddress(pool.Treasury))
	fmt.Printf("Fee collector : %v\n", config.HumanAddress(pool.FeeCollector))
	fmt.Printf("Stake asset   : %v\n", pool.StakeAsset)
	fmt.Printf("Reward asset  : %v\n", pool.RewardAsset)
	fmt.Printf("Base APY      : %v\n", util.RateString(pool.BaseAPY, domain.Accuracy))
	if last := len(pool.APYHistory) - 1; last >= 0 {
		since := pool.APYHistory[last].Since
		if now := uint64(time.Now().Unix()); now > since {
			fmt.Printf("Base APY held : %v\n", util.DurationString(now-since))
		}
	}
	fmt.Printf("Fee rate      : %v\n", util.RateString(pool.FeeRate, domain.Accuracy))
	fmt.Printf("Total staked  : %v\n", util.AmountString(&pool.TotalStaked, pool.Decimals, pool.StakeAsset))
	fmt.Printf("Last accrual  : %v\n", util.UnixTimeString(pool.LastAccrualTime))
	fmt.Printf("Created       : %v\n", pool.CreateTime.Format(time.RFC3339))
}

func init() {
	rootCmd.AddCommand(startCmd)
}
