package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"stakepool/domain"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tonkeeper/tongo"
)

const (
	MainNetwork = "mainnet"
	TestNetwork = "testnet"

	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var (
	ErrorInvalidNetwork = fmt.Errorf("network must be equal to 'mainnet' or 'testnet' only")
	ErrorInvalidStorage = fmt.Errorf("storage must be equal to 'postgres' or 'memory' only")
	ErrorNoDbUri        = fmt.Errorf("service_db_uri is required for postgres storage")

	ErrorInvalidPoolAddress         = fmt.Errorf("invalid pool address")
	ErrorInvalidOwnerAddress        = fmt.Errorf("invalid owner address")
	ErrorInvalidTreasuryAddress     = fmt.Errorf("invalid treasury address")
	ErrorInvalidFeeCollectorAddress = fmt.Errorf("invalid fee collector address")

	ErrorNoStakeAsset          = fmt.Errorf("stake_asset is required")
	ErrorInvalidFeeRate        = fmt.Errorf("fee_rate must be between 0 and %v", domain.Accuracy)
	ErrorInvalidDecimals       = fmt.Errorf("decimals must be between 1 and 36")
	ErrorInvalidMonitorInteval = fmt.Errorf("invalid time interval for treasury monitor")
	ErrorInvalidThreshold      = fmt.Errorf("invalid low allowance threshold")
	ErrorInvalidLogLevel       = fmt.Errorf("invalid log level")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri    string
	network  string
	storage  string
	logLevel log.Level

	poolAddress         tongo.AccountID
	ownerAddress        tongo.AccountID
	treasuryAddress     tongo.AccountID
	feeCollectorAddress tongo.AccountID

	stakeAsset  string
	rewardAsset string
	baseAPY     uint64
	feeRate     uint64
	decimals    uint8

	metricsAddress        string
	pidFile               string
	monitorInterval       time.Duration
	lowAllowanceThreshold uint256.Int
)

func init() {
	viper.SetDefault("network", MainNetwork)
	viper.SetDefault("storage", StoragePostgres)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("base_apy", 1200)
	viper.SetDefault("fee_rate", 0)
	viper.SetDefault("decimals", domain.DefaultDecimals)
	viper.SetDefault("metrics_address", ":9090")
	viper.SetDefault("monitor_interval", "1m")
	viper.SetDefault("low_allowance_threshold", "0")
	viper.SetDefault("pid_file", "stakepool.pid")
}

func ReadConfig(filePath string) {
	if filePath != "" {
		viper.SetConfigFile(filePath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warnf("⚠️ Failed reading config file: %v", err.Error())
	}

	err := initializeVariables()
	if err != nil {
		log.Fatalf("Configuration error - %v", err.Error())
	}

	log.SetLevel(logLevel)
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	// Logging stuff
	logLevel, err = log.ParseLevel(strings.TrimSpace(viper.GetString("log_level")))
	if err != nil {
		return ErrorInvalidLogLevel
	}

	// Network stuff
	network = strings.TrimSpace(strings.ToLower(viper.GetString("network")))
	if network != MainNetwork && network != TestNetwork {
		return ErrorInvalidNetwork
	}

	// Storage stuff
	storage = strings.TrimSpace(strings.ToLower(viper.GetString("storage")))
	if storage != StoragePostgres && storage != StorageMemory {
		return ErrorInvalidStorage
	}
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")
	if storage == StoragePostgres && dbUri == "" {
		return ErrorNoDbUri
	}

	// Addresses
	if poolAddress, err = domain.ParseAccount(viper.GetString("pool_address")); err != nil {
		return ErrorInvalidPoolAddress
	}
	if ownerAddress, err = domain.ParseAccount(viper.GetString("owner_address")); err != nil {
		return ErrorInvalidOwnerAddress
	}
	if treasuryAddress, err = domain.ParseAccount(viper.GetString("treasury_address")); err != nil {
		return ErrorInvalidTreasuryAddress
	}
	if feeCollectorAddress, err = domain.ParseAccount(viper.GetString("fee_collector_address")); err != nil {
		return ErrorInvalidFeeCollectorAddress
	}

	// Pool parameters
	stakeAsset = strings.TrimSpace(viper.GetString("stake_asset"))
	if stakeAsset == "" {
		return ErrorNoStakeAsset
	}
	rewardAsset = strings.TrimSpace(viper.GetString("reward_asset"))
	if rewardAsset == "" {
		rewardAsset = stakeAsset
	}

	baseAPY = viper.GetUint64("base_apy")

	feeRate = viper.GetUint64("fee_rate")
	if feeRate > domain.Accuracy {
		return ErrorInvalidFeeRate
	}

	d := viper.GetInt("decimals")
	if d < 1 || d > 36 {
		return ErrorInvalidDecimals
	}
	decimals = uint8(d)

	//---------------------------------------------------------------
	// monitor
	metricsAddress = strings.TrimSpace(viper.GetString("metrics_address"))
	pidFile = strings.TrimSpace(viper.GetString("pid_file"))

	monitorInterval, err = time.ParseDuration(viper.GetString("monitor_interval"))
	if err != nil || monitorInterval <= 0 {
		return ErrorInvalidMonitorInteval
	}

	if err = lowAllowanceThreshold.SetFromDecimal(strings.TrimSpace(viper.GetString("low_allowance_threshold"))); err != nil {
		return ErrorInvalidThreshold
	}

	return nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetNetwork() string {
	return network
}

func GetStorage() string {
	return storage
}

func GetPoolAddress() tongo.AccountID {
	return poolAddress
}

func GetOwnerAddress() tongo.AccountID {
	return ownerAddress
}

func GetTreasuryAddress() tongo.AccountID {
	return treasuryAddress
}

func GetFeeCollectorAddress() tongo.AccountID {
	return feeCollectorAddress
}

func GetStakeAsset() string {
	return stakeAsset
}

func GetRewardAsset() string {
	return rewardAsset
}

func GetMetricsAddress() string {
	return metricsAddress
}

func GetPidFile() string {
	return pidFile
}

func GetMonitorInterval() time.Duration {
	return monitorInterval
}

// GetLowAllowanceThreshold is in whole reward units.
func GetLowAllowanceThreshold() *uint256.Int {
	return lowAllowanceThreshold.Clone()
}

// -------------------------------------------------------------------
// Evaluating values

func IsTestNet() bool {
	return network == TestNetwork
}

func PoolParams() domain.PoolParams {
	return domain.PoolParams{
		PoolAddress:  poolAddress,
		Owner:        ownerAddress,
		StakeAsset:   stakeAsset,
		RewardAsset:  rewardAsset,
		Treasury:     treasuryAddress,
		FeeCollector: feeCollectorAddress,
		BaseAPY:      baseAPY,
		FeeRate:      feeRate,
		Decimals:     decimals,
	}
}

func HumanAddress(accid tongo.AccountID) string {
	return accid.ToHuman(true, IsTestNet())
}
