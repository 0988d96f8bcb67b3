package cmd

import (
	"database/sql"
	"time"

	"stakepool/domain"
	"stakepool/domain/config"
	"stakepool/infrastructure/dbhandler"
	"stakepool/infrastructure/memory"
	"stakepool/interface/repository"
	"stakepool/usecase"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

func defaultDependencyInject() {
	var stateRepository usecase.StateRepository
	var stakeLedger, rewardLedger domain.AssetIssuer
	var memoRepository usecase.MemoRepository

	switch config.GetStorage() {
	case config.StoragePostgres:
		var err error
		dbPool, err = sql.Open("postgres", config.GetDbUri())
		if err != nil {
			log.Fatal(err)
		}
		dbPool.SetMaxOpenConns(20)
		dbPool.SetMaxIdleConns(5)
		dbPool.SetConnMaxIdleTime(1 * time.Minute)
		dbPool.SetConnMaxLifetime(4 * time.Hour)

		dbHandler = dbhandler.DBHandler{DB: dbPool}

		postgresRepository := repository.NewStateRepository(dbHandler)
		stateRepository = postgresRepository
		eventRepository = postgresRepository.EventRepository
		poolRepository = postgresRepository.PoolRepository
		memoRepository = repository.NewMemoRepository(dbHandler)

		stakeLedger = repository.NewLedgerRepository(dbHandler, config.GetStakeAsset())
		rewardLedger = stakeLedger
		if config.GetRewardAsset() != config.GetStakeAsset() {
			rewardLedger = repository.NewLedgerRepository(dbHandler, config.GetRewardAsset())
		}

	case config.StorageMemory:
		stateRepository = memory.NewStore()
		memoRepository = memory.NewMemoStore()
		stakeLedger = memory.NewLedger(config.GetStakeAsset())
		rewardLedger = stakeLedger
		if config.GetRewardAsset() != config.GetStakeAsset() {
			rewardLedger = memory.NewLedger(config.GetRewardAsset())
		}
	}

	treasuryInteractor = usecase.NewTreasuryInteractor(rewardLedger)
	poolInteractor = usecase.NewPoolInteractor(stateRepository, stakeLedger, rewardLedger, treasuryInteractor, nil)
	ledgerInteractor = usecase.NewLedgerInteractor(poolInteractor, stakeLedger, rewardLedger)
	memoInteractor := usecase.NewMemoInteractor(memoRepository)
	monitorInteractor = usecase.NewMonitorInteractor(poolInteractor, memoInteractor, config.GetLowAllowanceThreshold())

	if config.GetStorage() == config.StorageMemory {
		log.Warn("🟡 Using in-memory storage, nothing will survive a restart")
		if _, err := poolInteractor.Initialize(config.PoolParams()); err != nil {
			log.Fatalf("Unable to initialize in-memory pool - %v", err.Error())
		}
	}
}

// requirePostgres stops commands whose effect would vanish with the process
// under in-memory storage.
func requirePostgres(command string) {
	if config.GetStorage() != config.StoragePostgres {
		log.Fatalf("⛔️ '%v' needs postgres storage, the in-memory pool lives only as long as 'start'", command)
	}
}

var dbPool *sql.DB
var dbHandler repository.TxBatchHandler
var poolRepository *repository.PoolRepository
var eventRepository *repository.EventRepository
var poolInteractor *usecase.PoolInteractor
var treasuryInteractor *usecase.TreasuryInteractor
var ledgerInteractor *usecase.LedgerInteractor
var monitorInteractor *usecase.MonitorInteractor
