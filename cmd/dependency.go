package cmd

import (
	"database/sql"
	"haven/domain"
	"haven/infrastructure/dbhandler"
	"haven/interface/repository"
	"haven/usecase"
	"log"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func defaultDependencyInject() {
	var err error

	logger, err = newLogger()
	if err != nil {
		log.Fatalf("Unable to create logger - %v\n", err.Error())
	}

	dbURI := domain.GetDbUri()
	dbPool, err = sql.Open("postgres", dbURI)
	if err != nil {
		logger.Fatal("🔴 opening database", zap.Error(err))
	}
	dbPool.SetMaxOpenConns(20)
	dbPool.SetMaxIdleConns(5)
	dbPool.SetConnMaxIdleTime(1 * time.Minute)
	dbPool.SetConnMaxLifetime(4 * time.Hour)

	dbHandler := dbhandler.New(dbPool, logger)
	if err = repository.Migrate(dbHandler); err != nil {
		logger.Fatal("🔴 preparing schema", zap.Error(err))
	}

	ledgerRepository := repository.NewLedgerRepository(dbHandler)
	memoRepository := repository.NewMemoRepository(dbHandler)

	clock := usecase.NewWallClock(domain.GetGenesisTime(), domain.GetBlockInterval())
	ledger, err := usecase.OpenLedger(domain.GetLedgerConfig(), clock, ledgerRepository)
	if err != nil {
		logger.Fatal("🔴 loading ledger", zap.Error(err))
	}

	ledgerInteractor = usecase.NewLedgerInteractor(ledger, clock, ledgerRepository, logger)
	memoInteractor = usecase.NewMemoInteractor(memoRepository)
	harvestInteractor = usecase.NewHarvestInteractor(ledgerInteractor, memoInteractor, domain.GetOperator(), logger)
	statisticInteractor = usecase.NewStatisticInteractor(ledgerInteractor)

	logger.Debug("dependencies ready",
		zap.Uint64("height", clock.Height()),
		zap.Uint64("sequence", ledger.Sequence()))
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(domain.GetLogLevel())
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	if domain.IsDebug() {
		cfg.Development = true
		cfg.Encoding = "console"
	}
	return cfg.Build()
}

var dbPool *sql.DB
var logger *zap.Logger
var ledgerInteractor *usecase.LedgerInteractor
var memoInteractor *usecase.MemoInteractor
var harvestInteractor *usecase.HarvestInteractor
var statisticInteractor *usecase.StatisticInteractor
