package domain

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrorNoOperator             = fmt.Errorf("no operator is defined")
	ErrorNoHarvesterId          = fmt.Errorf("no harvester_id is defined")
	ErrorHarvesterIsOperator    = fmt.Errorf("harvester_id must differ from operator")
	ErrorInvalidGenesisTime     = fmt.Errorf("genesis_time must be an RFC3339 timestamp")
	ErrorInvalidBlockInterval   = fmt.Errorf("invalid block interval")
	ErrorInvalidHarvestInterval = fmt.Errorf("invalid time interval for harvest process")
	ErrorInvalidMetricInterval  = fmt.Errorf("invalid time interval for metric process")
	ErrorInvalidFee             = fmt.Errorf("fee_bps must be between 1 and 10000")
	ErrorInvalidReportMode      = fmt.Errorf("report_mode must be equal to 'aggregate' or 'per_strategy' only")
	ErrorInvalidStrategies      = fmt.Errorf("strategies must list A, B and C once each")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri string

	operatorPrincipal Principal
	harvesterId       Principal

	genesisTime   time.Time
	blockInterval time.Duration

	harvestInterval time.Duration
	metricInterval  time.Duration

	feeBps     uint64
	reportMode string
	strategies []StrategyParams

	metricsAddr string
	pidFile     string
	logLevel    string
)

func setDefaults() {
	viper.SetDefault("genesis_time", "2024-01-01T00:00:00Z")
	viper.SetDefault("block_interval", "10m")
	viper.SetDefault("harvest_interval", "1h")
	viper.SetDefault("metric_interval", "30s")
	viper.SetDefault("fee_bps", DefaultFeeBps)
	viper.SetDefault("report_mode", ReportAggregate)
	viper.SetDefault("metrics_addr", ":9102")
	viper.SetDefault("pid_file", "haven.pid")
	viper.SetDefault("log_level", "info")
}

func ReadConfig(filePath string) {
	setDefaults()
	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Failed reading config file: %v\n", err.Error())
	}

	err := initializeVariables()
	if err != nil {
		log.Fatalf("Configuration error - %v\n", err.Error())
	}
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")

	// Principals
	operatorPrincipal = Principal(strings.TrimSpace(viper.GetString("operator")))
	if operatorPrincipal == "" {
		return ErrorNoOperator
	}
	harvesterId = Principal(strings.TrimSpace(viper.GetString("harvester_id")))
	if harvesterId == "" {
		return ErrorNoHarvesterId
	}
	if harvesterId == operatorPrincipal {
		return ErrorHarvesterIsOperator
	}

	//---------------------------------------------------------------
	// chain height
	genesisTime, err = time.Parse(time.RFC3339, viper.GetString("genesis_time"))
	if err != nil {
		return ErrorInvalidGenesisTime
	}
	blockInterval, err = time.ParseDuration(viper.GetString("block_interval"))
	if err != nil || blockInterval <= 0 {
		return ErrorInvalidBlockInterval
	}

	//---------------------------------------------------------------
	// harvest interval
	harvestInterval, err = time.ParseDuration(viper.GetString("harvest_interval"))
	if err != nil || harvestInterval <= 0 {
		return ErrorInvalidHarvestInterval
	}

	//---------------------------------------------------------------
	// metric interval
	metricInterval, err = time.ParseDuration(viper.GetString("metric_interval"))
	if err != nil || metricInterval <= 0 {
		return ErrorInvalidMetricInterval
	}

	//---------------------------------------------------------------
	// fee and reporting
	feeBps = viper.GetUint64("fee_bps")
	if feeBps == 0 || feeBps > BasisPoints {
		return ErrorInvalidFee
	}
	reportMode = strings.TrimSpace(strings.ToLower(viper.GetString("report_mode")))
	if reportMode != ReportAggregate && reportMode != ReportPerStrategy {
		return ErrorInvalidReportMode
	}

	strategies = DefaultStrategies
	if viper.IsSet("strategies") {
		var custom []StrategyParams
		if err = viper.UnmarshalKey("strategies", &custom); err != nil {
			return ErrorInvalidStrategies
		}
		if err = validateStrategies(custom); err != nil {
			return err
		}
		strategies = custom
	}

	metricsAddr = strings.TrimSpace(viper.GetString("metrics_addr"))
	pidFile = strings.TrimSpace(viper.GetString("pid_file"))
	logLevel = strings.TrimSpace(strings.ToLower(viper.GetString("log_level")))

	return nil
}

func validateStrategies(list []StrategyParams) error {
	if len(list) != len(StrategyIDs) {
		return ErrorInvalidStrategies
	}
	for i, id := range StrategyIDs {
		if list[i].ID != id || list[i].HarvestInterval == 0 || list[i].APYBps > BasisPoints {
			return ErrorInvalidStrategies
		}
	}
	return nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetOperator() Principal {
	return operatorPrincipal
}

func GetHarvesterId() Principal {
	return harvesterId
}

func GetGenesisTime() time.Time {
	return genesisTime
}

func GetBlockInterval() time.Duration {
	return blockInterval
}

func GetHarvestInterval() time.Duration {
	return harvestInterval
}

func GetMetricInterval() time.Duration {
	return metricInterval
}

func GetMetricsAddr() string {
	return metricsAddr
}

func GetPidFile() string {
	return pidFile
}

func GetLogLevel() string {
	return logLevel
}

// -------------------------------------------------------------------
// Evaluating values

func GetLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Operator:   operatorPrincipal,
		Harvester:  harvesterId,
		Strategies: strategies,
		FeeBps:     feeBps,
		ReportMode: reportMode,
	}
}

func IsDebug() bool {
	return strings.Compare(logLevel, "debug") == 0
}
