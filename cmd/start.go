/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"haven/domain"
	"haven/domain/util"
	"haven/interface/exporter"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the harvest bot",
	Long: `Starts the harvest bot and the metrics endpoint. The bot polls the
strategies every harvest_interval and harvests when one is due. To stop it,
run 'stop' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("start called.")

		defaultDependencyInject()
		defer logger.Sync()

		if err := writePidFile(domain.GetPidFile()); err != nil {
			logger.Fatal("🔴 writing pid file", zap.String("path", domain.GetPidFile()), zap.Error(err))
		}
		defer os.Remove(domain.GetPidFile())

		registry := exporter.Init()
		ledgerInteractor.Publish()
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: domain.GetMetricsAddr(), Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("🔴 metrics server stopped", zap.Error(err))
			}
		}()

		quit := make(chan bool)
		harvestTicker := schedule(harvest, domain.GetHarvestInterval(), quit)
		metricTicker := schedule(refreshMetrics, domain.GetMetricInterval(), quit)
		harvest()

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		logger.Info("stopping", zap.Stringer("signal", s))

		harvestTicker.Stop()
		metricTicker.Stop()
		close(quit)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("🟡 metrics server shutdown", zap.Error(err))
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

func harvest() {
	result, err := harvestInteractor.RunCycle()
	if err != nil {
		fmt.Printf("❌ Harvest cycle failed - %v\n", err.Error())
		return
	}
	if result != nil && result.TotalRewards > 0 {
		fmt.Printf("✅ Harvested %v, fee %v, credited %v\n",
			util.MicroToUnitString(result.TotalRewards),
			util.MicroToUnitString(result.Fee),
			util.MicroToUnitString(result.Net))
	}
}

func refreshMetrics() {
	if err := ledgerInteractor.Refresh(); err != nil {
		logger.Warn("🟡 refreshing ledger", zap.Error(err))
	}
	ledgerInteractor.Publish()
}

func writePidFile(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil && processAlive(pid) {
			return fmt.Errorf("already running as pid %v", pid)
		}
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

func init() {
	rootCmd.AddCommand(startCmd)
}
