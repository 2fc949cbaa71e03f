/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"haven/domain/util"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the vault, its strategies and the harvester",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		vault := statisticInteractor.Vault()

		fmt.Printf("------------- VAULT @ %v -----------------\n", vault.Height)
		fmt.Printf("Total assets : %v\n", util.MicroToUnitString(vault.TotalAssets))
		fmt.Printf("Total shares : %v\n", util.SharesString(vault.TotalShares))
		fmt.Printf("Share price  : %v\n", vault.SharePrice.StringFixed(6))
		fmt.Printf("Depositors   : %v\n", vault.Depositors)

		fmt.Printf("------------- STRATEGIES -----------------\n")
		for _, s := range vault.Strategies {
			due := ""
			if s.Due {
				due = " (due)"
			}
			fmt.Printf("%v %-15v %-6v APY %-7v TVL %v, yield %v, last harvest @ %v%v\n",
				s.Params.ID, s.Params.Name, s.Params.Risk, util.BpsString(s.Params.APYBps),
				util.MicroToUnitString(s.TVL), util.MicroToUnitString(s.Yield), s.LastHarvestHeight, due)
		}

		h := vault.Harvest
		fmt.Printf("------------- HARVESTER -----------------\n")
		fmt.Printf("Fee          : %v\n", util.BpsString(h.FeeBps))
		fmt.Printf("Harvests     : %v, last @ %v\n", h.Harvests, h.LastHarvestHeight)
		fmt.Printf("Rewards      : %v\n", util.MicroToUnitString(h.LifetimeRewards))
		fmt.Printf("Fees         : %v, unclaimed %v\n",
			util.MicroToUnitString(h.LifetimeFees), util.MicroToUnitString(h.AccumulatedFee))
		fmt.Printf("Harvesters   : %v\n", vault.Harvesters)

		memo, err := memoInteractor.GetHarvestMemo()
		if err != nil {
			return err
		}
		if memo.Cycles > 0 {
			fmt.Printf("Bot          : %v cycles, last check %v\n", memo.Cycles, humanize.Time(memo.LastCheckTime))
		}
		if memo.LastHarvestTime != nil {
			fmt.Printf("Last harvest : %v\n", humanize.Time(*memo.LastHarvestTime))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
