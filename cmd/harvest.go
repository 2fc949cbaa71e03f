/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"haven/domain"
	"haven/domain/util"

	"github.com/spf13/cobra"
)

var (
	callerFlag    string
	harvesterFlag string
	recipientFlag string
	feeFlag       uint64
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvester operations",
}

var harvestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Harvests every due strategy once",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		result, err := ledgerInteractor.Harvest(caller())
		if err != nil {
			return reportError(err)
		}
		if result.TotalRewards == 0 {
			fmt.Println("🔵 Nothing to harvest yet.")
			return nil
		}
		for _, r := range result.Rewards {
			if r.Reward == 0 {
				continue
			}
			fmt.Printf("   Strategy %v : %v, credited %v\n", r.Strategy,
				util.MicroToUnitString(r.Reward), util.MicroToUnitString(r.Net))
		}
		fmt.Printf("✅ Harvested %v, fee %v, credited %v\n",
			util.MicroToUnitString(result.TotalRewards),
			util.MicroToUnitString(result.Fee),
			util.MicroToUnitString(result.Net))
		return nil
	},
}

var harvestCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Tells whether any strategy is due for harvest",
	Run: func(cmd *cobra.Command, args []string) {
		defaultDependencyInject()
		defer logger.Sync()

		if ledgerInteractor.CanHarvest() {
			fmt.Println("🟢 A harvest is due.")
		} else {
			fmt.Println("🔵 No strategy is due.")
		}
	},
}

var harvestAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Authorizes another harvester",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		if err := ledgerInteractor.AddHarvester(caller(), domain.Principal(harvesterFlag)); err != nil {
			return reportError(err)
		}
		fmt.Printf("✅ %v may now harvest.\n", harvesterFlag)
		return nil
	},
}

var harvestClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Transfers accumulated performance fees",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		if err := ledgerInteractor.ClaimFees(caller(), domain.Principal(recipientFlag), feeFlag); err != nil {
			return reportError(err)
		}
		fmt.Printf("✅ Transferred %v to %v\n", util.MicroToUnitString(feeFlag), recipientFlag)
		return nil
	},
}

// caller defaults to the configured operator.
func caller() domain.Principal {
	if callerFlag == "" {
		return domain.GetOperator()
	}
	return domain.Principal(callerFlag)
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	harvestCmd.AddCommand(harvestRunCmd, harvestCheckCmd, harvestAddCmd, harvestClaimCmd)

	harvestCmd.PersistentFlags().StringVarP(&callerFlag, "caller", "c", "", "calling principal, the operator if empty")
	harvestAddCmd.Flags().StringVar(&harvesterFlag, "harvester", "", "principal to authorize")
	harvestAddCmd.MarkFlagRequired("harvester")
	harvestClaimCmd.Flags().StringVar(&recipientFlag, "recipient", "", "principal receiving the fees")
	harvestClaimCmd.Flags().Uint64VarP(&feeFlag, "amount", "a", 0, "amount in micro units")
	harvestClaimCmd.MarkFlagRequired("recipient")
}
