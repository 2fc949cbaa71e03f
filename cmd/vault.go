/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"haven/domain"
	"haven/domain/util"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	principalFlag  string
	amountFlag     uint64
	sharesFlag     uint64
	allocationFlag string
	reallocateFlag string
	historyFlag    int
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Deposits, withdrawals and positions",
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposits micro units and mints shares",
	RunE: func(cmd *cobra.Command, args []string) error {
		allocation, err := parseAllocation(allocationFlag)
		if err != nil {
			return err
		}

		defaultDependencyInject()
		defer logger.Sync()

		minted, err := ledgerInteractor.Deposit(domain.Principal(principalFlag), amountFlag, allocation)
		if err != nil {
			return reportError(err)
		}
		fmt.Printf("✅ Deposited %v for %v, allocation %v\n",
			util.MicroToUnitString(amountFlag), util.SharesString(minted), allocation)
		return nil
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Burns shares and pays out at the current share price",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		payout, err := ledgerInteractor.Withdraw(domain.Principal(principalFlag), sharesFlag)
		if err != nil {
			return reportError(err)
		}
		fmt.Printf("✅ Burned %v for %v\n", util.SharesString(sharesFlag), util.MicroToUnitString(payout))
		return nil
	},
}

var reallocateCmd = &cobra.Command{
	Use:   "reallocate",
	Short: "Changes the allocation applied to future deposits",
	RunE: func(cmd *cobra.Command, args []string) error {
		allocation, err := parseAllocation(reallocateFlag)
		if err != nil {
			return err
		}

		defaultDependencyInject()
		defer logger.Sync()

		if err := ledgerInteractor.Reallocate(domain.Principal(principalFlag), allocation); err != nil {
			return reportError(err)
		}
		fmt.Printf("✅ Allocation of %v is now %v\n", principalFlag, allocation)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Shows a depositor's position and latest activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultDependencyInject()
		defer logger.Sync()

		principal := domain.Principal(principalFlag)
		user, err := statisticInteractor.User(principal)
		if err != nil {
			return reportError(err)
		}
		if user == nil {
			fmt.Printf("⛔️ %v has never deposited.\n", principal)
			return nil
		}

		fmt.Printf("------------- %v -----------------\n", principal)
		fmt.Printf("Shares       : %v\n", util.SharesString(user.Shares))
		fmt.Printf("Balance      : %v\n", util.MicroToUnitString(user.Balance))
		fmt.Printf("Deposited    : %v\n", util.MicroToUnitString(user.Deposited))
		fmt.Printf("Withdrawn    : %v\n", util.MicroToUnitString(user.Withdrawn))
		fmt.Printf("Earnings     : %v µSTX\n", user.Earnings.String())
		fmt.Printf("Allocation   : %v\n", user.Allocation)
		fmt.Printf("Weighted APY : %v%%\n", user.WeightedAPY.StringFixed(2))

		events, err := ledgerInteractor.History(principal, historyFlag)
		if err != nil {
			return err
		}
		for i, e := range events {
			fmt.Printf("#%03d - %v %-13v %v %v\n", i+1,
				e.CreateTime.Local().Format("2006-01-02 15:04"), e.Kind,
				util.MicroString(e.Amount), util.SharesString(e.Shares))
		}
		return nil
	},
}

// parseAllocation reads "a,b,c" basis points.
func parseAllocation(s string) (domain.Allocation, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(domain.StrategyIDs) {
		return domain.Allocation{}, fmt.Errorf("allocation must have %d comma separated parts: %w",
			len(domain.StrategyIDs), domain.ErrorInvalidAllocation)
	}
	bps := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return domain.Allocation{}, fmt.Errorf("allocation part %q: %w", p, domain.ErrorInvalidAllocation)
		}
		bps[i] = v
	}
	allocation := domain.NewAllocation(bps[0], bps[1], bps[2])
	return allocation, allocation.Validate()
}

func reportError(err error) error {
	return fmt.Errorf("❌ error %d: %w", domain.Code(err), err)
}

func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(depositCmd, withdrawCmd, reallocateCmd, showCmd)

	vaultCmd.PersistentFlags().StringVarP(&principalFlag, "principal", "p", "", "depositor principal")
	vaultCmd.MarkPersistentFlagRequired("principal")

	depositCmd.Flags().Uint64VarP(&amountFlag, "amount", "a", 0, "amount in micro units")
	depositCmd.Flags().StringVar(&allocationFlag, "alloc", "3333,3333,3334", "basis points for strategies A,B,C")
	reallocateCmd.Flags().StringVar(&reallocateFlag, "alloc", "", "basis points for strategies A,B,C")
	reallocateCmd.MarkFlagRequired("alloc")
	withdrawCmd.Flags().Uint64VarP(&sharesFlag, "shares", "s", 0, "shares to burn")
	showCmd.Flags().IntVar(&historyFlag, "history", 10, "number of journal entries to show")
}
