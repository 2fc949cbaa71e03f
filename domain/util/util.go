package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const microPerUnit = 1_000_000

// MicroToUnitString renders micro units as whole asset units, for display only.
func MicroToUnitString(micro uint64) string {
	return fmt.Sprintf("%v STX", humanize.CommafWithDigits(float64(micro)/microPerUnit, 6))
}

func MicroString(micro uint64) string {
	return fmt.Sprintf("%v µSTX", humanize.Comma(int64(micro)))
}

func SharesString(shares uint64) string {
	return fmt.Sprintf("%v shares", humanize.Comma(int64(shares)))
}

func BpsString(bps uint64) string {
	return fmt.Sprintf("%v%%", humanize.FtoaWithDigits(float64(bps)/100, 2))
}
