package domain

import (
	"errors"
	"fmt"
)

var (
	ErrorInvalidAmount      = fmt.Errorf("amount must be positive")
	ErrorInvalidAllocation  = fmt.Errorf("allocation must sum to 10000 basis points")
	ErrorZeroShares         = fmt.Errorf("deposit is too small to mint a share")
	ErrorInsufficientShares = fmt.Errorf("insufficient shares")
	ErrorUnauthorized       = fmt.Errorf("caller is not authorized")
	ErrorInsufficientFees   = fmt.Errorf("insufficient accumulated fees")
	ErrorOverflow           = fmt.Errorf("arithmetic overflow")
	ErrorUnknownStrategy    = fmt.Errorf("unknown strategy")
)

// Stable numeric codes, kept compatible with the deployed contracts.
const (
	CodeInvalidAmount      = 101
	CodeInvalidAllocation  = 102
	CodeZeroShares         = 103
	CodeInsufficientShares = 105
	CodeUnknownStrategy    = 106
	CodeOverflow           = 199
	CodeUnauthorized       = 300
	CodeInsufficientFees   = 301
)

var codes = []struct {
	err  error
	code int
}{
	{ErrorInvalidAmount, CodeInvalidAmount},
	{ErrorInvalidAllocation, CodeInvalidAllocation},
	{ErrorZeroShares, CodeZeroShares},
	{ErrorInsufficientShares, CodeInsufficientShares},
	{ErrorUnknownStrategy, CodeUnknownStrategy},
	{ErrorOverflow, CodeOverflow},
	{ErrorUnauthorized, CodeUnauthorized},
	{ErrorInsufficientFees, CodeInsufficientFees},
}

// Code returns the stable error code of err, or 0 if err is nil or not a ledger error.
func Code(err error) int {
	if err == nil {
		return 0
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return 0
}
