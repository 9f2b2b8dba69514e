package common

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/ethutil"
)

// ParseAddress parses a user supplied address into an errorx.BadRequest on
// failure.
func ParseAddress(field, s string) (common.Address, error) {
	address, err := ethutil.ParseAddress(s)
	if err != nil {
		return common.Address{}, errorx.New(errorx.BadRequest, "Invalid %s: %s", field, s)
	}

	return address, nil
}
