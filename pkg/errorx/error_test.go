package errorx_test

import (
	"fmt"
	"testing"

	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := errorx.New(errorx.InvalidConsumer, "InvalidConsumer(%d, %s)", 1, "0xabc")
	require.Equal(t, errorx.InvalidConsumer, err.Code)
	require.Equal(t, "InvalidConsumer(1, 0xabc)", err.Error())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errorx.New(errorx.RaffleNotOpen, "Raffle__NotOpen"))
	require.True(t, errorx.Is(err, errorx.RaffleNotOpen))
	require.False(t, errorx.Is(err, errorx.TransferFailed))
	require.False(t, errorx.Is(fmt.Errorf("plain"), errorx.RaffleNotOpen))
}
