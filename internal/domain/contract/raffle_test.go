package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/contract/raffle"
	"github.com/questx-lab/raffle/contract/vrfcoordinator"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestRaffle_Construct(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)

	state := tc.state(address)
	require.Equal(t, entity.RaffleStateOpen, state.State)
	require.Equal(t, tc.fee.String(), state.EntranceFee.String())
	require.Equal(t, int64(30), state.Interval)
	require.Equal(t, tc.coordinator.Hex(), state.Coordinator)
	require.Equal(t, common.Address{}.Hex(), state.RecentWinner)
	require.Equal(t, testutil.GenesisTime.Unix(), state.LastTimestamp)
	require.Equal(t, "hardhat", state.Network)
	require.Equal(t, int64(31337), state.ChainID)

	require.Equal(t, uint32(1), tc.raffle.GetNumWords())
	require.Equal(t, uint16(3), tc.raffle.GetRequestConfirmations())
}

func TestRaffle_EnterLottery(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	player := tc.player(0)

	receipt, err := tc.engine.Execute(tc.ctx, chain.Message{From: player, To: address, Value: tc.fee}, tc.raffle.EnterLottery)
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)
	require.Equal(t, raffle.EventRaffleEnter, receipt.Logs[0].Name)

	var event model.RaffleEnterEvent
	require.NoError(t, receipt.Logs[0].Decode(&event))
	require.Equal(t, player.Hex(), event.Player)

	require.Equal(t, int64(1), tc.numPlayers(address))
	require.Equal(t, tc.fee.String(), tc.balance(address).String())

	err = tc.engine.View(tc.ctx, address, func(ctx context.Context, call *chain.Call) error {
		got, err := tc.raffle.GetPlayer(ctx, call.Self, 0)
		require.NoError(t, err)
		require.Equal(t, player.Hex(), got)
		return nil
	})
	require.NoError(t, err)
}

func TestRaffle_EnterLotteryInsufficientEntranceFee(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	player := tc.player(0)

	for _, value := range []*big.Int{nil, big.NewInt(0), new(big.Int).Sub(tc.fee, big.NewInt(1))} {
		err := tc.enter(address, player, value)
		require.True(t, errorx.Is(err, errorx.InsufficientEntranceFee), "value %v", value)
	}

	require.Equal(t, int64(0), tc.numPlayers(address))
	require.Equal(t, "0", tc.balance(address).String())
}

func TestRaffle_EnterLotteryNotOpen(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)

	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
	tc.increaseTime(31)

	_, err := tc.performUpkeep(address)
	require.NoError(t, err)

	err = tc.enter(address, tc.player(1), tc.fee)
	require.True(t, errorx.Is(err, errorx.RaffleNotOpen))
	require.Equal(t, int64(1), tc.numPlayers(address))
}

func TestRaffle_CheckUpkeep(t *testing.T) {
	t.Run("all conditions hold", func(t *testing.T) {
		tc := newTestChain(t)
		address := tc.deployRaffle(tc.fee)
		require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
		tc.increaseTime(31)
		require.True(t, tc.checkUpkeep(address))
	})

	t.Run("not open", func(t *testing.T) {
		tc := newTestChain(t)
		address := tc.deployRaffle(tc.fee)
		require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
		tc.increaseTime(31)
		_, err := tc.performUpkeep(address)
		require.NoError(t, err)
		tc.increaseTime(31)
		require.False(t, tc.checkUpkeep(address))
	})

	t.Run("interval not elapsed", func(t *testing.T) {
		tc := newTestChain(t)
		address := tc.deployRaffle(tc.fee)
		require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
		tc.increaseTime(29)
		require.False(t, tc.checkUpkeep(address))
	})

	t.Run("no players", func(t *testing.T) {
		tc := newTestChain(t)
		address := tc.deployRaffle(tc.fee)
		_, err := tc.engine.Faucet(tc.ctx, address, tc.fee)
		require.NoError(t, err)
		tc.increaseTime(31)
		require.False(t, tc.checkUpkeep(address))
	})

	t.Run("no balance", func(t *testing.T) {
		tc := newTestChain(t)
		address := tc.deployRaffle(big.NewInt(0))
		require.NoError(t, tc.enter(address, tc.player(0), big.NewInt(0)))
		tc.increaseTime(31)
		require.Equal(t, int64(1), tc.numPlayers(address))
		require.False(t, tc.checkUpkeep(address))
	})
}

func TestRaffle_PerformUpkeepNotNeeded(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))

	_, err := tc.performUpkeep(address)
	require.True(t, errorx.Is(err, errorx.UpkeepNotNeeded))

	var upkeepErr *UpkeepNotNeededError
	require.True(t, errors.As(err, &upkeepErr))
	require.Equal(t, tc.fee.String(), upkeepErr.CurrentBalance.String())
	require.Equal(t, int64(1), upkeepErr.NumPlayers)
	require.Equal(t, entity.RaffleStateOpen, upkeepErr.RaffleState)

	require.Equal(t, entity.RaffleStateOpen, tc.state(address).State)
}

func TestRaffle_PerformUpkeep(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
	tc.increaseTime(31)

	var requestID uint64
	receipt, err := tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: address},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			requestID, err = tc.raffle.PerformUpkeep(ctx, call, nil)
			return err
		})
	require.NoError(t, err)
	require.Equal(t, uint64(1), requestID)

	require.Len(t, receipt.Logs, 2)
	require.Equal(t, vrfcoordinator.EventRandomWordsRequested, receipt.Logs[0].Name)
	require.Equal(t, tc.coordinator.Hex(), receipt.Logs[0].Address)
	require.Equal(t, raffle.EventRequestedRaffleWinner, receipt.Logs[1].Name)
	require.Equal(t, address.Hex(), receipt.Logs[1].Address)

	var requested model.RandomWordsRequestedEvent
	require.NoError(t, receipt.Logs[0].Decode(&requested))
	require.Equal(t, address.Hex(), requested.Sender)
	require.Equal(t, gasLane.Hex(), requested.KeyHash)
	require.Equal(t, uint16(3), requested.MinimumRequestConfirmations)
	require.Equal(t, uint32(1), requested.NumWords)
	require.Equal(t, uint64(100), requested.PreSeed)

	var event model.RequestedRaffleWinnerEvent
	require.NoError(t, receipt.Logs[1].Decode(&event))
	require.Equal(t, requestID, event.RequestID)

	state := tc.state(address)
	require.Equal(t, entity.RaffleStateCalculating, state.State)
	require.Equal(t, requestID, state.OutstandingRequestID)

	// A second upkeep is refused while calculating.
	_, err = tc.performUpkeep(address)
	require.True(t, errorx.Is(err, errorx.UpkeepNotNeeded))
}

func TestRaffle_FulfillSinglePlayer(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	player := tc.player(0)
	require.NoError(t, tc.enter(address, player, tc.fee))
	playerBalance := tc.balance(player)

	tc.increaseTime(31)
	require.True(t, tc.checkUpkeep(address))

	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	success, err := tc.fulfill(requestID, address, big.NewInt(42))
	require.NoError(t, err)
	require.True(t, success)

	state := tc.state(address)
	require.Equal(t, entity.RaffleStateOpen, state.State)
	require.Equal(t, player.Hex(), state.RecentWinner)
	require.Equal(t, uint64(0), state.OutstandingRequestID)
	require.Equal(t, testutil.GenesisTime.Unix()+31, state.LastTimestamp)
	require.Equal(t, int64(0), tc.numPlayers(address))
	require.Equal(t, "0", tc.balance(address).String())
	require.Equal(t, new(big.Int).Add(playerBalance, tc.fee).String(), tc.balance(player).String())
}

func TestRaffle_FulfillPicksWinnerByModulo(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)

	players := make([]common.Address, 4)
	for i := range players {
		players[i] = tc.player(i)
		require.NoError(t, tc.enter(address, players[i], tc.fee))
	}
	winnerBalance := tc.balance(players[3])

	tc.increaseTime(31)
	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	var receipt *model.Receipt
	receipt, err = tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			_, _, err := tc.vrf.FulfillRandomWordsWithOverride(ctx, call, requestID, address, []*big.Int{big.NewInt(7)})
			return err
		})
	require.NoError(t, err)

	// RecentWinner is emitted by the raffle before the coordinator reports
	// the fulfillment.
	require.Len(t, receipt.Logs, 2)
	require.Equal(t, raffle.EventRecentWinner, receipt.Logs[0].Name)
	require.Equal(t, vrfcoordinator.EventRandomWordsFulfilled, receipt.Logs[1].Name)

	var winner model.RecentWinnerEvent
	require.NoError(t, receipt.Logs[0].Decode(&winner))
	require.Equal(t, players[3].Hex(), winner.Winner)

	prize := new(big.Int).Mul(tc.fee, big.NewInt(4))
	require.Equal(t, new(big.Int).Add(winnerBalance, prize).String(), tc.balance(players[3]).String())
	require.Equal(t, players[3].Hex(), tc.state(address).RecentWinner)
	require.Equal(t, uint64(1), tc.state(address).Round)
}

func TestRaffle_FulfillUnknownRequest(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))

	_, err := tc.fulfill(0, address)
	require.True(t, errorx.Is(err, errorx.NonexistentRequest))

	_, err = tc.fulfill(1, address)
	require.True(t, errorx.Is(err, errorx.NonexistentRequest))

	require.Equal(t, entity.RaffleStateOpen, tc.state(address).State)
	require.Equal(t, int64(1), tc.numPlayers(address))
}

func TestRaffle_FulfillTwice(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
	tc.increaseTime(31)

	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	_, err = tc.fulfill(requestID, address)
	require.NoError(t, err)

	_, err = tc.fulfill(requestID, address)
	require.True(t, errorx.Is(err, errorx.NonexistentRequest))
}

func TestRaffle_FulfillTransferFailed(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	player := tc.player(0)
	require.NoError(t, tc.enter(address, player, tc.fee))
	require.NoError(t, tc.engine.SetRejectsPayments(tc.ctx, player, true))

	tc.increaseTime(31)
	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	var receipt *model.Receipt
	receipt, err = tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			_, _, err := tc.vrf.FulfillRandomWords(ctx, call, requestID, address)
			return err
		})
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)

	var fulfilled model.RandomWordsFulfilledEvent
	require.NoError(t, receipt.Logs[0].Decode(&fulfilled))
	require.False(t, fulfilled.Success)
	require.Equal(t, requestID, fulfilled.RequestID)

	// The payout reverted with the rest of the callback.
	state := tc.state(address)
	require.Equal(t, entity.RaffleStateCalculating, state.State)
	require.Equal(t, common.Address{}.Hex(), state.RecentWinner)
	require.Equal(t, int64(1), tc.numPlayers(address))
	require.Equal(t, tc.fee.String(), tc.balance(address).String())

	// The request was consumed, so the round cannot complete anymore.
	_, err = tc.fulfill(requestID, address)
	require.True(t, errorx.Is(err, errorx.NonexistentRequest))
}

func TestRaffle_OnlyCoordinatorCanFulfill(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
	tc.increaseTime(31)

	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	_, err = tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: address},
		func(ctx context.Context, call *chain.Call) error {
			return tc.raffle.RawFulfillRandomWords(ctx, call, requestID, []*big.Int{big.NewInt(1)})
		})
	require.True(t, errorx.Is(err, errorx.OnlyCoordinatorCanFulfill))
	require.Equal(t, entity.RaffleStateCalculating, tc.state(address).State)
}

func TestRaffle_GetPlayerOutOfRange(t *testing.T) {
	tc := newTestChain(t)
	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))

	err := tc.engine.View(tc.ctx, address, func(ctx context.Context, call *chain.Call) error {
		_, err := tc.raffle.GetPlayer(ctx, call.Self, 1)
		return err
	})
	require.True(t, errorx.Is(err, errorx.PlayerIndexOutOfRange))
}

func TestRaffle_ContractNotFound(t *testing.T) {
	tc := newTestChain(t)
	unknown := common.HexToAddress("0xdead")

	err := tc.enter(unknown, tc.player(0), tc.fee)
	require.True(t, errorx.Is(err, errorx.ContractNotFound))
}
