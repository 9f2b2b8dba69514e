package contract

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/contract/vrfcoordinator"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/stretchr/testify/require"
)

func (tc *testChain) subscription() *entity.VRFSubscription {
	var sub *entity.VRFSubscription
	err := tc.engine.View(tc.ctx, tc.coordinator, func(ctx context.Context, call *chain.Call) error {
		var err error
		sub, err = tc.vrf.GetSubscription(ctx, call.Self, tc.subID)
		return err
	})
	require.NoError(tc.t, err)
	return sub
}

// request asks for words directly from an externally owned consumer.
func (tc *testChain) request(from common.Address, numWords uint32) (uint64, error) {
	var requestID uint64
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: from, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			requestID, err = tc.vrf.RequestRandomWords(ctx, call, gasLane, tc.subID, 3, 100_000, numWords)
			return err
		})
	return requestID, err
}

func (tc *testChain) addConsumer(from, consumer common.Address) error {
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: from, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return tc.vrf.AddConsumer(ctx, call, tc.subID, consumer)
		})
	return err
}

func TestVRFCoordinatorV2Mock_CreateSubscription(t *testing.T) {
	tc := newTestChain(t)
	require.Equal(t, uint64(1), tc.subID)

	var subID uint64
	receipt, err := tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			subID, err = tc.vrf.CreateSubscription(ctx, call)
			return err
		})
	require.NoError(t, err)
	require.Equal(t, uint64(2), subID)

	var event model.SubscriptionCreatedEvent
	require.NoError(t, receipt.Logs[0].Decode(&event))
	require.Equal(t, subID, event.SubID)
	require.Equal(t, keeper.Hex(), event.Owner)
}

func TestVRFCoordinatorV2Mock_FundSubscription(t *testing.T) {
	tc := newTestChain(t)

	// Anyone may fund a subscription.
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return tc.vrf.FundSubscription(ctx, call, tc.subID, ethutil.Ether(1))
		})
	require.NoError(t, err)
	require.Equal(t, ethutil.Ether(3).String(), tc.subscription().Balance.String())

	_, err = tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return tc.vrf.FundSubscription(ctx, call, 42, ethutil.Ether(1))
		})
	require.True(t, errorx.Is(err, errorx.InvalidSubscription))
}

func TestVRFCoordinatorV2Mock_Consumers(t *testing.T) {
	tc := newTestChain(t)
	consumer := common.HexToAddress("0xc0ffee")

	err := tc.addConsumer(keeper, consumer)
	require.True(t, errorx.Is(err, errorx.MustBeSubOwner))

	require.NoError(t, tc.addConsumer(deployer, consumer))
	require.NoError(t, tc.addConsumer(deployer, consumer))
	require.Equal(t, []string{consumer.Hex()}, []string(tc.subscription().Consumers))

	remove := func(consumer common.Address) error {
		_, err := tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
			func(ctx context.Context, call *chain.Call) error {
				return tc.vrf.RemoveConsumer(ctx, call, tc.subID, consumer)
			})
		return err
	}

	require.NoError(t, remove(consumer))
	require.Empty(t, tc.subscription().Consumers)

	err = remove(consumer)
	require.True(t, errorx.Is(err, errorx.InvalidConsumer))
}

func TestVRFCoordinatorV2Mock_TooManyConsumers(t *testing.T) {
	tc := newTestChain(t)

	for i := 0; i < vrfcoordinator.MaxConsumers; i++ {
		require.NoError(t, tc.addConsumer(deployer, common.BigToAddress(big.NewInt(int64(0x2000+i)))))
	}

	err := tc.addConsumer(deployer, common.HexToAddress("0xc0ffee"))
	require.True(t, errorx.Is(err, errorx.TooManyConsumers))
	require.Len(t, tc.subscription().Consumers, vrfcoordinator.MaxConsumers)
}

func TestVRFCoordinatorV2Mock_RequestRandomWords(t *testing.T) {
	tc := newTestChain(t)

	_, err := tc.request(keeper, 1)
	require.True(t, errorx.Is(err, errorx.InvalidConsumer))

	require.NoError(t, tc.addConsumer(deployer, keeper))

	first, err := tc.request(keeper, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first)

	second, err := tc.request(keeper, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), second)

	// Request counting is left untouched by the mock.
	require.Equal(t, uint64(0), tc.subscription().ReqCount)
}

func TestVRFCoordinatorV2Mock_FulfillExternallyOwnedConsumer(t *testing.T) {
	tc := newTestChain(t)
	require.NoError(t, tc.addConsumer(deployer, keeper))

	requestID, err := tc.request(keeper, 2)
	require.NoError(t, err)

	var receipt *model.Receipt
	receipt, err = tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			success, payment, err := tc.vrf.FulfillRandomWords(ctx, call, requestID, keeper)
			if err != nil {
				return err
			}

			require.True(t, success)
			// 0.25 LINK + 100000 gas * 1 gwei.
			require.Equal(t, "250100000000000000", payment.String())
			return nil
		})
	require.NoError(t, err)

	var event model.RandomWordsFulfilledEvent
	require.NoError(t, receipt.Logs[0].Decode(&event))
	require.Equal(t, requestID, event.RequestID)
	require.Equal(t, requestID, event.OutputSeed)
	require.True(t, event.Success)

	expected := new(big.Int).Sub(ethutil.Ether(2), big.NewInt(250_100_000_000_000_000))
	require.Equal(t, expected.String(), tc.subscription().Balance.String())
}

func TestVRFCoordinatorV2Mock_FulfillWrongNumberOfWords(t *testing.T) {
	tc := newTestChain(t)
	require.NoError(t, tc.addConsumer(deployer, keeper))

	requestID, err := tc.request(keeper, 2)
	require.NoError(t, err)

	_, err = tc.fulfill(requestID, keeper, big.NewInt(1))
	require.True(t, errorx.Is(err, errorx.InvalidRandomWords))

	success, err := tc.fulfill(requestID, keeper, big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	require.True(t, success)
}

func TestVRFCoordinatorV2Mock_FulfillInsufficientBalance(t *testing.T) {
	tc := newTestChain(t)

	// A second subscription without LINK.
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			tc.subID, err = tc.vrf.CreateSubscription(ctx, call)
			return err
		})
	require.NoError(t, err)

	address := tc.deployRaffle(tc.fee)
	require.NoError(t, tc.enter(address, tc.player(0), tc.fee))
	tc.increaseTime(31)

	requestID, err := tc.performUpkeep(address)
	require.NoError(t, err)

	_, err = tc.fulfill(requestID, address)
	require.True(t, errorx.Is(err, errorx.InsufficientBalance))

	// The consumer callback reverted with the fulfillment.
	state := tc.state(address)
	require.Equal(t, entity.RaffleStateCalculating, state.State)
	require.Equal(t, int64(1), tc.numPlayers(address))

	// Once funded the same request completes.
	tc.fundSubscription(ethutil.Ether(1))
	success, err := tc.fulfill(requestID, address)
	require.NoError(t, err)
	require.True(t, success)
	require.Equal(t, entity.RaffleStateOpen, tc.state(address).State)
}

func TestVRFCoordinatorV2Mock_NotDeployed(t *testing.T) {
	tc := newTestChain(t)

	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: keeper},
		func(ctx context.Context, call *chain.Call) error {
			_, err := tc.vrf.CreateSubscription(ctx, call)
			return err
		})
	require.True(t, errorx.Is(err, errorx.ContractNotFound))
}
