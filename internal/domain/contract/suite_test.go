package contract

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var (
	deployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	keeper   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	gasLane  = common.HexToHash("0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc")
)

type testChain struct {
	t     *testing.T
	ctx   context.Context
	clock chain.TimeTraveler

	engine chain.Engine
	raffle *Raffle
	vrf    *VRFCoordinatorV2Mock

	coordinator common.Address
	subID       uint64
	fee         *big.Int
}

func newTestChain(t *testing.T) *testChain {
	ctx := testutil.MockContext()
	clock := chain.NewFixedClock(testutil.GenesisTime)
	accountRepo := repository.NewAccountRepository()

	engine, err := chain.NewEngine(clock, nil,
		accountRepo, repository.NewBlockRepository(), repository.NewEventLogRepository())
	require.NoError(t, err)

	vrf := NewVRFCoordinatorV2Mock(repository.NewVRFRepository(), accountRepo)
	raffle := NewRaffle(repository.NewRaffleRepository(), vrf)
	vrf.RegisterConsumer(entity.ContractKindRaffle, raffle)

	tc := &testChain{
		t:      t,
		ctx:    ctx,
		clock:  clock,
		engine: engine,
		raffle: raffle,
		vrf:    vrf,
	}

	tc.fee, err = ethutil.ParseEther("0.01")
	require.NoError(t, err)

	tc.coordinator, _, err = engine.Deploy(ctx, deployer, entity.ContractKindVRFCoordinatorV2Mock,
		func(ctx context.Context, call *chain.Call) error {
			return vrf.Construct(ctx, call, BaseFee, GasPriceLink)
		})
	require.NoError(t, err)

	_, err = engine.Execute(ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			tc.subID, err = vrf.CreateSubscription(ctx, call)
			return err
		})
	require.NoError(t, err)

	tc.fundSubscription(ethutil.Ether(2))
	return tc
}

func (tc *testChain) fundSubscription(amount *big.Int) {
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return tc.vrf.FundSubscription(ctx, call, tc.subID, amount)
		})
	require.NoError(tc.t, err)
}

// deployRaffle deploys a raffle with a 30 seconds interval and registers it
// as a consumer of the test subscription.
func (tc *testChain) deployRaffle(fee *big.Int) common.Address {
	address, _, err := tc.engine.Deploy(tc.ctx, deployer, entity.ContractKindRaffle,
		func(ctx context.Context, call *chain.Call) error {
			return tc.raffle.Construct(ctx, call, RaffleConfig{
				Coordinator:      tc.coordinator,
				GasLane:          gasLane,
				SubscriptionID:   tc.subID,
				CallbackGasLimit: 500_000,
				EntranceFee:      fee,
				Interval:         30,
			})
		})
	require.NoError(tc.t, err)

	_, err = tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return tc.vrf.AddConsumer(ctx, call, tc.subID, address)
		})
	require.NoError(tc.t, err)

	return address
}

func (tc *testChain) player(i int) common.Address {
	address := common.BigToAddress(big.NewInt(int64(0x1000 + i)))
	_, err := tc.engine.Faucet(tc.ctx, address, ethutil.Ether(1))
	require.NoError(tc.t, err)
	return address
}

func (tc *testChain) enter(raffle, player common.Address, value *big.Int) error {
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: player, To: raffle, Value: value}, tc.raffle.EnterLottery)
	return err
}

func (tc *testChain) checkUpkeep(raffle common.Address) bool {
	var needed bool
	err := tc.engine.View(tc.ctx, raffle, func(ctx context.Context, call *chain.Call) error {
		var err error
		needed, _, err = tc.raffle.CheckUpkeep(ctx, call, nil)
		return err
	})
	require.NoError(tc.t, err)
	return needed
}

func (tc *testChain) performUpkeep(raffle common.Address) (uint64, error) {
	var requestID uint64
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: keeper, To: raffle},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			requestID, err = tc.raffle.PerformUpkeep(ctx, call, nil)
			return err
		})
	return requestID, err
}

func (tc *testChain) fulfill(requestID uint64, consumer common.Address, words ...*big.Int) (bool, error) {
	var success bool
	_, err := tc.engine.Execute(tc.ctx, chain.Message{From: deployer, To: tc.coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			success, _, err = tc.vrf.FulfillRandomWordsWithOverride(ctx, call, requestID, consumer, words)
			return err
		})
	return success, err
}

func (tc *testChain) state(raffle common.Address) *entity.Raffle {
	var state *entity.Raffle
	err := tc.engine.View(tc.ctx, raffle, func(ctx context.Context, call *chain.Call) error {
		var err error
		state, err = tc.raffle.Get(ctx, call.Self)
		return err
	})
	require.NoError(tc.t, err)
	return state
}

func (tc *testChain) numPlayers(raffle common.Address) int64 {
	var n int64
	err := tc.engine.View(tc.ctx, raffle, func(ctx context.Context, call *chain.Call) error {
		var err error
		n, err = tc.raffle.GetNumberOfPlayers(ctx, call.Self)
		return err
	})
	require.NoError(tc.t, err)
	return n
}

func (tc *testChain) balance(address common.Address) *big.Int {
	balance, err := tc.engine.BalanceAt(tc.ctx, address)
	require.NoError(tc.t, err)
	return balance
}

func (tc *testChain) increaseTime(seconds int64) {
	tc.clock.IncreaseTime(time.Duration(seconds) * time.Second)
}
