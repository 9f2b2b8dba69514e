package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1000000000000000000000000000000000000001")
	bob   = common.HexToAddress("0x2000000000000000000000000000000000000002")

	pingEvent = abi.NewEvent("Ping", "Ping", false, abi.Arguments{})
)

type pingArgs struct {
	From string `structs:"from" mapstructure:"from"`
}

func newTestEngine(t *testing.T) (context.Context, *engine, *offsetClock, *testutil.RecordPublisher) {
	ctx := testutil.MockContext()
	clock := NewFixedClock(testutil.GenesisTime)
	publisher := testutil.NewRecordPublisher()

	e, err := NewEngine(
		clock,
		publisher,
		repository.NewAccountRepository(),
		repository.NewBlockRepository(),
		repository.NewEventLogRepository(),
	)
	require.NoError(t, err)

	return ctx, e, clock, publisher
}

func Test_engine_ExecuteTransfersValueAndEmits(t *testing.T) {
	ctx, e, _, publisher := newTestEngine(t)

	_, err := e.Faucet(ctx, alice, ethutil.Ether(1))
	require.NoError(t, err)

	receipt, err := e.Execute(ctx, Message{From: alice, To: bob, Value: ethutil.Ether(0)}, func(ctx context.Context, call *Call) error {
		require.Equal(t, alice, call.Sender)
		require.Equal(t, bob, call.Self)
		return call.Emit(pingEvent, pingArgs{From: call.Sender.Hex()})
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.BlockNumber)
	require.Equal(t, testutil.GenesisTime.Unix(), receipt.Timestamp)
	require.Len(t, receipt.Logs, 1)
	require.Equal(t, 0, receipt.Logs[0].Index)
	require.Equal(t, bob.Hex(), receipt.Logs[0].Address)

	var args pingArgs
	require.NoError(t, receipt.Logs[0].Decode(&args))
	require.Equal(t, alice.Hex(), args.From)

	value := big.NewInt(1000)
	_, err = e.Execute(ctx, Message{From: alice, To: bob, Value: value}, func(ctx context.Context, call *Call) error {
		balance, err := call.Balance(ctx)
		require.NoError(t, err)
		require.Equal(t, "1000", balance.String())
		return nil
	})
	require.NoError(t, err)

	bobBalance, err := e.BalanceAt(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, "1000", bobBalance.String())

	packs := publisher.Topic(model.ChainEventTopic)
	require.Len(t, packs, 1)
	require.Equal(t, bob.Hex(), string(packs[0].Key))

	var log model.Log
	require.NoError(t, json.Unmarshal(packs[0].Msg, &log))
	require.Equal(t, "Ping", log.Name)
	require.Equal(t, receipt.TxHash, log.TxHash)
}

func Test_engine_ExecuteRollsBackOnError(t *testing.T) {
	ctx, e, _, publisher := newTestEngine(t)

	_, err := e.Faucet(ctx, alice, big.NewInt(500))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = e.Execute(ctx, Message{From: alice, To: bob, Value: big.NewInt(200)}, func(ctx context.Context, call *Call) error {
		require.NoError(t, call.Emit(pingEvent, nil))
		return boom
	})
	require.ErrorIs(t, err, boom)

	aliceBalance, err := e.BalanceAt(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "500", aliceBalance.String())

	bobBalance, err := e.BalanceAt(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, "0", bobBalance.String())

	logs, err := repository.NewEventLogRepository().GetList(ctx, repository.EventLogFilter{})
	require.NoError(t, err)
	require.Empty(t, logs)
	require.Empty(t, publisher.Topic(model.ChainEventTopic))

	// No block was mined by the failed transaction.
	block, err := e.Mine(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), block.Number)
}

func Test_engine_InsufficientFunds(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	_, err := e.Execute(ctx, Message{From: alice, To: bob, Value: big.NewInt(1)}, func(ctx context.Context, call *Call) error {
		return nil
	})
	require.True(t, errorx.Is(err, errorx.InsufficientFunds))
}

func Test_engine_PaymentRejected(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	_, err := e.Faucet(ctx, alice, big.NewInt(10))
	require.NoError(t, err)
	require.NoError(t, e.SetRejectsPayments(ctx, bob, true))

	_, err = e.Execute(ctx, Message{From: alice, To: bob, Value: big.NewInt(1)}, func(ctx context.Context, call *Call) error {
		return nil
	})
	require.True(t, errorx.Is(err, errorx.PaymentRejected))

	require.NoError(t, e.SetRejectsPayments(ctx, bob, false))
	_, err = e.Execute(ctx, Message{From: alice, To: bob, Value: big.NewInt(1)}, func(ctx context.Context, call *Call) error {
		return nil
	})
	require.NoError(t, err)
}

func Test_engine_DeployUsesCreateAddress(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	var self common.Address
	address, receipt, err := e.Deploy(ctx, alice, entity.ContractKindRaffle, func(ctx context.Context, call *Call) error {
		self = call.Self
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, crypto.CreateAddress(alice, 0), address)
	require.Equal(t, address, self)
	require.Equal(t, address.Hex(), receipt.ContractAddress)

	second, _, err := e.Deploy(ctx, alice, entity.ContractKindRaffle, func(ctx context.Context, call *Call) error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, crypto.CreateAddress(alice, 1), second)

	account, err := repository.NewAccountRepository().Get(ctx, address.Hex())
	require.NoError(t, err)
	require.Equal(t, entity.ContractKindRaffle, account.Kind)
}

func Test_engine_TryInvokeRevertsOnlyCallee(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	_, err := e.Faucet(ctx, alice, big.NewInt(100))
	require.NoError(t, err)

	receipt, err := e.Execute(ctx, Message{From: alice, To: alice}, func(ctx context.Context, call *Call) error {
		require.NoError(t, call.Emit(pingEvent, nil))

		success, err := call.TryInvoke(ctx, bob, big.NewInt(40), func(ctx context.Context, call *Call) error {
			require.Equal(t, alice, call.Sender)
			require.NoError(t, call.Emit(pingEvent, nil))
			return errors.New("callee failed")
		})
		require.NoError(t, err)
		require.False(t, success)

		success, err = call.TryInvoke(ctx, bob, big.NewInt(30), func(ctx context.Context, call *Call) error {
			return call.Emit(pingEvent, nil)
		})
		require.NoError(t, err)
		require.True(t, success)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 2)
	require.Equal(t, alice.Hex(), receipt.Logs[0].Address)
	require.Equal(t, bob.Hex(), receipt.Logs[1].Address)
	require.Equal(t, 1, receipt.Logs[1].Index)

	bobBalance, err := e.BalanceAt(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, "30", bobBalance.String())
}

func Test_engine_ViewIsReadOnly(t *testing.T) {
	ctx, e, clock, _ := newTestEngine(t)

	clock.IncreaseTime(30 * time.Second)
	err := e.View(ctx, bob, func(ctx context.Context, call *Call) error {
		require.True(t, call.ReadOnly())
		require.Equal(t, bob, call.Self)
		require.Equal(t, testutil.GenesisTime.Unix()+30, call.Timestamp)
		require.ErrorIs(t, call.Emit(pingEvent, nil), ErrWriteProtection)
		require.ErrorIs(t, call.Transfer(ctx, bob, big.NewInt(1)), ErrWriteProtection)
		return nil
	})
	require.NoError(t, err)
}

func Test_engine_IncreaseTimeAndMine(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	now, err := e.IncreaseTime(ctx, 31*time.Second)
	require.NoError(t, err)
	require.Equal(t, testutil.GenesisTime.Unix()+31, now)

	first, err := e.Mine(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), first.Number)
	require.Equal(t, now, first.Timestamp)

	second, err := e.Mine(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), second.Number)
	require.GreaterOrEqual(t, second.Timestamp, first.Timestamp)
}

func Test_engine_IncreaseTimeNeedsTimeTraveler(t *testing.T) {
	ctx := testutil.MockContext()
	e, err := NewEngine(NewSystemClock(), nil,
		repository.NewAccountRepository(), repository.NewBlockRepository(), repository.NewEventLogRepository())
	require.NoError(t, err)

	_, err = e.IncreaseTime(ctx, time.Second)
	require.True(t, errorx.Is(err, errorx.NotImplemented))
}

func Test_engine_NonceAt(t *testing.T) {
	ctx, e, _, _ := newTestEngine(t)

	nonce, err := e.NonceAt(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(0), nonce)

	for i := uint64(0); i < 2; i++ {
		_, err := e.Execute(ctx, Message{From: alice, To: bob}, func(ctx context.Context, call *Call) error {
			require.Equal(t, i, call.Nonce)
			return nil
		})
		require.NoError(t, err)
	}

	// A reverted transaction keeps the nonce.
	_, err = e.Execute(ctx, Message{From: alice, To: bob}, func(ctx context.Context, call *Call) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	nonce, err = e.NonceAt(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), nonce)
}

func Test_offsetClock_Saturates(t *testing.T) {
	clock := NewFixedClock(testutil.GenesisTime)

	first := clock.IncreaseTime(maxDuration)
	second := clock.IncreaseTime(time.Hour)
	require.False(t, second.Before(first))
	require.True(t, first.After(testutil.GenesisTime))
}
