package chain

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

var ErrPaymentRejected = errorx.New(errorx.PaymentRejected, "Payment rejected by recipient")

type Message struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// Engine executes contract calls one at a time. Every Execute or Deploy is
// atomic: an error rolls back all state changes and all emitted logs.
type Engine interface {
	Deploy(ctx context.Context, from common.Address, kind entity.ContractKind, fn Func) (common.Address, *model.Receipt, error)
	Execute(ctx context.Context, msg Message, fn Func) (*model.Receipt, error)
	View(ctx context.Context, to common.Address, fn Func) error

	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	NonceAt(ctx context.Context, address common.Address) (uint64, error)
	Faucet(ctx context.Context, address common.Address, amount *big.Int) (*big.Int, error)
	SetRejectsPayments(ctx context.Context, address common.Address, reject bool) error
	IncreaseTime(ctx context.Context, d time.Duration) (int64, error)
	Mine(ctx context.Context) (*entity.Block, error)
}

type engine struct {
	mutex sync.RWMutex

	clock        Clock
	node         *snowflake.Node
	publisher    pubsub.Publisher
	accountRepo  repository.AccountRepository
	blockRepo    repository.BlockRepository
	eventLogRepo repository.EventLogRepository
}

func NewEngine(
	clock Clock,
	publisher pubsub.Publisher,
	accountRepo repository.AccountRepository,
	blockRepo repository.BlockRepository,
	eventLogRepo repository.EventLogRepository,
) (*engine, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	return &engine{
		clock:        clock,
		node:         node,
		publisher:    publisher,
		accountRepo:  accountRepo,
		blockRepo:    blockRepo,
		eventLogRepo: eventLogRepo,
	}, nil
}

func (e *engine) Deploy(
	ctx context.Context, from common.Address, kind entity.ContractKind, fn Func,
) (common.Address, *model.Receipt, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	receipt, err := e.run(ctx, Message{From: from}, &kind, fn)
	if err != nil {
		return common.Address{}, nil, err
	}

	return common.HexToAddress(receipt.ContractAddress), receipt, nil
}

func (e *engine) Execute(ctx context.Context, msg Message, fn Func) (*model.Receipt, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.run(ctx, msg, nil, fn)
}

// View runs fn as a static call to the contract at address to, against
// committed state at the pending block timestamp. fn must not emit logs or
// move funds.
func (e *engine) View(ctx context.Context, to common.Address, fn Func) error {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	number, timestamp, err := e.pendingBlock(ctx)
	if err != nil {
		return err
	}

	return fn(ctx, &Call{
		Self:        to,
		Value:       new(big.Int),
		Timestamp:   timestamp,
		BlockNumber: number,
		engine:      e,
	})
}

func (e *engine) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	return e.balanceAt(ctx, address)
}

// NonceAt returns the number of transactions sent from address.
func (e *engine) NonceAt(ctx context.Context, address common.Address) (uint64, error) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	account, err := e.accountRepo.Get(ctx, address.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get account %s: %v", address.Hex(), err)
		return 0, errorx.Unknown
	}

	return account.Nonce, nil
}

// Faucet credits amount to address and returns the new balance. It is a
// development helper like hardhat_setBalance and does not mine a block.
func (e *engine) Faucet(ctx context.Context, address common.Address, amount *big.Int) (*big.Int, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	var balance *big.Int
	err := e.admin(ctx, func(ctx context.Context) error {
		account, err := e.accountRepo.GetOrCreate(ctx, address.Hex())
		if err != nil {
			return err
		}

		balance = new(big.Int).Add(account.Balance.Big(), amount)
		return e.accountRepo.UpdateBalance(ctx, address.Hex(), balance)
	})
	if err != nil {
		return nil, err
	}

	return balance, nil
}

func (e *engine) SetRejectsPayments(ctx context.Context, address common.Address, reject bool) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.admin(ctx, func(ctx context.Context) error {
		if _, err := e.accountRepo.GetOrCreate(ctx, address.Hex()); err != nil {
			return err
		}

		return e.accountRepo.SetRejectsPayments(ctx, address.Hex(), reject)
	})
}

func (e *engine) IncreaseTime(ctx context.Context, d time.Duration) (int64, error) {
	traveler, ok := e.clock.(TimeTraveler)
	if !ok {
		return 0, errorx.New(errorx.NotImplemented, "Time travel is only supported on development chains")
	}

	return traveler.IncreaseTime(d).Unix(), nil
}

// Mine produces an empty block, like evm_mine.
func (e *engine) Mine(ctx context.Context) (*entity.Block, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	var block *entity.Block
	err := e.admin(ctx, func(ctx context.Context) error {
		number, timestamp, err := e.pendingBlock(ctx)
		if err != nil {
			return err
		}

		block = &entity.Block{
			Number:    number,
			Hash:      blockHash(number, common.Hash{}, timestamp).Hex(),
			Timestamp: timestamp,
		}

		return e.blockRepo.Create(ctx, block)
	})
	if err != nil {
		return nil, err
	}

	return block, nil
}

func (e *engine) run(ctx context.Context, msg Message, kind *entity.ContractKind, fn Func) (*model.Receipt, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if msg.Value == nil {
		msg.Value = new(big.Int)
	}

	number, timestamp, err := e.pendingBlock(ctx)
	if err != nil {
		return nil, err
	}

	sender, err := e.accountRepo.GetOrCreate(ctx, msg.From.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get sender account: %v", err)
		return nil, errorx.Unknown
	}

	receipt := &model.Receipt{
		From:        msg.From.Hex(),
		Value:       msg.Value.String(),
		BlockNumber: number,
		Timestamp:   timestamp,
	}

	if kind != nil {
		msg.To = crypto.CreateAddress(msg.From, sender.Nonce)
		err := e.accountRepo.Create(ctx, &entity.Account{
			Address: msg.To.Hex(),
			Balance: entity.NewBigInt(nil),
			Kind:    *kind,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create contract account: %v", err)
			return nil, errorx.Unknown
		}

		receipt.ContractAddress = msg.To.Hex()
	} else {
		receipt.To = msg.To.Hex()
	}

	if err := e.accountRepo.IncreaseNonce(ctx, msg.From.Hex()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase nonce: %v", err)
		return nil, errorx.Unknown
	}

	txHash := transactionHash(msg.From, msg.To, sender.Nonce, number)
	receipt.TxHash = txHash.Hex()

	if msg.Value.Sign() > 0 {
		if err := e.transfer(ctx, msg.From, msg.To, msg.Value); err != nil {
			return nil, err
		}
	}

	call := &Call{
		Sender:      msg.From,
		Self:        msg.To,
		Value:       msg.Value,
		Timestamp:   timestamp,
		BlockNumber: number,
		Nonce:       sender.Nonce,
		engine:      e,
		tx:          &txState{hash: txHash},
	}

	if err := fn(ctx, call); err != nil {
		return nil, err
	}

	block := &entity.Block{
		Number:    number,
		Hash:      blockHash(number, txHash, timestamp).Hex(),
		Timestamp: timestamp,
		TxHash:    txHash.Hex(),
	}
	if err := e.blockRepo.Create(ctx, block); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create block: %v", err)
		return nil, errorx.Unknown
	}

	eventLogs := make([]entity.EventLog, 0, len(call.tx.logs))
	for _, log := range call.tx.logs {
		eventLogs = append(eventLogs, entity.EventLog{
			SnowFlakeBase: entity.SnowFlakeBase{ID: e.node.Generate().Int64()},
			TxHash:        log.TxHash,
			BlockNumber:   log.BlockNumber,
			LogIndex:      log.Index,
			Address:       log.Address,
			Name:          log.Name,
			Topic:         log.Topic,
			Args:          log.Args,
			Timestamp:     log.Timestamp,
		})
	}

	if err := e.eventLogRepo.BulkCreate(ctx, eventLogs); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create event logs: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction %s: %v", txHash.Hex(), err)
		return nil, errorx.Unknown
	}

	receipt.Logs = call.tx.logs
	e.publish(ctx, receipt)

	return receipt, nil
}

// admin runs fn in a database transaction without producing a block.
func (e *engine) admin(ctx context.Context, fn func(context.Context) error) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := fn(ctx); err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// pendingBlock returns the number and timestamp of the next block. Timestamps
// never decrease.
func (e *engine) pendingBlock(ctx context.Context) (uint64, int64, error) {
	now := e.clock.Now().Unix()

	latest, err := e.blockRepo.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, now, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest block: %v", err)
		return 0, 0, errorx.Unknown
	}

	if now < latest.Timestamp {
		now = latest.Timestamp
	}

	return latest.Number + 1, now, nil
}

func (e *engine) balanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	account, err := e.accountRepo.Get(ctx, address.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get account %s: %v", address.Hex(), err)
		return nil, errorx.Unknown
	}

	return account.Balance.Big(), nil
}

func (e *engine) transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errorx.New(errorx.BadRequest, "Negative transfer amount")
	}

	sender, err := e.accountRepo.GetOrCreate(ctx, from.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account %s: %v", from.Hex(), err)
		return errorx.Unknown
	}

	if sender.Balance.Big().Cmp(amount) < 0 {
		return errorx.New(errorx.InsufficientFunds,
			"Insufficient funds for transfer: address %s have %s want %s",
			from.Hex(), sender.Balance.String(), amount.String())
	}

	recipient, err := e.accountRepo.GetOrCreate(ctx, to.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account %s: %v", to.Hex(), err)
		return errorx.Unknown
	}

	if recipient.RejectsPayments {
		return ErrPaymentRejected
	}

	if from == to {
		return nil
	}

	newSenderBalance := new(big.Int).Sub(sender.Balance.Big(), amount)
	if err := e.accountRepo.UpdateBalance(ctx, from.Hex(), newSenderBalance); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update balance of %s: %v", from.Hex(), err)
		return errorx.Unknown
	}

	newRecipientBalance := new(big.Int).Add(recipient.Balance.Big(), amount)
	if err := e.accountRepo.UpdateBalance(ctx, to.Hex(), newRecipientBalance); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update balance of %s: %v", to.Hex(), err)
		return errorx.Unknown
	}

	return nil
}

func (e *engine) publish(ctx context.Context, receipt *model.Receipt) {
	if e.publisher == nil {
		return
	}

	for _, log := range receipt.Logs {
		b, err := json.Marshal(log)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot marshal log %s: %v", log.Name, err)
			continue
		}

		err = e.publisher.Publish(ctx, model.ChainEventTopic, &pubsub.Pack{Key: []byte(log.Address), Msg: b})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish log %s of %s: %v", log.Name, receipt.TxHash, err)
		}
	}
}

func transactionHash(from, to common.Address, nonce, blockNumber uint64) common.Hash {
	return crypto.Keccak256Hash(from.Bytes(), to.Bytes(), uint64Bytes(nonce), uint64Bytes(blockNumber))
}

func blockHash(number uint64, txHash common.Hash, timestamp int64) common.Hash {
	return crypto.Keccak256Hash(uint64Bytes(number), txHash.Bytes(), uint64Bytes(uint64(timestamp)))
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
