package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/structs"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

var ErrWriteProtection = errors.New("write protection")

// Func is the body of a contract call.
type Func func(ctx context.Context, call *Call) error

type txState struct {
	hash       common.Hash
	logs       []model.Log
	savepoints int
}

// Call is one execution frame. Sender is msg.sender, Self is address(this).
type Call struct {
	Sender      common.Address
	Self        common.Address
	Value       *big.Int
	Timestamp   int64
	BlockNumber uint64
	// Nonce is the sender's nonce of the transaction. It is only set in the
	// outermost frame.
	Nonce uint64

	engine *engine
	tx     *txState
}

// ReadOnly reports whether this frame belongs to a View.
func (c *Call) ReadOnly() bool {
	return c.tx == nil
}

// Emit appends a log of the current contract to the transaction. Logs of a
// reverted frame are discarded with it.
func (c *Call) Emit(event abi.Event, args any) error {
	if c.ReadOnly() {
		return ErrWriteProtection
	}

	var m map[string]any
	switch t := args.(type) {
	case nil:
	case map[string]any:
		m = t
	default:
		m = structs.Map(args)
	}

	c.tx.logs = append(c.tx.logs, model.Log{
		Index:       len(c.tx.logs),
		TxHash:      c.tx.hash.Hex(),
		BlockNumber: c.BlockNumber,
		Timestamp:   c.Timestamp,
		Address:     c.Self.Hex(),
		Name:        event.Name,
		Topic:       event.ID.Hex(),
		Args:        m,
	})

	return nil
}

// Balance returns the balance of the current contract.
func (c *Call) Balance(ctx context.Context) (*big.Int, error) {
	return c.engine.balanceAt(ctx, c.Self)
}

// Transfer sends amount from the current contract to another account.
func (c *Call) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	if c.ReadOnly() {
		return ErrWriteProtection
	}

	return c.engine.transfer(ctx, c.Self, to, amount)
}

// Invoke calls another contract in the same transaction. An error of fn
// reverts the whole transaction.
func (c *Call) Invoke(ctx context.Context, to common.Address, value *big.Int, fn Func) error {
	if c.ReadOnly() {
		return fn(ctx, c.child(to, value))
	}

	if value != nil && value.Sign() > 0 {
		if err := c.engine.transfer(ctx, c.Self, to, value); err != nil {
			return err
		}
	}

	return fn(ctx, c.child(to, value))
}

// TryInvoke is Invoke with the semantics of a low-level call: an error of fn
// only reverts the effects of fn and is reported as success=false. The
// returned error is non-nil only if the revert itself failed.
func (c *Call) TryInvoke(ctx context.Context, to common.Address, value *big.Int, fn Func) (bool, error) {
	if c.ReadOnly() {
		return false, ErrWriteProtection
	}

	name := fmt.Sprintf("call_%d", c.tx.savepoints)
	c.tx.savepoints++

	if err := xcontext.DB(ctx).SavePoint(name).Error; err != nil {
		return false, err
	}

	numLogs := len(c.tx.logs)
	if err := c.Invoke(ctx, to, value, fn); err != nil {
		if rbErr := xcontext.DB(ctx).RollbackTo(name).Error; rbErr != nil {
			return false, rbErr
		}

		c.tx.logs = c.tx.logs[:numLogs]
		xcontext.Logger(ctx).Debugf("Call from %s to %s reverted: %v", c.Self.Hex(), to.Hex(), err)
		return false, nil
	}

	return true, nil
}

func (c *Call) child(to common.Address, value *big.Int) *Call {
	if value == nil {
		value = new(big.Int)
	}

	return &Call{
		Sender:      c.Self,
		Self:        to,
		Value:       value,
		Timestamp:   c.Timestamp,
		BlockNumber: c.BlockNumber,
		engine:      c.engine,
		tx:          c.tx,
	}
}
