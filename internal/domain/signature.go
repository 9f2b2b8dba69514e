package domain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// SenderMessage is the text an account signs with personal_sign to send a
// transaction calling method on contract. The nonce binds the signature to a
// single transaction.
func SenderMessage(method string, contract ethcommon.Address, value *big.Int, nonce uint64) string {
	if value == nil {
		value = new(big.Int)
	}

	return fmt.Sprintf("%s:%s:%s:%d", method, contract.Hex(), value.String(), nonce)
}

// authorizeSender wraps fn so the transaction only runs if its sender signed
// it. Operators may send from any account.
func authorizeSender(method, signature string, fn chain.Func) chain.Func {
	return func(ctx context.Context, call *chain.Call) error {
		if xcontext.Operator(ctx) == "" {
			if err := verifySender(call, method, signature); err != nil {
				return err
			}
		}

		return fn(ctx, call)
	}
}

func verifySender(call *chain.Call, method, signature string) error {
	if signature == "" {
		return errorx.New(errorx.Unauthenticated, "Signature of %s is required", call.Sender.Hex())
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if sig[crypto.RecoveryIDOffset] == 27 || sig[crypto.RecoveryIDOffset] == 28 {
		sig[crypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}

	hash := accounts.TextHash([]byte(SenderMessage(method, call.Self, call.Value, call.Nonce)))
	recovered, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return errorx.New(errorx.Unauthenticated, "Invalid signature")
	}

	if crypto.PubkeyToAddress(*recovered) != call.Sender {
		return errorx.New(errorx.Unauthenticated, "Mismatched address")
	}

	return nil
}
