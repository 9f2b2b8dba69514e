package contract

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/contract/vrfcoordinator"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

var (
	// BaseFee is the flat LINK premium of a request, 0.25 LINK.
	BaseFee = big.NewInt(250_000_000_000_000_000)
	// GasPriceLink is the LINK price of one unit of callback gas.
	GasPriceLink = big.NewInt(1_000_000_000)
)

// Consumer receives fulfilled random words.
type Consumer interface {
	RawFulfillRandomWords(ctx context.Context, call *chain.Call, requestID uint64, randomWords []*big.Int) error
}

// VRFCoordinatorV2Mock is a local randomness oracle. Requests stay pending
// until someone calls FulfillRandomWords.
type VRFCoordinatorV2Mock struct {
	vrfRepo     repository.VRFRepository
	accountRepo repository.AccountRepository
	consumers   map[entity.ContractKind]Consumer
}

func NewVRFCoordinatorV2Mock(
	vrfRepo repository.VRFRepository,
	accountRepo repository.AccountRepository,
) *VRFCoordinatorV2Mock {
	return &VRFCoordinatorV2Mock{
		vrfRepo:     vrfRepo,
		accountRepo: accountRepo,
		consumers:   make(map[entity.ContractKind]Consumer),
	}
}

// RegisterConsumer routes callbacks for contracts of the given kind.
func (v *VRFCoordinatorV2Mock) RegisterConsumer(kind entity.ContractKind, consumer Consumer) {
	v.consumers[kind] = consumer
}

func (v *VRFCoordinatorV2Mock) Construct(
	ctx context.Context, call *chain.Call, baseFee, gasPriceLink *big.Int,
) error {
	err := v.vrfRepo.CreateCoordinator(ctx, &entity.VRFCoordinator{
		Address:       call.Self.Hex(),
		BaseFee:       entity.NewBigInt(baseFee),
		GasPriceLink:  entity.NewBigInt(gasPriceLink),
		CurrentSubID:  0,
		NextRequestID: 1,
		NextPreSeed:   100,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create coordinator: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (v *VRFCoordinatorV2Mock) CreateSubscription(ctx context.Context, call *chain.Call) (uint64, error) {
	if _, err := v.getCoordinator(ctx, call.Self); err != nil {
		return 0, err
	}

	subID, err := v.vrfRepo.NextSubID(ctx, call.Self.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get next subscription id: %v", err)
		return 0, errorx.Unknown
	}

	err = v.vrfRepo.CreateSubscription(ctx, &entity.VRFSubscription{
		Coordinator: call.Self.Hex(),
		SubID:       subID,
		Owner:       call.Sender.Hex(),
		Balance:     entity.NewBigInt(nil),
		Consumers:   entity.Array[string]{},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create subscription: %v", err)
		return 0, errorx.Unknown
	}

	err = call.Emit(vrfcoordinator.Event(vrfcoordinator.EventSubscriptionCreated),
		model.SubscriptionCreatedEvent{SubID: subID, Owner: call.Sender.Hex()})
	if err != nil {
		return 0, err
	}

	return subID, nil
}

func (v *VRFCoordinatorV2Mock) FundSubscription(
	ctx context.Context, call *chain.Call, subID uint64, amount *big.Int,
) error {
	if amount == nil || amount.Sign() < 0 {
		return errorx.New(errorx.BadRequest, "Invalid amount")
	}

	sub, err := v.getSubscription(ctx, call.Self, subID)
	if err != nil {
		return err
	}

	oldBalance := sub.Balance.Big()
	newBalance := new(big.Int).Add(oldBalance, amount)
	sub.Balance = entity.NewBigInt(newBalance)
	if err := v.vrfRepo.UpdateSubscription(ctx, sub); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update subscription: %v", err)
		return errorx.Unknown
	}

	return call.Emit(vrfcoordinator.Event(vrfcoordinator.EventSubscriptionFunded), model.SubscriptionFundedEvent{
		SubID:      subID,
		OldBalance: oldBalance.String(),
		NewBalance: newBalance.String(),
	})
}

func (v *VRFCoordinatorV2Mock) AddConsumer(
	ctx context.Context, call *chain.Call, subID uint64, consumer common.Address,
) error {
	sub, err := v.getOwnedSubscription(ctx, call, subID)
	if err != nil {
		return err
	}

	if len(sub.Consumers) >= vrfcoordinator.MaxConsumers {
		return errorx.New(errorx.TooManyConsumers, "TooManyConsumers")
	}

	if slices.Contains(sub.Consumers, consumer.Hex()) {
		return nil
	}

	sub.Consumers = append(sub.Consumers, consumer.Hex())
	if err := v.vrfRepo.UpdateSubscription(ctx, sub); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update subscription: %v", err)
		return errorx.Unknown
	}

	return call.Emit(vrfcoordinator.Event(vrfcoordinator.EventConsumerAdded),
		model.ConsumerAddedEvent{SubID: subID, Consumer: consumer.Hex()})
}

func (v *VRFCoordinatorV2Mock) RemoveConsumer(
	ctx context.Context, call *chain.Call, subID uint64, consumer common.Address,
) error {
	sub, err := v.getOwnedSubscription(ctx, call, subID)
	if err != nil {
		return err
	}

	index := slices.Index(sub.Consumers, consumer.Hex())
	if index < 0 {
		return errorx.New(errorx.InvalidConsumer, "InvalidConsumer(%d, %s)", subID, consumer.Hex())
	}

	sub.Consumers = slices.Delete(sub.Consumers, index, index+1)
	if err := v.vrfRepo.UpdateSubscription(ctx, sub); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update subscription: %v", err)
		return errorx.Unknown
	}

	return call.Emit(vrfcoordinator.Event(vrfcoordinator.EventConsumerRemoved),
		model.ConsumerRemovedEvent{SubID: subID, Consumer: consumer.Hex()})
}

func (v *VRFCoordinatorV2Mock) GetSubscription(
	ctx context.Context, coordinator common.Address, subID uint64,
) (*entity.VRFSubscription, error) {
	return v.getSubscription(ctx, coordinator, subID)
}

func (v *VRFCoordinatorV2Mock) RequestRandomWords(
	ctx context.Context,
	call *chain.Call,
	keyHash common.Hash,
	subID uint64,
	minConfirmations uint16,
	callbackGasLimit uint32,
	numWords uint32,
) (uint64, error) {
	sub, err := v.getSubscription(ctx, call.Self, subID)
	if err != nil {
		return 0, err
	}

	if !slices.Contains(sub.Consumers, call.Sender.Hex()) {
		return 0, errorx.New(errorx.InvalidConsumer, "InvalidConsumer(%d, %s)", subID, call.Sender.Hex())
	}

	requestID, preSeed, err := v.vrfRepo.NextRequestID(ctx, call.Self.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get next request id: %v", err)
		return 0, errorx.Unknown
	}

	err = v.vrfRepo.CreateRequest(ctx, &entity.VRFRequest{
		Coordinator:      call.Self.Hex(),
		RequestID:        requestID,
		SubID:            subID,
		Consumer:         call.Sender.Hex(),
		KeyHash:          keyHash.Hex(),
		PreSeed:          preSeed,
		MinConfirmations: minConfirmations,
		CallbackGasLimit: callbackGasLimit,
		NumWords:         numWords,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create request: %v", err)
		return 0, errorx.Unknown
	}

	err = call.Emit(vrfcoordinator.Event(vrfcoordinator.EventRandomWordsRequested), model.RandomWordsRequestedEvent{
		KeyHash:                     keyHash.Hex(),
		RequestID:                   requestID,
		PreSeed:                     preSeed,
		SubID:                       subID,
		MinimumRequestConfirmations: minConfirmations,
		CallbackGasLimit:            callbackGasLimit,
		NumWords:                    numWords,
		Sender:                      call.Sender.Hex(),
	})
	if err != nil {
		return 0, err
	}

	return requestID, nil
}

// FulfillRandomWords fulfills a request with words derived from the request
// id. It reports whether the consumer callback succeeded and the payment
// charged to the subscription.
func (v *VRFCoordinatorV2Mock) FulfillRandomWords(
	ctx context.Context, call *chain.Call, requestID uint64, consumer common.Address,
) (bool, *big.Int, error) {
	return v.FulfillRandomWordsWithOverride(ctx, call, requestID, consumer, nil)
}

// FulfillRandomWordsWithOverride is FulfillRandomWords with caller supplied
// words. Empty words fall back to the generated ones.
func (v *VRFCoordinatorV2Mock) FulfillRandomWordsWithOverride(
	ctx context.Context, call *chain.Call, requestID uint64, consumer common.Address, words []*big.Int,
) (bool, *big.Int, error) {
	coordinator, err := v.getCoordinator(ctx, call.Self)
	if err != nil {
		return false, nil, err
	}

	req, err := v.vrfRepo.GetRequest(ctx, call.Self.Hex(), requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, errorx.New(errorx.NonexistentRequest, "nonexistent request")
		}

		xcontext.Logger(ctx).Errorf("Cannot get request: %v", err)
		return false, nil, errorx.Unknown
	}

	if len(words) == 0 {
		words = make([]*big.Int, req.NumWords)
		for i := range words {
			words[i] = vrfcoordinator.RandomWord(new(big.Int).SetUint64(requestID), i)
		}
	} else if len(words) != int(req.NumWords) {
		return false, nil, errorx.New(errorx.InvalidRandomWords, "InvalidRandomWords")
	}

	success, err := call.TryInvoke(ctx, consumer, nil, func(ctx context.Context, call *chain.Call) error {
		return v.callback(ctx, call, requestID, words)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot revert consumer callback: %v", err)
		return false, nil, errorx.Unknown
	}

	payment := new(big.Int).Mul(big.NewInt(int64(req.CallbackGasLimit)), coordinator.GasPriceLink.Big())
	payment.Add(payment, coordinator.BaseFee.Big())

	sub, err := v.getSubscription(ctx, call.Self, req.SubID)
	if err != nil {
		return false, nil, err
	}

	if sub.Balance.Big().Cmp(payment) < 0 {
		return false, nil, errorx.New(errorx.InsufficientBalance, "InsufficientBalance")
	}

	sub.Balance = entity.NewBigInt(new(big.Int).Sub(sub.Balance.Big(), payment))
	if err := v.vrfRepo.UpdateSubscription(ctx, sub); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update subscription: %v", err)
		return false, nil, errorx.Unknown
	}

	if err := v.vrfRepo.DeleteRequest(ctx, call.Self.Hex(), requestID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete request: %v", err)
		return false, nil, errorx.Unknown
	}

	err = call.Emit(vrfcoordinator.Event(vrfcoordinator.EventRandomWordsFulfilled), model.RandomWordsFulfilledEvent{
		RequestID:  requestID,
		OutputSeed: requestID,
		Payment:    payment.String(),
		Success:    success,
	})
	if err != nil {
		return false, nil, err
	}

	return success, payment, nil
}

// callback delivers words to the consumer contract at call.Self. Calls to
// accounts without code succeed without effect.
func (v *VRFCoordinatorV2Mock) callback(
	ctx context.Context, call *chain.Call, requestID uint64, words []*big.Int,
) error {
	account, err := v.accountRepo.Get(ctx, call.Self.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	consumer, ok := v.consumers[account.Kind]
	if !ok {
		return nil
	}

	return consumer.RawFulfillRandomWords(ctx, call, requestID, words)
}

func (v *VRFCoordinatorV2Mock) getCoordinator(
	ctx context.Context, address common.Address,
) (*entity.VRFCoordinator, error) {
	coordinator, err := v.vrfRepo.GetCoordinator(ctx, address.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ContractNotFound, "VRF coordinator %s is not deployed", address.Hex())
		}

		xcontext.Logger(ctx).Errorf("Cannot get coordinator: %v", err)
		return nil, errorx.Unknown
	}

	return coordinator, nil
}

func (v *VRFCoordinatorV2Mock) getSubscription(
	ctx context.Context, coordinator common.Address, subID uint64,
) (*entity.VRFSubscription, error) {
	if _, err := v.getCoordinator(ctx, coordinator); err != nil {
		return nil, err
	}

	sub, err := v.vrfRepo.GetSubscription(ctx, coordinator.Hex(), subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidSubscription, "InvalidSubscription")
		}

		xcontext.Logger(ctx).Errorf("Cannot get subscription: %v", err)
		return nil, errorx.Unknown
	}

	return sub, nil
}

func (v *VRFCoordinatorV2Mock) getOwnedSubscription(
	ctx context.Context, call *chain.Call, subID uint64,
) (*entity.VRFSubscription, error) {
	sub, err := v.getSubscription(ctx, call.Self, subID)
	if err != nil {
		return nil, err
	}

	if sub.Owner != call.Sender.Hex() {
		return nil, errorx.New(errorx.MustBeSubOwner, "MustBeSubOwner(%s)", sub.Owner)
	}

	return sub, nil
}
