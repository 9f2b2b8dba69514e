package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/contract/raffle"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	RequestConfirmations uint16 = 3
	NumWords             uint32 = 1
)

type RaffleConfig struct {
	Coordinator      ethcommon.Address
	GasLane          ethcommon.Hash
	SubscriptionID   uint64
	CallbackGasLimit uint32
	EntranceFee      *big.Int
	Interval         int64
}

// RandomWordsRequester is the oracle side of a randomness request.
type RandomWordsRequester interface {
	RequestRandomWords(
		ctx context.Context,
		call *chain.Call,
		keyHash ethcommon.Hash,
		subID uint64,
		minConfirmations uint16,
		callbackGasLimit uint32,
		numWords uint32,
	) (uint64, error)
}

// UpkeepNotNeededError is Raffle__UpkeepNotNeeded(currentBalance, numPlayers,
// raffleState).
type UpkeepNotNeededError struct {
	CurrentBalance *big.Int
	NumPlayers     int64
	RaffleState    entity.RaffleState
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf("%s(%s, %d, %d)",
		raffle.ErrUpkeepNotNeeded, e.CurrentBalance, e.NumPlayers, e.RaffleState)
}

func (e *UpkeepNotNeededError) Unwrap() error {
	return errorx.New(errorx.UpkeepNotNeeded, e.Error())
}

// Raffle implements the lottery contract on top of the chain engine. Every
// mutating method must run inside chain.Engine.Execute so that its effects
// commit or revert together.
type Raffle struct {
	raffleRepo  repository.RaffleRepository
	coordinator RandomWordsRequester
}

func NewRaffle(raffleRepo repository.RaffleRepository, coordinator RandomWordsRequester) *Raffle {
	return &Raffle{raffleRepo: raffleRepo, coordinator: coordinator}
}

// Construct initializes the contract at call.Self. It is the constructor body
// of a chain.Engine.Deploy.
func (r *Raffle) Construct(ctx context.Context, call *chain.Call, cfg RaffleConfig) error {
	if cfg.EntranceFee == nil || cfg.EntranceFee.Sign() < 0 {
		return errorx.New(errorx.BadRequest, "Invalid entrance fee")
	}

	if cfg.Interval < 0 {
		return errorx.New(errorx.BadRequest, "Invalid interval")
	}

	network, err := xcontext.Configs(ctx).ActiveNetwork()
	if err != nil {
		return errorx.New(errorx.BadRequest, "%v", err)
	}

	err = r.raffleRepo.Create(ctx, &entity.Raffle{
		Address:          call.Self.Hex(),
		Network:          network.Name,
		ChainID:          network.ChainID,
		Coordinator:      cfg.Coordinator.Hex(),
		GasLane:          cfg.GasLane.Hex(),
		SubscriptionID:   cfg.SubscriptionID,
		CallbackGasLimit: cfg.CallbackGasLimit,
		EntranceFee:      entity.NewBigInt(cfg.EntranceFee),
		Interval:         cfg.Interval,
		State:            entity.RaffleStateOpen,
		LastTimestamp:    call.Timestamp,
		RecentWinner:     ethcommon.Address{}.Hex(),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (r *Raffle) EnterLottery(ctx context.Context, call *chain.Call) error {
	state, err := r.get(ctx, call.Self)
	if err != nil {
		return err
	}

	if call.Value.Cmp(state.EntranceFee.Big()) < 0 {
		return errorx.New(errorx.InsufficientEntranceFee, raffle.ErrInsufficientEntranceFee)
	}

	if state.State != entity.RaffleStateOpen {
		return errorx.New(errorx.RaffleNotOpen, raffle.ErrNotOpen)
	}

	numPlayers, err := r.raffleRepo.CountPlayers(ctx, call.Self.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count players: %v", err)
		return errorx.Unknown
	}

	err = r.raffleRepo.AddPlayer(ctx, &entity.RafflePlayer{
		RaffleAddress: call.Self.Hex(),
		Position:      int(numPlayers),
		Player:        call.Sender.Hex(),
		Round:         state.Round,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add player: %v", err)
		return errorx.Unknown
	}

	return call.Emit(raffle.Event(raffle.EventRaffleEnter), model.RaffleEnterEvent{Player: call.Sender.Hex()})
}

// CheckUpkeep reports whether the raffle is open, the interval has elapsed,
// there is at least one player and the contract holds a balance. checkData is
// unused and performData is always empty.
func (r *Raffle) CheckUpkeep(ctx context.Context, call *chain.Call, checkData []byte) (bool, []byte, error) {
	needed, _, err := r.checkUpkeep(ctx, call)
	if err != nil {
		return false, nil, err
	}

	return needed, []byte{}, nil
}

func (r *Raffle) checkUpkeep(ctx context.Context, call *chain.Call) (bool, *UpkeepNotNeededError, error) {
	state, err := r.get(ctx, call.Self)
	if err != nil {
		return false, nil, err
	}

	numPlayers, err := r.raffleRepo.CountPlayers(ctx, call.Self.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count players: %v", err)
		return false, nil, errorx.Unknown
	}

	balance, err := call.Balance(ctx)
	if err != nil {
		return false, nil, err
	}

	isOpen := state.State == entity.RaffleStateOpen
	timePassed := call.Timestamp-state.LastTimestamp >= state.Interval
	hasPlayers := numPlayers > 0
	hasBalance := balance.Sign() > 0

	diagnostic := &UpkeepNotNeededError{
		CurrentBalance: balance,
		NumPlayers:     numPlayers,
		RaffleState:    state.State,
	}

	return isOpen && timePassed && hasPlayers && hasBalance, diagnostic, nil
}

// PerformUpkeep requests a random word from the coordinator and closes the
// raffle until it is fulfilled. It returns the request id.
func (r *Raffle) PerformUpkeep(ctx context.Context, call *chain.Call, performData []byte) (uint64, error) {
	needed, diagnostic, err := r.checkUpkeep(ctx, call)
	if err != nil {
		return 0, err
	}

	if !needed {
		return 0, diagnostic
	}

	state, err := r.get(ctx, call.Self)
	if err != nil {
		return 0, err
	}

	var requestID uint64
	coordinator := ethcommon.HexToAddress(state.Coordinator)
	err = call.Invoke(ctx, coordinator, nil, func(ctx context.Context, call *chain.Call) error {
		var err error
		requestID, err = r.coordinator.RequestRandomWords(
			ctx,
			call,
			ethcommon.HexToHash(state.GasLane),
			state.SubscriptionID,
			RequestConfirmations,
			state.CallbackGasLimit,
			NumWords,
		)
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := r.raffleRepo.StartCalculating(ctx, call.Self.Hex(), requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errorx.New(errorx.RaffleNotOpen, raffle.ErrNotOpen)
		}

		xcontext.Logger(ctx).Errorf("Cannot start calculating: %v", err)
		return 0, errorx.Unknown
	}

	err = call.Emit(raffle.Event(raffle.EventRequestedRaffleWinner),
		model.RequestedRaffleWinnerEvent{RequestID: requestID})
	if err != nil {
		return 0, err
	}

	return requestID, nil
}

// RawFulfillRandomWords is the coordinator callback. It picks the winner,
// resets the round and pays out the whole balance.
func (r *Raffle) RawFulfillRandomWords(
	ctx context.Context, call *chain.Call, requestID uint64, randomWords []*big.Int,
) error {
	state, err := r.get(ctx, call.Self)
	if err != nil {
		return err
	}

	coordinator := ethcommon.HexToAddress(state.Coordinator)
	if call.Sender != coordinator {
		return errorx.New(errorx.OnlyCoordinatorCanFulfill, "%s(%s, %s)",
			raffle.ErrOnlyCoordinatorCanFulfill, call.Sender.Hex(), coordinator.Hex())
	}

	if state.State != entity.RaffleStateCalculating || state.OutstandingRequestID != requestID {
		return errorx.New(errorx.UnexpectedRequest, "%s(%d)", raffle.ErrUnexpectedRequest, requestID)
	}

	if len(randomWords) == 0 {
		return errorx.New(errorx.InvalidRandomWords, "Empty random words")
	}

	players, err := r.raffleRepo.GetPlayers(ctx, call.Self.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get players: %v", err)
		return errorx.Unknown
	}

	if len(players) == 0 {
		return errorx.New(errorx.UnexpectedRequest, "%s(%d)", raffle.ErrUnexpectedRequest, requestID)
	}

	index := new(big.Int).Mod(randomWords[0], big.NewInt(int64(len(players)))).Int64()
	winner := ethcommon.HexToAddress(players[index].Player)

	if err := r.raffleRepo.CompleteRound(ctx, call.Self.Hex(), winner.Hex(), call.Timestamp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot complete round: %v", err)
		return errorx.Unknown
	}

	if err := r.raffleRepo.ClearPlayers(ctx, call.Self.Hex()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear players: %v", err)
		return errorx.Unknown
	}

	balance, err := call.Balance(ctx)
	if err != nil {
		return err
	}

	if err := call.Transfer(ctx, winner, balance); err != nil {
		common.IncCounter(common.RaffleTransferFailure, call.Self.Hex())
		xcontext.Logger(ctx).Warnf("Cannot pay %s to winner %s: %v", balance, winner.Hex(), err)
		return errorx.New(errorx.TransferFailed, raffle.ErrTransferFailed)
	}

	return call.Emit(raffle.Event(raffle.EventRecentWinner), model.RecentWinnerEvent{Winner: winner.Hex()})
}

func (r *Raffle) Get(ctx context.Context, address ethcommon.Address) (*entity.Raffle, error) {
	return r.get(ctx, address)
}

func (r *Raffle) GetPlayer(ctx context.Context, address ethcommon.Address, index int) (string, error) {
	if _, err := r.get(ctx, address); err != nil {
		return "", err
	}

	player, err := r.raffleRepo.GetPlayer(ctx, address.Hex(), index)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.New(errorx.PlayerIndexOutOfRange, "%s(%d)", raffle.ErrPlayerIndexOutOfRange, index)
		}

		xcontext.Logger(ctx).Errorf("Cannot get player: %v", err)
		return "", errorx.Unknown
	}

	return player.Player, nil
}

func (r *Raffle) GetNumberOfPlayers(ctx context.Context, address ethcommon.Address) (int64, error) {
	if _, err := r.get(ctx, address); err != nil {
		return 0, err
	}

	n, err := r.raffleRepo.CountPlayers(ctx, address.Hex())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count players: %v", err)
		return 0, errorx.Unknown
	}

	return n, nil
}

func (r *Raffle) GetNumWords() uint32 {
	return NumWords
}

func (r *Raffle) GetRequestConfirmations() uint16 {
	return RequestConfirmations
}

func (r *Raffle) get(ctx context.Context, address ethcommon.Address) (*entity.Raffle, error) {
	state, err := r.raffleRepo.GetByAddress(ctx, address.Hex())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.ContractNotFound, "Raffle %s is not deployed", address.Hex())
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle %s: %v", address.Hex(), err)
		return nil, errorx.Unknown
	}

	return state, nil
}
