package domain

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/domain/contract"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	Get(context.Context, *model.GetRaffleRequest) (*model.GetRaffleResponse, error)
	GetEntranceFee(context.Context, *model.GetRaffleRequest) (*model.GetEntranceFeeResponse, error)
	GetInterval(context.Context, *model.GetRaffleRequest) (*model.GetIntervalResponse, error)
	GetPlayer(context.Context, *model.GetPlayerRequest) (*model.GetPlayerResponse, error)
	GetNumberOfPlayers(context.Context, *model.GetRaffleRequest) (*model.GetNumberOfPlayersResponse, error)
	GetRaffleState(context.Context, *model.GetRaffleRequest) (*model.GetRaffleStateResponse, error)
	GetLastTimeStamp(context.Context, *model.GetRaffleRequest) (*model.GetLastTimeStampResponse, error)
	GetRecentWinner(context.Context, *model.GetRaffleRequest) (*model.GetRecentWinnerResponse, error)
	CheckUpkeep(context.Context, *model.CheckUpkeepRequest) (*model.CheckUpkeepResponse, error)
	EnterLottery(context.Context, *model.EnterLotteryRequest) (*model.EnterLotteryResponse, error)
	PerformUpkeep(context.Context, *model.PerformUpkeepRequest) (*model.PerformUpkeepResponse, error)
}

type raffleDomain struct {
	deploymentRepo repository.DeploymentRepository
	engine         chain.Engine
	raffle         *contract.Raffle
	redisClient    xredis.Client
}

func NewRaffleDomain(
	deploymentRepo repository.DeploymentRepository,
	engine chain.Engine,
	raffle *contract.Raffle,
	redisClient xredis.Client,
) *raffleDomain {
	return &raffleDomain{
		deploymentRepo: deploymentRepo,
		engine:         engine,
		raffle:         raffle,
		redisClient:    redisClient,
	}
}

func (d *raffleDomain) Get(ctx context.Context, req *model.GetRaffleRequest) (*model.GetRaffleResponse, error) {
	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	key := common.RedisKeyRaffle(address.Hex())
	if d.redisClient != nil {
		var cached model.Raffle
		err := d.redisClient.GetObj(ctx, key, &cached)
		if err == nil {
			return &model.GetRaffleResponse{Raffle: cached}, nil
		}

		if !errors.Is(err, xredis.ErrNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot get raffle from cache: %v", err)
		}
	}

	var snapshot model.Raffle
	err = d.engine.View(ctx, address, func(ctx context.Context, call *chain.Call) error {
		state, err := d.raffle.Get(ctx, call.Self)
		if err != nil {
			return err
		}

		numPlayers, err := d.raffle.GetNumberOfPlayers(ctx, call.Self)
		if err != nil {
			return err
		}

		balance, err := call.Balance(ctx)
		if err != nil {
			return err
		}

		snapshot = model.ConvertRaffle(state, numPlayers, balance.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.redisClient != nil {
		ttl := xcontext.Configs(ctx).Redis.TTL()
		if err := d.redisClient.SetObj(ctx, key, snapshot, ttl); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache raffle: %v", err)
		}
	}

	return &model.GetRaffleResponse{Raffle: snapshot}, nil
}

func (d *raffleDomain) GetEntranceFee(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetEntranceFeeResponse, error) {
	state, err := d.state(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	return &model.GetEntranceFeeResponse{EntranceFee: state.EntranceFee.String()}, nil
}

func (d *raffleDomain) GetInterval(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetIntervalResponse, error) {
	state, err := d.state(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	return &model.GetIntervalResponse{Interval: state.Interval}, nil
}

func (d *raffleDomain) GetPlayer(ctx context.Context, req *model.GetPlayerRequest) (*model.GetPlayerResponse, error) {
	if req.Index < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid index")
	}

	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	var player string
	err = d.engine.View(ctx, address, func(ctx context.Context, call *chain.Call) error {
		var err error
		player, err = d.raffle.GetPlayer(ctx, call.Self, req.Index)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.GetPlayerResponse{Player: player}, nil
}

func (d *raffleDomain) GetNumberOfPlayers(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetNumberOfPlayersResponse, error) {
	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	var n int64
	err = d.engine.View(ctx, address, func(ctx context.Context, call *chain.Call) error {
		var err error
		n, err = d.raffle.GetNumberOfPlayers(ctx, call.Self)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.GetNumberOfPlayersResponse{NumberOfPlayers: n}, nil
}

func (d *raffleDomain) GetRaffleState(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetRaffleStateResponse, error) {
	state, err := d.state(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	return &model.GetRaffleStateResponse{
		State:      uint8(state.State),
		StateLabel: state.State.String(),
	}, nil
}

func (d *raffleDomain) GetLastTimeStamp(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetLastTimeStampResponse, error) {
	state, err := d.state(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	return &model.GetLastTimeStampResponse{LastTimeStamp: state.LastTimestamp}, nil
}

func (d *raffleDomain) GetRecentWinner(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetRecentWinnerResponse, error) {
	state, err := d.state(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	return &model.GetRecentWinnerResponse{RecentWinner: state.RecentWinner}, nil
}

func (d *raffleDomain) CheckUpkeep(
	ctx context.Context, req *model.CheckUpkeepRequest,
) (*model.CheckUpkeepResponse, error) {
	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	checkData, err := decodeHexData("check_data", req.CheckData)
	if err != nil {
		return nil, err
	}

	var needed bool
	var performData []byte
	err = d.engine.View(ctx, address, func(ctx context.Context, call *chain.Call) error {
		var err error
		needed, performData, err = d.raffle.CheckUpkeep(ctx, call, checkData)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.CheckUpkeepResponse{
		UpkeepNeeded: needed,
		PerformData:  "0x" + hex.EncodeToString(performData),
	}, nil
}

func (d *raffleDomain) EnterLottery(
	ctx context.Context, req *model.EnterLotteryRequest,
) (*model.EnterLotteryResponse, error) {
	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	from, err := common.ParseAddress("from", req.From)
	if err != nil {
		return nil, err
	}

	var value *big.Int
	if req.Value == "" {
		state, err := d.state(ctx, address.Hex())
		if err != nil {
			return nil, err
		}

		value = state.EntranceFee.Big()
	} else {
		var ok bool
		value, ok = new(big.Int).SetString(req.Value, 10)
		if !ok || value.Sign() < 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid value")
		}
	}

	receipt, err := execute(ctx, d.engine, "enterLottery",
		chain.Message{From: from, To: address, Value: value},
		authorizeSender("enterLottery", req.Signature, d.raffle.EnterLottery))
	if err != nil {
		return nil, err
	}

	common.IncCounter(common.RaffleEntryTotal, address.Hex())
	invalidateRaffleCache(ctx, d.redisClient, address)

	return &model.EnterLotteryResponse{Receipt: receipt}, nil
}

func (d *raffleDomain) PerformUpkeep(
	ctx context.Context, req *model.PerformUpkeepRequest,
) (*model.PerformUpkeepResponse, error) {
	address, err := d.resolve(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	from, err := common.ParseAddress("from", req.From)
	if err != nil {
		return nil, err
	}

	performData, err := decodeHexData("perform_data", req.PerformData)
	if err != nil {
		return nil, err
	}

	var requestID uint64
	receipt, err := execute(ctx, d.engine, "performUpkeep", chain.Message{From: from, To: address},
		authorizeSender("performUpkeep", req.Signature, func(ctx context.Context, call *chain.Call) error {
			var err error
			requestID, err = d.raffle.PerformUpkeep(ctx, call, performData)
			return err
		}))
	if err != nil {
		return nil, err
	}

	common.IncCounter(common.RaffleUpkeepTotal, address.Hex())
	invalidateRaffleCache(ctx, d.redisClient, address)

	return &model.PerformUpkeepResponse{RequestID: requestID, Receipt: receipt}, nil
}

func (d *raffleDomain) resolve(ctx context.Context, address string) (ethcommon.Address, error) {
	return resolveRaffleAddress(ctx, d.deploymentRepo, address)
}

func (d *raffleDomain) state(ctx context.Context, address string) (*entity.Raffle, error) {
	raffleAddress, err := d.resolve(ctx, address)
	if err != nil {
		return nil, err
	}

	var state *entity.Raffle
	err = d.engine.View(ctx, raffleAddress, func(ctx context.Context, call *chain.Call) error {
		var err error
		state, err = d.raffle.Get(ctx, call.Self)
		return err
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

// resolveRaffleAddress parses address, or falls back to the latest raffle
// deployed on the active network when it is empty.
func resolveRaffleAddress(
	ctx context.Context, deploymentRepo repository.DeploymentRepository, address string,
) (ethcommon.Address, error) {
	if address != "" {
		return common.ParseAddress("address", address)
	}

	network, err := xcontext.Configs(ctx).ActiveNetwork()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve network: %v", err)
		return ethcommon.Address{}, errorx.Unknown
	}

	deployment, err := deploymentRepo.GetLatest(ctx, network.Name, entity.ContractKindRaffle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ethcommon.Address{}, errorx.New(errorx.ContractNotFound,
				"No raffle deployed on %s", network.Name)
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest deployment: %v", err)
		return ethcommon.Address{}, errorx.Unknown
	}

	return ethcommon.HexToAddress(deployment.Address), nil
}

func invalidateRaffleCache(ctx context.Context, redisClient xredis.Client, addresses ...ethcommon.Address) {
	if redisClient == nil || len(addresses) == 0 {
		return
	}

	keys := make([]string, 0, len(addresses))
	for _, address := range addresses {
		keys = append(keys, common.RedisKeyRaffle(address.Hex()))
	}

	if err := redisClient.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate raffle cache: %v", err)
	}
}

// execute runs fn as one transaction and counts reverted ones by method.
func execute(
	ctx context.Context, engine chain.Engine, method string, msg chain.Message, fn chain.Func,
) (*model.Receipt, error) {
	receipt, err := engine.Execute(ctx, msg, fn)
	if err != nil {
		common.IncCounter(common.ChainTransactionFailure, method)
		xcontext.Logger(ctx).Debugf("Transaction %s reverted: %v", method, err)
		return nil, err
	}

	return receipt, nil
}

func decodeHexData(field, s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return []byte{}, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid %s", field)
	}

	return b, nil
}
