package domain

import (
	"context"
	"time"

	"github.com/pkg/math"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
)

const maxEventsLimit = 200

// maxIncreaseSeconds is the largest jump a time.Duration can hold.
const maxIncreaseSeconds = int64(1<<63-1) / int64(time.Second)

type ChainDomain interface {
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetEvents(context.Context, *model.GetEventsRequest) (*model.GetEventsResponse, error)
	Faucet(context.Context, *model.FaucetRequest) (*model.FaucetResponse, error)
	IncreaseTime(context.Context, *model.IncreaseTimeRequest) (*model.IncreaseTimeResponse, error)
	Mine(context.Context, *model.MineRequest) (*model.MineResponse, error)
	SetRejectPayments(context.Context, *model.SetRejectPaymentsRequest) (*model.SetRejectPaymentsResponse, error)
}

type chainDomain struct {
	eventLogRepo repository.EventLogRepository
	engine       chain.Engine
	redisClient  xredis.Client
}

func NewChainDomain(
	eventLogRepo repository.EventLogRepository,
	engine chain.Engine,
	redisClient xredis.Client,
) *chainDomain {
	return &chainDomain{
		eventLogRepo: eventLogRepo,
		engine:       engine,
		redisClient:  redisClient,
	}
}

func (d *chainDomain) GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error) {
	address, err := common.ParseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	balance, err := d.engine.BalanceAt(ctx, address)
	if err != nil {
		return nil, err
	}

	nonce, err := d.engine.NonceAt(ctx, address)
	if err != nil {
		return nil, err
	}

	return &model.GetBalanceResponse{Balance: balance.String(), Nonce: nonce}, nil
}

func (d *chainDomain) GetEvents(ctx context.Context, req *model.GetEventsRequest) (*model.GetEventsResponse, error) {
	filter := repository.EventLogFilter{
		Name:   req.Name,
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	if req.Address != "" {
		address, err := common.ParseAddress("address", req.Address)
		if err != nil {
			return nil, err
		}

		filter.Address = address.Hex()
	}

	if filter.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid offset")
	}

	if filter.Limit <= 0 {
		filter.Limit = maxEventsLimit
	}
	filter.Limit = math.MinInt(filter.Limit, maxEventsLimit)

	logs, err := d.eventLogRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get event logs: %v", err)
		return nil, errorx.Unknown
	}

	events := make([]model.Log, 0, len(logs))
	for _, log := range logs {
		events = append(events, model.ConvertLog(log))
	}

	return &model.GetEventsResponse{Events: events}, nil
}

func (d *chainDomain) Faucet(ctx context.Context, req *model.FaucetRequest) (*model.FaucetResponse, error) {
	address, err := common.ParseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	amount, err := ethutil.ParseEther(req.Amount)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid amount")
	}

	balance, err := d.engine.Faucet(ctx, address, amount)
	if err != nil {
		return nil, err
	}

	invalidateRaffleCache(ctx, d.redisClient, address)
	xcontext.Logger(ctx).Infof("Operator %s credited %s ETH to %s",
		xcontext.Operator(ctx), req.Amount, address.Hex())

	return &model.FaucetResponse{Balance: balance.String()}, nil
}

func (d *chainDomain) IncreaseTime(
	ctx context.Context, req *model.IncreaseTimeRequest,
) (*model.IncreaseTimeResponse, error) {
	if req.Seconds <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Seconds must be a positive number")
	}

	if req.Seconds > maxIncreaseSeconds {
		return nil, errorx.New(errorx.BadRequest, "Seconds must not exceed %d", maxIncreaseSeconds)
	}

	timestamp, err := d.engine.IncreaseTime(ctx, time.Duration(req.Seconds)*time.Second)
	if err != nil {
		return nil, err
	}

	return &model.IncreaseTimeResponse{Timestamp: timestamp}, nil
}

func (d *chainDomain) Mine(ctx context.Context, req *model.MineRequest) (*model.MineResponse, error) {
	block, err := d.engine.Mine(ctx)
	if err != nil {
		return nil, err
	}

	return &model.MineResponse{BlockNumber: block.Number, Timestamp: block.Timestamp}, nil
}

func (d *chainDomain) SetRejectPayments(
	ctx context.Context, req *model.SetRejectPaymentsRequest,
) (*model.SetRejectPaymentsResponse, error) {
	address, err := common.ParseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}

	if err := d.engine.SetRejectsPayments(ctx, address, req.Reject); err != nil {
		return nil, err
	}

	return &model.SetRejectPaymentsResponse{}, nil
}
