package cron

import (
	"context"
	"encoding/json"
	"time"

	raffleabi "github.com/questx-lab/raffle/contract/raffle"
	"github.com/questx-lab/raffle/internal/domain"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/pubsub"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/robfig/cron/v3"
)

// keeperOperator is the operator name the keeper sends transactions as.
const keeperOperator = "keeper"

const winnerTimeout = 30 * time.Second

// EventWaiter is implemented by pubsub.Hub.
type EventWaiter interface {
	Once(topic string, match func(*pubsub.Pack) bool) (<-chan *pubsub.Pack, func())
}

// UpkeepCronJob is the keeper of every raffle on the active network.
type UpkeepCronJob struct {
	schedule     cron.Schedule
	raffleRepo   repository.RaffleRepository
	raffleDomain domain.RaffleDomain
	vrfDomain    domain.VRFDomain
	events       EventWaiter
}

func NewUpkeepCronJob(
	schedule string,
	raffleRepo repository.RaffleRepository,
	raffleDomain domain.RaffleDomain,
	vrfDomain domain.VRFDomain,
	events EventWaiter,
) (*UpkeepCronJob, error) {
	s, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, err
	}

	return &UpkeepCronJob{
		schedule:     s,
		raffleRepo:   raffleRepo,
		raffleDomain: raffleDomain,
		vrfDomain:    vrfDomain,
		events:       events,
	}, nil
}

func (job *UpkeepCronJob) Do(ctx context.Context) {
	cfg := xcontext.Configs(ctx)
	network, err := cfg.ActiveNetwork()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve network: %v", err)
		return
	}

	raffles, err := job.raffleRepo.GetByNetwork(ctx, network.Name)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles: %v", err)
		return
	}

	fulfill := cfg.Keeper.AutoFulfill && cfg.IsDevelopmentChain(network.Name)
	for _, raffle := range raffles {
		if _, err := job.Upkeep(ctx, raffle.Address, fulfill); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot upkeep raffle %s: %v", raffle.Address, err)
		}
	}
}

func (job *UpkeepCronJob) RunNow() bool {
	return false
}

func (job *UpkeepCronJob) Next() time.Time {
	return job.schedule.Next(time.Now())
}

// UpkeepResult describes one keeper round of a raffle. RequestID is zero when
// no upkeep was needed.
type UpkeepResult struct {
	RequestID    uint64
	Fulfilled    bool
	Success      bool
	RecentWinner string
}

// Upkeep checks the raffle at address and performs the upkeep from the keeper
// account when needed. If fulfill is set, the request is fulfilled right away
// by the mock coordinator and the RecentWinner event is awaited. An empty
// address means the latest raffle.
func (job *UpkeepCronJob) Upkeep(ctx context.Context, address string, fulfill bool) (*UpkeepResult, error) {
	ctx = xcontext.WithOperator(ctx, keeperOperator)

	check, err := job.raffleDomain.CheckUpkeep(ctx, &model.CheckUpkeepRequest{Address: address})
	if err != nil {
		return nil, err
	}

	if !check.UpkeepNeeded {
		xcontext.Logger(ctx).Debugf("No upkeep needed for raffle %s", address)
		return &UpkeepResult{}, nil
	}

	upkeep, err := job.raffleDomain.PerformUpkeep(ctx, &model.PerformUpkeepRequest{
		Address:     address,
		From:        xcontext.Configs(ctx).Keeper.Account,
		PerformData: check.PerformData,
	})
	if err != nil {
		if errorx.Is(err, errorx.UpkeepNotNeeded) {
			xcontext.Logger(ctx).Warnf("Upkeep of raffle %s was done by someone else: %v", address, err)
			return &UpkeepResult{}, nil
		}

		return nil, err
	}

	// The request id is the topic of the RequestedRaffleWinner log.
	var event model.RequestedRaffleWinnerEvent
	if len(upkeep.Receipt.Logs) > 1 {
		if err := upkeep.Receipt.Logs[1].Decode(&event); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode RequestedRaffleWinner: %v", err)
			return nil, errorx.Unknown
		}
	} else {
		event.RequestID = upkeep.RequestID
	}

	xcontext.Logger(ctx).Infof("Performed upkeep with RequestId: %d", event.RequestID)
	result := &UpkeepResult{RequestID: event.RequestID}
	if !fulfill {
		return result, nil
	}

	// The raffle emits RecentWinner in the fulfillment transaction.
	raffleAddress := upkeep.Receipt.To
	winnerEvent, cancel := job.events.Once(model.ChainEventTopic, func(pack *pubsub.Pack) bool {
		if string(pack.Key) != raffleAddress {
			return false
		}

		var log model.Log
		return json.Unmarshal(pack.Msg, &log) == nil && log.Name == raffleabi.EventRecentWinner
	})
	defer cancel()

	resp, err := job.vrfDomain.FulfillRandomWords(ctx, &model.FulfillRandomWordsRequest{
		RequestID: event.RequestID,
		Consumer:  raffleAddress,
	})
	if err != nil {
		return nil, err
	}

	result.Fulfilled = true
	result.Success = resp.Success
	if !resp.Success {
		xcontext.Logger(ctx).Warnf("Fulfillment of request %d failed, raffle %s is still calculating",
			event.RequestID, raffleAddress)
		return result, nil
	}

	timer := time.NewTimer(winnerTimeout)
	defer timer.Stop()

	select {
	case pack := <-winnerEvent:
		var log model.Log
		var winner model.RecentWinnerEvent
		if err := json.Unmarshal(pack.Msg, &log); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode log: %v", err)
			return nil, errorx.Unknown
		}

		if err := log.Decode(&winner); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode RecentWinner: %v", err)
			return nil, errorx.Unknown
		}

		result.RecentWinner = winner.Winner
	case <-timer.C:
		xcontext.Logger(ctx).Errorf("No RecentWinner of raffle %s after %s", raffleAddress, winnerTimeout)
		return nil, errorx.New(errorx.Unavailable, "Timeout waiting for the winner")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	xcontext.Logger(ctx).Infof("The winner is: %s", result.RecentWinner)
	return result, nil
}
