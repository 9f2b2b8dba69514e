package model

import (
	"github.com/questx-lab/raffle/internal/entity"
)

func ConvertRaffle(raffle *entity.Raffle, numPlayers int64, balance string) Raffle {
	if raffle == nil {
		return Raffle{}
	}

	return Raffle{
		Address:              raffle.Address,
		Network:              raffle.Network,
		ChainID:              raffle.ChainID,
		Coordinator:          raffle.Coordinator,
		GasLane:              raffle.GasLane,
		SubscriptionID:       raffle.SubscriptionID,
		CallbackGasLimit:     raffle.CallbackGasLimit,
		EntranceFee:          raffle.EntranceFee.String(),
		Interval:             raffle.Interval,
		State:                raffle.State.String(),
		LastTimestamp:        raffle.LastTimestamp,
		RecentWinner:         raffle.RecentWinner,
		OutstandingRequestID: raffle.OutstandingRequestID,
		Round:                raffle.Round,
		NumberOfPlayers:      numPlayers,
		Balance:              balance,
	}
}

func ConvertSubscription(sub *entity.VRFSubscription) Subscription {
	if sub == nil {
		return Subscription{}
	}

	consumers := []string(sub.Consumers)
	if consumers == nil {
		consumers = []string{}
	}

	return Subscription{
		SubID:     sub.SubID,
		Balance:   sub.Balance.String(),
		ReqCount:  sub.ReqCount,
		Owner:     sub.Owner,
		Consumers: consumers,
	}
}

func ConvertLog(log entity.EventLog) Log {
	return Log{
		Index:       log.LogIndex,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
		Timestamp:   log.Timestamp,
		Address:     log.Address,
		Name:        log.Name,
		Topic:       log.Topic,
		Args:        log.Args,
	}
}

func ConvertDeployment(d *entity.Deployment) Deployment {
	if d == nil {
		return Deployment{}
	}

	return Deployment{
		Network:  d.Network,
		ChainID:  d.ChainID,
		Contract: string(d.Contract),
		Address:  d.Address,
		TxHash:   d.TxHash,
		Args:     d.Args,
	}
}
