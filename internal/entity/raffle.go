package entity

import (
	"time"

	"github.com/questx-lab/raffle/pkg/enum"
)

type RaffleState uint8

var (
	RaffleStateOpen        = enum.New(RaffleState(0), "OPEN")
	RaffleStateCalculating = enum.New(RaffleState(1), "CALCULATING")
)

func (s RaffleState) String() string {
	return enum.ToString(s)
}

type Raffle struct {
	Address string `gorm:"primarykey;size:42"`
	Network string `gorm:"index"`
	ChainID int64

	// Immutable after deployment.
	Coordinator      string `gorm:"size:42"`
	GasLane          string `gorm:"size:66"`
	SubscriptionID   uint64
	CallbackGasLimit uint32
	EntranceFee      BigInt
	Interval         int64

	State                RaffleState
	LastTimestamp        int64
	RecentWinner         string `gorm:"size:42"`
	OutstandingRequestID uint64
	Round                uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

type RafflePlayer struct {
	RaffleAddress string `gorm:"primarykey;size:42"`
	Position      int    `gorm:"primarykey;autoIncrement:false"`
	Player        string `gorm:"size:42"`
	Round         uint64
	CreatedAt     time.Time
}
