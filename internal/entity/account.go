package entity

import (
	"time"

	"github.com/questx-lab/raffle/pkg/enum"
)

type ContractKind string

var (
	ContractKindNone                 = enum.New(ContractKind(""), "EOA")
	ContractKindRaffle               = enum.New(ContractKind("Raffle"), "Raffle")
	ContractKindVRFCoordinatorV2Mock = enum.New(ContractKind("VRFCoordinatorV2Mock"), "VRFCoordinatorV2Mock")
)

// Account is a chain account. Contracts are accounts with a non-empty Kind.
type Account struct {
	Address string `gorm:"primarykey;size:42"`
	Balance BigInt
	Nonce   uint64
	Kind    ContractKind

	// RejectsPayments makes every value transfer to this account fail, the
	// way a contract without a payable fallback behaves.
	RejectsPayments bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Block struct {
	Number    uint64 `gorm:"primarykey;autoIncrement:false"`
	Hash      string `gorm:"size:66"`
	Timestamp int64
	TxHash    string `gorm:"size:66"`
	CreatedAt time.Time
}
