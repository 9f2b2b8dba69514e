package entity

import "time"

type VRFCoordinator struct {
	Address      string `gorm:"primarykey;size:42"`
	BaseFee      BigInt
	GasPriceLink BigInt

	CurrentSubID  uint64
	NextRequestID uint64
	NextPreSeed   uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

type VRFSubscription struct {
	Coordinator string `gorm:"primarykey;size:42"`
	SubID       uint64 `gorm:"primarykey;autoIncrement:false"`
	Owner       string `gorm:"size:42"`
	Balance     BigInt
	ReqCount    uint64
	Consumers   Array[string]

	CreatedAt time.Time
	UpdatedAt time.Time
}

type VRFRequest struct {
	Coordinator      string `gorm:"primarykey;size:42"`
	RequestID        uint64 `gorm:"primarykey;autoIncrement:false"`
	SubID            uint64
	Consumer         string `gorm:"size:42"`
	KeyHash          string `gorm:"size:66"`
	PreSeed          uint64
	MinConfirmations uint16
	CallbackGasLimit uint32
	NumWords         uint32
	CreatedAt        time.Time
}
