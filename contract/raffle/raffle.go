package raffle

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
)

const (
	ContractName = "Raffle"

	EventRaffleEnter             = "RaffleEnter"
	EventRequestedRaffleWinner   = "RequestedRaffleWinner"
	EventRecentWinner            = "RecentWinner"
	ErrInsufficientEntranceFee   = "Raffle__InsufficientEntranceFee"
	ErrNotOpen                   = "Raffle__NotOpen"
	ErrUpkeepNotNeeded           = "Raffle__UpkeepNotNeeded"
	ErrTransferFailed            = "Raffle__TransferFailed"
	ErrPlayerIndexOutOfRange     = "Raffle__PlayerIndexOutOfRange"
	ErrUnexpectedRequest         = "Raffle__UnexpectedRequest"
	ErrOnlyCoordinatorCanFulfill = "OnlyCoordinatorCanFulfill"
)

// RaffleMetaData contains the callable interface of the Raffle contract. It is
// exported to the frontend as abi.json.
var RaffleMetaData = &bind.MetaData{
	ABI: `[
{"inputs":[{"internalType":"address","name":"vrfCoordinatorV2","type":"address"},{"internalType":"bytes32","name":"gasLane","type":"bytes32"},{"internalType":"uint64","name":"subscriptionId","type":"uint64"},{"internalType":"uint32","name":"callbackGasLimit","type":"uint32"},{"internalType":"uint256","name":"entranceFee","type":"uint256"},{"internalType":"uint256","name":"interval","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"},
{"inputs":[{"internalType":"address","name":"have","type":"address"},{"internalType":"address","name":"want","type":"address"}],"name":"OnlyCoordinatorCanFulfill","type":"error"},
{"inputs":[],"name":"Raffle__InsufficientEntranceFee","type":"error"},
{"inputs":[],"name":"Raffle__NotOpen","type":"error"},
{"inputs":[{"internalType":"uint256","name":"index","type":"uint256"},{"internalType":"uint256","name":"numPlayers","type":"uint256"}],"name":"Raffle__PlayerIndexOutOfRange","type":"error"},
{"inputs":[],"name":"Raffle__TransferFailed","type":"error"},
{"inputs":[{"internalType":"uint256","name":"requestId","type":"uint256"}],"name":"Raffle__UnexpectedRequest","type":"error"},
{"inputs":[{"internalType":"uint256","name":"currentBalance","type":"uint256"},{"internalType":"uint256","name":"numPlayers","type":"uint256"},{"internalType":"uint256","name":"raffleState","type":"uint256"}],"name":"Raffle__UpkeepNotNeeded","type":"error"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"player","type":"address"}],"name":"RaffleEnter","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"winner","type":"address"}],"name":"RecentWinner","type":"event"},
{"anonymous":false,"inputs":[{"indexed":true,"internalType":"uint256","name":"requestId","type":"uint256"}],"name":"RequestedRaffleWinner","type":"event"},
{"inputs":[{"internalType":"bytes","name":"","type":"bytes"}],"name":"checkUpkeep","outputs":[{"internalType":"bool","name":"upkeepNeeded","type":"bool"},{"internalType":"bytes","name":"","type":"bytes"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"enterLottery","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[],"name":"getEntranceFee","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getInterval","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getLastTimeStamp","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getNumWords","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"pure","type":"function"},
{"inputs":[],"name":"getNumberOfPlayers","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"uint256","name":"index","type":"uint256"}],"name":"getPlayer","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getRaffleState","outputs":[{"internalType":"enum Raffle.RaffleState","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getRecentWinner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"getRequestConfirmations","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"pure","type":"function"},
{"inputs":[{"internalType":"bytes","name":"","type":"bytes"}],"name":"performUpkeep","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"uint256","name":"requestId","type":"uint256"},{"internalType":"uint256[]","name":"randomWords","type":"uint256[]"}],"name":"rawFulfillRandomWords","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`,
}

var parsedABI *abi.ABI

func init() {
	var err error
	parsedABI, err = RaffleMetaData.GetAbi()
	if err != nil {
		panic(err)
	}
}

func ABI() *abi.ABI {
	return parsedABI
}

// Event returns the event definition with the given name. It panics on
// unknown names since they are compile time constants of this package.
func Event(name string) abi.Event {
	e, ok := parsedABI.Events[name]
	if !ok {
		panic("raffle: unknown event " + name)
	}

	return e
}
