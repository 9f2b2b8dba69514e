package config

import (
	"fmt"
	"math/big"

	"github.com/questx-lab/raffle/pkg/ethutil"
	"golang.org/x/exp/slices"
)

// NetworkConfig is the per-deployment-target configuration. It is resolved once
// at startup and passed by value afterwards.
type NetworkConfig struct {
	Name               string `toml:"-"`
	ChainID            int64  `toml:"chain_id"`
	EntranceFee        string `toml:"entrance_fee"`
	GasLane            string `toml:"gas_lane"`
	CallbackGasLimit   uint32 `toml:"callback_gas_limit"`
	Interval           int64  `toml:"interval"`
	SubscriptionID     uint64 `toml:"subscription_id"`
	VRFCoordinatorV2   string `toml:"vrf_coordinator_v2"`
	BlockConfirmations int    `toml:"block_confirmations"`
}

const defaultGasLane = "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc"

func DefaultNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		"hardhat": {
			Name:               "hardhat",
			ChainID:            31337,
			EntranceFee:        "0.01",
			GasLane:            defaultGasLane,
			CallbackGasLimit:   500000,
			Interval:           30,
			BlockConfirmations: 1,
		},
		"localhost": {
			Name:               "localhost",
			ChainID:            31337,
			EntranceFee:        "0.01",
			GasLane:            defaultGasLane,
			CallbackGasLimit:   500000,
			Interval:           30,
			BlockConfirmations: 1,
		},
		"rinkeby": {
			Name:               "rinkeby",
			ChainID:            4,
			EntranceFee:        "0.01",
			GasLane:            defaultGasLane,
			CallbackGasLimit:   500000,
			Interval:           30,
			SubscriptionID:     0,
			VRFCoordinatorV2:   "0x6168499c0cFfCaCD319c818142124B7A15E857ab",
			BlockConfirmations: 6,
		},
	}
}

// EntranceFeeWei converts the ether denominated entrance fee to wei.
func (n NetworkConfig) EntranceFeeWei() (*big.Int, error) {
	return ethutil.ParseEther(n.EntranceFee)
}

// ActiveNetwork resolves the network selected by Configs.Network.
func (c Configs) ActiveNetwork() (NetworkConfig, error) {
	network, ok := c.Networks[c.Network]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("unknown network %q", c.Network)
	}

	network.Name = c.Network
	return network, nil
}

func (c Configs) IsDevelopmentChain(network string) bool {
	return slices.Contains(c.DevelopmentChains, network)
}
