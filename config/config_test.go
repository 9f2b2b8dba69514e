package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/questx-lab/raffle/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	network, err := cfg.ActiveNetwork()
	require.NoError(t, err)
	require.Equal(t, "hardhat", network.Name)
	require.Equal(t, int64(31337), network.ChainID)
	require.Equal(t, uint32(500000), network.CallbackGasLimit)
	require.Equal(t, int64(30), network.Interval)

	fee, err := network.EntranceFeeWei()
	require.NoError(t, err)
	require.Equal(t, "10000000000000000", fee.String())

	require.True(t, cfg.IsDevelopmentChain("hardhat"))
	require.True(t, cfg.IsDevelopmentChain("localhost"))
	require.False(t, cfg.IsDevelopmentChain("rinkeby"))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
network = "rinkeby"

[networks.rinkeby]
chain_id = 4
entrance_fee = "0.02"
gas_lane = "0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc"
callback_gas_limit = 500000
interval = 60
subscription_id = 42
vrf_coordinator_v2 = "0x6168499c0cFfCaCD319c818142124B7A15E857ab"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	network, err := cfg.ActiveNetwork()
	require.NoError(t, err)
	require.Equal(t, "rinkeby", network.Name)
	require.Equal(t, uint64(42), network.SubscriptionID)
	require.Equal(t, int64(60), network.Interval)

	// Networks not mentioned in the file keep their defaults.
	_, ok := cfg.Networks["hardhat"]
	require.True(t, ok)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NETWORK", "localhost")
	t.Setenv("UPDATE_FRONTEND", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.Network)
	require.True(t, cfg.Deploy.UpdateFrontend)
}

func TestActiveNetwork_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Network = "mainnet"

	_, err := cfg.ActiveNetwork()
	require.Error(t, err)
}
