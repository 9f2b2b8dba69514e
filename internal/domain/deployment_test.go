package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/contract/raffle"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/storage"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_deploymentDomain_DeployRaffle(t *testing.T) {
	s := newSuite(t)

	result, err := s.deploymentDomain.DeployRaffle(s.ctx)
	require.NoError(t, err)
	require.NotNil(t, result.Coordinator)
	require.Equal(t, string(entity.ContractKindVRFCoordinatorV2Mock), result.Coordinator.Contract)
	require.Equal(t, "250000000000000000", result.Coordinator.Args["base_fee"])
	require.Equal(t, uint64(1), result.SubscriptionID)

	require.Equal(t, string(entity.ContractKindRaffle), result.Raffle.Contract)
	require.Equal(t, int64(31337), result.Raffle.ChainID)
	require.Equal(t, result.Coordinator.Address, result.Raffle.Args["vrf_coordinator_v2"])
	require.Equal(t, "10000000000000000", result.Raffle.Args["entrance_fee"])
	require.NotEmpty(t, result.Raffle.TxHash)

	// A second deployment reuses the mock with a new subscription.
	second, err := s.deploymentDomain.DeployRaffle(s.ctx)
	require.NoError(t, err)
	require.Equal(t, result.Coordinator.Address, second.Coordinator.Address)
	require.Equal(t, uint64(2), second.SubscriptionID)
	require.NotEqual(t, result.Raffle.Address, second.Raffle.Address)

	addresses, err := s.deploymentDomain.GetContractAddresses(s.ctx, &model.GetContractAddressesRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{result.Raffle.Address, second.Raffle.Address}, (*addresses)["31337"])
}

func Test_deploymentDomain_DeployMocksOnlyOnDevelopmentChains(t *testing.T) {
	s := newSuiteWithContext(t, testutil.MockContextWithNetwork("rinkeby"))

	mock, err := s.deploymentDomain.DeployMocks(s.ctx)
	require.NoError(t, err)
	require.Nil(t, mock)

	result, err := s.deploymentDomain.DeployRaffle(s.ctx)
	require.NoError(t, err)
	require.Nil(t, result.Coordinator)
	require.Equal(t, uint64(0), result.SubscriptionID)
	require.Equal(t, int64(4), result.Raffle.ChainID)
	require.Equal(t,
		ethcommon.HexToAddress("0x6168499c0cFfCaCD319c818142124B7A15E857ab").Hex(),
		result.Raffle.Args["vrf_coordinator_v2"])
}

func Test_deploymentDomain_UnknownNetwork(t *testing.T) {
	s := newSuiteWithContext(t, testutil.MockContextWithNetwork("mainnet"))

	_, err := s.deploymentDomain.DeployRaffle(s.ctx)
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_deploymentDomain_UpdateFrontend(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Deploy.UpdateFrontend = true
	s := newSuiteWithContext(t, xcontext.WithConfigs(ctx, cfg))

	err := s.deploymentDomain.UpdateFrontend(s.ctx)
	require.True(t, errorx.Is(err, errorx.ContractNotFound))

	// Addresses of other chains are kept.
	_, err = s.storage.Upload(s.ctx, &storage.UploadObject{
		FileName: ContractAddressesFile,
		Data:     []byte(`{"4":["0x0000000000000000000000000000000000000004"]}`),
	})
	require.NoError(t, err)

	result := s.deploy()
	require.NoError(t, s.deploymentDomain.UpdateFrontend(s.ctx))

	b, err := s.storage.Download(s.ctx, "", ContractAddressesFile)
	require.NoError(t, err)

	var addresses map[string][]string
	require.NoError(t, json.Unmarshal(b, &addresses))
	require.Equal(t, map[string][]string{
		"4":     {"0x0000000000000000000000000000000000000004"},
		"31337": {result.Raffle.Address},
	}, addresses)

	abiData, err := s.storage.Download(s.ctx, "", AbiFile)
	require.NoError(t, err)
	require.Equal(t, raffle.RaffleMetaData.ABI, string(abiData))
}

func Test_deploymentDomain_GetAbi(t *testing.T) {
	s := newSuite(t)

	resp, err := s.deploymentDomain.GetAbi(s.ctx, &model.GetAbiRequest{})
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(resp.Abi, &entries))
	require.NotEmpty(t, entries)
}

func Test_deploymentDomain_UpdateFrontendStorageFailures(t *testing.T) {
	s := newSuite(t)
	s.deploy()

	t.Run("upload failed", func(t *testing.T) {
		mockStorage := &testutil.MockStorage{}
		domain := NewDeploymentDomain(s.deploymentRepo, s.engine, s.raffle, s.vrf, mockStorage)

		err := domain.UpdateFrontend(s.ctx)
		require.ErrorIs(t, err, errorx.Unknown)
	})

	t.Run("corrupted addresses", func(t *testing.T) {
		mockStorage := &testutil.MockStorage{
			DownloadFunc: func(context.Context, string, string) ([]byte, error) {
				return []byte("{"), nil
			},
		}
		domain := NewDeploymentDomain(s.deploymentRepo, s.engine, s.raffle, s.vrf, mockStorage)

		err := domain.UpdateFrontend(s.ctx)
		require.ErrorIs(t, err, errorx.Unknown)
	})

	t.Run("download failed", func(t *testing.T) {
		uploaded := false
		mockStorage := &testutil.MockStorage{
			DownloadFunc: func(context.Context, string, string) ([]byte, error) {
				return nil, errors.New("connection refused")
			},
			BulkUploadFunc: func(context.Context, []*storage.UploadObject) ([]*storage.UploadResponse, error) {
				uploaded = true
				return nil, nil
			},
		}
		domain := NewDeploymentDomain(s.deploymentRepo, s.engine, s.raffle, s.vrf, mockStorage)

		err := domain.UpdateFrontend(s.ctx)
		require.ErrorIs(t, err, errorx.Unknown)
		require.False(t, uploaded)
	})
}

type failingDeploymentRepository struct {
	repository.DeploymentRepository
	kind entity.ContractKind
}

func (r *failingDeploymentRepository) Create(ctx context.Context, deployment *entity.Deployment) error {
	if deployment.Contract == r.kind {
		return errors.New("disk full")
	}

	return r.DeploymentRepository.Create(ctx, deployment)
}

func Test_deploymentDomain_DeployRaffleNotRecorded(t *testing.T) {
	s := newSuite(t)
	deploymentDomain := NewDeploymentDomain(
		&failingDeploymentRepository{DeploymentRepository: s.deploymentRepo, kind: entity.ContractKindRaffle},
		s.engine, s.raffle, s.vrf, s.storage)

	_, err := deploymentDomain.DeployRaffle(s.ctx)
	require.True(t, errorx.Is(err, errorx.Internal))

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Contains(t, errx.Message, "not recorded")
}

func Test_deploymentDomain_EnsureConsumer(t *testing.T) {
	s := newSuite(t)
	result := s.deploy()
	raffleAddress := ethcommon.HexToAddress(result.Raffle.Address)
	coordinator := ethcommon.HexToAddress(result.Coordinator.Address)

	// Nothing to do on a complete deployment.
	require.NoError(t, s.deploymentDomain.EnsureConsumer(s.ctx))

	// Leave the raffle without its consumer registration.
	_, err := s.engine.Execute(s.ctx, chain.Message{From: testDeployer, To: coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return s.vrf.RemoveConsumer(ctx, call, result.SubscriptionID, raffleAddress)
		})
	require.NoError(t, err)

	s.enter(s.player(0))
	s.increaseTime(31)
	_, err = s.raffleDomain.PerformUpkeep(s.ctx, &model.PerformUpkeepRequest{From: testKeeper.Hex()})
	require.True(t, errorx.Is(err, errorx.InvalidConsumer))

	require.NoError(t, s.deploymentDomain.EnsureConsumer(s.ctx))

	sub, err := s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: result.SubscriptionID})
	require.NoError(t, err)
	require.Contains(t, sub.Subscription.Consumers, raffleAddress.Hex())

	_, err = s.raffleDomain.PerformUpkeep(s.ctx, &model.PerformUpkeepRequest{From: testKeeper.Hex()})
	require.NoError(t, err)
}
