package domain

import (
	"context"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/domain/contract"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/questx-lab/raffle/pkg/storage"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var (
	testDeployer = ethcommon.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testKeeper   = ethcommon.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

type suite struct {
	t   *testing.T
	ctx context.Context

	engine      chain.Engine
	publisher   *testutil.RecordPublisher
	redisClient *testutil.MemoryRedisClient
	storage     storage.Storage

	deploymentRepo repository.DeploymentRepository
	eventLogRepo   repository.EventLogRepository

	raffle *contract.Raffle
	vrf    *contract.VRFCoordinatorV2Mock

	raffleDomain     *raffleDomain
	vrfDomain        *vrfDomain
	deploymentDomain *deploymentDomain
	chainDomain      *chainDomain
}

func newSuite(t *testing.T) *suite {
	return newSuiteWithContext(t, testutil.MockContext())
}

func newSuiteWithContext(t *testing.T, ctx context.Context) *suite {
	accountRepo := repository.NewAccountRepository()
	deploymentRepo := repository.NewDeploymentRepository()
	eventLogRepo := repository.NewEventLogRepository()
	publisher := testutil.NewRecordPublisher()

	engine, err := chain.NewEngine(chain.NewFixedClock(testutil.GenesisTime), publisher,
		accountRepo, repository.NewBlockRepository(), eventLogRepo)
	require.NoError(t, err)

	vrf := contract.NewVRFCoordinatorV2Mock(repository.NewVRFRepository(), accountRepo)
	raffle := contract.NewRaffle(repository.NewRaffleRepository(), vrf)
	vrf.RegisterConsumer(entity.ContractKindRaffle, raffle)

	redisClient := testutil.NewMemoryRedisClient()
	localStorage := storage.NewLocalStorage(t.TempDir())

	// Tests send transactions from any account like the keeper does.
	return &suite{
		t:                t,
		ctx:              xcontext.WithOperator(ctx, "tester"),
		engine:           engine,
		publisher:        publisher,
		redisClient:      redisClient,
		storage:          localStorage,
		deploymentRepo:   deploymentRepo,
		eventLogRepo:     eventLogRepo,
		raffle:           raffle,
		vrf:              vrf,
		raffleDomain:     NewRaffleDomain(deploymentRepo, engine, raffle, redisClient),
		vrfDomain:        NewVRFDomain(deploymentRepo, engine, vrf, redisClient),
		deploymentDomain: NewDeploymentDomain(deploymentRepo, engine, raffle, vrf, localStorage),
		chainDomain:      NewChainDomain(eventLogRepo, engine, redisClient),
	}
}

// deploy deploys the mock and a raffle with the hardhat network parameters.
func (s *suite) deploy() *model.DeployResult {
	result, err := s.deploymentDomain.DeployRaffle(s.ctx)
	require.NoError(s.t, err)
	return result
}

func (s *suite) player(i int) string {
	address := ethcommon.BigToAddress(ethutil.Ether(int64(i + 1)))
	_, err := s.engine.Faucet(s.ctx, address, ethutil.Ether(10))
	require.NoError(s.t, err)
	return address.Hex()
}

func (s *suite) enter(player string) {
	_, err := s.raffleDomain.EnterLottery(s.ctx, &model.EnterLotteryRequest{From: player})
	require.NoError(s.t, err)
}

func (s *suite) increaseTime(seconds int64) {
	_, err := s.chainDomain.IncreaseTime(s.ctx, &model.IncreaseTimeRequest{Seconds: seconds})
	require.NoError(s.t, err)
}
