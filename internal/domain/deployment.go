package domain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/questx-lab/raffle/contract/raffle"
	"github.com/questx-lab/raffle/contract/vrfcoordinator"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/domain/contract"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/ethutil"
	"github.com/questx-lab/raffle/pkg/storage"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	ContractAddressesFile = "contractAddresses.json"
	AbiFile               = "abi.json"
)

type DeploymentDomain interface {
	DeployMocks(context.Context) (*model.Deployment, error)
	DeployRaffle(context.Context) (*model.DeployResult, error)
	EnsureConsumer(context.Context) error
	UpdateFrontend(context.Context) error
	GetContractAddresses(context.Context, *model.GetContractAddressesRequest) (*model.GetContractAddressesResponse, error)
	GetAbi(context.Context, *model.GetAbiRequest) (*model.GetAbiResponse, error)
}

type deploymentDomain struct {
	deploymentRepo repository.DeploymentRepository
	engine         chain.Engine
	raffle         *contract.Raffle
	vrf            *contract.VRFCoordinatorV2Mock
	storage        storage.Storage
}

func NewDeploymentDomain(
	deploymentRepo repository.DeploymentRepository,
	engine chain.Engine,
	raffle *contract.Raffle,
	vrf *contract.VRFCoordinatorV2Mock,
	storage storage.Storage,
) *deploymentDomain {
	return &deploymentDomain{
		deploymentRepo: deploymentRepo,
		engine:         engine,
		raffle:         raffle,
		vrf:            vrf,
		storage:        storage,
	}
}

type mockArgs struct {
	BaseFee      string `structs:"base_fee"`
	GasPriceLink string `structs:"gas_price_link"`
}

type raffleArgs struct {
	Coordinator      string `structs:"vrf_coordinator_v2"`
	GasLane          string `structs:"gas_lane"`
	SubscriptionID   uint64 `structs:"subscription_id"`
	CallbackGasLimit uint32 `structs:"callback_gas_limit"`
	EntranceFee      string `structs:"entrance_fee"`
	Interval         int64  `structs:"interval"`
}

// DeployMocks deploys a VRFCoordinatorV2Mock on development chains. It returns
// nil on any other network.
func (d *deploymentDomain) DeployMocks(ctx context.Context) (*model.Deployment, error) {
	cfg := xcontext.Configs(ctx)
	network, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "%v", err)
	}

	if !cfg.IsDevelopmentChain(network.Name) {
		xcontext.Logger(ctx).Infof("Network %s is not a development chain, skip deploying mocks", network.Name)
		return nil, nil
	}

	deployer, err := common.ParseAddress("deployer", cfg.Deploy.Deployer)
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Local network detected! Deploying mocks...")
	address, receipt, err := d.engine.Deploy(ctx, deployer, entity.ContractKindVRFCoordinatorV2Mock,
		func(ctx context.Context, call *chain.Call) error {
			return d.vrf.Construct(ctx, call, contract.BaseFee, contract.GasPriceLink)
		})
	if err != nil {
		return nil, err
	}

	deployment, err := d.record(ctx, network.Name, network.ChainID, entity.ContractKindVRFCoordinatorV2Mock,
		address, receipt, structs.Map(mockArgs{
			BaseFee:      contract.BaseFee.String(),
			GasPriceLink: contract.GasPriceLink.String(),
		}))
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Mocks deployed at %s", address.Hex())
	return deployment, nil
}

// DeployRaffle deploys a raffle with the active network parameters. On
// development chains it also prepares a funded subscription of the mock
// coordinator and registers the raffle as its consumer.
func (d *deploymentDomain) DeployRaffle(ctx context.Context) (*model.DeployResult, error) {
	cfg := xcontext.Configs(ctx)
	network, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "%v", err)
	}

	deployer, err := common.ParseAddress("deployer", cfg.Deploy.Deployer)
	if err != nil {
		return nil, err
	}

	entranceFee, err := network.EntranceFeeWei()
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid entrance fee of %s: %v", network.Name, err)
	}

	result := &model.DeployResult{}
	var coordinator ethcommon.Address
	var subID uint64

	isDevelopment := cfg.IsDevelopmentChain(network.Name)
	if isDevelopment {
		mock, err := d.deploymentRepo.GetLatest(ctx, network.Name, entity.ContractKindVRFCoordinatorV2Mock)
		switch {
		case err == nil:
			coordinatorDeployment := model.ConvertDeployment(mock)
			result.Coordinator = &coordinatorDeployment
		case errors.Is(err, gorm.ErrRecordNotFound):
			result.Coordinator, err = d.DeployMocks(ctx)
			if err != nil {
				return nil, err
			}
		default:
			xcontext.Logger(ctx).Errorf("Cannot get mock deployment: %v", err)
			return nil, errorx.Unknown
		}

		coordinator = ethcommon.HexToAddress(result.Coordinator.Address)
		subID, err = d.createFundedSubscription(ctx, deployer, coordinator)
		if err != nil {
			return nil, err
		}
	} else {
		coordinator, err = common.ParseAddress("vrf_coordinator_v2", network.VRFCoordinatorV2)
		if err != nil {
			return nil, err
		}

		subID = network.SubscriptionID
	}

	raffleConfig := contract.RaffleConfig{
		Coordinator:      coordinator,
		GasLane:          ethcommon.HexToHash(network.GasLane),
		SubscriptionID:   subID,
		CallbackGasLimit: network.CallbackGasLimit,
		EntranceFee:      entranceFee,
		Interval:         network.Interval,
	}

	address, receipt, err := d.engine.Deploy(ctx, deployer, entity.ContractKindRaffle,
		func(ctx context.Context, call *chain.Call) error {
			return d.raffle.Construct(ctx, call, raffleConfig)
		})
	if err != nil {
		return nil, err
	}

	deployment, err := d.record(ctx, network.Name, network.ChainID, entity.ContractKindRaffle,
		address, receipt, structs.Map(raffleArgs{
			Coordinator:      coordinator.Hex(),
			GasLane:          network.GasLane,
			SubscriptionID:   subID,
			CallbackGasLimit: network.CallbackGasLimit,
			EntranceFee:      entranceFee.String(),
			Interval:         network.Interval,
		}))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Raffle deployed at %s on %s but not recorded: %v",
			address.Hex(), network.Name, err)
		return nil, errorx.New(errorx.Internal, "Raffle deployed at %s but not recorded", address.Hex())
	}

	result.Raffle = *deployment
	result.SubscriptionID = subID

	if isDevelopment {
		if err := d.addConsumer(ctx, deployer, coordinator, subID, address); err != nil {
			xcontext.Logger(ctx).Errorf("Raffle %s is not a consumer of subscription %d: %v",
				address.Hex(), subID, err)
			return nil, errorx.New(errorx.Internal,
				"Raffle deployed at %s but not added to subscription %d", address.Hex(), subID)
		}
	}

	xcontext.Logger(ctx).Infof("Raffle deployed at %s on %s", address.Hex(), network.Name)

	if cfg.Deploy.UpdateFrontend {
		if err := d.UpdateFrontend(ctx); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// EnsureConsumer adds the latest raffle of a development chain to its
// subscription if a previous deployment stopped before doing it.
func (d *deploymentDomain) EnsureConsumer(ctx context.Context) error {
	cfg := xcontext.Configs(ctx)
	if !cfg.IsDevelopmentChain(cfg.Network) {
		return nil
	}

	address, err := resolveRaffleAddress(ctx, d.deploymentRepo, "")
	if err != nil {
		return err
	}

	var state *entity.Raffle
	var sub *entity.VRFSubscription
	err = d.engine.View(ctx, address, func(ctx context.Context, call *chain.Call) error {
		var err error
		state, err = d.raffle.Get(ctx, call.Self)
		if err != nil {
			return err
		}

		sub, err = d.vrf.GetSubscription(ctx, ethcommon.HexToAddress(state.Coordinator), state.SubscriptionID)
		return err
	})
	if err != nil {
		return err
	}

	if slices.Contains(sub.Consumers, address.Hex()) {
		return nil
	}

	deployer := ethcommon.HexToAddress(sub.Owner)
	err = d.addConsumer(ctx, deployer, ethcommon.HexToAddress(state.Coordinator), state.SubscriptionID, address)
	if err != nil {
		return err
	}

	xcontext.Logger(ctx).Warnf("Added raffle %s as consumer of subscription %d", address.Hex(), state.SubscriptionID)
	return nil
}

func (d *deploymentDomain) addConsumer(
	ctx context.Context, owner, coordinator ethcommon.Address, subID uint64, consumer ethcommon.Address,
) error {
	_, err := d.engine.Execute(ctx, chain.Message{From: owner, To: coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return d.vrf.AddConsumer(ctx, call, subID, consumer)
		})
	return err
}

// UpdateFrontend writes the raffle addresses and ABI artifacts. Addresses of
// the latest raffle are appended to the chain id entry once.
func (d *deploymentDomain) UpdateFrontend(ctx context.Context) error {
	network, err := xcontext.Configs(ctx).ActiveNetwork()
	if err != nil {
		return errorx.New(errorx.BadRequest, "%v", err)
	}

	latest, err := d.deploymentRepo.GetLatest(ctx, network.Name, entity.ContractKindRaffle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.ContractNotFound, "No raffle deployed on %s", network.Name)
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest deployment: %v", err)
		return errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Writing to front end...")

	addresses, err := d.readContractAddresses(ctx)
	if err != nil {
		return err
	}

	chainID := strconv.FormatInt(latest.ChainID, 10)
	if !slices.Contains(addresses[chainID], latest.Address) {
		addresses[chainID] = append(addresses[chainID], latest.Address)
	}

	addressesData, err := json.Marshal(addresses)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal contract addresses: %v", err)
		return errorx.Unknown
	}

	_, err = d.storage.BulkUpload(ctx, []*storage.UploadObject{
		{FileName: ContractAddressesFile, Mime: "application/json", Data: addressesData},
		{FileName: AbiFile, Mime: "application/json", Data: []byte(raffle.RaffleMetaData.ABI)},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upload frontend artifacts: %v", err)
		return errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Front end written!")
	return nil
}

func (d *deploymentDomain) GetContractAddresses(
	ctx context.Context, req *model.GetContractAddressesRequest,
) (*model.GetContractAddressesResponse, error) {
	deployments, err := d.deploymentRepo.GetByContract(ctx, entity.ContractKindRaffle)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get deployments: %v", err)
		return nil, errorx.Unknown
	}

	resp := model.GetContractAddressesResponse{}
	for _, deployment := range deployments {
		chainID := strconv.FormatInt(deployment.ChainID, 10)
		if !slices.Contains(resp[chainID], deployment.Address) {
			resp[chainID] = append(resp[chainID], deployment.Address)
		}
	}

	return &resp, nil
}

func (d *deploymentDomain) GetAbi(ctx context.Context, req *model.GetAbiRequest) (*model.GetAbiResponse, error) {
	return &model.GetAbiResponse{Abi: json.RawMessage(raffle.RaffleMetaData.ABI)}, nil
}

// createFundedSubscription creates a subscription on the mock coordinator,
// reading its id back from the SubscriptionCreated log, and funds it.
func (d *deploymentDomain) createFundedSubscription(
	ctx context.Context, deployer, coordinator ethcommon.Address,
) (uint64, error) {
	receipt, err := d.engine.Execute(ctx, chain.Message{From: deployer, To: coordinator},
		func(ctx context.Context, call *chain.Call) error {
			_, err := d.vrf.CreateSubscription(ctx, call)
			return err
		})
	if err != nil {
		return 0, err
	}

	log, ok := receipt.FindLog(vrfcoordinator.EventSubscriptionCreated)
	if !ok {
		xcontext.Logger(ctx).Errorf("No %s log in receipt %s", vrfcoordinator.EventSubscriptionCreated, receipt.TxHash)
		return 0, errorx.Unknown
	}

	var event model.SubscriptionCreatedEvent
	if err := log.Decode(&event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode %s: %v", log.Name, err)
		return 0, errorx.Unknown
	}

	amount, err := fundAmount(ctx)
	if err != nil {
		return 0, err
	}

	_, err = d.engine.Execute(ctx, chain.Message{From: deployer, To: coordinator},
		func(ctx context.Context, call *chain.Call) error {
			return d.vrf.FundSubscription(ctx, call, event.SubID, amount)
		})
	if err != nil {
		return 0, err
	}

	return event.SubID, nil
}

func (d *deploymentDomain) record(
	ctx context.Context,
	network string,
	chainID int64,
	kind entity.ContractKind,
	address ethcommon.Address,
	receipt *model.Receipt,
	args map[string]any,
) (*model.Deployment, error) {
	deployment := &entity.Deployment{
		Base:     entity.Base{ID: uuid.NewString()},
		Network:  network,
		ChainID:  chainID,
		Contract: kind,
		Address:  address.Hex(),
		TxHash:   receipt.TxHash,
		Args:     args,
	}

	if err := d.deploymentRepo.Create(ctx, deployment); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record deployment: %v", err)
		return nil, errorx.Unknown
	}

	result := model.ConvertDeployment(deployment)
	return &result, nil
}

func (d *deploymentDomain) readContractAddresses(ctx context.Context) (map[string][]string, error) {
	addresses := map[string][]string{}

	b, err := d.storage.Download(ctx, "", ContractAddressesFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return addresses, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot download %s: %v", ContractAddressesFile, err)
		return nil, errorx.Unknown
	}

	if len(b) == 0 {
		return addresses, nil
	}

	if err := json.Unmarshal(b, &addresses); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot parse %s: %v", ContractAddressesFile, err)
		return nil, errorx.Unknown
	}

	return addresses, nil
}

func fundAmount(ctx context.Context) (*big.Int, error) {
	amount, err := ethutil.ParseEther(xcontext.Configs(ctx).Deploy.FundAmount)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid fund amount: %v", err)
	}

	return amount, nil
}
