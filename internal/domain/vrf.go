package domain

import (
	"context"
	"errors"
	"math/big"
	"strconv"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/internal/common"
	"github.com/questx-lab/raffle/internal/domain/chain"
	"github.com/questx-lab/raffle/internal/domain/contract"
	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/internal/repository"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/questx-lab/raffle/pkg/xredis"
	"gorm.io/gorm"
)

type VRFDomain interface {
	GetSubscription(context.Context, *model.GetSubscriptionRequest) (*model.GetSubscriptionResponse, error)
	FulfillRandomWords(context.Context, *model.FulfillRandomWordsRequest) (*model.FulfillRandomWordsResponse, error)
}

type vrfDomain struct {
	deploymentRepo repository.DeploymentRepository
	engine         chain.Engine
	vrf            *contract.VRFCoordinatorV2Mock
	redisClient    xredis.Client
}

func NewVRFDomain(
	deploymentRepo repository.DeploymentRepository,
	engine chain.Engine,
	vrf *contract.VRFCoordinatorV2Mock,
	redisClient xredis.Client,
) *vrfDomain {
	return &vrfDomain{
		deploymentRepo: deploymentRepo,
		engine:         engine,
		vrf:            vrf,
		redisClient:    redisClient,
	}
}

func (d *vrfDomain) GetSubscription(
	ctx context.Context, req *model.GetSubscriptionRequest,
) (*model.GetSubscriptionResponse, error) {
	coordinator, err := resolveCoordinatorAddress(ctx, d.deploymentRepo, req.Coordinator)
	if err != nil {
		return nil, err
	}

	var sub *entity.VRFSubscription
	err = d.engine.View(ctx, coordinator, func(ctx context.Context, call *chain.Call) error {
		var err error
		sub, err = d.vrf.GetSubscription(ctx, call.Self, req.SubID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.GetSubscriptionResponse{Subscription: model.ConvertSubscription(sub)}, nil
}

func (d *vrfDomain) FulfillRandomWords(
	ctx context.Context, req *model.FulfillRandomWordsRequest,
) (*model.FulfillRandomWordsResponse, error) {
	coordinator, err := resolveCoordinatorAddress(ctx, d.deploymentRepo, req.Coordinator)
	if err != nil {
		return nil, err
	}

	consumer, err := resolveRaffleAddress(ctx, d.deploymentRepo, req.Consumer)
	if err != nil {
		return nil, err
	}

	from := ethcommon.HexToAddress(xcontext.Configs(ctx).Deploy.Deployer)
	if req.From != "" {
		from, err = common.ParseAddress("from", req.From)
		if err != nil {
			return nil, err
		}
	}

	words := make([]*big.Int, 0, len(req.Words))
	for _, w := range req.Words {
		word, ok := new(big.Int).SetString(w, 10)
		if !ok || word.Sign() < 0 {
			return nil, errorx.New(errorx.BadRequest, "Invalid random word %s", w)
		}

		words = append(words, word)
	}

	var success bool
	var payment *big.Int
	receipt, err := execute(ctx, d.engine, "fulfillRandomWords", chain.Message{From: from, To: coordinator},
		func(ctx context.Context, call *chain.Call) error {
			var err error
			success, payment, err = d.vrf.FulfillRandomWordsWithOverride(ctx, call, req.RequestID, consumer, words)
			return err
		})
	if err != nil {
		return nil, err
	}

	common.IncCounter(common.VRFFulfillmentTotal, strconv.FormatBool(success))
	invalidateRaffleCache(ctx, d.redisClient, consumer)

	if !success {
		xcontext.Logger(ctx).Warnf("Consumer %s failed to handle request %d", consumer.Hex(), req.RequestID)
	}

	return &model.FulfillRandomWordsResponse{
		Success: success,
		Payment: payment.String(),
		Receipt: receipt,
	}, nil
}

// resolveCoordinatorAddress parses address. An empty address resolves to the
// mock deployed on a development chain, or to the configured coordinator of
// any other network.
func resolveCoordinatorAddress(
	ctx context.Context, deploymentRepo repository.DeploymentRepository, address string,
) (ethcommon.Address, error) {
	if address != "" {
		return common.ParseAddress("coordinator", address)
	}

	cfg := xcontext.Configs(ctx)
	network, err := cfg.ActiveNetwork()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot resolve network: %v", err)
		return ethcommon.Address{}, errorx.Unknown
	}

	if !cfg.IsDevelopmentChain(network.Name) {
		return common.ParseAddress("vrf_coordinator_v2", network.VRFCoordinatorV2)
	}

	deployment, err := deploymentRepo.GetLatest(ctx, network.Name, entity.ContractKindVRFCoordinatorV2Mock)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ethcommon.Address{}, errorx.New(errorx.ContractNotFound,
				"No VRF coordinator mock deployed on %s", network.Name)
		}

		xcontext.Logger(ctx).Errorf("Cannot get latest deployment: %v", err)
		return ethcommon.Address{}, errorx.Unknown
	}

	return ethcommon.HexToAddress(deployment.Address), nil
}
