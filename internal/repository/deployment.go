package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type DeploymentRepository interface {
	Create(ctx context.Context, deployment *entity.Deployment) error
	GetLatest(ctx context.Context, network string, contract entity.ContractKind) (*entity.Deployment, error)
	GetByContract(ctx context.Context, contract entity.ContractKind) ([]entity.Deployment, error)
}

type deploymentRepository struct{}

func NewDeploymentRepository() *deploymentRepository {
	return &deploymentRepository{}
}

func (r *deploymentRepository) Create(ctx context.Context, deployment *entity.Deployment) error {
	return xcontext.DB(ctx).Create(deployment).Error
}

func (r *deploymentRepository) GetLatest(
	ctx context.Context, network string, contract entity.ContractKind,
) (*entity.Deployment, error) {
	var result entity.Deployment
	err := xcontext.DB(ctx).
		Where("network=? AND contract=?", network, contract).
		Order("created_at DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *deploymentRepository) GetByContract(
	ctx context.Context, contract entity.ContractKind,
) ([]entity.Deployment, error) {
	var result []entity.Deployment
	err := xcontext.DB(ctx).
		Where("contract=?", contract).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
