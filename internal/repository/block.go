package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type BlockRepository interface {
	Create(ctx context.Context, block *entity.Block) error
	GetLatest(ctx context.Context) (*entity.Block, error)
}

type blockRepository struct{}

func NewBlockRepository() *blockRepository {
	return &blockRepository{}
}

func (r *blockRepository) Create(ctx context.Context, block *entity.Block) error {
	return xcontext.DB(ctx).Create(block).Error
}

func (r *blockRepository) GetLatest(ctx context.Context) (*entity.Block, error) {
	var result entity.Block
	if err := xcontext.DB(ctx).Order("number DESC").Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
