package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByAddress(ctx context.Context, address string) (*entity.Raffle, error)
	GetByNetwork(ctx context.Context, network string) ([]entity.Raffle, error)
	StartCalculating(ctx context.Context, address string, requestID uint64) error
	CompleteRound(ctx context.Context, address, winner string, timestamp int64) error

	AddPlayer(ctx context.Context, player *entity.RafflePlayer) error
	CountPlayers(ctx context.Context, address string) (int64, error)
	GetPlayer(ctx context.Context, address string, position int) (*entity.RafflePlayer, error)
	GetPlayers(ctx context.Context, address string) ([]entity.RafflePlayer, error)
	ClearPlayers(ctx context.Context, address string) error
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByAddress(ctx context.Context, address string) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetByNetwork(ctx context.Context, network string) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).Where("network=?", network).Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// StartCalculating moves an OPEN raffle to CALCULATING. It returns
// gorm.ErrRecordNotFound if the raffle is not OPEN.
func (r *raffleRepository) StartCalculating(ctx context.Context, address string, requestID uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("address=? AND state=?", address, entity.RaffleStateOpen).
		Updates(map[string]any{
			"state":                  entity.RaffleStateCalculating,
			"outstanding_request_id": requestID,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CompleteRound records the winner and reopens a CALCULATING raffle.
func (r *raffleRepository) CompleteRound(ctx context.Context, address, winner string, timestamp int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Raffle{}).
		Where("address=? AND state=?", address, entity.RaffleStateCalculating).
		Updates(map[string]any{
			"state":                  entity.RaffleStateOpen,
			"recent_winner":          winner,
			"last_timestamp":         timestamp,
			"outstanding_request_id": 0,
			"round":                  gorm.Expr("round+?", 1),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) AddPlayer(ctx context.Context, player *entity.RafflePlayer) error {
	return xcontext.DB(ctx).Create(player).Error
}

func (r *raffleRepository) CountPlayers(ctx context.Context, address string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.RafflePlayer{}).
		Where("raffle_address=?", address).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *raffleRepository) GetPlayer(ctx context.Context, address string, position int) (*entity.RafflePlayer, error) {
	var result entity.RafflePlayer
	err := xcontext.DB(ctx).
		Take(&result, "raffle_address=? AND position=?", address, position).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetPlayers(ctx context.Context, address string) ([]entity.RafflePlayer, error) {
	var result []entity.RafflePlayer
	err := xcontext.DB(ctx).
		Where("raffle_address=?", address).
		Order("position ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) ClearPlayers(ctx context.Context, address string) error {
	return xcontext.DB(ctx).
		Where("raffle_address=?", address).
		Delete(&entity.RafflePlayer{}).Error
}
