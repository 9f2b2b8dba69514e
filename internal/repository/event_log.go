package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

type EventLogFilter struct {
	Address string
	Name    string
	TxHash  string
	Offset  int
	Limit   int
}

type EventLogRepository interface {
	BulkCreate(ctx context.Context, logs []entity.EventLog) error
	GetList(ctx context.Context, filter EventLogFilter) ([]entity.EventLog, error)
}

type eventLogRepository struct{}

func NewEventLogRepository() *eventLogRepository {
	return &eventLogRepository{}
}

func (r *eventLogRepository) BulkCreate(ctx context.Context, logs []entity.EventLog) error {
	if len(logs) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&logs).Error
}

func (r *eventLogRepository) GetList(ctx context.Context, filter EventLogFilter) ([]entity.EventLog, error) {
	tx := xcontext.DB(ctx).Model(&entity.EventLog{})
	if filter.Address != "" {
		tx = tx.Where("address=?", filter.Address)
	}

	if filter.Name != "" {
		tx = tx.Where("name=?", filter.Name)
	}

	if filter.TxHash != "" {
		tx = tx.Where("tx_hash=?", filter.TxHash)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.EventLog
	if err := tx.Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
