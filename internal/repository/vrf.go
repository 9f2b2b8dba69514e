package repository

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

type VRFRepository interface {
	// Coordinator
	CreateCoordinator(ctx context.Context, coordinator *entity.VRFCoordinator) error
	GetCoordinator(ctx context.Context, address string) (*entity.VRFCoordinator, error)
	NextSubID(ctx context.Context, address string) (uint64, error)
	NextRequestID(ctx context.Context, address string) (requestID uint64, preSeed uint64, err error)

	// Subscription
	CreateSubscription(ctx context.Context, sub *entity.VRFSubscription) error
	GetSubscription(ctx context.Context, coordinator string, subID uint64) (*entity.VRFSubscription, error)
	UpdateSubscription(ctx context.Context, sub *entity.VRFSubscription) error

	// Request
	CreateRequest(ctx context.Context, req *entity.VRFRequest) error
	GetRequest(ctx context.Context, coordinator string, requestID uint64) (*entity.VRFRequest, error)
	DeleteRequest(ctx context.Context, coordinator string, requestID uint64) error
}

type vrfRepository struct{}

func NewVRFRepository() *vrfRepository {
	return &vrfRepository{}
}

func (r *vrfRepository) CreateCoordinator(ctx context.Context, coordinator *entity.VRFCoordinator) error {
	return xcontext.DB(ctx).Create(coordinator).Error
}

func (r *vrfRepository) GetCoordinator(ctx context.Context, address string) (*entity.VRFCoordinator, error) {
	var result entity.VRFCoordinator
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// NextSubID increments the subscription counter and returns the new value.
func (r *vrfRepository) NextSubID(ctx context.Context, address string) (uint64, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.VRFCoordinator{}).
		Where("address=?", address).
		Update("current_sub_id", gorm.Expr("current_sub_id+?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	coordinator, err := r.GetCoordinator(ctx, address)
	if err != nil {
		return 0, err
	}

	return coordinator.CurrentSubID, nil
}

// NextRequestID reserves a request id and its pre-seed.
func (r *vrfRepository) NextRequestID(ctx context.Context, address string) (uint64, uint64, error) {
	coordinator, err := r.GetCoordinator(ctx, address)
	if err != nil {
		return 0, 0, err
	}

	err = xcontext.DB(ctx).
		Model(&entity.VRFCoordinator{}).
		Where("address=?", address).
		Updates(map[string]any{
			"next_request_id": gorm.Expr("next_request_id+?", 1),
			"next_pre_seed":   gorm.Expr("next_pre_seed+?", 1),
		}).Error
	if err != nil {
		return 0, 0, err
	}

	return coordinator.NextRequestID, coordinator.NextPreSeed, nil
}

func (r *vrfRepository) CreateSubscription(ctx context.Context, sub *entity.VRFSubscription) error {
	return xcontext.DB(ctx).Create(sub).Error
}

func (r *vrfRepository) GetSubscription(
	ctx context.Context, coordinator string, subID uint64,
) (*entity.VRFSubscription, error) {
	var result entity.VRFSubscription
	err := xcontext.DB(ctx).Take(&result, "coordinator=? AND sub_id=?", coordinator, subID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *vrfRepository) UpdateSubscription(ctx context.Context, sub *entity.VRFSubscription) error {
	return xcontext.DB(ctx).
		Model(&entity.VRFSubscription{}).
		Where("coordinator=? AND sub_id=?", sub.Coordinator, sub.SubID).
		Updates(map[string]any{
			"owner":     sub.Owner,
			"balance":   sub.Balance,
			"req_count": sub.ReqCount,
			"consumers": sub.Consumers,
		}).Error
}

func (r *vrfRepository) CreateRequest(ctx context.Context, req *entity.VRFRequest) error {
	return xcontext.DB(ctx).Create(req).Error
}

func (r *vrfRepository) GetRequest(ctx context.Context, coordinator string, requestID uint64) (*entity.VRFRequest, error) {
	var result entity.VRFRequest
	err := xcontext.DB(ctx).Take(&result, "coordinator=? AND request_id=?", coordinator, requestID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *vrfRepository) DeleteRequest(ctx context.Context, coordinator string, requestID uint64) error {
	return xcontext.DB(ctx).
		Where("coordinator=? AND request_id=?", coordinator, requestID).
		Delete(&entity.VRFRequest{}).Error
}
