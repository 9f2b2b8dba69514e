package repository

import (
	"context"
	"math/big"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Get(ctx context.Context, address string) (*entity.Account, error)
	GetOrCreate(ctx context.Context, address string) (*entity.Account, error)
	UpdateBalance(ctx context.Context, address string, balance *big.Int) error
	IncreaseNonce(ctx context.Context, address string) error
	SetRejectsPayments(ctx context.Context, address string, reject bool) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return xcontext.DB(ctx).Create(account).Error
}

func (r *accountRepository) Get(ctx context.Context, address string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) GetOrCreate(ctx context.Context, address string) (*entity.Account, error) {
	var result entity.Account
	err := xcontext.DB(ctx).
		Where(entity.Account{Address: address}).
		Attrs(entity.Account{Balance: entity.NewBigInt(nil)}).
		FirstOrCreate(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) UpdateBalance(ctx context.Context, address string, balance *big.Int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("address=?", address).
		Update("balance", entity.NewBigInt(balance))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) IncreaseNonce(ctx context.Context, address string) error {
	return xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("address=?", address).
		Update("nonce", gorm.Expr("nonce+?", 1)).Error
}

func (r *accountRepository) SetRejectsPayments(ctx context.Context, address string, reject bool) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("address=?", address).
		Update("rejects_payments", reject)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
