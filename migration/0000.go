package migration

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Account{},
		&entity.Block{},
		&entity.Raffle{},
		&entity.RafflePlayer{},
		&entity.VRFCoordinator{},
		&entity.VRFSubscription{},
		&entity.VRFRequest{},
		&entity.EventLog{},
		&entity.Deployment{},
	)
}
