package migration

import (
	"context"

	"github.com/questx-lab/raffle/internal/entity"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

// migrate0001 adds the lookup index used by getEvents.
func migrate0001(ctx context.Context) error {
	if xcontext.DB(ctx).Migrator().HasIndex(&entity.EventLog{}, "idx_event_logs_address_name") {
		return nil
	}

	return xcontext.DB(ctx).Exec(
		"CREATE INDEX idx_event_logs_address_name ON event_logs (address, name)").Error
}
