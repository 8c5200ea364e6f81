package jobs

import (
	"context"

	"github.com/openbankly/consent-backend/usecases/notifications"
)

// RedriveNotifications re-runs the recovery pass periodically, so OPEN
// notifications that could not be fanned out earlier (e.g. the client had no
// subscription yet) get another chance without a restart.
func RedriveNotifications(ctx context.Context, loader notifications.RecoveryLoader) error {
	return loader.Run(ctx)
}
