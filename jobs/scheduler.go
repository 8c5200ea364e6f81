package jobs

import (
	"context"

	"github.com/adhocore/gronx/pkg/tasker"

	"github.com/openbankly/consent-backend/usecases"
	"github.com/openbankly/consent-backend/usecases/notifications"
	"github.com/openbankly/consent-backend/utils"
)

func errToReturnCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// RunScheduler blocks, running the periodic maintenance jobs until ctx is
// canceled.
func RunScheduler(
	ctx context.Context,
	consentUsecase usecases.ConsentUsecase,
	recoveryLoader notifications.RecoveryLoader,
	expiryConfig ExpiryConfig,
) {
	taskr := tasker.New(tasker.Option{
		Verbose: true,
	}).WithContext(ctx)

	notConcurrent := false
	taskr.Task("* * * * *", func(ctx context.Context) (int, error) {
		logger := utils.LoggerFromContext(ctx).With("job", "expire_consents")
		ctx = utils.StoreLoggerInContext(ctx, logger)
		err := ExpireConsents(ctx, consentUsecase, expiryConfig)
		return errToReturnCode(err), err
	}, notConcurrent)

	taskr.Task("*/10 * * * *", func(ctx context.Context) (int, error) {
		logger := utils.LoggerFromContext(ctx).With("job", "redrive_notifications")
		ctx = utils.StoreLoggerInContext(ctx, logger)
		err := RedriveNotifications(ctx, recoveryLoader)
		return errToReturnCode(err), err
	}, notConcurrent)

	taskr.Run()
}
