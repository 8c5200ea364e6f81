package jobs

import (
	"context"

	"github.com/openbankly/consent-backend/usecases"
	"github.com/openbankly/consent-backend/utils"
)

// ExpiryConfig names the statuses involved in automatic expiry. They are
// deployment-specific strings, not an enum owned by this system.
type ExpiryConfig struct {
	EligibleStatuses []string
	ExpiredStatus    string
}

func ExpireConsents(ctx context.Context, uc usecases.ConsentUsecase, config ExpiryConfig) error {
	logger := utils.LoggerFromContext(ctx)

	expired, err := uc.ExpireConsents(ctx, config.EligibleStatuses, config.ExpiredStatus)
	if err != nil {
		return err
	}
	if expired > 0 {
		logger.InfoContext(ctx, "expired consents", "count", expired)
	}
	return nil
}
