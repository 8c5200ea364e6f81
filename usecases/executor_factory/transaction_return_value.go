package executor_factory

import (
	"context"

	"github.com/openbankly/consent-backend/repositories"
)

// TransactionReturnValue runs fn in a transaction and carries its return
// value out, since TransactionFactory.Transaction only returns an error.
func TransactionReturnValue[ReturnType any](
	ctx context.Context,
	factory TransactionFactory,
	fn func(tx repositories.Executor) (ReturnType, error),
) (ReturnType, error) {
	var value ReturnType
	transactionErr := factory.Transaction(ctx, func(tx repositories.Executor) error {
		var fnErr error
		value, fnErr = fn(tx)
		return fnErr
	})
	return value, transactionErr
}
