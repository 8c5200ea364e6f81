package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/openbankly/consent-backend/repositories"
)

type ExecutorFactory struct {
	mock.Mock
}

func (f *ExecutorFactory) NewExecutor() repositories.Executor {
	args := f.Called()
	return args.Get(0).(repositories.Executor)
}
