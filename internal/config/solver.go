package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type SolverConfig struct {
	// MaxHops caps route length; routes beyond two hops are unsupported.
	MaxHops int
	// MaxSplitPaths caps how many parallel paths one allocation may fund.
	MaxSplitPaths int
	// LambdaIterations bounds the allocator's rate-threshold bisection.
	LambdaIterations int
}

func (sc *SolverConfig) Key() string {
	return SOLVER_CONFIG_KEY
}

func (sc *SolverConfig) Load() error {
	sc.MaxHops = common.GetEnvOrDefaultInt("SOLVER_MAX_HOPS", 2)
	sc.MaxSplitPaths = common.GetEnvOrDefaultInt("SOLVER_MAX_SPLIT_PATHS", 3)
	sc.LambdaIterations = common.GetEnvOrDefaultInt("SOLVER_LAMBDA_ITERATIONS", 128)
	return sc.Validate()
}

func (sc *SolverConfig) Validate() error {
	if sc.MaxHops < 1 || sc.MaxHops > 2 {
		return errors.New("SOLVER_MAX_HOPS must be 1 or 2")
	}
	if sc.MaxSplitPaths < 1 {
		return errors.New("SOLVER_MAX_SPLIT_PATHS must be positive")
	}
	if sc.LambdaIterations < 1 {
		return errors.New("SOLVER_LAMBDA_ITERATIONS must be positive")
	}
	return nil
}
