package main

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/spreadlabs/spread-engine/internal/adapters/persistence"
	"github.com/spreadlabs/spread-engine/internal/config"
	"github.com/spreadlabs/spread-engine/internal/http"
	"github.com/spreadlabs/spread-engine/internal/services/solver"
)

// @title Spread Engine API
// @version 1.0
// @description Limit-order execution optimizer for constant-product AMMs.
// @description
// @description Submit a problem instance (orders plus pool reserves), then solve it:
// @description the engine enumerates routes of up to two hops, splits order flow across
// @description parallel routes so marginal output rates equalize, and accepts each order
// @description only when the execution meets its limit price.
// @description
// @description All amounts are base-10 integer strings in atomic token units.
// @BasePath /
// @schemes http
// @tag.name instances
// @tag.description Submit problem instances and inspect their orders, pools and candidate routes
// @tag.name solutions
// @tag.description Solve instances and fetch stored results

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	if level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.SolverConfig{},
		&config.StoreConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&persistence.Storage{},
		&solver.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
