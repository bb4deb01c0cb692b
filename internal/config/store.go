package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type StoreConfig struct {
	DBPath string
}

func (sc *StoreConfig) Key() string {
	return STORE_CONFIG_KEY
}

func (sc *StoreConfig) Load() error {
	sc.DBPath = common.GetEnvOrDefault("DB_PATH", "./data/spread-engine.db")
	return sc.Validate()
}

func (sc *StoreConfig) Validate() error {
	if sc.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	return nil
}
