package database

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Driver selects the engine: "sqlite" or "postgres".
	Driver       string `envconfig:"DB_DRIVER" default:"sqlite"`
	// DatabaseURL is a file path for sqlite and a DSN for postgres.
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"database.sqlite"`
	GormLogLevel int    `envconfig:"GORM_LOG_LEVEL" default:"2"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
