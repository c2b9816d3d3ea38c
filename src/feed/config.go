package feed

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Enabled          bool          `envconfig:"FEED_ENABLED" default:"true"`
	URL              string        `envconfig:"FEED_URL" default:"wss://stream.bybit.com/realtime"`
	Topic            string        `envconfig:"FEED_TOPIC" default:"instrument_info.100ms.BTCUSD"`
	HandshakeTimeout time.Duration `envconfig:"FEED_HANDSHAKE_TIMEOUT" default:"15s"`
	Buffer           int           `envconfig:"FEED_BUFFER" default:"256"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
