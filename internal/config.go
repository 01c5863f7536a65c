package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	LimitMessages      *int          `env:"LIMIT_MESSAGES"`
	NotificationWindow int           `env:"NOTIFICATION_WINDOW,required=true"`

	EventBufferSize      int           `env:"EVENT_BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`

	DevMode      bool `env:"DEV_MODE"`
	DebugInspect bool `env:"DEBUG_INSPECT"`
	DebugPort    int  `env:"DEBUG_PORT"`
}

const defaultLimitMessages = 50

// MessageLimit resolves the optional history cap, falling back to the
// default window used by the web client.
func (c Config) MessageLimit() int {
	if c.LimitMessages == nil || *c.LimitMessages <= 0 {
		return defaultLimitMessages
	}
	return *c.LimitMessages
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
