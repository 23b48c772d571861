package server

import (
	"errors"
	"fmt"

	"github.com/goto/salt/config"

	"github.com/chimbuka/mabuku/internal/queue"
	"github.com/chimbuka/mabuku/internal/store/postgres"
	"github.com/chimbuka/mabuku/jobs"
	"github.com/chimbuka/mabuku/plugins/notifiers"
	"github.com/chimbuka/mabuku/plugins/zra"
)

type Auth struct {
	// JWTSecret signs and verifies API tokens.
	JWTSecret string `mapstructure:"jwt_secret"`
	// OrganizationHeaderKey carries the tenant on every request.
	OrganizationHeaderKey string `mapstructure:"organization_header_key" default:"X-Organization-ID"`
}

type Config struct {
	Port     int              `mapstructure:"port" default:"8080"`
	LogLevel string           `mapstructure:"log_level" default:"info"`
	DB       postgres.Config  `mapstructure:"db"`
	Queue    queue.Config     `mapstructure:"queue"`
	Notifier notifiers.Config `mapstructure:"notifier"`
	ZRA      *zra.Config      `mapstructure:"zra"`
	Auth     Auth             `mapstructure:"auth"`

	Jobs map[jobs.Type]jobs.Job `mapstructure:"jobs"`
}

func LoadConfig(configFile string) (Config, error) {
	var cfg Config
	loader := config.NewLoader(config.WithFile(configFile))

	if err := loader.Load(&cfg); err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			fmt.Println(err)
			return cfg, nil
		}
		return Config{}, err
	}

	return cfg, nil
}
