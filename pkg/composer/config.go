package composer

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/launchstack-dev/composer-parser/pkg/errors"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata"
)

// Config configures an evaluation run.
type Config struct {
	// Workers bounds the per-date evaluation fan-out; zero means one per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`
	// MarketData configures where price history comes from.
	MarketData marketdata.ClientConfig `yaml:"market_data"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return ParseConfig(raw)
}

// ParseConfig parses and validates YAML config bytes.
func ParseConfig(raw []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	// MarketData is validated when a client is built from it; runs that feed
	// prices directly never need it.
	validate := validator.New()
	if err := validate.StructExcept(&config, "MarketData"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return &config, nil
}
