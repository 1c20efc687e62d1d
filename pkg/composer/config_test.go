package composer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/launchstack-dev/composer-parser/pkg/errors"
	"github.com/launchstack-dev/composer-parser/pkg/marketdata/provider"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParseConfig() {
	raw := []byte(`
workers: 4
market_data:
  provider: polygon
  database_path: /tmp/bars.db
  polygon_api_key: test-key
`)

	config, err := ParseConfig(raw)
	suite.NoError(err)
	suite.Equal(4, config.Workers)
	suite.Equal(provider.ProviderPolygon, config.MarketData.ProviderType)
	suite.Equal("/tmp/bars.db", config.MarketData.DatabasePath)
}

func (suite *ConfigTestSuite) TestParseConfigWithoutMarketData() {
	config, err := ParseConfig([]byte("workers: 2\n"))
	suite.NoError(err)
	suite.Equal(2, config.Workers)
}

func (suite *ConfigTestSuite) TestParseConfigRejectsNegativeWorkers() {
	_, err := ParseConfig([]byte("workers: -1\n"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestParseConfigRejectsBadYAML() {
	_, err := ParseConfig([]byte("workers: [not an int\n"))
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("workers: 1\n"), 0o644))

	config, err := LoadConfig(path)
	suite.NoError(err)
	suite.Equal(1, config.Workers)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	_, err := LoadConfig("/does/not/exist.yaml")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
