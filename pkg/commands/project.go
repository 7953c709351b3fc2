package commands

import (
	"fmt"

	"github.com/AetherQuanta/aethernet-cli/config/configs"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"

	"github.com/urfave/cli/v2"
)

// loadProjectConfig reads the --config file, refuses outdated versions and validates it.
func loadProjectConfig(cCtx *cli.Context) (*common.Config, error) {
	path := cCtx.String("config")
	cfg, err := common.ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Version != configs.LatestVersion {
		return nil, fmt.Errorf("%s is at version %q, expected %s; run `aethernet config migrate`", path, cfg.Version, configs.LatestVersion)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger := common.LoggerFromContext(cCtx.Context)
	for _, name := range cfg.LiteralEndpoints() {
		logger.Warn("networks.%s.url is a literal endpoint and may expose an API key; reference it as ${VAR} or run `aethernet config migrate`", name)
	}
	return cfg, nil
}
