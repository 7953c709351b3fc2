package configs

import (
	_ "embed"

	configMigrations "github.com/AetherQuanta/aethernet-cli/config/configs/migrations"
	"github.com/AetherQuanta/aethernet-cli/pkg/migration"
)

const LatestVersion = "0.0.2"

//go:embed v0.0.1.yaml
var v0_0_1_default []byte

//go:embed v0.0.2.yaml
var v0_0_2_default []byte

// ConfigYamls maps a config version to its default file.
var ConfigYamls = map[string][]byte{
	"0.0.1": v0_0_1_default,
	"0.0.2": v0_0_2_default,
}

// MigrationChain lists the upgrade steps in order.
var MigrationChain = []migration.MigrationStep{
	{
		From:    "0.0.1",
		To:      "0.0.2",
		Apply:   configMigrations.Migration_0_0_1_to_0_0_2,
		OldYAML: v0_0_1_default,
		NewYAML: v0_0_2_default,
	},
}
