package configMigrations

import (
	"github.com/AetherQuanta/aethernet-cli/pkg/migration"

	"gopkg.in/yaml.v3"
)

// Migration_0_0_1_to_0_0_2 turns the Hardhat-shaped layout into the
// compiler/deploy layout. Secrets are handled separately by ExtractSecrets.
func Migration_0_0_1_to_0_0_2(user, old, new *yaml.Node) (*yaml.Node, error) {
	// solidity moves under compiler; the rules below fill in the rest of the block
	migration.MoveNode(user, []string{"config", "solidity"}, []string{"config", "compiler", "solidity"})

	engine := migration.PatchEngine{
		Old:  old,
		New:  new,
		User: user,
		Rules: []migration.PatchRule{
			{Path: []string{"config", "project", "telemetry_enabled"}, Condition: migration.IfMissing{}},
			{Path: []string{"config", "compiler"}, Condition: migration.IfMissing{}},
			{Path: []string{"config", "compiler", "solc"}, Condition: migration.IfMissing{}},
			{Path: []string{"config", "compiler", "sources"}, Condition: migration.IfMissing{}},
			{Path: []string{"config", "compiler", "artifacts"}, Condition: migration.IfMissing{}},
			{
				Path:      []string{"config", "default_network"},
				Condition: migration.IfMissing{},
				Transform: func(n *yaml.Node) *yaml.Node {
					if first := firstNetwork(user); first != "" {
						n.Value = first
					}
					return n
				},
			},
			{Path: []string{"config", "networks"}, Condition: migration.IfMissing{}},
			{Path: []string{"config", "deploy"}, Condition: migration.IfMissing{}},
		},
	}
	if err := engine.Apply(); err != nil {
		return nil, err
	}

	migration.SetVersion(user, "0.0.2")
	return user, nil
}

func firstNetwork(root *yaml.Node) string {
	networks := migration.ResolveNode(root, []string{"config", "networks"})
	if networks == nil || networks.Kind != yaml.MappingNode || len(networks.Content) == 0 {
		return ""
	}
	return networks.Content[0].Value
}
