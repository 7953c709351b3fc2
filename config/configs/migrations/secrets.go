package configMigrations

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/migration"

	"gopkg.in/yaml.v3"
)

var nonIdentRe = regexp.MustCompile(`[^A-Z0-9]+`)

// ExtractSecrets replaces literal network URLs and hex private keys with
// ${VAR} references and returns the removed values keyed by variable name.
// Keystore entries and existing references are left alone.
func ExtractSecrets(root *yaml.Node) map[string]string {
	secrets := map[string]string{}
	networks := migration.ResolveNode(root, []string{"config", "networks"})
	if networks == nil || networks.Kind != yaml.MappingNode {
		return secrets
	}

	for i := 0; i+1 < len(networks.Content); i += 2 {
		prefix := EnvPrefix(networks.Content[i].Value)
		network := networks.Content[i+1]

		if url := common.GetChildByKey(network, "url"); url != nil && !common.IsEnvRef(url.Value) {
			name := prefix + "_RPC_URL"
			secrets[name] = url.Value
			setRef(url, name)
		}

		accounts := common.GetChildByKey(network, "accounts")
		if accounts == nil || accounts.Kind != yaml.SequenceNode {
			continue
		}
		n := 0
		for _, acct := range accounts.Content {
			if acct.Kind != yaml.ScalarNode || !common.LooksLikePrivateKey(acct.Value) {
				continue
			}
			name := prefix + "_PRIVATE_KEY"
			if n > 0 {
				name = fmt.Sprintf("%s_%d", name, n)
			}
			n++
			secrets[name] = strings.TrimSpace(acct.Value)
			setRef(acct, name)
		}
	}
	return secrets
}

// EnvPrefix turns a network name into an environment variable prefix.
func EnvPrefix(network string) string {
	return strings.Trim(nonIdentRe.ReplaceAllString(strings.ToUpper(network), "_"), "_")
}

func setRef(node *yaml.Node, name string) {
	node.Kind = yaml.ScalarNode
	node.Tag = "!!str"
	node.Style = yaml.DoubleQuotedStyle
	node.Value = "${" + name + "}"
}
