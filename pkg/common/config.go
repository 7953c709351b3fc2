package common

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Config is the versioned project config stored at config/config.yaml.
type Config struct {
	Version string      `json:"version" yaml:"version"`
	Config  ConfigBlock `json:"config" yaml:"config"`
}

type ConfigBlock struct {
	Project        ProjectConfig            `json:"project" yaml:"project"`
	Compiler       CompilerConfig           `json:"compiler" yaml:"compiler"`
	DefaultNetwork string                   `json:"default_network" yaml:"default_network"`
	Networks       map[string]NetworkConfig `json:"networks" yaml:"networks"`
	Deploy         DeployConfig             `json:"deploy" yaml:"deploy"`
	Telemetry      TelemetryConfig          `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
}

type ProjectConfig struct {
	Name             string `json:"name" yaml:"name"`
	ProjectUUID      string `json:"project_uuid,omitempty" yaml:"project_uuid,omitempty"`
	TelemetryEnabled bool   `json:"telemetry_enabled" yaml:"telemetry_enabled"`
}

type CompilerConfig struct {
	Solidity  string `json:"solidity" yaml:"solidity"`
	Solc      string `json:"solc,omitempty" yaml:"solc,omitempty"`
	Sources   string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Artifacts string `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// NetworkConfig names an RPC endpoint and the accounts that sign on it.
// URL and accounts may hold ${VAR} references.
type NetworkConfig struct {
	URL      string   `json:"url" yaml:"url"`
	ChainID  uint64   `json:"chain_id,omitempty" yaml:"chain_id,omitempty"`
	Accounts []string `json:"accounts" yaml:"accounts"`
}

type DeployConfig struct {
	Contract string  `json:"contract" yaml:"contract"`
	Setter   string  `json:"setter" yaml:"setter"`
	PhiScore Literal `json:"phi_score" yaml:"phi_score"`
	LogFile  string  `json:"log_file" yaml:"log_file"`
}

type TelemetryConfig struct {
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Literal holds an integer of any size exactly as written in the config.
type Literal string

func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer literal", node.Line)
	}
	*l = Literal(strings.TrimSpace(node.Value))
	return nil
}

func (l *Literal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if f, ok := new(big.Float).SetString(s); ok && f.IsInt() && strings.ContainsAny(s, "eE.") {
		i, _ := f.Int(nil)
		s = i.String()
	}
	*l = Literal(s)
	return nil
}

// Int parses the literal as a base-10 integer.
func (l Literal) Int() (*big.Int, error) {
	v, ok := new(big.Int).SetString(string(l), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", string(l))
	}
	return v, nil
}

// Network is a NetworkConfig with references expanded and the signer resolved.
type Network struct {
	Name    string
	URL     string
	ChainID *big.Int
	Key     *ecdsa.PrivateKey
}

func DefaultConfigPath() string {
	return filepath.Join(ConfigDir, BaseConfig)
}

// ReadConfig unmarshals the file at path without defaults or validation.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadConfig reads the config at path, fills defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) ApplyDefaults() {
	b := &c.Config
	if b.Compiler.Solc == "" {
		b.Compiler.Solc = DefaultSolc
	}
	if b.Compiler.Sources == "" {
		b.Compiler.Sources = DefaultSourcesDir
	}
	if b.Compiler.Artifacts == "" {
		b.Compiler.Artifacts = DefaultArtifactsDir
	}
	if b.DefaultNetwork == "" {
		b.DefaultNetwork = DefaultNetwork
	}
	if b.Deploy.Contract == "" {
		b.Deploy.Contract = DefaultContractName
	}
	if b.Deploy.Setter == "" {
		b.Deploy.Setter = DefaultSetter
	}
	if b.Deploy.PhiScore == "" {
		b.Deploy.PhiScore = DefaultPhiScore
	}
	if b.Deploy.LogFile == "" {
		b.Deploy.LogFile = DefaultLogFile
	}
}

// Validate checks the config without touching the network or the environment.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("missing version")
	}
	if !semverRegex.MatchString(c.Config.Compiler.Solidity) {
		return fmt.Errorf("compiler.solidity must be X.Y.Z, got %q", c.Config.Compiler.Solidity)
	}
	if _, err := c.Config.Deploy.PhiScore.Int(); err != nil {
		return fmt.Errorf("deploy.phi_score: %w", err)
	}
	for name, n := range c.Config.Networks {
		if n.URL == "" {
			return fmt.Errorf("networks.%s.url is empty", name)
		}
		for i, acct := range n.Accounts {
			if err := CheckAccountEntry(acct); err != nil {
				return fmt.Errorf("networks.%s.accounts[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

// LiteralEndpoints lists, sorted, the networks whose url is a literal remote endpoint.
func (c *Config) LiteralEndpoints() []string {
	var names []string
	for name, n := range c.Config.Networks {
		if IsLiteralRemoteURL(n.URL) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Network expands the named network. An empty name selects default_network.
// Only the first account is resolved.
func (c *Config) Network(name string) (*Network, error) {
	if name == "" {
		name = c.Config.DefaultNetwork
	}
	n, ok := c.Config.Networks[name]
	if !ok {
		return nil, fmt.Errorf("network %q is not configured", name)
	}
	url, err := ExpandEnv(n.URL)
	if err != nil {
		return nil, fmt.Errorf("networks.%s.url: %w", name, err)
	}
	if len(n.Accounts) == 0 {
		return nil, fmt.Errorf("networks.%s has no accounts", name)
	}
	key, err := ResolveAccount(n.Accounts[0])
	if err != nil {
		return nil, fmt.Errorf("networks.%s.accounts[0]: %w", name, err)
	}

	out := &Network{Name: name, URL: url, Key: key}
	if n.ChainID != 0 {
		out.ChainID = new(big.Int).SetUint64(n.ChainID)
	}
	return out, nil
}

// ValidateStrict rejects unknown fields in raw config bytes.
func ValidateStrict(data []byte) error {
	var cfg Config
	if err := sigsyaml.UnmarshalStrict(data, &cfg); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	return cfg.Validate()
}
