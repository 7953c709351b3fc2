package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"syscall"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	solcompiler "github.com/ethereum/go-ethereum/common/compiler"
)

// ErrVersionMismatch is returned when the solc binary is not the configured version.
var ErrVersionMismatch = errors.New("solc version mismatch")

var versionRegexp = regexp.MustCompile(`Version:\s*(\d+\.\d+\.\d+)`)

// Compiler drives a local solc binary and writes one artifact per contract.
type Compiler struct {
	solc      string
	required  string
	sources   string
	artifacts *contracts.Registry
	logger    iface.Logger
}

// Result lists what a Compile call produced. Skipped is set when there was nothing to compile.
type Result struct {
	Contracts []string
	Artifacts []string
	Skipped   bool
}

func New(cfg common.CompilerConfig, logger iface.Logger) *Compiler {
	solc := cfg.Solc
	if solc == "" {
		solc = common.DefaultSolc
	}
	return &Compiler{
		solc:      solc,
		required:  cfg.Solidity,
		sources:   cfg.Sources,
		artifacts: contracts.NewRegistry(cfg.Artifacts),
		logger:    logger,
	}
}

// Version runs `solc --version` and returns X.Y.Z.
func (c *Compiler) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "--version")
	if err != nil {
		return "", err
	}
	m := versionRegexp.FindSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("cannot parse version from `%s --version` output: %q", c.solc, strings.TrimSpace(string(out)))
	}
	return string(m[1]), nil
}

// Compile checks the solc version, compiles every *.sol under the sources
// directory and writes the artifacts.
func (c *Compiler) Compile(ctx context.Context) (*Result, error) {
	files, err := c.sourceFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		c.logger.Info("No Solidity sources in %s, using existing artifacts", c.sources)
		return &Result{Skipped: true}, nil
	}

	version, err := c.Version(ctx)
	if err != nil {
		return nil, err
	}
	if version != c.required {
		return nil, fmt.Errorf("%w: %s reports %s, config requires %s", ErrVersionMismatch, c.solc, version, c.required)
	}

	c.logger.Info("Compiling %d file(s) with solc %s", len(files), version)

	args := append([]string{"--combined-json", "abi,bin,bin-runtime", "--base-path", c.sources}, files...)
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	compiled, err := solcompiler.ParseCombinedJSON(out, "", version, version, strings.Join(args[:2], " "))
	if err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}

	keys := make([]string, 0, len(compiled))
	for k := range compiled {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := &Result{}
	written := map[string]string{}
	for _, key := range keys {
		contract := compiled[key]
		source, name := splitContractKey(key)
		if prev, dup := written[name]; dup {
			c.logger.Warn("Contract %s in %s overwrites the artifact from %s", name, source, prev)
		}

		abiJSON, err := json.Marshal(contract.Info.AbiDefinition)
		if err != nil {
			return nil, fmt.Errorf("encode ABI of %s: %w", key, err)
		}
		path, err := c.artifacts.Write(&contracts.ContractArtifact{
			Format:           contracts.ArtifactFormat,
			ContractName:     name,
			SourceName:       source,
			ABI:              abiJSON,
			Bytecode:         contracts.NewBytecode(contract.Code),
			DeployedBytecode: contracts.NewBytecode(contract.RuntimeCode),
		})
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Wrote %s", path)

		written[name] = source
		res.Contracts = append(res.Contracts, name)
		res.Artifacts = append(res.Artifacts, path)
	}

	c.logger.Info("Compiled %d contract(s) into %s", len(res.Contracts), c.artifacts.Dir())
	return res, nil
}

func (c *Compiler) sourceFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(c.sources, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".sol" {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", c.sources, err)
	}
	sort.Strings(files)
	return files, nil
}

// run executes solc in its own process group; cancellation sends SIGINT to the group.
func (c *Compiler) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.solc, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			c.logger.Error("%s", msg)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s exited with code %d: %s", c.solc, exitErr.ExitCode(), msg)
		}
		return nil, fmt.Errorf("failed to run %s: %w", c.solc, err)
	}
	if w := strings.TrimSpace(stderr.String()); w != "" {
		c.logger.Warn("%s", w)
	}
	return stdout.Bytes(), nil
}

// splitContractKey splits solc's "path/File.sol:Name".
func splitContractKey(key string) (string, string) {
	i := strings.LastIndex(key, ":")
	if i < 0 {
		return "", key
	}
	return key[:i], key[i+1:]
}
