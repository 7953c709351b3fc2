package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combinedJSON = `{"contracts":{"contracts/AetherNet.sol:AetherNet":{"abi":[{"inputs":[{"internalType":"uint256","name":"_score","type":"uint256"}],"name":"setPhiScore","outputs":[],"stateMutability":"nonpayable","type":"function"}],"bin":"6007600c60003960076000f360043560005500","bin-runtime":"60043560005500"}},"version":"0.8.20+commit.a1b79de6.Linux.g++"}`

// unreachableConfig points at a closed local port so every RPC call fails.
const unreachableConfig = `version: 0.0.2
config:
  project:
    name: aether-net
    telemetry_enabled: false
  compiler:
    solidity: "0.8.20"
    solc: %q
    sources: contracts
    artifacts: artifacts
  default_network: dead
  networks:
    dead:
      url: "http://127.0.0.1:1"
      accounts:
        - "${AETHERNET_MAIN_TEST_KEY}"
  deploy:
    phi_score: 1000
    log_file: network_log.txt
`

func newMainProject(t *testing.T) string {
	t.Helper()
	t.Setenv("AETHERNET_MAIN_TEST_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	solc := testutils.FakeSolc(t, "0.8.20", combinedJSON)
	dir := testutils.CreateTempProject(t, fmt.Sprintf(unreachableConfig, solc))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "contracts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contracts", "AetherNet.sol"), []byte("pragma solidity 0.8.20;\n"), 0644))
	return dir
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"version succeeds", []string{"version"}, 0, ""},
		{"build succeeds", []string{"build"}, 0, ""},
		{"deploy against unreachable node fails", []string{"deploy"}, 1, "Error: "},
		{"deploy of unknown network fails", []string{"deploy", "--network", "nowhere"}, 1, `network "nowhere" is not configured`},
		{"unknown flag fails", []string{"deploy", "--no-such-flag"}, 1, "Error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := newMainProject(t)
			var stdout, stderr bytes.Buffer

			code := run(context.Background(), append([]string{"aethernet"}, tt.args...), &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
			if tt.wantCode != 0 {
				assert.NoFileExists(t, filepath.Join(dir, "network_log.txt"))
			}
		})
	}
}

func TestRun_FailingDeployWithoutConfig(t *testing.T) {
	testutils.Chdir(t, t.TempDir())
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"aethernet", "deploy"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: ")
}

func TestRun_VersionOutput(t *testing.T) {
	newMainProject(t)
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, run(context.Background(), []string{"aethernet", "version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Version: ")
}
