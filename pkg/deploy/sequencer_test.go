package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/logger"
	"github.com/AetherQuanta/aethernet-cli/pkg/testutils"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineRegexp = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z\] AetherNet deployed to: (0x[0-9a-fA-F]{40}), PhiScore: 1$`)

type fixture struct {
	chain    *testutils.SimulatedChain
	seq      *Sequencer
	out      *bytes.Buffer
	logger   *logger.NoopLogger
	plan     *Plan
	artifact string
}

func newFixture(t *testing.T, initCode string) *fixture {
	t.Helper()
	dir := t.TempDir()
	artifacts := filepath.Join(dir, "artifacts")
	testutils.WriteArtifact(t, artifacts, "AetherNet", testutils.PhiScoreABI, initCode)

	chain := testutils.NewSimulatedChain(t)
	l := logger.NewNoopLogger()
	chainID, err := common.ResolveChainID(context.Background(), chain, nil)
	require.NoError(t, err)
	caller, err := common.NewContractCaller(chain.Key, chainID, chain, l)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	seq := NewSequencer(contracts.NewRegistry(artifacts), caller, l, logger.NewNoopProgressTracker(), WithOutput(out))

	return &fixture{
		chain:  chain,
		seq:    seq,
		out:    out,
		logger: l,
		plan: &Plan{
			Contract: "AetherNet",
			Setter:   "setPhiScore",
			PhiScore: big.NewInt(1000),
			LogFile:  filepath.Join(dir, "network_log.txt"),
		},
		artifact: artifacts,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRun_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutils.StoreInitCode)

	record, err := f.seq.Run(ctx, f.plan)
	require.NoError(t, err)

	lines := readLines(t, f.plan.LogFile)
	require.Len(t, lines, 1)
	m := lineRegexp.FindStringSubmatch(lines[0])
	require.NotNil(t, m, "unexpected log line %q", lines[0])
	assert.Equal(t, record.Address.Hex(), m[1])
	assert.True(t, ethcommon.IsHexAddress(m[1]))

	assert.Equal(t,
		"AetherNet deployed to: "+record.Address.Hex()+"\nPhiScore set to: 1\n",
		f.out.String(),
	)

	slot, err := f.chain.StorageAt(ctx, record.Address, ethcommon.Hash{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), new(big.Int).SetBytes(slot).Int64())
}

func TestRun_FixedClock(t *testing.T) {
	f := newFixture(t, testutils.StoreInitCode)
	f.seq = NewSequencer(contracts.NewRegistry(f.artifact), f.seq.caller, f.logger, logger.NewNoopProgressTracker(),
		WithOutput(f.out),
		WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC) }),
	)
	f.plan.PhiScore = big.NewInt(1618)

	_, err := f.seq.Run(context.Background(), f.plan)
	require.NoError(t, err)

	lines := readLines(t, f.plan.LogFile)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "[2025-01-02T03:04:05.006Z] AetherNet deployed to: 0x"))
	assert.True(t, strings.HasSuffix(lines[0], ", PhiScore: 1.618"))
}

func TestRun_DeployFailureWritesNothing(t *testing.T) {
	f := newFixture(t, testutils.RevertingInitCode)

	_, err := f.seq.Run(context.Background(), f.plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy AetherNet")

	_, statErr := os.Stat(f.plan.LogFile)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.out.String())
}

func TestRun_SetterRevertWritesNothing(t *testing.T) {
	f := newFixture(t, testutils.RevertingSetterInitCode)

	_, err := f.seq.Run(context.Background(), f.plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setPhiScore on 0x")

	_, statErr := os.Stat(f.plan.LogFile)
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, f.out.String(), "AetherNet deployed to: 0x")
	assert.NotContains(t, f.out.String(), "PhiScore set to")
}

func TestRun_SetterSendFailureWritesNothing(t *testing.T) {
	f := newFixture(t, testutils.StoreInitCode)
	f.chain.FailSendAt(2)

	_, err := f.seq.Run(context.Background(), f.plan)
	require.ErrorIs(t, err, testutils.ErrInjectedSend)

	_, statErr := os.Stat(f.plan.LogFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_TwoRunsTwoLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutils.StoreInitCode)

	first, err := f.seq.Run(ctx, f.plan)
	require.NoError(t, err)
	second, err := f.seq.Run(ctx, f.plan)
	require.NoError(t, err)

	assert.NotEqual(t, first.Address, second.Address)
	lines := readLines(t, f.plan.LogFile)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], first.Address.Hex())
	assert.Contains(t, lines[1], second.Address.Hex())
}

func TestRun_UnwritableLogPath(t *testing.T) {
	f := newFixture(t, testutils.StoreInitCode)
	f.plan.LogFile = filepath.Join(t.TempDir(), "no-such-dir", "network_log.txt")

	_, err := f.seq.Run(context.Background(), f.plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record deployment")

	assert.Contains(t, f.out.String(), "AetherNet deployed to: 0x")
	assert.Contains(t, f.out.String(), "PhiScore set to: 1\n")
}

func TestRun_FactoryErrorsSendNothing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		errText string
	}{
		{"missing artifact", func(p *Plan) { p.Contract = "Missing" }, "artifact not found"},
		{"missing setter", func(p *Plan) { p.Setter = "setOmega" }, `no method "setOmega"`},
		{"negative for uint", func(p *Plan) { p.PhiScore = big.NewInt(-1) }, "cannot hold negative value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testutils.StoreInitCode)
			tt.mutate(f.plan)

			_, err := f.seq.Run(context.Background(), f.plan)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "contract factory")
			assert.Contains(t, err.Error(), tt.errText)
			assert.Equal(t, 0, f.chain.Sends())
		})
	}
}

func TestPlanFromConfig(t *testing.T) {
	plan, err := PlanFromConfig(common.DeployConfig{
		Contract: "AetherNet",
		Setter:   "setPhiScore",
		PhiScore: "2500",
		LogFile:  "network_log.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), plan.PhiScore.Int64())

	_, err = PlanFromConfig(common.DeployConfig{PhiScore: "x"})
	assert.Error(t, err)
}

func TestRun_RecordsConfiguredContractName(t *testing.T) {
	f := newFixture(t, testutils.StoreInitCode)
	// artifact file found by the configured name but carrying another contractName
	data, err := json.Marshal(map[string]interface{}{
		"contractName": "AetherNetV1",
		"abi":          json.RawMessage(testutils.PhiScoreABI),
		"bytecode":     testutils.StoreInitCode,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(f.artifact, "AetherNet.json"), data, 0644))

	record, err := f.seq.Run(context.Background(), f.plan)
	require.NoError(t, err)
	assert.Equal(t, "AetherNet", record.Contract)

	lines := readLines(t, f.plan.LogFile)
	require.Len(t, lines, 1)
	assert.Regexp(t, lineRegexp, lines[0])
	assert.True(t, strings.HasPrefix(f.out.String(), "AetherNet deployed to: 0x"))
}
