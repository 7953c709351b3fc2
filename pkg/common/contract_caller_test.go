package common_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/logger"
	"github.com/AetherQuanta/aethernet-cli/pkg/testutils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(t *testing.T, bytecode string) *contracts.ContractFactory {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "artifacts")
	testutils.WriteArtifact(t, dir, "AetherNet", testutils.PhiScoreABI, bytecode)
	f, err := contracts.NewRegistry(dir).Factory("AetherNet")
	require.NoError(t, err)
	return f
}

func newCaller(t *testing.T, chain *testutils.SimulatedChain) (*common.ContractCaller, *logger.NoopLogger) {
	t.Helper()
	chainID, err := common.ResolveChainID(context.Background(), chain, nil)
	require.NoError(t, err)
	l := logger.NewNoopLogger()
	cc, err := common.NewContractCaller(chain.Key, chainID, chain, l)
	require.NoError(t, err)
	return cc, l
}

func TestContractCaller_DeployAndTransact(t *testing.T) {
	ctx := context.Background()
	chain := testutils.NewSimulatedChain(t)
	cc, _ := newCaller(t, chain)
	factory := newFactory(t, testutils.StoreInitCode)

	addr, err := cc.Deploy(ctx, factory)
	require.NoError(t, err)
	assert.NotEqual(t, ethcommon.Address{}, addr)

	code, err := chain.CodeAt(ctx, addr, nil)
	require.NoError(t, err)
	assert.Equal(t, ethcommon.FromHex("0x60043560005500"), code)

	receipt, err := cc.Transact(ctx, addr, factory.ABI, "setPhiScore", big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)

	slot, err := chain.StorageAt(ctx, addr, ethcommon.Hash{}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), new(big.Int).SetBytes(slot).Int64())
}

func TestContractCaller_DeployReverts(t *testing.T) {
	chain := testutils.NewSimulatedChain(t)
	cc, l := newCaller(t, chain)

	_, err := cc.Deploy(context.Background(), newFactory(t, testutils.RevertingInitCode))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Deploy AetherNet execution")
	assert.True(t, l.ContainsLevel("ERROR", "Deploy AetherNet failed during execution"))
}

func TestContractCaller_SendFailure(t *testing.T) {
	chain := testutils.NewSimulatedChain(t)
	chain.FailSendAt(1)
	cc, _ := newCaller(t, chain)

	_, err := cc.Deploy(context.Background(), newFactory(t, testutils.StoreInitCode))
	require.ErrorIs(t, err, testutils.ErrInjectedSend)
}

func TestResolveChainID(t *testing.T) {
	ctx := context.Background()
	chain := testutils.NewSimulatedChain(t)

	id, err := common.ResolveChainID(ctx, chain, big.NewInt(1337))
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id.Int64())

	_, err = common.ResolveChainID(ctx, chain, big.NewInt(11155111))
	assert.ErrorContains(t, err, "chain ID mismatch")
}

func TestNewContractCaller_RequiresKeyAndChain(t *testing.T) {
	chain := testutils.NewSimulatedChain(t)
	_, err := common.NewContractCaller(nil, big.NewInt(1337), chain, logger.NewNoopLogger())
	assert.Error(t, err)
	_, err = common.NewContractCaller(chain.Key, nil, chain, logger.NewNoopLogger())
	assert.Error(t, err)
}

func TestCoerceInteger(t *testing.T) {
	mustType := func(s string) abi.Type {
		typ, err := abi.NewType(s, "", nil)
		require.NoError(t, err)
		return typ
	}

	tests := []struct {
		typ     string
		value   int64
		want    interface{}
		wantErr bool
	}{
		{"uint8", 255, uint8(255), false},
		{"uint8", 256, nil, true},
		{"uint16", 1000, uint16(1000), false},
		{"uint32", 1000, uint32(1000), false},
		{"uint64", 1000, uint64(1000), false},
		{"uint256", 1000, big.NewInt(1000), false},
		{"uint256", -1, nil, true},
		{"uint24", 1000, big.NewInt(1000), false},
		{"int8", -128, int8(-128), false},
		{"int8", 128, nil, true},
		{"int16", -2500, int16(-2500), false},
		{"int32", -2500, int32(-2500), false},
		{"int64", -2500, int64(-2500), false},
		{"int256", -2500, big.NewInt(-2500), false},
	}
	for _, tt := range tests {
		got, err := common.CoerceInteger(mustType(tt.typ), big.NewInt(tt.value))
		if tt.wantErr {
			assert.Error(t, err, "%s(%d)", tt.typ, tt.value)
			continue
		}
		require.NoError(t, err, "%s(%d)", tt.typ, tt.value)
		assert.Equal(t, tt.want, got, "%s(%d)", tt.typ, tt.value)
	}

	_, err := common.CoerceInteger(mustType("string"), big.NewInt(1))
	assert.Error(t, err)
}
