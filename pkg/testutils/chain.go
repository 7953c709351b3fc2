package testutils

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/require"
)

// Hand-assembled contracts for deploy tests.
const (
	// PhiScoreABI describes the single setter the test contracts expose.
	PhiScoreABI = `[{"type":"function","name":"setPhiScore","stateMutability":"nonpayable","inputs":[{"name":"_score","type":"uint256"}],"outputs":[]}]`

	// StoreInitCode deploys a runtime that stores calldata[4:36] in slot 0.
	StoreInitCode = "0x6007600c60003960076000f360043560005500"

	// RevertingSetterInitCode deploys a runtime that always reverts.
	RevertingSetterInitCode = "0x6005600c60003960056000f360006000fd"

	// RevertingInitCode reverts during creation.
	RevertingInitCode = "0x60006000fd"
)

// ErrInjectedSend is returned by SimulatedChain when a send is set to fail.
var ErrInjectedSend = errors.New("injected send failure")

// SimulatedChain is an in-process chain that mines one block per transaction.
type SimulatedChain struct {
	simulated.Client

	Backend *simulated.Backend
	Key     *ecdsa.PrivateKey

	mu     sync.Mutex
	sends  int
	failAt int
}

func NewSimulatedChain(t *testing.T) *SimulatedChain {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	balance := new(big.Int).Lsh(big.NewInt(1), 80)
	backend := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: balance},
	})
	t.Cleanup(func() { _ = backend.Close() })

	return &SimulatedChain{
		Client:  backend.Client(),
		Backend: backend,
		Key:     key,
	}
}

// FailSendAt makes the n-th SendTransaction (1-based) fail without reaching the chain.
func (c *SimulatedChain) FailSendAt(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAt = n
}

func (c *SimulatedChain) Sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

func (c *SimulatedChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	c.sends++
	fail := c.failAt > 0 && c.sends == c.failAt
	c.mu.Unlock()

	if fail {
		return ErrInjectedSend
	}
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.Backend.Commit()
	return nil
}

// WriteArtifact writes a flat <dir>/<name>.json artifact.
func WriteArtifact(t *testing.T, dir, name, abiJSON, bytecode string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := json.Marshal(map[string]interface{}{
		"contractName": name,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     bytecode,
	})
	require.NoError(t, err)
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
