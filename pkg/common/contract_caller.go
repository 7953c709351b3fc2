package common

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend is satisfied by *ethclient.Client and by the simulated backend's client.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// ContractCaller signs, sends and waits for transactions from one account.
type ContractCaller struct {
	backend    Backend
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int
	logger     iface.Logger
}

func NewContractCaller(privateKey *ecdsa.PrivateKey, chainID *big.Int, backend Backend, logger iface.Logger) (*ContractCaller, error) {
	if privateKey == nil {
		return nil, errors.New("missing private key")
	}
	if chainID == nil {
		return nil, errors.New("missing chain ID")
	}
	return &ContractCaller{
		backend:    backend,
		privateKey: privateKey,
		chainID:    chainID,
		logger:     logger,
	}, nil
}

// ResolveChainID asks the node for its chain ID and checks it against expected, when set.
func ResolveChainID(ctx context.Context, backend Backend, expected *big.Int) (*big.Int, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if expected != nil && expected.Cmp(chainID) != 0 {
		return nil, fmt.Errorf("chain ID mismatch: config expects %s, node reports %s", expected, chainID)
	}
	return chainID, nil
}

// From is the address transactions are sent from.
func (cc *ContractCaller) From() common.Address {
	return crypto.PubkeyToAddress(cc.privateKey.PublicKey)
}

func (cc *ContractCaller) buildTxOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(cc.privateKey, cc.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// SendAndWaitForTransaction runs fn, waits for the transaction to be mined
// and fails on a reverted receipt.
func (cc *ContractCaller) SendAndWaitForTransaction(
	ctx context.Context,
	txDescription string,
	fn func() (*types.Transaction, error),
) (*types.Receipt, error) {
	tx, err := fn()
	if err != nil {
		cc.logger.Error("%s failed during execution: %v", txDescription, err)
		return nil, fmt.Errorf("%s execution: %w", txDescription, err)
	}
	cc.logger.Debug("%s sent (hash: %s, nonce: %d)", txDescription, tx.Hash().Hex(), tx.Nonce())

	receipt, err := bind.WaitMined(ctx, cc.backend, tx)
	if err != nil {
		cc.logger.Error("Waiting for %s transaction (hash: %s) failed: %v", txDescription, tx.Hash().Hex(), err)
		return nil, fmt.Errorf("waiting for %s transaction (hash: %s): %w", txDescription, tx.Hash().Hex(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		cc.logger.Error("%s transaction (hash: %s) reverted", txDescription, tx.Hash().Hex())
		return nil, fmt.Errorf("%s transaction (hash: %s) reverted", txDescription, tx.Hash().Hex())
	}
	cc.logger.Debug("%s mined in block %s (gas used: %d)", txDescription, receipt.BlockNumber, receipt.GasUsed)
	return receipt, nil
}

// Deploy creates the contract described by factory and returns its address.
func (cc *ContractCaller) Deploy(ctx context.Context, factory *contracts.ContractFactory, args ...interface{}) (common.Address, error) {
	opts, err := cc.buildTxOpts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to build transaction options: %w", err)
	}

	var predicted common.Address
	receipt, err := cc.SendAndWaitForTransaction(ctx, "Deploy "+factory.Name, func() (*types.Transaction, error) {
		addr, tx, _, err := bind.DeployContract(opts, factory.ABI, factory.Bytecode, cc.backend, args...)
		predicted = addr
		return tx, err
	})
	if err != nil {
		return common.Address{}, err
	}

	addr := receipt.ContractAddress
	if addr == (common.Address{}) {
		addr = predicted
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("deploy %s: receipt has no contract address", factory.Name)
	}
	return addr, nil
}

// Transact calls method on the contract at address and waits for it to be mined.
func (cc *ContractCaller) Transact(ctx context.Context, address common.Address, contractABI abi.ABI, method string, args ...interface{}) (*types.Receipt, error) {
	opts, err := cc.buildTxOpts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction options: %w", err)
	}

	bound := bind.NewBoundContract(address, contractABI, cc.backend, cc.backend, cc.backend)
	return cc.SendAndWaitForTransaction(ctx, method, func() (*types.Transaction, error) {
		return bound.Transact(opts, method, args...)
	})
}

// CoerceInteger converts v into the Go value the ABI packer expects for an
// intN/uintN input, rejecting values that do not fit.
func CoerceInteger(t abi.Type, v *big.Int) (interface{}, error) {
	switch t.T {
	case abi.UintTy:
		if v.Sign() < 0 {
			return nil, fmt.Errorf("%s cannot hold negative value %s", t.String(), v)
		}
		if v.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s overflows %s", v, t.String())
		}
		switch t.Size {
		case 8:
			return uint8(v.Uint64()), nil
		case 16:
			return uint16(v.Uint64()), nil
		case 32:
			return uint32(v.Uint64()), nil
		case 64:
			return v.Uint64(), nil
		}
		return new(big.Int).Set(v), nil

	case abi.IntTy:
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		minVal := new(big.Int).Neg(limit)
		maxVal := new(big.Int).Sub(limit, big.NewInt(1))
		if v.Cmp(minVal) < 0 || v.Cmp(maxVal) > 0 {
			return nil, fmt.Errorf("value %s overflows %s", v, t.String())
		}
		switch t.Size {
		case 8:
			return int8(v.Int64()), nil
		case 16:
			return int16(v.Int64()), nil
		case 32:
			return int32(v.Int64()), nil
		case 64:
			return v.Int64(), nil
		}
		return new(big.Int).Set(v), nil
	}
	return nil, fmt.Errorf("%s is not an integer type", t.String())
}
