package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ArtifactFormat tags artifacts written by the compiler step.
const ArtifactFormat = "hh-sol-artifact-1"

// ContractArtifact is a compiled contract in Hardhat artifact shape.
type ContractArtifact struct {
	Format           string          `json:"_format,omitempty"`
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName,omitempty"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         Bytecode        `json:"bytecode"`
	DeployedBytecode Bytecode        `json:"deployedBytecode,omitempty"`
}

// Bytecode accepts either "0x6080..." or {"object": "0x6080..."}.
type Bytecode struct {
	hex string
}

func NewBytecode(hex string) Bytecode {
	return Bytecode{hex: hex}
}

func (b *Bytecode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.hex = s
		return nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		b.hex = obj.Object
		return nil
	}

	return fmt.Errorf("bytecode must be a string or object with 'object' field")
}

func (b Bytecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.hex)
}

func (b Bytecode) String() string {
	return b.hex
}

// Bytes decodes the hex, with or without a 0x prefix.
func (b Bytecode) Bytes() ([]byte, error) {
	h := strings.TrimPrefix(strings.TrimSpace(b.hex), "0x")
	if h == "" {
		return nil, fmt.Errorf("empty bytecode")
	}
	if strings.Contains(h, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library placeholders")
	}
	return hexutil.Decode("0x" + h)
}

func (a *ContractArtifact) ParsedABI() (abi.ABI, error) {
	if len(a.ABI) == 0 {
		return abi.ABI{}, fmt.Errorf("artifact %s has no ABI", a.ContractName)
	}
	return abi.JSON(bytes.NewReader(a.ABI))
}

// ContractFactory is everything needed to create a contract: its ABI and creation code.
type ContractFactory struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

func NewContractFactory(artifact *ContractArtifact) (*ContractFactory, error) {
	parsed, err := artifact.ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("parse ABI of %s: %w", artifact.ContractName, err)
	}
	code, err := artifact.Bytecode.Bytes()
	if err != nil {
		return nil, fmt.Errorf("bytecode of %s: %w", artifact.ContractName, err)
	}
	return &ContractFactory{
		Name:     artifact.ContractName,
		ABI:      parsed,
		Bytecode: code,
	}, nil
}

// NumericSetter returns the single integer input of method.
func (f *ContractFactory) NumericSetter(method string) (abi.Argument, error) {
	m, ok := f.ABI.Methods[method]
	if !ok {
		return abi.Argument{}, fmt.Errorf("%s has no method %q", f.Name, method)
	}
	if len(m.Inputs) != 1 {
		return abi.Argument{}, fmt.Errorf("%s.%s takes %d arguments, expected 1", f.Name, method, len(m.Inputs))
	}
	in := m.Inputs[0]
	if in.Type.T != abi.UintTy && in.Type.T != abi.IntTy {
		return abi.Argument{}, fmt.Errorf("%s.%s takes %s, expected an integer", f.Name, method, in.Type.String())
	}
	return in, nil
}
