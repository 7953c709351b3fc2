package contracts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testABI = `[
  {"type":"function","name":"setPhiScore","stateMutability":"nonpayable","inputs":[{"name":"_score","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"setName","stateMutability":"nonpayable","inputs":[{"name":"_name","type":"string"}],"outputs":[]},
  {"type":"function","name":"setPair","stateMutability":"nonpayable","inputs":[{"name":"a","type":"uint8"},{"name":"b","type":"uint8"}],"outputs":[]}
]`

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestBytecode_UnmarshalFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain string", `"0x6080"`, "0x6080"},
		{"object", `{"object":"0x6080","linkReferences":{}}`, "0x6080"},
		{"no prefix", `{"object":"6080"}`, "6080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bytecode
			require.NoError(t, json.Unmarshal([]byte(tt.input), &b))
			assert.Equal(t, tt.want, b.String())

			raw, err := b.Bytes()
			require.NoError(t, err)
			assert.Equal(t, []byte{0x60, 0x80}, raw)
		})
	}

	var b Bytecode
	assert.Error(t, json.Unmarshal([]byte(`42`), &b))
}

func TestBytecode_Invalid(t *testing.T) {
	_, err := NewBytecode("0x").Bytes()
	assert.ErrorContains(t, err, "empty bytecode")

	_, err = NewBytecode("0x6080__$abc$__").Bytes()
	assert.ErrorContains(t, err, "unlinked")
}

func TestRegistry_FlatLayout(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "AetherNet.json"), map[string]interface{}{
		"contractName": "AetherNet",
		"abi":          json.RawMessage(testABI),
		"bytecode":     "0x6001",
	})

	factory, err := NewRegistry(dir).Factory("AetherNet")
	require.NoError(t, err)
	assert.Equal(t, "AetherNet", factory.Name)
	assert.Equal(t, []byte{0x60, 0x01}, factory.Bytecode)
	assert.Contains(t, factory.ABI.Methods, "setPhiScore")
}

func TestRegistry_HardhatLayout(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "contracts", "AetherNet.sol", "AetherNet.json"), map[string]interface{}{
		"_format":      ArtifactFormat,
		"contractName": "AetherNet",
		"sourceName":   "contracts/AetherNet.sol",
		"abi":          json.RawMessage(testABI),
		"bytecode":     map[string]string{"object": "0x6002"},
	})
	writeJSON(t, filepath.Join(dir, "contracts", "AetherNet.sol", "AetherNet.dbg.json"), map[string]string{"buildInfo": "x"})
	writeJSON(t, filepath.Join(dir, "build-info", "abc.json"), map[string]string{"id": "abc"})

	r := NewRegistry(dir)
	artifact, err := r.Lookup("AetherNet")
	require.NoError(t, err)
	assert.Equal(t, "contracts/AetherNet.sol", artifact.SourceName)

	names, err := r.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"AetherNet"}, names)
}

func TestRegistry_NotFound(t *testing.T) {
	_, err := NewRegistry(t.TempDir()).Factory("AetherNet")
	require.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = NewRegistry(filepath.Join(t.TempDir(), "missing")).Lookup("AetherNet")
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestRegistry_WriteThenLookup(t *testing.T) {
	r := NewRegistry(filepath.Join(t.TempDir(), "artifacts"))
	path, err := r.Write(&ContractArtifact{
		Format:       ArtifactFormat,
		ContractName: "AetherNet",
		ABI:          json.RawMessage(testABI),
		Bytecode:     NewBytecode("0x6003"),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir(), "AetherNet.json"), path)

	got, err := r.Lookup("AetherNet")
	require.NoError(t, err)
	assert.Equal(t, "0x6003", got.Bytecode.String())
}

func TestContractFactory_NumericSetter(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "AetherNet.json"), map[string]interface{}{
		"contractName": "AetherNet",
		"abi":          json.RawMessage(testABI),
		"bytecode":     "0x6001",
	})
	factory, err := NewRegistry(dir).Factory("AetherNet")
	require.NoError(t, err)

	in, err := factory.NumericSetter("setPhiScore")
	require.NoError(t, err)
	assert.Equal(t, "uint256", in.Type.String())

	_, err = factory.NumericSetter("missing")
	assert.ErrorContains(t, err, `no method "missing"`)

	_, err = factory.NumericSetter("setName")
	assert.ErrorContains(t, err, "expected an integer")

	_, err = factory.NumericSetter("setPair")
	assert.ErrorContains(t, err, "takes 2 arguments")
}
