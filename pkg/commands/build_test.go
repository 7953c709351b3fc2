package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/contracts"
	"github.com/AetherQuanta/aethernet-cli/pkg/compiler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand(t *testing.T) {
	p := newProject(t, projectOpts{})

	_, log, err := p.run(t, "build")
	require.NoError(t, err)
	assert.True(t, log.Contains("Build completed successfully"))

	factory, err := contracts.NewRegistry(filepath.Join(p.dir, "artifacts")).Factory("AetherNet")
	require.NoError(t, err)
	_, err = factory.NumericSetter("setPhiScore")
	require.NoError(t, err)
	assert.Zero(t, p.chain.Sends())
}

func TestBuildCommand_NoSources(t *testing.T) {
	p := newProject(t, projectOpts{})
	require.NoError(t, os.RemoveAll(filepath.Join(p.dir, "contracts")))

	_, log, err := p.run(t, "build")
	require.NoError(t, err)
	assert.True(t, log.Contains("No Solidity sources"))
	assert.False(t, log.Contains("Build completed successfully"))
	assert.NoDirExists(t, filepath.Join(p.dir, "artifacts"))
}

func TestBuildCommand_VersionMismatch(t *testing.T) {
	p := newProject(t, projectOpts{solcVersion: "0.7.6"})

	_, _, err := p.run(t, "build")
	require.ErrorIs(t, err, compiler.ErrVersionMismatch)
	assert.NoDirExists(t, filepath.Join(p.dir, "artifacts"))
}
