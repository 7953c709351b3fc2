package testutils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/AetherQuanta/aethernet-cli/config/configs"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/logger"
	"github.com/stretchr/testify/require"

	"github.com/urfave/cli/v2"
)

// WithNoopLogger installs a Before hook that puts a no-op logger and
// progress tracker into the command context, and returns the logger.
func WithNoopLogger(cmd *cli.Command) (*cli.Command, *logger.NoopLogger) {
	noopLogger := logger.NewNoopLogger()
	noopProgressTracker := logger.NewNoopProgressTracker()
	cmd.Before = func(cCtx *cli.Context) error {
		ctx := common.WithLogger(cCtx.Context, noopLogger)
		cCtx.Context = common.WithProgressTracker(ctx, noopProgressTracker)
		return nil
	}
	return cmd, noopLogger
}

// CreateTestAppWithNoopLoggerAndAccess creates a CLI app with a no-op logger
// and returns both app and logger.
func CreateTestAppWithNoopLoggerAndAccess(name string, commands ...*cli.Command) (*cli.App, *logger.NoopLogger) {
	noopLogger := logger.NewNoopLogger()
	noopProgressTracker := logger.NewNoopProgressTracker()
	app := &cli.App{
		Name:     name,
		Flags:    common.GlobalFlags,
		Commands: commands,
		Before: func(cCtx *cli.Context) error {
			ctx := common.WithLogger(cCtx.Context, noopLogger)
			cCtx.Context = common.WithProgressTracker(ctx, noopProgressTracker)
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	return app, noopLogger
}

// CreateTempProject writes config/config.yaml into a temp dir and makes it
// the working directory for the rest of the test. An empty configYAML uses
// the latest default config.
func CreateTempProject(t *testing.T, configYAML string) string {
	t.Helper()
	dir := t.TempDir()

	if configYAML == "" {
		configYAML = string(configs.ConfigYamls[configs.LatestVersion])
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, common.ConfigDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, common.DefaultConfigPath()), []byte(configYAML), 0644))

	Chdir(t, dir)
	return dir
}

// Chdir changes the working directory and restores it on cleanup.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			t.Logf("failed to restore working directory: %v", err)
		}
	})
}

// FakeSolc writes an executable script that answers --version with version
// and prints output for any other invocation.
func FakeSolc(t *testing.T, version, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solc")
	outFile := filepath.Join(filepath.Dir(path), "combined.json")
	require.NoError(t, os.WriteFile(outFile, []byte(output), 0644))

	script := "#!/bin/sh\n" +
		"if [ \"$1\" = \"--version\" ]; then\n" +
		"  echo \"solc, the solidity compiler commandline interface\"\n" +
		"  echo \"Version: " + version + "+commit.a1b79de6.Linux.g++\"\n" +
		"  exit 0\n" +
		"fi\n" +
		"cat \"" + outFile + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func FindSubcommandByName(name string, commands []*cli.Command) *cli.Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

// CaptureOutput runs fn with os.Stdout and os.Stderr redirected.
func CaptureOutput(fn func()) (stdout string, stderr string) {
	origStdout := os.Stdout
	origStderr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	outC := make(chan string)
	errC := make(chan string)
	drain := func(r *os.File, c chan<- string) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		c <- buf.String()
	}
	go drain(rOut, outC)
	go drain(rErr, errC)

	defer func() {
		os.Stdout = origStdout
		os.Stderr = origStderr
	}()
	fn()

	wOut.Close()
	wErr.Close()
	return <-outC, <-errC
}
