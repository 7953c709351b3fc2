package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/AetherQuanta/aethernet-cli/internal/version"
	"github.com/AetherQuanta/aethernet-cli/pkg/commands"
	"github.com/AetherQuanta/aethernet-cli/pkg/commands/config"
	"github.com/AetherQuanta/aethernet-cli/pkg/commands/keystore"
	versionCmd "github.com/AetherQuanta/aethernet-cli/pkg/commands/version"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/logger"
	"github.com/AetherQuanta/aethernet-cli/pkg/hooks"

	"github.com/urfave/cli/v2"
)

var (
	appCommands = []*cli.Command{
		commands.DeployCommand,
		commands.BuildCommand,
		commands.CoherenceCommand,
		config.Command,
		keystore.KeystoreCommand,
		commands.TelemetryCommand,
		versionCmd.VersionCommand,
	}
	middlewareOnce sync.Once
)

func main() {
	ctx := common.WithShutdown(context.Background())
	os.Exit(run(ctx, os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).RunContext(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:                 "aethernet",
		Usage:                "Builds and deploys the AetherNet contract",
		Version:              version.GetVersion(),
		Flags:                common.GlobalFlags,
		EnableBashCompletion: true,
		Writer:               stdout,
		ErrWriter:            stderr,
		Before: func(cCtx *cli.Context) error {
			log, tracker := common.GetLoggerFromCLIContext(cCtx)
			cCtx.Context = common.WithLogger(cCtx.Context, log)
			cCtx.Context = common.WithProgressTracker(cCtx.Context, tracker)

			if err := hooks.LoadEnvFile(cCtx); err != nil {
				return err
			}
			common.WithAppEnvironment(cCtx)
			return hooks.WithCommandMetricsContext(cCtx)
		},
		After: func(cCtx *cli.Context) error {
			if z, ok := common.LoggerFromContext(cCtx.Context).(*logger.ZapLogger); ok {
				z.Sync()
			}
			return nil
		},
		Commands: appCommands,
		// errors are printed once, by run
		ExitErrHandler: func(*cli.Context, error) {},
	}

	middlewareOnce.Do(func() {
		actionChain := hooks.NewActionChain()
		actionChain.Use(hooks.WithMetricEmission)
		hooks.ApplyMiddleware(appCommands, actionChain)
	})
	return app
}
