package common

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/AetherQuanta/aethernet-cli/internal/version"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// WithShutdown creates a new context that will be cancelled on SIGTERM/SIGINT
func WithShutdown(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case <-sigChan:
			_, _ = fmt.Fprintln(os.Stderr, "caught interrupt, shutting down gracefully.")
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
		cancel()
	}()

	return ctx
}

type appEnvironmentContextKey struct{}

// AppEnvironment describes the running binary and the current invocation.
type AppEnvironment struct {
	CLIVersion  string
	OS          string
	Arch        string
	ProjectUUID string
	RunID       string
}

func NewAppEnvironment(goos, arch, projectUUID string) *AppEnvironment {
	return &AppEnvironment{
		CLIVersion:  version.GetVersion(),
		OS:          goos,
		Arch:        arch,
		ProjectUUID: projectUUID,
		RunID:       uuid.New().String(),
	}
}

// WithAppEnvironment attaches the AppEnvironment for the config named by --config.
func WithAppEnvironment(cCtx *cli.Context) {
	cCtx.Context = withAppEnvironmentFromLocation(cCtx.Context, cCtx.String("config"))
}

func withAppEnvironmentFromLocation(ctx context.Context, location string) context.Context {
	id := projectUUIDFromLocation(location)
	if id == "" {
		id = uuid.New().String()
	}
	return withAppEnvironment(ctx, NewAppEnvironment(runtime.GOOS, runtime.GOARCH, id))
}

func withAppEnvironment(ctx context.Context, env *AppEnvironment) context.Context {
	return context.WithValue(ctx, appEnvironmentContextKey{}, env)
}

func AppEnvironmentFromContext(ctx context.Context) (*AppEnvironment, bool) {
	env, ok := ctx.Value(appEnvironmentContextKey{}).(*AppEnvironment)
	return env, ok
}

func projectUUIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	cfg, err := ReadConfig(location)
	if err != nil {
		return ""
	}
	return cfg.Config.Project.ProjectUUID
}
