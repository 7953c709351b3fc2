package hooks

import (
	"fmt"
	"os"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/telemetry"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const namespace = "AetherNet"

// ActionChain wraps command actions with middleware, first registered outermost.
type ActionChain struct {
	Processors []func(action cli.ActionFunc) cli.ActionFunc
}

func NewActionChain() *ActionChain {
	return &ActionChain{
		Processors: make([]func(action cli.ActionFunc) cli.ActionFunc, 0),
	}
}

func (ac *ActionChain) Use(processor func(action cli.ActionFunc) cli.ActionFunc) {
	ac.Processors = append(ac.Processors, processor)
}

func (ac *ActionChain) Wrap(action cli.ActionFunc) cli.ActionFunc {
	for i := len(ac.Processors) - 1; i >= 0; i-- {
		action = ac.Processors[i](action)
	}
	return action
}

// ApplyMiddleware wraps every action in commands and their subcommands.
func ApplyMiddleware(commands []*cli.Command, chain *ActionChain) {
	for _, cmd := range commands {
		if cmd.Action != nil {
			cmd.Action = chain.Wrap(cmd.Action)
		}
		if len(cmd.Subcommands) > 0 {
			ApplyMiddleware(cmd.Subcommands, chain)
		}
	}
}

// LoadEnvFile loads .env from the working directory when present. Variables
// already set in the environment win.
func LoadEnvFile(_ *cli.Context) error {
	if _, err := os.Stat(common.EnvFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(common.EnvFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", common.EnvFile, err)
	}
	return nil
}

// WithCommandMetricsContext starts collecting metrics for the invoked command.
func WithCommandMetricsContext(cCtx *cli.Context) error {
	metrics := telemetry.NewMetricsContext()
	cCtx.Context = telemetry.WithMetricsContext(cCtx.Context, metrics)

	if appEnv, ok := common.AppEnvironmentFromContext(cCtx.Context); ok {
		metrics.Properties["cli_version"] = appEnv.CLIVersion
		metrics.Properties["os"] = appEnv.OS
		metrics.Properties["arch"] = appEnv.Arch
		metrics.Properties["project_uuid"] = appEnv.ProjectUUID
	}

	for k, v := range collectFlagValues(cCtx) {
		metrics.Properties[k] = fmt.Sprintf("%v", v)
	}

	metrics.AddMetric("Count", 1)
	return nil
}

// WithMetricEmission runs action and then reports its outcome and duration.
func WithMetricEmission(action cli.ActionFunc) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		err := action(cCtx)

		if _, ok := telemetry.ClientFromContext(cCtx.Context); !ok {
			cCtx.Context = telemetry.ContextWithClient(cCtx.Context, setupTelemetry(cCtx))
		}
		emitTelemetryMetrics(cCtx, err)

		return err
	}
}

func setupTelemetry(cCtx *cli.Context) telemetry.Client {
	logger := common.LoggerFromContext(cCtx.Context)

	cfg, err := common.ReadConfig(cCtx.String("config"))
	if err != nil {
		logger.Debug("Telemetry disabled: %v", err)
		return telemetry.NewNoopClient()
	}
	if !cfg.Config.Project.TelemetryEnabled {
		return telemetry.NewNoopClient()
	}

	appEnv, ok := common.AppEnvironmentFromContext(cCtx.Context)
	if !ok {
		return telemetry.NewNoopClient()
	}

	client, err := telemetry.NewPostHogClient(appEnv, namespace, cfg.Config.Telemetry)
	if err != nil || client == nil {
		return telemetry.NewNoopClient()
	}
	return client
}

func emitTelemetryMetrics(cCtx *cli.Context, actionError error) {
	metrics, err := telemetry.MetricsFromContext(cCtx.Context)
	if err != nil {
		return
	}
	metrics.Properties["command"] = cCtx.Command.HelpName

	result := "Success"
	dimensions := map[string]string{}
	if actionError != nil {
		result = "Failure"
		dimensions["error"] = actionError.Error()
	}
	metrics.AddMetricWithDimensions(result, 1, dimensions)
	metrics.AddMetric("DurationMilliseconds", float64(metrics.Elapsed().Milliseconds()))

	client, ok := telemetry.ClientFromContext(cCtx.Context)
	if !ok {
		return
	}
	defer client.Close()

	logger := common.LoggerFromContext(cCtx.Context)
	for _, metric := range metrics.Metrics {
		for k, v := range metrics.Properties {
			metric.Dimensions[k] = v
		}
		if err := client.AddMetric(cCtx.Context, metric); err != nil {
			logger.Debug("failed to add metric %s: %v", metric.Name, err)
		}
	}
}

func collectFlagValues(cCtx *cli.Context) map[string]interface{} {
	flags := make(map[string]interface{})
	var all []cli.Flag
	if cCtx.App != nil {
		all = append(all, cCtx.App.Flags...)
	}
	if cCtx.Command != nil {
		all = append(all, cCtx.Command.Flags...)
	}
	for _, flag := range all {
		name := flag.Names()[0]
		if cCtx.IsSet(name) {
			flags[name] = cCtx.Value(name)
		}
	}
	return flags
}
