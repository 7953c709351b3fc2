package commands

import (
	"fmt"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/urfave/cli/v2"
)

// TelemetryCommand allows users to manage telemetry settings
var TelemetryCommand = &cli.Command{
	Name:  "telemetry",
	Usage: "Manage telemetry settings for this project",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "enable",
			Usage: "Enable telemetry collection",
		},
		&cli.BoolFlag{
			Name:  "disable",
			Usage: "Disable telemetry collection",
		},
		&cli.BoolFlag{
			Name:  "status",
			Usage: "Show current telemetry status",
		},
	}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)
		cfgPath := cCtx.String("config")

		enable := cCtx.Bool("enable")
		disable := cCtx.Bool("disable")
		status := cCtx.Bool("status")

		if (enable && disable) || (!enable && !disable && !status) {
			return fmt.Errorf("specify exactly one of --enable, --disable, or --status")
		}

		if status {
			return showTelemetryStatus(logger, cfgPath)
		}
		return setProjectTelemetry(logger, cfgPath, enable)
	},
}

func showTelemetryStatus(logger iface.Logger, cfgPath string) error {
	cfg, err := common.ReadConfig(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Config.Project.TelemetryEnabled {
		logger.Info("Telemetry: Enabled (project setting)")
	} else {
		logger.Info("Telemetry: Disabled (project setting)")
	}
	return nil
}

// setProjectTelemetry rewrites config.project.telemetry_enabled, keeping comments.
func setProjectTelemetry(logger iface.Logger, cfgPath string, enabled bool) error {
	doc, err := common.LoadYAML(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", cfgPath, err)
	}
	if _, err := common.WriteToPath(doc, []string{"config", "project", "telemetry_enabled"}, fmt.Sprintf("%t", enabled)); err != nil {
		return fmt.Errorf("failed to update telemetry setting: %w", err)
	}
	if err := common.WriteYAML(cfgPath, doc); err != nil {
		return err
	}

	if enabled {
		logger.Info("Telemetry enabled for this project")
	} else {
		logger.Info("Telemetry disabled for this project")
	}
	return nil
}
