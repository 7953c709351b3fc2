package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"gopkg.in/yaml.v3"

	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:  "config",
	Usage: "Views or edits the project configuration (config/config.yaml)",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "list",
			Usage: "Display all current project configuration settings",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Set a value in the project configuration (--set deploy.phi_score=1500)",
		},
	}, common.GlobalFlags...),
	Subcommands: []*cli.Command{
		MigrateCommand,
	},
	Action: func(cCtx *cli.Context) error {
		if items := cCtx.StringSlice("set"); len(items) > 0 {
			// positional args are treated as more key=value pairs
			return setValues(cCtx, append(items, cCtx.Args().Slice()...))
		}
		return listConfig(cCtx)
	},
}

// listConfig is the default action.
func listConfig(cCtx *cli.Context) error {
	logger := common.LoggerFromContext(cCtx.Context)
	cfgPath := cCtx.String("config")

	cfg, err := common.ReadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger.Info("Displaying current configuration...")
	logger.Info("Project: %s", cfg.Config.Project.Name)
	logger.Info("Version: %s", cfg.Version)
	logger.Info("Telemetry enabled: %t", cfg.Config.Project.TelemetryEnabled)

	if err := common.ListYaml(cCtx.App.Writer, cfgPath); err != nil {
		return fmt.Errorf("failed to list config: %w", err)
	}
	return nil
}

// setValues writes each key=value under the config block. The file is only
// rewritten when the result still validates.
func setValues(cCtx *cli.Context, items []string) error {
	logger := common.LoggerFromContext(cCtx.Context)
	cfgPath := cCtx.String("config")

	original, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("read config YAML: %w", err)
	}
	rootDoc, err := common.LoadYAML(cfgPath)
	if err != nil {
		return fmt.Errorf("read config YAML: %w", err)
	}
	if len(rootDoc.Content) == 0 {
		return fmt.Errorf("%s is empty", cfgPath)
	}
	root := rootDoc.Content[0]
	configNode := common.GetChildByKey(root, "config")
	if configNode == nil {
		configNode = &yaml.Node{Kind: yaml.MappingNode}
		common.SetMappingValue(root, "config", configNode)
	}

	for _, item := range items {
		idx := strings.Index(item, "=")
		if idx <= 0 {
			return fmt.Errorf("invalid --set syntax %q (want key=val)", item)
		}
		pathStr, val := item[:idx], item[idx+1:]

		if _, err := common.WriteToPath(configNode, strings.Split(pathStr, "."), val); err != nil {
			return fmt.Errorf("setting value %s failed: %w", pathStr, err)
		}
	}

	updated, err := common.EncodeYAML(rootDoc)
	if err != nil {
		return err
	}
	if err := common.ValidateStrict(updated); err != nil {
		return fmt.Errorf("config not written: %w", err)
	}

	changes, err := diffConfigs(original, updated)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, updated, 0644); err != nil {
		return fmt.Errorf("write config YAML: %w", err)
	}

	logConfigChanges(changes, logger)
	sendConfigChangeTelemetry(cCtx.Context, changes, logger)
	return nil
}
