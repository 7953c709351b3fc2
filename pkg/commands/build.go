package commands

import (
	"fmt"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/compiler"

	"github.com/urfave/cli/v2"
)

// BuildCommand defines the "build" command
var BuildCommand = &cli.Command{
	Name:  "build",
	Usage: "Compiles the Solidity sources into contract artifacts",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		cfg, err := loadProjectConfig(cCtx)
		if err != nil {
			return err
		}

		logger.Debug("Project Name: %s", cfg.Config.Project.Name)
		res, err := compiler.New(cfg.Config.Compiler, logger).Compile(cCtx.Context)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		if !res.Skipped {
			logger.Info("Build completed successfully")
		}
		return nil
	},
}
