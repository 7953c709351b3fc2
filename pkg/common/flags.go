package common

import "github.com/urfave/cli/v2"

// GlobalFlags apply to every command.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to the project config",
		Value:   DefaultConfigPath(),
		EnvVars: []string{"AETHERNET_CONFIG"},
	},
}
