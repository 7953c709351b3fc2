package version

import (
	"fmt"

	"github.com/AetherQuanta/aethernet-cli/internal/version"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"

	"github.com/urfave/cli/v2"
)

// VersionCommand defines the "version" command
var VersionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print the version of aethernet",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		_, err := fmt.Fprintf(cCtx.App.Writer, "Version: %s\nCommit: %s\n", version.GetVersion(), version.GetCommit())
		return err
	},
}
