package keystore

import (
	"github.com/urfave/cli/v2"
)

// KeystoreCommand manages encrypted signing keys referenced as keystore:<path> accounts.
var KeystoreCommand = &cli.Command{
	Name:  "keystore",
	Usage: "Manage encrypted deployer keystores",
	Subcommands: []*cli.Command{
		CreateCommand,
		AddressCommand,
	},
}
