package keystore

import (
	"fmt"
	"os"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"
)

// AddressCommand decrypts a keystore and prints the account address. The key itself is never printed.
var AddressCommand = &cli.Command{
	Name:  "address",
	Usage: "Print the address stored in a keystore file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "path",
			Usage:    "Path to the keystore JSON",
			Required: true,
		},
	}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		path := cCtx.String("path")

		key, err := common.LoadKeystoreKey(path, os.Getenv(common.KeystorePasswordEnv))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cCtx.App.Writer, crypto.PubkeyToAddress(key.PublicKey).Hex())
		return err
	},
}
