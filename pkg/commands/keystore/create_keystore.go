package keystore

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"

	ethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var CreateCommand = &cli.Command{
	Name:  "create",
	Usage: "Encrypts a private key into a keystore JSON file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "key-env",
			Usage: "Environment variable (or .env entry) holding the hex private key; a new key is generated when empty",
		},
		&cli.StringFlag{
			Name:     "path",
			Usage:    "Full path to save keystore file, including filename (e.g., ./keys/deployer.json)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "light",
			Usage: "Use light scrypt parameters (faster, weaker; for local networks)",
		},
	}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)

		password, ok := os.LookupEnv(common.KeystorePasswordEnv)
		if !ok {
			return fmt.Errorf("%s must be set to encrypt the keystore", common.KeystorePasswordEnv)
		}

		key, err := sourceKey(cCtx.String("key-env"))
		if err != nil {
			return err
		}

		scryptN, scryptP := ethkeystore.StandardScryptN, ethkeystore.StandardScryptP
		if cCtx.Bool("light") {
			scryptN, scryptP = ethkeystore.LightScryptN, ethkeystore.LightScryptP
		}
		return CreateKeystore(logger, key, cCtx.String("path"), password, scryptN, scryptP)
	},
}

func sourceKey(envName string) (*ecdsa.PrivateKey, error) {
	if envName == "" {
		return crypto.GenerateKey()
	}
	hexKey, err := common.ExpandEnv("${" + envName + "}")
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key in %s: %w", envName, err)
	}
	return key, nil
}

// CreateKeystore writes key to path as a go-ethereum V3 keystore and checks it decrypts.
func CreateKeystore(logger iface.Logger, key *ecdsa.PrivateKey, path, password string, scryptN, scryptP int) error {
	if filepath.Ext(path) != ".json" {
		return errors.New("invalid path: must include full file name ending in .json")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	logger.Debug("Output Path: %s", path)

	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("failed to generate keystore id: %w", err)
	}
	data, err := ethkeystore.EncryptKey(&ethkeystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}, password, scryptN, scryptP)
	if err != nil {
		return fmt.Errorf("failed to create keystore: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}

	reloaded, err := common.LoadKeystoreKey(path, password)
	if err != nil {
		return fmt.Errorf("failed to reload keystore: %w", err)
	}

	logger.Info("Keystore generated successfully")
	logger.Info("Address: %s", crypto.PubkeyToAddress(reloaded.PublicKey).Hex())
	logger.Info("Reference it from config as: %s%s", common.KeystorePrefix, path)
	return nil
}
