package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	embeds "github.com/AetherQuanta/aethernet-cli/config"
	"github.com/AetherQuanta/aethernet-cli/config/configs"
	configMigrations "github.com/AetherQuanta/aethernet-cli/config/configs/migrations"
	"github.com/AetherQuanta/aethernet-cli/pkg/common"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/AetherQuanta/aethernet-cli/pkg/migration"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const gitIgnoreFile = ".gitignore"

// MigrateCommand upgrades config/config.yaml and moves literal secrets into .env.
var MigrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Upgrades the config to the latest version and moves literal URLs and keys into .env",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		logger := common.LoggerFromContext(cCtx.Context)
		cfgPath := cCtx.String("config")

		doc, err := common.LoadYAML(cfgPath)
		if err != nil {
			return fmt.Errorf("load %s: %w", cfgPath, err)
		}

		migrated, err := migration.MigrateToLatest(logger, doc, configs.LatestVersion, configs.MigrationChain)
		switch {
		case errors.Is(err, migration.ErrAlreadyUpToDate):
			logger.Info("%s is already at version %s", cfgPath, configs.LatestVersion)
			migrated = doc
		case err != nil:
			return fmt.Errorf("%s: %w", cfgPath, err)
		}

		secrets := configMigrations.ExtractSecrets(migrated)
		if len(secrets) > 0 {
			// secrets land in .env before the config stops carrying them
			if err := mergeEnvFile(common.EnvFile, secrets, logger); err != nil {
				return err
			}
			if err := ensureGitIgnore(gitIgnoreFile, logger); err != nil {
				return err
			}
		}

		data, err := common.EncodeYAML(migrated)
		if err != nil {
			return err
		}
		if err := common.ValidateStrict(data); err != nil {
			logger.Warn("Migrated config does not validate yet: %v", err)
		}
		if err := os.WriteFile(cfgPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfgPath, err)
		}

		logger.Info("Config %s is at version %s", cfgPath, configs.LatestVersion)
		return nil
	},
}

// mergeEnvFile adds secrets to the env file at path. Values already present win.
func mergeEnvFile(path string, secrets map[string]string, logger iface.Logger) error {
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		if env, err = godotenv.Read(path); err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		existing, ok := env[name]
		switch {
		case !ok || existing == "":
			env[name] = secrets[name]
			logger.Info("Moved %s into %s", name, path)
		case existing != secrets[name] && secrets[name] != "":
			logger.Warn("%s already set in %s with a different value; keeping it", name, path)
		}
	}

	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

// ensureGitIgnore makes sure the env file is ignored by git.
func ensureGitIgnore(path string, logger iface.Logger) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("Creating %s", path)
		return os.WriteFile(path, []byte(embeds.GitIgnore), 0644)
	}
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == common.EnvFile {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}
	_, err = fmt.Fprintf(f, "%s%s\n", prefix, common.EnvFile)
	return err
}
