package common

// Project structure constants
const (
	// ConfigDir holds the project config
	ConfigDir = "config"

	// BaseConfig is the filename of the versioned project config
	BaseConfig = "config.yaml"

	// EnvFile holds secrets referenced from the config as ${VAR}
	EnvFile = ".env"

	// KeystorePasswordEnv holds the password for keystore:<path> accounts
	KeystorePasswordEnv = "AETHERNET_KEYSTORE_PASSWORD"

	// KeystorePrefix marks an account entry backed by an encrypted JSON keystore
	KeystorePrefix = "keystore:"

	// DefaultContractName is the contract deployed when none is configured
	DefaultContractName = "AetherNet"

	// DefaultSetter is the one-argument setter invoked after deployment
	DefaultSetter = "setPhiScore"

	// DefaultPhiScore is the literal passed to the setter
	DefaultPhiScore = "1000"

	// DefaultLogFile receives one line per successful deployment
	DefaultLogFile = "network_log.txt"

	// DefaultNetwork is used when the config names no default
	DefaultNetwork = "localhost"

	// DefaultSolc is the compiler binary looked up on PATH
	DefaultSolc = "solc"

	// DefaultSourcesDir holds the *.sol sources
	DefaultSourcesDir = "contracts"

	// DefaultArtifactsDir receives compiled artifacts
	DefaultArtifactsDir = "artifacts"

	// PhiScoreScale divides the setter literal when it is displayed and logged
	PhiScoreScale = 1000
)
