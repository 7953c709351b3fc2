package common

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrLiteralPrivateKey is returned when a private key is written into the config itself.
var ErrLiteralPrivateKey = errors.New("literal private key in config; move it to .env and reference it as ${VAR}, or run `aethernet config migrate`")

var (
	envRefRe      = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	hexKeyRe      = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)
	wholeEnvRefRe = regexp.MustCompile(`^\$\{[A-Za-z_][A-Za-z0-9_]*\}$`)
)

// IsEnvRef reports whether value is exactly one ${VAR} reference.
func IsEnvRef(value string) bool {
	return wholeEnvRefRe.MatchString(strings.TrimSpace(value))
}

// LooksLikePrivateKey reports whether value is a 32-byte hex string.
func LooksLikePrivateKey(value string) bool {
	return hexKeyRe.MatchString(strings.TrimSpace(value))
}

// IsLiteralRemoteURL reports whether raw is a plain endpoint outside this
// machine. Such URLs usually carry a provider API key.
func IsLiteralRemoteURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || envRefRe.MatchString(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}
	return true
}

// ExpandEnv replaces every ${VAR} in value. Unset or empty variables are an error.
func ExpandEnv(value string) (string, error) {
	var missing []string
	out := envRefRe.ReplaceAllStringFunc(value, func(ref string) string {
		name := envRefRe.FindStringSubmatch(ref)[1]
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			missing = append(missing, name)
			return ref
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable(s) not set: %s (define them in %s)", strings.Join(missing, ", "), EnvFile)
	}
	return out, nil
}

// CheckAccountEntry validates the shape of an account entry without resolving it.
func CheckAccountEntry(entry string) error {
	entry = strings.TrimSpace(entry)
	switch {
	case LooksLikePrivateKey(entry):
		return ErrLiteralPrivateKey
	case strings.HasPrefix(entry, KeystorePrefix):
		if strings.TrimPrefix(entry, KeystorePrefix) == "" {
			return fmt.Errorf("keystore entry has no path")
		}
		return nil
	case IsEnvRef(entry):
		return nil
	default:
		return fmt.Errorf("account must be ${VAR} or %s<path>", KeystorePrefix)
	}
}

// ResolveAccount turns an account entry into a signing key.
func ResolveAccount(entry string) (*ecdsa.PrivateKey, error) {
	if err := CheckAccountEntry(entry); err != nil {
		return nil, err
	}
	entry = strings.TrimSpace(entry)

	if strings.HasPrefix(entry, KeystorePrefix) {
		path, err := ExpandEnv(strings.TrimPrefix(entry, KeystorePrefix))
		if err != nil {
			return nil, err
		}
		return LoadKeystoreKey(path, os.Getenv(KeystorePasswordEnv))
	}

	hexKey, err := ExpandEnv(entry)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key in %s: %w", entry, err)
	}
	return key, nil
}

// LoadKeystoreKey decrypts a go-ethereum JSON keystore file.
func LoadKeystoreKey(path, password string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore %s: %w", path, err)
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore %s (password from %s): %w", path, KeystorePasswordEnv, err)
	}
	return key.PrivateKey, nil
}
