// Package envtest runs end-to-end checks against a live Celo environment:
// configuration from env files, a small sequential suite runner, the stable
// token transfer test and the cleanup that returns funds to the root account.
package envtest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvName is used when CELOENV is not set.
const DefaultEnvName = "local"

// DefaultStableTokens is tested when STABLETOKENS is empty.
var DefaultStableTokens = []string{"cUSD"}

// stableTokenRegistryNames maps token symbols to registry contract names.
var stableTokenRegistryNames = map[string]string{
	"cUSD":  "StableToken",
	"cEUR":  "StableTokenEUR",
	"cREAL": "StableTokenBRL",
}

// RegistryName returns the registry contract name for a stable token symbol.
func RegistryName(symbol string) (string, bool) {
	name, ok := stableTokenRegistryNames[symbol]
	return name, ok
}

// ErrInvalidToken is returned for symbols missing from the token registry.
var ErrInvalidToken = errors.New("invalid token")

// Config is the harness configuration read from the environment.
type Config struct {
	EnvName                       string
	Mnemonic                      string   `env:"MNEMONIC"`
	Provider                      string   `env:"CELO_PROVIDER" envDefault:"http://localhost:8545"`
	ReserveSpenderMultiSigAddress string   `env:"RESERVE_SPENDER_MULTISIG_ADDRESS"`
	StableTokens                  []string `env:"STABLETOKENS" envSeparator:","`
}

// LoadEnvFile loads dir/.env and then dir/.env.<CELOENV>, letting the
// environment specific file override the shared one. Variables already set
// in the process environment are never replaced. Missing files are
// skipped. It returns the environment name.
func LoadEnvFile(dir string) (string, error) {
	vars, err := readEnvFile(filepath.Join(dir, ".env"))
	if err != nil {
		return "", err
	}

	name := os.Getenv("CELOENV")
	if name == "" {
		name = vars["CELOENV"]
	}
	if name == "" {
		name = DefaultEnvName
	}

	specific, err := readEnvFile(filepath.Join(dir, ".env."+name))
	if err != nil {
		return "", err
	}
	for k, v := range specific {
		vars[k] = v
	}

	for k, v := range vars {
		if _, set := os.LookupEnv(k); set {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return "", fmt.Errorf("set %s: %w", k, err)
		}
	}

	return name, nil
}

func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// LoadConfig parses the process environment. It fails if MNEMONIC is
// missing or if STABLETOKENS names an unknown token. The mnemonic is only
// carried for the signer; its contents are not checked.
func LoadConfig(envName string) (Config, error) {
	cfg := Config{EnvName: envName}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Mnemonic = strings.TrimSpace(cfg.Mnemonic)
	if cfg.Mnemonic == "" {
		return Config{}, fmt.Errorf("no MNEMONIC was set, env name was parsed as %s", envName)
	}

	tokens, err := parseStableTokens(cfg.StableTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.StableTokens = tokens

	return cfg, nil
}

func parseStableTokens(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return append([]string(nil), DefaultStableTokens...), nil
	}

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if _, ok := RegistryName(t); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidToken, t)
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}
