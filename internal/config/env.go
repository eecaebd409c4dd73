package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read for credentials and the time server
const (
	EnvUsername   = "LGN"
	EnvPassword   = "PSWD"
	EnvTimeServer = "NTP"
)

// DefaultEnvFile is loaded when present
const DefaultEnvFile = ".env"

// Credentials are the per-run secrets and NTP server taken from the
// environment. They are never written to the config file.
type Credentials struct {
	Username   string
	Password   string
	TimeServer string
}

// Complete reports whether both login and password are set
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// LoadEnv loads path into the process environment (without overriding
// variables already set) and returns the credentials. A missing file is not
// an error unless required is set.
func LoadEnv(path string, required bool) (Credentials, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return Credentials{}, fmt.Errorf("failed to load env file %s: %w", path, err)
			}
		}
	}

	return Credentials{
		Username:   strings.TrimSpace(os.Getenv(EnvUsername)),
		Password:   os.Getenv(EnvPassword),
		TimeServer: strings.TrimSpace(os.Getenv(EnvTimeServer)),
	}, nil
}
