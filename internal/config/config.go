// Package config resolves Trello credentials and the default card.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "trello-track"

	// CredentialsFile is the JSON credentials filename, looked up in the
	// home directory and then in the working directory.
	CredentialsFile = ".trello"

	// EnvKey, EnvToken and EnvCard override the file values.
	EnvKey   = "TRELLO_KEY"
	EnvToken = "TRELLO_TOKEN"
	EnvCard  = "TRELLO_CARD"

	// EnvDebug enables debug logging when set to a true value.
	EnvDebug = "TRELLO_DEBUG"

	// AppKeyURL is where users find their key and generate a token.
	AppKeyURL = "https://trello.com/app-key"
)

// ErrMissingCredentials is returned when key or token cannot be resolved.
var ErrMissingCredentials = errors.New("missing Trello `key` and `token`: provide them as JSON in ~/" +
	CredentialsFile + ", ./" + CredentialsFile + ", or as " + EnvKey + " and " + EnvToken +
	" environment variables; find your key and generate a token at " + AppKeyURL)

// Config holds resolved credentials and settings.
type Config struct {
	// Key and Token authenticate every API request.
	Key   string
	Token string

	// Card is the fallback card id or short link.
	Card string

	// Debug enables debug logging. Set from TRELLO_DEBUG or --debug.
	Debug bool

	// Quiet keeps error logs only. Set from --quiet.
	Quiet bool

	// Sources lists the credential files that were read, in merge order.
	Sources []string
}

// Load resolves configuration from the default locations.
// Missing credentials are not an error here; see Validate.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return LoadFrom(home, cwd)
}

// LoadFrom resolves configuration with explicit home and working directories.
// Later sources override earlier ones: homeDir/.trello, workDir/.trello,
// then TRELLO_KEY, TRELLO_TOKEN, TRELLO_CARD and TRELLO_DEBUG.
func LoadFrom(homeDir, workDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	cfg := &Config{}
	for _, dir := range []string{homeDir, workDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, CredentialsFile)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		cfg.Sources = append(cfg.Sources, path)
	}

	for key, env := range map[string]string{"key": EnvKey, "token": EnvToken, "card": EnvCard, "debug": EnvDebug} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg.Key = v.GetString("key")
	cfg.Token = v.GetString("token")
	cfg.Card = v.GetString("card")
	cfg.Debug = v.GetBool("debug")
	return cfg, nil
}

// HasCredentials reports whether both key and token are set.
func (c *Config) HasCredentials() bool {
	return c.Key != "" && c.Token != ""
}

// Validate returns ErrMissingCredentials unless key and token are both set.
func (c *Config) Validate() error {
	if !c.HasCredentials() {
		return ErrMissingCredentials
	}
	return nil
}
