package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the signer secret is prompted at runtime and kept in memory - use GetSignerSecret()
type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	NodeEndpoint      string `envconfig:"GAME_NODE_ENDPOINT" default:"ws://127.0.0.1:9944"`
	ContractAddress   string `envconfig:"GAME_CONTRACT_ADDRESS" default:"5DFeyd6tx1kLqUCKNX4ME9nq2eRBjCWu8NG3AQfkXpXBZ7FY"`
	MetadataFile      string `envconfig:"GAME_METADATA_FILE" default:"game-metadata.json"`
	AssetBaseURL      string `envconfig:"GAME_ASSET_BASE_URL"`
	SS58Prefix        uint16 `envconfig:"GAME_SS58_PREFIX" default:"42"`
	CallWeightCeiling uint64 `envconfig:"GAME_CALL_WEIGHT_CEILING" default:"1280000000000"`
	AddressFormat     string `envconfig:"GAME_ADDRESS_FORMAT" default:"account-id"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment    bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

// Address formats accepted for the contract destination of a signed call
const (
	AddressFormatAccountID    = "account-id"
	AddressFormatMultiAddress = "multi-address"
)

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads and validates configuration without touching the global instance.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	switch c.AddressFormat {
	case AddressFormatAccountID, AddressFormatMultiAddress:
	default:
		return fmt.Errorf("GAME_ADDRESS_FORMAT must be %s or %s", AddressFormatAccountID, AddressFormatMultiAddress)
	}
	if c.CallWeightCeiling == 0 {
		return errors.New("GAME_CALL_WEIGHT_CEILING must be positive")
	}
	if c.MetadataFile == "" && c.AssetBaseURL == "" {
		return errors.New("one of GAME_METADATA_FILE or GAME_ASSET_BASE_URL is required")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

var signerSecret string

// PromptForSecret prompts the user for a signer secret URI in the terminal.
// The secret is read without echoing and kept in memory only.
func PromptForSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal: run interactively to enter the secret")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	defer clear(raw)
	if len(raw) == 0 {
		return "", errors.New("secret cannot be empty")
	}
	return string(raw), nil
}

// PromptForSignerSecret prompts for the default signer secret and stores it in memory.
// Call this at startup before the server begins handling requests.
func PromptForSignerSecret() error {
	secret, err := PromptForSecret("Enter signer secret (e.g. //Alice): ")
	if err != nil {
		return err
	}
	signerSecret = secret
	return nil
}

// GetSignerSecret returns the secret stored by PromptForSignerSecret.
func GetSignerSecret() (string, error) {
	if signerSecret == "" {
		return "", errors.New("signer secret not set: call PromptForSignerSecret at startup")
	}
	return signerSecret, nil
}
