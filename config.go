package orderkit

import (
	"encoding/json"

	"github.com/autom8ter/orderkit/errors"
	"github.com/autom8ter/orderkit/kv"
	"github.com/autom8ter/orderkit/kv/registry"
	"github.com/autom8ter/orderkit/util"
)

// Config configures an Executor and the storage it reads documents from
type Config struct {
	// LogLevel is one of debug, info, warn, error (default: info)
	LogLevel string `json:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`
	// RecordMetrics enables execution metrics for statements created from this config
	RecordMetrics bool `json:"recordMetrics"`
	// ReturnMode is the default return mode of update statements (default: COUNT)
	ReturnMode ReturnMode `json:"returnMode" validate:"omitempty,oneof=COUNT BEFORE AFTER"`
	// Storage configures the key value provider backing KV record sources
	Storage StorageConfig `json:"storage"`
}

// StorageConfig selects a registered key value provider
type StorageConfig struct {
	// Provider is the name of a registered provider, ex: badger
	Provider string `json:"provider" validate:"required"`
	// Params are passed to the provider, ex: {"storage_path": "./tmp"} (an empty path is in-memory for badger)
	Params map[string]any `json:"params"`
}

// DefaultConfig returns an in-memory badger config
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		ReturnMode: ReturnCount,
		Storage: StorageConfig{
			Provider: "badger",
			Params:   map[string]any{},
		},
	}
}

// ConfigFromMap decodes a config from a map on top of the defaults and validates it
func ConfigFromMap(values map[string]any) (Config, error) {
	cfg := DefaultConfig()
	if err := util.Decode(values, &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.Validation, "failed to decode config")
	}
	mode, err := ParseReturnMode(string(cfg.ReturnMode))
	if err != nil {
		return Config{}, err
	}
	cfg.ReturnMode = mode
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig decodes a yaml or json config
func LoadConfig(content []byte) (Config, error) {
	jsonContent, err := util.YAMLToJSON(content)
	if err != nil {
		return Config{}, errors.Wrap(err, errors.Validation, "failed to parse config")
	}
	values := map[string]any{}
	if err := json.Unmarshal(jsonContent, &values); err != nil {
		return Config{}, errors.Wrap(err, errors.Validation, "failed to parse config")
	}
	return ConfigFromMap(values)
}

// Validate validates the config
func (c Config) Validate() error {
	return errors.Wrap(util.ValidateStruct(&c), errors.Validation, "invalid config")
}

// OpenStorage opens the configured key value provider. The provider's package must be imported,
// ex: _ "github.com/autom8ter/orderkit/kv/badger"
func (c Config) OpenStorage() (kv.DB, error) {
	return registry.Open(c.Storage.Provider, c.Storage.Params)
}

// NewLogger creates the configured logger
func (c Config) NewLogger() (Logger, error) {
	return NewLogger(c.LogLevel, map[string]any{})
}
