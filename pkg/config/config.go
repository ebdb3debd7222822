// Package config provides YAML-based configuration loading with environment
// variable expansion and live reload.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after decoding.
type Validator interface {
	Validate() error
}

// Decode expands environment variables in data, unmarshals it into target
// and runs target's Validate method when it has one.
func Decode[T any](data []byte, target *T) error {
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Load loads configuration from a YAML file.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := Decode(data, target); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

// LoadOptional behaves like Load but treats a missing file as empty input,
// so target keeps its defaults (and is still validated). It reports whether
// the file existed.
func LoadOptional[T any](filename string, target *T) (bool, error) {
	err := Load(filename, target)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return false, Decode(nil, target)
}
