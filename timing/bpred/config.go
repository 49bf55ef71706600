package bpred

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid branch predictor config")

// Config holds the construction parameters of a GSelect predictor.
type Config struct {
	// HistoryBits is the nominal width of a global history register. It is
	// informational only: the register is bounded by TableSize-1 and the
	// index combiner reads at most 8 bits of it.
	HistoryBits uint32 `json:"history_bits"`

	// TableSize is the number of PHT entries. Must be a power of two and at
	// least 2. Default: 256.
	TableSize uint32 `json:"table_size"`

	// CounterBits is the width of each saturating counter, 1 to 8.
	// Default: 2.
	CounterBits uint8 `json:"counter_bits"`

	// AddressShift is how far branch addresses are shifted right before
	// indexing, dropping instruction alignment bits. Default: 2.
	AddressShift uint32 `json:"address_shift"`

	// NumThreads is the number of hardware threads. Default: 1.
	NumThreads int `json:"num_threads"`
}

// DefaultConfig returns the default predictor configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryBits:  8,
		TableSize:    256,
		CounterBits:  2,
		AddressShift: 2,
		NumThreads:   1,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}

// Validate checks the table and counter geometry.
func (c *Config) Validate() error {
	if c.TableSize < 2 {
		return fmt.Errorf("%w: table_size must be >= 2, got %d",
			ErrInvalidConfig, c.TableSize)
	}
	if bits.OnesCount32(c.TableSize) != 1 {
		return fmt.Errorf("%w: table_size must be a power of two, got %d",
			ErrInvalidConfig, c.TableSize)
	}
	if c.CounterBits == 0 || c.CounterBits > MaxCounterBits {
		return fmt.Errorf("%w: counter_bits must be in [1, %d], got %d",
			ErrInvalidConfig, MaxCounterBits, c.CounterBits)
	}
	if c.NumThreads <= 0 {
		return fmt.Errorf("%w: num_threads must be > 0, got %d",
			ErrInvalidConfig, c.NumThreads)
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// HistoryMask returns the mask that bounds both history registers and PHT
// indices.
func (c *Config) HistoryMask() uint32 {
	return c.TableSize - 1
}
