// Package state persists the engine's single configuration record.
package state

import (
	"encoding/binary"
	"fmt"

	"github.com/bitfsorg/fairburn-go/feesplit"
)

const (
	recordVersion = 1
	recordSize    = 1 + 8
)

// Config is the persisted engine configuration.
type Config struct {
	FeeRate feesplit.Rate
}

// Store loads and saves the configuration record.
type Store interface {
	// LoadConfig returns the stored config, or ErrConfigNotFound.
	LoadConfig() (*Config, error)
	// SaveConfig replaces the stored config.
	SaveConfig(cfg *Config) error
}

// Serialize encodes cfg as version(1) || fee_bps(8, big-endian).
func Serialize(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", ErrNilParam)
	}
	buf := make([]byte, recordSize)
	buf[0] = recordVersion
	binary.BigEndian.PutUint64(buf[1:], cfg.FeeRate.BasisPoints())
	return buf, nil
}

// Deserialize decodes a record written by Serialize.
func Deserialize(data []byte) (*Config, error) {
	if len(data) != recordSize {
		return nil, fmt.Errorf("%w: record is %d bytes, want %d", ErrInvalidConfigData, len(data), recordSize)
	}
	if data[0] != recordVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidConfigData, data[0])
	}
	bps := binary.BigEndian.Uint64(data[1:])
	return &Config{FeeRate: feesplit.RateFromBasisPoints(bps)}, nil
}
