// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/tx"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Network != "mainnet" && cfg.Network != "testnet" && cfg.Network != "regtest" {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if err := coin.ValidateDenom(cfg.NativeDenom); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNativeDenom, err)
	}

	if cfg.PoolKey == "" {
		return ErrEmptyPoolKey
	}

	if cfg.PoolAddress != "" {
		if err := tx.ValidateAddress(cfg.PoolAddress); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPoolAddress, err)
		}
	}

	if cfg.DNSUpstream != "" {
		if _, _, err := net.SplitHostPort(cfg.DNSUpstream); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDNSUpstream, err)
		}
	}

	return nil
}
