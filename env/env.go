//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements global environment for the MPC system.
package env

import (
	"crypto/rand"
	"io"

	"go.uber.org/zap"
)

// Config defines the global system configuration for the MPC system.
// It configures system operation for all MPC modules. Config must not
// be modified after being passed to any MPC module.  It is safe for
// concurrent use by multiple modules as they do not modify it.
type Config struct {
	Rand    io.Reader
	Logger  *zap.Logger
	Verbose bool
}

// GetRandom returns the source of entropy for garbling, OT, and other
// cryptography operations.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetLogger returns the logger for protocol events. If no logger is
// configured, the function returns a no-op logger.
func (config *Config) GetLogger() *zap.Logger {
	if config != nil && config.Logger != nil {
		return config.Logger
	}
	return zap.NewNop()
}
