//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/markkurossi/gcmpc/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRG(t *testing.T) {
	seed := ot.Label{D0: 1, D1: 2}

	a := make([]byte, 1000)
	b := make([]byte, 1000)

	_, err := io.ReadFull(NewPRG(seed), a)
	require.NoError(t, err)

	prg := NewPRG(seed)
	_, err = io.ReadFull(prg, b[:10])
	require.NoError(t, err)
	_, err = io.ReadFull(prg, b[10:])
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = io.ReadFull(NewPRG(ot.Label{D0: 1, D1: 3}), b)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestConfigDefaults(t *testing.T) {
	var cfg *Config
	assert.Equal(t, rand.Reader, cfg.GetRandom())
	assert.NotNil(t, cfg.GetLogger())

	prg := NewPRG(ot.Label{})
	cfg = &Config{
		Rand: prg,
	}
	assert.Equal(t, io.Reader(prg), cfg.GetRandom())
}
