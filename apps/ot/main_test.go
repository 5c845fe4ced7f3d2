//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmark(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"ot", "--n", "16"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "co: 16 transfers")
	assert.Contains(t, out.String(), "np: 16 transfers")
}

func TestInvalidArguments(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, newApp(&out).Run([]string{"ot", "--n", "0"}))
	assert.Error(t, newApp(&out).Run([]string{"ot", "--ot", "xyz"}))
	assert.Empty(t, out.String())
}
