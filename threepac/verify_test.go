//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"crypto/rand"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/fancy"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type verifyTest struct {
	s1 sender
	s2 sender
	v  verifier
	g1 *channel.Channel
	g2 *channel.Channel
}

func newKey(t *testing.T, f channel.UniversalHashFunc) channel.UniversalHash {
	key := make([]byte, f.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	h, err := f.New(key)
	require.NoError(t, err)
	return h
}

func newHashTest(t *testing.T, f channel.UniversalHashFunc,
	every int) *verifyTest {

	a1, b1 := channel.Pipe()
	a2, b2 := channel.Pipe()

	key1 := make([]byte, f.KeySize)
	key2 := make([]byte, f.KeySize)
	_, err := rand.Read(key1)
	require.NoError(t, err)
	_, err = rand.Read(key2)
	require.NoError(t, err)

	newHash := func(key []byte) channel.UniversalHash {
		h, err := f.New(key)
		require.NoError(t, err)
		return h
	}

	g1 := channel.New(a1)
	g2 := channel.New(a2)

	return &verifyTest{
		s1: newHashSender(g1, newHash(key1), every, IDGarbler1),
		s2: newHashSender(g2, newHash(key2), every, IDGarbler2),
		v: NewVerifyChannel(channel.New(b1), channel.New(b2),
			newHash(key2), newHash(key1), every),
		g1: g1,
		g2: g2,
	}
}

func newEqualityTest() *verifyTest {
	a1, b1 := channel.Pipe()
	a2, b2 := channel.Pipe()

	g1 := channel.New(a1)
	g2 := channel.New(a2)

	return &verifyTest{
		s1: &equalitySender{ch: g1},
		s2: &equalitySender{ch: g2},
		v:  NewEqualityChannel(channel.New(b1), channel.New(b2)),
		g1: g1,
		g2: g2,
	}
}

// send writes the data to the sender in uneven chunks.
func send(t *testing.T, s sender, data []byte) {
	for i := 1; len(data) > 0; i++ {
		n := min(i*i, len(data))
		written, err := s.Write(data[:n])
		require.NoError(t, err)
		require.Equal(t, n, written)
		data = data[n:]
	}
	require.NoError(t, s.SendHash())
}

func testVerifier(t *testing.T, name string, newTest func() *verifyTest) {
	data := make([]byte, 1000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	vt := newTest()

	for round := 0; round < 3; round++ {
		send(t, vt.s1, data)
		send(t, vt.s2, data)

		buf := make([]byte, len(data))
		_, err = io.ReadFull(vt.v, buf)
		require.NoError(t, err, name)
		assert.Equal(t, data, buf, name)
		require.NoError(t, vt.v.CheckHashes(), name)
	}

	// Writes go to both garblers.
	_, err = vt.v.Write(data[:16])
	require.NoError(t, err)
	require.NoError(t, vt.v.Flush())
	for _, g := range []*channel.Channel{vt.g1, vt.g2} {
		buf, err := g.ReadBytes(16)
		require.NoError(t, err)
		assert.Equal(t, data[:16], buf)
	}

	// Every byte is either sent or hashed by Garbler².
	for _, idx := range []int{0, 1, 99, 512, 999} {
		vt := newTest()
		modified := append([]byte(nil), data...)
		modified[idx] ^= 1

		send(t, vt.s1, data)
		send(t, vt.s2, modified)

		buf := make([]byte, len(data))
		_, err := io.ReadFull(vt.v, buf)
		if err == nil {
			err = vt.v.CheckHashes()
		}
		require.Error(t, err, "%s: index %d", name, idx)
		assert.True(t, errors.Is(err, ErrGarblerMismatch), "%s: %v", name, err)
	}
}

func TestVerifyChannel(t *testing.T) {
	for _, f := range []channel.UniversalHashFunc{
		channel.Poly1305Hash, channel.Blake3Hash,
	} {
		f := f
		for _, every := range []int{1, 7, 64, 4096} {
			every := every
			testVerifier(t, f.Name, func() *verifyTest {
				return newHashTest(t, f, every)
			})
		}
	}
}

func TestEqualityChannel(t *testing.T) {
	testVerifier(t, "equality", newEqualityTest)
}

func TestHashSenderAlternates(t *testing.T) {
	a, b := channel.Pipe()
	s := newHashSender(channel.New(a), newKey(t, channel.Poly1305Hash), 4,
		IDGarbler2)

	data := []byte("0123456789abcdefghij")
	n, err := s.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)

	// Garbler² hashes the first chunk and sends the second.
	buf, err := channel.New(b).ReadBytes(8)
	require.NoError(t, err)
	assert.Equal(t, []byte("4567cdef"), buf)
}

func TestTamperedOutputRows(t *testing.T) {
	// Offsets of the output row of the value 1 in Garbler¹'s stream
	// for Garbler¹'s input 1 plus Garbler²'s input 0.
	tests := []struct {
		name   string
		cfg    *Config
		offset int
	}{
		{"hash", DefaultConfig(), 160},
		{"equality", testConfigs["equality"], 96},
	}
	for _, test := range tests {
		test := test
		n := newNetwork(func(s channel.Stream) channel.Stream {
			return &tamper{
				Stream: s,
				offset: test.offset,
			}
		})
		p := newParties(t, [3]*env.Config{}, test.cfg, n)

		sum := func(f party, self PartyID, input uint16) ([]uint16, error) {
			var in [2]garble.Wire
			for id := IDGarbler1; id <= IDGarbler2; id++ {
				var err error
				if id == self {
					in[id], err = fancy.Encode[garble.Wire, PartyID](f, input, 2)
				} else {
					in[id], err = fancy.Receive[garble.Wire, PartyID](f, id, 2)
				}
				if err != nil {
					return nil, err
				}
			}
			x, err := f.Add(in[0], in[1])
			if err != nil {
				return nil, err
			}
			return fancy.RevealMany[garble.Wire](f, []garble.Wire{x})
		}

		var eg errgroup.Group
		var gerrs [2]error
		eg.Go(func() error {
			_, gerrs[0] = sum(p.g1, IDGarbler1, 1)
			return nil
		})
		eg.Go(func() error {
			_, gerrs[1] = sum(p.g2, IDGarbler2, 0)
			return nil
		})
		_, err := sum(p.e, IDEvaluator, 0)
		require.Error(t, err, test.name)
		assert.True(t, errors.Is(err, ErrGarblerMismatch),
			"%s: %v", test.name, err)
		assert.False(t, errors.Is(err, garble.ErrDecodingFailed),
			"%s: %v", test.name, err)

		// The aborted evaluator releases the garblers.
		n.closeEvaluator()
		require.NoError(t, eg.Wait())
		for i, gerr := range gerrs {
			assert.Error(t, gerr, "%s: garbler %d", test.name, i)
		}
	}
}
