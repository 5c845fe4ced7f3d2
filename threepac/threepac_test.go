//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/fancy"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/gcmpc/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var testConfigs = map[string]*Config{
	"hash": DefaultConfig(),
	"hash-small": {
		AlternateEvery:   37,
		Verification:     AlternatingHash,
		CheckCommitments: true,
		Hash:             channel.Blake3Hash,
	},
	"equality": {
		Verification:     Equality,
		CheckCommitments: true,
	},
}

type network struct {
	evEnds [2]*channel.PipeEnd
	g1Peer *channel.Channel
	g2Peer *channel.Channel
	g1Ev   *channel.Channel
	g2Ev   *channel.Channel
	p1     *channel.Channel
	p2     *channel.Channel
}

func newNetwork(wrapP1 func(s channel.Stream) channel.Stream) *network {
	g1g2, g2g1 := channel.Pipe()
	g1e, eg1 := channel.Pipe()
	g2e, eg2 := channel.Pipe()

	var p1 channel.Stream = eg1
	if wrapP1 != nil {
		p1 = wrapP1(p1)
	}
	return &network{
		evEnds: [2]*channel.PipeEnd{eg1, eg2},
		g1Peer: channel.New(g1g2),
		g2Peer: channel.New(g2g1),
		g1Ev:   channel.New(g1e),
		g2Ev:   channel.New(g2e),
		p1:     channel.New(p1),
		p2:     channel.New(eg2),
	}
}

// closeEvaluator closes the evaluator's garbler connections.
func (n *network) closeEvaluator() {
	for _, end := range n.evEnds {
		end.Close()
	}
}

type parties struct {
	g1 *Garbler
	g2 *Garbler
	e  *Evaluator
}

func newParties(t *testing.T, cfgs [3]*env.Config, tcfg *Config,
	n *network) *parties {

	var eg errgroup.Group
	p := new(parties)

	eg.Go(func() error {
		var err error
		p.g1, err = NewGarbler(cfgs[IDGarbler1], tcfg, IDGarbler1,
			n.g1Peer, n.g1Ev)
		return err
	})
	eg.Go(func() error {
		var err error
		p.g2, err = NewGarbler(cfgs[IDGarbler2], tcfg, IDGarbler2,
			n.g2Peer, n.g2Ev)
		return err
	})
	var err error
	p.e, err = NewEvaluator(cfgs[IDEvaluator], tcfg, n.p1, n.p2)
	require.NoError(t, err)
	require.NoError(t, eg.Wait())
	return p
}

type party interface {
	fancy.Reveal[garble.Wire]
	fancy.Input[garble.Wire, PartyID]
}

// inputs brings the parties' inputs into the computation in the order
// Garbler¹, Garbler², Evaluator.
func inputs(f party, self PartyID, input, q uint16) ([3]garble.Wire, error) {
	var result [3]garble.Wire
	for id := IDGarbler1; id <= IDEvaluator; id++ {
		var err error
		if id == self {
			result[id], err = fancy.Encode[garble.Wire, PartyID](f, input, q)
		} else {
			result[id], err = fancy.Receive[garble.Wire, PartyID](f, id, q)
		}
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// sumProduct reveals a + b + c and (a + b)·c.
func sumProduct(f party, self PartyID, input, q uint16) ([]uint16, error) {
	in, err := inputs(f, self, input, q)
	if err != nil {
		return nil, err
	}
	s, err := f.Add(in[0], in[1])
	if err != nil {
		return nil, err
	}
	p, err := f.Mul(s, in[2])
	if err != nil {
		return nil, err
	}
	s, err = f.Add(s, in[2])
	if err != nil {
		return nil, err
	}
	return fancy.RevealMany[garble.Wire](f, []garble.Wire{s, p})
}

func run(t *testing.T, p *parties, values [3]uint16, q uint16,
	fn func(f party, self PartyID, input, q uint16) ([]uint16, error)) (
	[3][]uint16, [3]error) {

	var results [3][]uint16
	var errs [3]error
	var eg errgroup.Group

	eg.Go(func() error {
		results[0], errs[0] = fn(p.g1, IDGarbler1, values[0], q)
		return nil
	})
	eg.Go(func() error {
		results[1], errs[1] = fn(p.g2, IDGarbler2, values[1], q)
		return nil
	})
	results[2], errs[2] = fn(p.e, IDEvaluator, values[2], q)
	require.NoError(t, eg.Wait())
	return results, errs
}

func TestAddition(t *testing.T) {
	const q = 3
	for name, tcfg := range testConfigs {
		for a := uint16(0); a < q; a++ {
			for b := uint16(0); b < q; b++ {
				for c := uint16(0); c < q; c++ {
					p := newParties(t, [3]*env.Config{}, tcfg, newNetwork(nil))
					results, errs := run(t, p, [3]uint16{a, b, c}, q, sumProduct)

					expected := []uint16{(a + b + c) % q, (a + b) * c % q}
					for i := range results {
						require.NoError(t, errs[i], name)
						assert.Equal(t, expected, results[i],
							"%s: %s: a=%d b=%d c=%d", name, PartyID(i), a, b, c)
					}
				}
			}
		}
	}
}

func TestModuli(t *testing.T) {
	for _, q := range []uint16{2, 5, 16, 257} {
		values := [3]uint16{1, q - 1, q / 2}
		p := newParties(t, [3]*env.Config{}, nil, newNetwork(nil))
		results, errs := run(t, p, values, q, sumProduct)

		sum := (uint32(values[0]) + uint32(values[1]) + uint32(values[2])) %
			uint32(q)
		prod := (uint32(values[0]) + uint32(values[1])) % uint32(q) *
			uint32(values[2]) % uint32(q)
		for i := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, []uint16{uint16(sum), uint16(prod)}, results[i],
				"q=%d", q)
		}
	}
}

func TestInvalidResult(t *testing.T) {
	for name, tcfg := range testConfigs {
		p := newParties(t, [3]*env.Config{}, tcfg, newNetwork(nil))

		_, errs := run(t, p, [3]uint16{1, 0, 1}, 2,
			func(f party, self PartyID, input, q uint16) ([]uint16, error) {
				in, err := inputs(f, self, input, q)
				if err != nil {
					return nil, err
				}
				x, err := f.Add(in[0], in[2])
				if err != nil {
					return nil, err
				}
				if self != IDEvaluator {
					return fancy.RevealMany[garble.Wire](f, []garble.Wire{x})
				}
				// The evaluator decodes the output but sends a label
				// that is not a label of the output wire.
				e := f.(*Evaluator)
				if _, _, err := e.Output(x); err != nil {
					return nil, err
				}
				bogus, err := ot.NewLabel(rand.Reader)
				if err != nil {
					return nil, err
				}
				if err := e.Channel().WriteBlock(bogus); err != nil {
					return nil, err
				}
				return nil, e.Channel().Flush()
			})

		require.NoError(t, errs[IDEvaluator], name)
		for _, id := range []PartyID{IDGarbler1, IDGarbler2} {
			require.Error(t, errs[id], name)
			assert.True(t, errors.Is(errs[id], ErrInvalidResult),
				"%s: %s: %v", name, id, errs[id])
		}
	}
}

// tamper flips a bit of the byte at offset in the read stream.
type tamper struct {
	channel.Stream
	offset int
	pos    int
}

func (t *tamper) Read(data []byte) (int, error) {
	n, err := t.Stream.Read(data)
	for i := 0; i < n; i++ {
		if t.pos+i == t.offset {
			data[i] ^= 0x80
		}
	}
	t.pos += n
	return n, err
}

func TestInvalidCommitment(t *testing.T) {
	for name, tcfg := range testConfigs {
		for _, check := range []bool{true, false} {
			cfg := *tcfg
			cfg.CheckCommitments = check

			// The first bytes after the hash key are Garbler¹'s input
			// label.
			var offset int
			if cfg.Verification == AlternatingHash {
				offset = cfg.Hash.KeySize
			}
			n := newNetwork(func(s channel.Stream) channel.Stream {
				return &tamper{
					Stream: s,
					offset: offset,
				}
			})
			p := newParties(t, [3]*env.Config{}, &cfg, n)

			var eg errgroup.Group
			eg.Go(func() error {
				_, err := p.g1.EncodeMany([]uint16{1}, []uint16{2})
				return err
			})
			eg.Go(func() error {
				_, err := p.g2.ReceiveMany(IDGarbler1, []uint16{2})
				return err
			})
			_, err := p.e.ReceiveMany(IDGarbler1, []uint16{2})
			require.NoError(t, eg.Wait())

			if check {
				require.Error(t, err, name)
				assert.True(t, errors.Is(err, ErrInvalidCommitment),
					"%s: %v", name, err)
				assert.True(t, errors.Is(err, garble.ErrEvaluator))
			} else {
				assert.NoError(t, err, name)
			}
		}
	}
}

func TestGarblerMismatch(t *testing.T) {
	for name, tcfg := range testConfigs {
		p := newParties(t, [3]*env.Config{}, tcfg, newNetwork(nil))

		// Garbler² commits to different labels than Garbler¹.
		other, err := ot.NewLabel(rand.Reader)
		require.NoError(t, err)
		p.g2.Garbler = garble.NewGarbler(p.g2.Channel(), env.NewPRG(other))

		var eg errgroup.Group
		eg.Go(func() error {
			_, err := p.g1.EncodeMany([]uint16{1}, []uint16{2})
			return err
		})
		eg.Go(func() error {
			_, err := p.g2.ReceiveMany(IDGarbler1, []uint16{2})
			return err
		})
		_, err = p.e.ReceiveMany(IDGarbler1, []uint16{2})
		require.NoError(t, eg.Wait())

		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrGarblerMismatch), "%s: %v", name, err)
	}
}

func TestDeterminism(t *testing.T) {
	newConfigs := func() [3]*env.Config {
		var result [3]*env.Config
		for i := range result {
			result[i] = &env.Config{
				Rand: env.NewPRG(ot.Label{D0: uint64(i) + 1}),
			}
		}
		return result
	}

	var transcripts [2][32]byte
	for round := range transcripts {
		var h *channel.HashChannel
		n := newNetwork(func(s channel.Stream) channel.Stream {
			h = channel.NewHashChannel(s)
			return h
		})
		p := newParties(t, newConfigs(), nil, n)
		results, errs := run(t, p, [3]uint16{3, 4, 2}, 5, sumProduct)
		for i := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, []uint16{4, 4}, results[i])
		}
		transcripts[round] = h.Finish()
	}
	assert.Equal(t, transcripts[0], transcripts[1])
}

// runCircuit evaluates the circuit with the garblers' inputs and
// returns the results of Garbler¹, Garbler², and the evaluator.
func runCircuit(t *testing.T, name string, tcfg *Config,
	circ *circuit.Circuit, in1, in2 *big.Int) [3][]*big.Int {

	n := newNetwork(nil)
	var eg errgroup.Group
	var results [3][]*big.Int

	eg.Go(func() error {
		var err error
		results[IDGarbler1], err = RunGarbler(nil, tcfg, IDGarbler1,
			n.g1Peer, n.g1Ev, circ, in1)
		return err
	})
	eg.Go(func() error {
		var err error
		results[IDGarbler2], err = RunGarbler(nil, tcfg, IDGarbler2,
			n.g2Peer, n.g2Ev, circ, in2)
		return err
	})
	var err error
	results[IDEvaluator], err = RunEvaluator(nil, tcfg, n.p1, n.p2, circ, nil)
	require.NoError(t, err, name)
	require.NoError(t, eg.Wait(), name)

	for _, r := range results {
		require.Len(t, r, 1, name)
	}
	return results
}

func TestSHA256(t *testing.T) {
	circ := circuit.NewSHA256Compression()

	msg := []byte("The quick brown fox jumps over the lazy dog")
	padded, err := circuit.PadBlock(msg)
	require.NoError(t, err)
	state := circuit.PackWords(circuit.SHA256IV)
	block := circuit.PackWords(circuit.BlockWords(padded))
	expected := sha256.Sum256(msg)

	for name, tcfg := range testConfigs {
		for _, r := range runCircuit(t, name, tcfg, circ, state, block) {
			assert.Equal(t, expected[:], circuit.SHA256Digest(r[0]), name)
		}
	}
}

func TestSHA1(t *testing.T) {
	circ := circuit.NewSHA1Compression()

	msg := []byte("abc")
	padded, err := circuit.PadBlock(msg)
	require.NoError(t, err)
	state := circuit.PackWords(circuit.SHA1IV)
	block := circuit.PackWords(circuit.BlockWords(padded))
	expected := sha1.Sum(msg)

	for name, tcfg := range testConfigs {
		for _, r := range runCircuit(t, name, tcfg, circ, state, block) {
			assert.Equal(t, expected[:], circuit.SHA1Digest(r[0]), name)
		}
	}
}

func TestAES(t *testing.T) {
	circ := circuit.NewAES128()

	key := []byte("YELLOW SUBMARINE")
	plaintext := []byte("three party aes!")
	cipher, err := aes.NewCipher(key)
	require.NoError(t, err)
	expected := make([]byte, aes.BlockSize)
	cipher.Encrypt(expected, plaintext)

	for _, name := range []string{"hash", "equality"} {
		results := runCircuit(t, name, testConfigs[name], circ,
			circuit.AESBlock(key), circuit.AESBlock(plaintext))
		for _, r := range results {
			assert.Equal(t, expected, circuit.AESBytes(r[0]), name)
		}
	}
}

// crtPolynomial reveals (a + b)·c - 3a over the CRT bundles a, b, and
// c.
func crtPolynomial[W any](f fancy.Reveal[W], in [3]fancy.Bundle[W]) (
	uint64, error) {

	s, err := fancy.CRTAdd[W](f, in[0], in[1])
	if err != nil {
		return 0, err
	}
	p, err := fancy.CRTMul[W](f, s, in[2])
	if err != nil {
		return 0, err
	}
	a3, err := fancy.CRTCmul[W](f, in[0], 3)
	if err != nil {
		return 0, err
	}
	p, err = fancy.CRTSub[W](f, p, a3)
	if err != nil {
		return 0, err
	}
	return fancy.CRTReveal[W](f, p)
}

func crtParty(f party, self PartyID, input uint64, moduli []uint16) (
	uint64, error) {

	var in [3]fancy.Bundle[garble.Wire]
	for id := IDGarbler1; id <= IDEvaluator; id++ {
		var err error
		if id == self {
			in[id], err = fancy.EncodeBundle[garble.Wire, PartyID](f, input,
				moduli)
		} else {
			in[id], err = fancy.ReceiveBundle[garble.Wire, PartyID](f, id,
				moduli)
		}
		if err != nil {
			return 0, err
		}
	}
	return crtPolynomial[garble.Wire](f, in)
}

func TestCRT(t *testing.T) {
	moduli, err := fancy.CRTModuli(6)
	require.NoError(t, err)
	values := [3]uint64{1234, 5678, 99}

	d := fancy.NewDummy()
	var dummyIn [3]fancy.Bundle[fancy.Item]
	for i, v := range values {
		dummyIn[i], err = fancy.EncodeBundle[fancy.Item, int](d, v, moduli)
		require.NoError(t, err)
	}
	expected, err := crtPolynomial[fancy.Item](d, dummyIn)
	require.NoError(t, err)

	m := fancy.CRTModulus(moduli).Uint64()
	assert.Equal(t, ((values[0]+values[1])*values[2]+m-3*values[0]%m)%m,
		expected)

	for name, tcfg := range testConfigs {
		p := newParties(t, [3]*env.Config{}, tcfg, newNetwork(nil))

		var results [3]uint64
		var errs [3]error
		var eg errgroup.Group
		for id, f := range []party{p.g1, p.g2} {
			id, f := id, f
			eg.Go(func() error {
				results[id], errs[id] = crtParty(f, PartyID(id), values[id],
					moduli)
				return nil
			})
		}
		results[IDEvaluator], errs[IDEvaluator] = crtParty(p.e, IDEvaluator,
			values[IDEvaluator], moduli)
		require.NoError(t, eg.Wait())

		for i := range results {
			require.NoError(t, errs[i], name)
			assert.Equal(t, expected, results[i], "%s: %s", name, PartyID(i))
		}
	}
}

func TestConfig(t *testing.T) {
	assert.Equal(t, "Garbler¹", IDGarbler1.String())
	assert.Equal(t, "Garbler²", IDGarbler2.String())
	assert.Equal(t, "Evaluator", IDEvaluator.String())

	for _, v := range []Verification{AlternatingHash, Equality} {
		parsed, err := ParseVerification(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}
	_, err := ParseVerification("none")
	assert.Error(t, err)

	_, err = (&Config{Verification: AlternatingHash}).get()
	assert.Error(t, err)
	_, err = (&Config{Verification: Verification(7)}).get()
	assert.Error(t, err, fmt.Sprint(Verification(7)))

	cfg, err := (*Config)(nil).get()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().AlternateEvery, cfg.AlternateEvery)
	assert.Equal(t, channel.Poly1305Hash.Name, cfg.Hash.Name)

	_, err = NewGarbler(nil, nil, IDEvaluator, nil, nil)
	assert.True(t, errors.Is(err, ErrUnexpectedParty))
}
