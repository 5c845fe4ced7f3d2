//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package threepac implements three-party computation with two
// garblers and one evaluator. The garblers share a random seed and
// garble the same circuit in lockstep. The evaluator checks that both
// garblers sent the same data: with the alternating hash
// verification, it receives every other chunk from each garbler and
// compares universal hashes of the chunks it did not receive. With
// the equality verification, both garblers send all data and the
// evaluator compares them byte-by-byte.
package threepac

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/fancy"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/text/superscript"
	"go.uber.org/zap"
)

// PartyID identifies the three-party roles.
type PartyID int

// Party IDs.
const (
	IDGarbler1 PartyID = iota
	IDGarbler2
	IDEvaluator
)

func (id PartyID) String() string {
	switch id {
	case IDGarbler1, IDGarbler2:
		return "Garbler" + superscript.Itoa(int(id)+1)
	case IDEvaluator:
		return "Evaluator"
	default:
		return fmt.Sprintf("{PartyID %d}", int(id))
	}
}

// Verification defines how the evaluator verifies that the garblers
// agree.
type Verification int

// Verification methods.
const (
	AlternatingHash Verification = iota
	Equality
)

var verifications = map[Verification]string{
	AlternatingHash: "hash",
	Equality:        "equality",
}

func (v Verification) String() string {
	name, ok := verifications[v]
	if ok {
		return name
	}
	return fmt.Sprintf("{Verification %d}", int(v))
}

// ParseVerification parses the verification method name.
func ParseVerification(name string) (Verification, error) {
	for k, v := range verifications {
		if v == name {
			return k, nil
		}
	}
	return 0, errors.Newf("unknown verification method '%s'", name)
}

// Config defines the three-party protocol configuration.
type Config struct {
	// AlternateEvery is the size of the chunks in bytes that the
	// garblers take turns sending with AlternatingHash.
	AlternateEvery int

	// Verification selects how the evaluator compares the garblers'
	// data.
	Verification Verification

	// CheckCommitments enables the evaluator's verification of the
	// input label commitments. Without it, the protocol is secure
	// against a semi-honest garbler only.
	CheckCommitments bool

	// Hash is the universal hash for AlternatingHash. The zero value
	// selects Poly1305.
	Hash channel.UniversalHashFunc
}

// DefaultConfig returns the malicious-secure configuration with the
// alternating hash verification.
func DefaultConfig() *Config {
	return &Config{
		AlternateEvery:   1024,
		Verification:     AlternatingHash,
		CheckCommitments: true,
		Hash:             channel.Poly1305Hash,
	}
}

func (cfg *Config) get() (*Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	result := *cfg
	if result.Hash.New == nil {
		result.Hash = channel.Poly1305Hash
	}
	switch result.Verification {
	case AlternatingHash:
		if result.AlternateEvery <= 0 {
			return nil, errors.Newf("invalid AlternateEvery %d",
				result.AlternateEvery)
		}
	case Equality:
	default:
		return nil, errors.Newf("invalid verification: %s",
			result.Verification)
	}
	return &result, nil
}

var (
	// ErrGarblerMismatch is returned when the evaluator detects that
	// the garblers sent different data.
	ErrGarblerMismatch = errors.New("garbler mismatch")

	// ErrInvalidCommitment is returned when an input label does not
	// match the garblers' commitment.
	ErrInvalidCommitment = errors.New("invalid commitment")

	// ErrInvalidResult is returned when the evaluator's revealed output
	// label is not a valid label of the output wire.
	ErrInvalidResult = errors.New("invalid result")

	// ErrUnexpectedParty is returned when wires are received from a
	// party that does not provide them.
	ErrUnexpectedParty = errors.New("unexpected party")
)

var (
	_ fancy.Reveal[garble.Wire]         = &Garbler{}
	_ fancy.Input[garble.Wire, PartyID] = &Garbler{}
	_ fancy.ManyRevealer[garble.Wire]   = &Garbler{}
	_ fancy.Reveal[garble.Wire]         = &Evaluator{}
	_ fancy.Input[garble.Wire, PartyID] = &Evaluator{}
	_ fancy.ManyRevealer[garble.Wire]   = &Evaluator{}
)

func checkInputs(values, moduli []uint16) error {
	if len(values) != len(moduli) {
		return errors.Newf("got %d values for %d moduli",
			len(values), len(moduli))
	}
	for i, v := range values {
		if moduli[i] < 2 {
			return errors.Wrapf(garble.ErrInvalidModulus, "input %d", i)
		}
		if v >= moduli[i] {
			return errors.Newf("input %d: value %d out of range for modulus %d",
				i, v, moduli[i])
		}
	}
	return nil
}

func binaryModuli(n int) []uint16 {
	result := make([]uint16, n)
	for i := range result {
		result[i] = 2
	}
	return result
}

// inputSizes returns the number of input bits of the garblers and the
// evaluator. Garbler¹ provides the circuit's first input argument,
// Garbler² the second, and the evaluator all remaining arguments.
func inputSizes(circ *circuit.Circuit) (n1, n2, ne int) {
	if len(circ.Inputs) > 0 {
		n1 = circ.Inputs[0].Size
	}
	if len(circ.Inputs) > 1 {
		n2 = circ.Inputs[1].Size
	}
	ne = circ.Inputs.Size() - n1 - n2
	return
}

func partyInputs(circ *circuit.Circuit, id PartyID) circuit.IO {
	switch id {
	case IDGarbler1:
		return circ.Inputs[:min(1, len(circ.Inputs))]
	case IDGarbler2:
		return circ.Inputs[min(1, len(circ.Inputs)):min(2, len(circ.Inputs))]
	default:
		return circ.Inputs[min(2, len(circ.Inputs)):]
	}
}

// RunGarbler runs the Boolean circuit as the garbler id.
func RunGarbler(cfg *env.Config, tcfg *Config, id PartyID,
	peer, ev *channel.Channel, circ *circuit.Circuit,
	input *big.Int) ([]*big.Int, error) {

	log := cfg.GetLogger().With(zap.Stringer("party", id))

	var inputs []*big.Int
	if len(partyInputs(circ, id)) > 0 {
		if input == nil {
			input = new(big.Int)
		}
		inputs = []*big.Int{input}
	}
	bitValues, err := partyInputs(circ, id).Bits(inputs)
	if err != nil {
		return nil, err
	}
	g, err := NewGarbler(cfg, tcfg, id, peer, ev)
	if err != nil {
		return nil, err
	}
	n1, n2, ne := inputSizes(circ)

	var gb1, gb2 []garble.Wire
	if id == IDGarbler1 {
		gb1, err = g.EncodeMany(bitValues, binaryModuli(n1))
		if err == nil {
			gb2, err = g.ReceiveMany(IDGarbler2, binaryModuli(n2))
		}
	} else {
		gb1, err = g.ReceiveMany(IDGarbler1, binaryModuli(n1))
		if err == nil {
			gb2, err = g.EncodeMany(bitValues, binaryModuli(n2))
		}
	}
	if err != nil {
		return nil, err
	}
	evWires, err := g.ReceiveMany(IDEvaluator, binaryModuli(ne))
	if err != nil {
		return nil, err
	}
	log.Debug("inputs encoded", zap.Int("garblers", len(gb1)+len(gb2)),
		zap.Int("evaluator", len(evWires)))

	out, err := circuit.EvalReveal[garble.Wire](circ, g,
		append(gb1, gb2...), evWires)
	if err != nil {
		return nil, err
	}
	log.Debug("outputs revealed", zap.Int("wires", len(out)))

	return circ.Outputs.Join(out), nil
}

// RunEvaluator runs the Boolean circuit as the evaluator.
func RunEvaluator(cfg *env.Config, tcfg *Config, p1, p2 *channel.Channel,
	circ *circuit.Circuit, inputs []*big.Int) ([]*big.Int, error) {

	log := cfg.GetLogger().With(zap.Stringer("party", IDEvaluator))

	bitValues, err := partyInputs(circ, IDEvaluator).Bits(inputs)
	if err != nil {
		return nil, err
	}
	e, err := NewEvaluator(cfg, tcfg, p1, p2)
	if err != nil {
		return nil, err
	}
	n1, n2, ne := inputSizes(circ)

	gb1, err := e.ReceiveMany(IDGarbler1, binaryModuli(n1))
	if err != nil {
		return nil, err
	}
	gb2, err := e.ReceiveMany(IDGarbler2, binaryModuli(n2))
	if err != nil {
		return nil, err
	}
	evWires, err := e.EncodeMany(bitValues, binaryModuli(ne))
	if err != nil {
		return nil, err
	}
	log.Debug("inputs encoded", zap.Int("garblers", len(gb1)+len(gb2)),
		zap.Int("evaluator", len(evWires)))

	out, err := circuit.EvalReveal[garble.Wire](circ, e,
		append(gb1, gb2...), evWires)
	if err != nil {
		return nil, err
	}
	log.Debug("outputs revealed", zap.Int("wires", len(out)))

	return circ.Outputs.Join(out), nil
}
