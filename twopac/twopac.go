//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package twopac implements semi-honest two-party computation with
// garbled circuits. The garbler sends its input labels directly and
// the evaluator obtains its input labels with oblivious transfer.
package twopac

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/fancy"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/gcmpc/ot"
	"go.uber.org/zap"
)

// PartyID identifies the two-party roles.
type PartyID int

// Party IDs.
const (
	IDGarbler PartyID = iota
	IDEvaluator
)

func (id PartyID) String() string {
	switch id {
	case IDGarbler:
		return "Garbler"
	case IDEvaluator:
		return "Evaluator"
	default:
		return fmt.Sprintf("{PartyID %d}", int(id))
	}
}

// ErrUnexpectedParty is returned when wires are received from a party
// that does not provide them.
var ErrUnexpectedParty = errors.New("unexpected party")

var (
	_ fancy.Reveal[garble.Wire]         = &Garbler{}
	_ fancy.Input[garble.Wire, PartyID] = &Garbler{}
	_ fancy.Reveal[garble.Wire]         = &Evaluator{}
	_ fancy.Input[garble.Wire, PartyID] = &Evaluator{}
)

// numBits returns the number of OT bits per input of modulus q.
func numBits(q uint16) int {
	return bits.Len16(q - 1)
}

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

// RunGarbler runs the Boolean circuit as the garbler. The garbler
// provides the circuit's first input argument.
func RunGarbler(cfg *env.Config, ch *channel.Channel, sender ot.OT,
	circ *circuit.Circuit, input *big.Int) ([]*big.Int, error) {

	log := cfg.GetLogger().With(zap.Stringer("party", IDGarbler))

	bitValues, err := circ.Inputs[:1].Bits([]*big.Int{input})
	if err != nil {
		return nil, err
	}
	g, err := NewGarbler(cfg, ch, sender)
	if err != nil {
		return nil, err
	}
	gb, err := g.EncodeMany(bitValues, binaryModuli(len(bitValues)))
	if err != nil {
		return nil, err
	}
	ev, err := g.ReceiveMany(IDEvaluator,
		binaryModuli(circ.Inputs.Size()-len(bitValues)))
	if err != nil {
		return nil, err
	}
	log.Debug("inputs encoded", zap.Int("garbler", len(gb)),
		zap.Int("evaluator", len(ev)))

	out, err := circuit.EvalReveal[garble.Wire](circ, g, gb, ev)
	if err != nil {
		return nil, err
	}
	log.Debug("outputs revealed", zap.Int("wires", len(out)))

	return circ.Outputs.Join(out), nil
}

// RunEvaluator runs the Boolean circuit as the evaluator. The
// evaluator provides the circuit's remaining input arguments.
func RunEvaluator(cfg *env.Config, ch *channel.Channel, receiver ot.OT,
	circ *circuit.Circuit, inputs []*big.Int) ([]*big.Int, error) {

	log := cfg.GetLogger().With(zap.Stringer("party", IDEvaluator))

	bitValues, err := circ.Inputs[1:].Bits(inputs)
	if err != nil {
		return nil, err
	}
	e, err := NewEvaluator(cfg, ch, receiver)
	if err != nil {
		return nil, err
	}
	gb, err := e.ReceiveMany(IDGarbler,
		binaryModuli(circ.Inputs.Size()-len(bitValues)))
	if err != nil {
		return nil, err
	}
	ev, err := e.EncodeMany(bitValues, binaryModuli(len(bitValues)))
	if err != nil {
		return nil, err
	}
	log.Debug("inputs encoded", zap.Int("garbler", len(gb)),
		zap.Int("evaluator", len(ev)))

	out, err := circuit.EvalReveal[garble.Wire](circ, e, gb, ev)
	if err != nil {
		return nil, err
	}
	log.Debug("outputs revealed", zap.Int("wires", len(out)))

	return circ.Outputs.Join(out), nil
}
