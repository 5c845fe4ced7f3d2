//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package twopac

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/gcmpc/ot"
)

// Garbler implements the semi-honest two-party garbler. The gate
// operations are the streaming garbler's operations.
type Garbler struct {
	*garble.Garbler
	ot ot.OT
}

// NewGarbler creates a new garbler and initializes the OT sender on
// the channel. If sender is nil, the garbler uses the Chou-Orlandi
// OT.
func NewGarbler(cfg *env.Config, ch *channel.Channel, sender ot.OT) (
	*Garbler, error) {

	if sender == nil {
		sender = ot.NewCO(cfg.GetRandom())
	}
	if err := sender.InitSender(ch); err != nil {
		return nil, errors.Wrap(err, "OT init")
	}
	return &Garbler{
		Garbler: garble.NewGarbler(ch, cfg.GetRandom()),
		ot:      sender,
	}, nil
}

// EncodeMany implements fancy.Input.EncodeMany. It sends the labels
// of the garbler's values to the evaluator.
func (g *Garbler) EncodeMany(values, moduli []uint16) ([]garble.Wire, error) {
	if err := checkInputs(values, moduli); err != nil {
		return nil, errors.Mark(err, garble.ErrGarbler)
	}
	result := make([]garble.Wire, len(values))
	for i, v := range values {
		w, err := g.Encode(v, moduli[i])
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	if err := g.Channel().Flush(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveMany implements fancy.Input.ReceiveMany. The evaluator's
// input of modulus q is transferred as ceil(log2 q) bits. For each bit
// i, the garbler offers the labels zero_i and zero_i + Δ and keeps
// Σ 2^i·zero_i as its zero-label.
func (g *Garbler) ReceiveMany(from PartyID, moduli []uint16) (
	[]garble.Wire, error) {

	if from != IDEvaluator {
		return nil, errors.Mark(errors.Wrapf(ErrUnexpectedParty, "%s", from),
			garble.ErrGarbler)
	}

	var wires []ot.Wire
	result := make([]garble.Wire, len(moduli))

	for idx, q := range moduli {
		delta, err := g.Delta(q)
		if err != nil {
			return nil, err
		}
		zero := garble.Zero(q)
		for i := 0; i < numBits(q); i++ {
			zi, err := g.CreateWire(q)
			if err != nil {
				return nil, err
			}
			wires = append(wires, ot.Wire{
				L0: zi.Block(),
				L1: zi.Plus(delta).Block(),
			})
			zero = zero.Plus(zi.Cmul(1 << i))
		}
		result[idx] = zero
	}
	if err := g.ot.Send(wires); err != nil {
		return nil, errors.Wrap(err, "OT send")
	}
	return result, nil
}
