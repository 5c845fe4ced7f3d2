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

// Evaluator implements the semi-honest two-party evaluator.
type Evaluator struct {
	*garble.Evaluator
	ot ot.OT
}

// NewEvaluator creates a new evaluator and initializes the OT receiver
// on the channel. If receiver is nil, the evaluator uses the
// Chou-Orlandi OT.
func NewEvaluator(cfg *env.Config, ch *channel.Channel, receiver ot.OT) (
	*Evaluator, error) {

	if receiver == nil {
		receiver = ot.NewCO(cfg.GetRandom())
	}
	if err := receiver.InitReceiver(ch); err != nil {
		return nil, errors.Wrap(err, "OT init")
	}
	return &Evaluator{
		Evaluator: garble.NewEvaluator(ch),
		ot:        receiver,
	}, nil
}

// ReceiveMany implements fancy.Input.ReceiveMany. It reads the
// garbler's input labels.
func (e *Evaluator) ReceiveMany(from PartyID, moduli []uint16) (
	[]garble.Wire, error) {

	if from != IDGarbler {
		return nil, errors.Mark(errors.Wrapf(ErrUnexpectedParty, "%s", from),
			garble.ErrEvaluator)
	}
	result := make([]garble.Wire, len(moduli))
	for i, q := range moduli {
		w, err := e.Receive(q)
		if err != nil {
			return nil, err
		}
		result[i] = w
	}
	return result, nil
}

// EncodeMany implements fancy.Input.EncodeMany. The evaluator receives
// the labels of its values' bits with OT and combines them into the
// values' labels.
func (e *Evaluator) EncodeMany(values, moduli []uint16) (
	[]garble.Wire, error) {

	if err := checkInputs(values, moduli); err != nil {
		return nil, errors.Mark(err, garble.ErrEvaluator)
	}

	var flags []bool
	for i, v := range values {
		for b := 0; b < numBits(moduli[i]); b++ {
			flags = append(flags, v&(1<<b) != 0)
		}
	}
	labels := make([]ot.Label, len(flags))
	if err := e.ot.Receive(flags, labels); err != nil {
		return nil, errors.Wrap(err, "OT receive")
	}

	result := make([]garble.Wire, len(values))
	var start int
	for i, q := range moduli {
		n := numBits(q)
		result[i] = combine(labels[start:start+n], q)
		start += n
	}
	return result, nil
}

func combine(labels []ot.Label, q uint16) garble.Wire {
	result := garble.Zero(q)
	for i, l := range labels {
		result = result.Plus(garble.FromBlock(l, q).Cmul(1 << i))
	}
	return result
}
