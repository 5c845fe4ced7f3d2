//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/gcmpc/ot"
	"go.uber.org/zap"
)

// Evaluator implements the three-party evaluator. It evaluates the
// garbled circuit and verifies that the garblers agree on it.
type Evaluator struct {
	*garble.Evaluator
	cfg      *Config
	log      *zap.Logger
	rand     io.Reader
	p1       *channel.Channel
	p2       *channel.Channel
	verifier verifier
}

// NewEvaluator creates the evaluator for the garbler channels p1 and
// p2.
func NewEvaluator(cfg *env.Config, tcfg *Config, p1, p2 *channel.Channel) (
	*Evaluator, error) {

	tcfg, err := tcfg.get()
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		cfg:  tcfg,
		log:  cfg.GetLogger().With(zap.Stringer("party", IDEvaluator)),
		rand: cfg.GetRandom(),
		p1:   p1,
		p2:   p2,
	}

	switch tcfg.Verification {
	case AlternatingHash:
		// Each garbler's key verifies the other garbler's data.
		key1, err := p1.ReadBytes(tcfg.Hash.KeySize)
		if err != nil {
			return nil, err
		}
		key2, err := p2.ReadBytes(tcfg.Hash.KeySize)
		if err != nil {
			return nil, err
		}
		h1, err := tcfg.Hash.New(key2)
		if err != nil {
			return nil, err
		}
		h2, err := tcfg.Hash.New(key1)
		if err != nil {
			return nil, err
		}
		e.verifier = NewVerifyChannel(p1, p2, h1, h2, tcfg.AlternateEvery)
	default:
		e.verifier = NewEqualityChannel(p1, p2)
	}
	e.Evaluator = garble.NewEvaluator(channel.New(e.verifier))

	e.log.Debug("evaluator initialized",
		zap.Stringer("verification", tcfg.Verification))

	return e, nil
}

func (e *Evaluator) checkHashes() error {
	if err := e.verifier.CheckHashes(); err != nil {
		return err
	}
	e.log.Debug("hashes checked")
	return nil
}

// EncodeMany implements fancy.Input.EncodeMany. The evaluator splits
// each value x into the shares p1 and p2 = p1 + x, sends the shares to
// the garblers, and receives the shares' wires.
func (e *Evaluator) EncodeMany(values, moduli []uint16) (
	[]garble.Wire, error) {

	if err := checkInputs(values, moduli); err != nil {
		return nil, errors.Mark(err, garble.ErrEvaluator)
	}
	for i, x := range values {
		q := moduli[i]
		s1, err := garble.RandomMod(e.rand, q)
		if err != nil {
			return nil, errors.Wrap(err, "secret share")
		}
		s2 := uint16((uint32(s1) + uint32(x)) % uint32(q))
		if err := e.p1.WriteU16(s1); err != nil {
			return nil, err
		}
		if err := e.p2.WriteU16(s2); err != nil {
			return nil, err
		}
	}
	if err := e.verifier.Flush(); err != nil {
		return nil, err
	}
	w1, err := e.ReceiveMany(IDGarbler1, moduli)
	if err != nil {
		return nil, err
	}
	w2, err := e.ReceiveMany(IDGarbler2, moduli)
	if err != nil {
		return nil, err
	}
	result := make([]garble.Wire, len(values))
	for i := range result {
		result[i], err = e.Sub(w2[i], w1[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ReceiveMany implements fancy.Input.ReceiveMany. It reads the
// garbler's input labels and verifies them against the garblers'
// commitments.
func (e *Evaluator) ReceiveMany(from PartyID, moduli []uint16) (
	[]garble.Wire, error) {

	var ch *channel.Channel
	switch from {
	case IDGarbler1:
		ch = e.p1
	case IDGarbler2:
		ch = e.p2
	default:
		return nil, errors.Mark(errors.Wrapf(ErrUnexpectedParty, "%s", from),
			garble.ErrEvaluator)
	}

	labels := make([]garble.Wire, len(moduli))
	for i, q := range moduli {
		if q < 2 {
			return nil, errors.Mark(errors.Wrapf(garble.ErrInvalidModulus,
				"input %d", i), garble.ErrEvaluator)
		}
		b, err := ch.ReadBlock()
		if err != nil {
			return nil, err
		}
		labels[i] = garble.FromBlock(b, q)
	}
	commitments := make([]ot.Label, len(moduli))
	for i, label := range labels {
		blocks, err := e.Channel().ReadBlocks(int(moduli[i]))
		if err != nil {
			return nil, err
		}
		commitments[i] = blocks[label.Color()]
	}
	if err := e.checkHashes(); err != nil {
		return nil, err
	}
	if e.cfg.CheckCommitments {
		for i, label := range labels {
			h := label.Hash(ot.NewTweak2(uint64(label.Color()), 2))
			if !h.Equal(commitments[i]) {
				return nil, errors.Mark(errors.Wrapf(ErrInvalidCommitment,
					"%s input %d", from, i), garble.ErrEvaluator)
			}
		}
	}
	e.log.Debug("inputs received", zap.Stringer("from", from),
		zap.Int("wires", len(labels)))
	return labels, nil
}

// Output implements fancy.Fancy.Output.
func (e *Evaluator) Output(x garble.Wire) (uint16, bool, error) {
	v, ok, err := e.Evaluator.Output(x)
	if err != nil {
		return 0, false, err
	}
	if err := e.checkHashes(); err != nil {
		return 0, false, err
	}
	return v, ok, nil
}

// Reveal implements fancy.Reveal.Reveal.
func (e *Evaluator) Reveal(x garble.Wire) (uint16, error) {
	result, err := e.RevealMany([]garble.Wire{x})
	if err != nil {
		return 0, err
	}
	return result[0], nil
}

// RevealMany decodes the wires and sends the output labels to both
// garblers. The output rows are verified before any decoding failure
// is reported so tampered rows fail with ErrGarblerMismatch.
func (e *Evaluator) RevealMany(xs []garble.Wire) ([]uint16, error) {
	result := make([]uint16, len(xs))
	failed := -1
	for i, x := range xs {
		v, ok, err := e.Evaluator.Output(x)
		if err != nil {
			return nil, err
		}
		if !ok && failed < 0 {
			failed = i
		}
		result[i] = v
	}
	if err := e.checkHashes(); err != nil {
		return nil, err
	}
	if failed >= 0 {
		return nil, errors.Mark(errors.Wrapf(garble.ErrDecodingFailed,
			"output %d", failed), garble.ErrEvaluator)
	}
	for _, x := range xs {
		if err := e.Channel().WriteBlock(x.Block()); err != nil {
			return nil, err
		}
	}
	if err := e.Channel().Flush(); err != nil {
		return nil, err
	}
	e.log.Debug("outputs revealed", zap.Int("wires", len(xs)))
	return result, nil
}
