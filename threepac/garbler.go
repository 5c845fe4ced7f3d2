//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/env"
	"github.com/markkurossi/gcmpc/garble"
	"github.com/markkurossi/gcmpc/ot"
	"go.uber.org/zap"
)

// Garbler implements one of the two garblers. Both garblers run the
// streaming garbler over a shared seed so they produce identical
// deltas, wire labels, and garbled tables.
type Garbler struct {
	*garble.Garbler
	id     PartyID
	cfg    *Config
	log    *zap.Logger
	peer   *channel.Channel
	ev     *channel.Channel
	sender sender
}

// NewGarbler creates the garbler id. The peer channel connects the
// garblers and the ev channel connects the garbler to the evaluator.
func NewGarbler(cfg *env.Config, tcfg *Config, id PartyID,
	peer, ev *channel.Channel) (*Garbler, error) {

	if id != IDGarbler1 && id != IDGarbler2 {
		return nil, errors.Wrapf(ErrUnexpectedParty, "garbler %s", id)
	}
	tcfg, err := tcfg.get()
	if err != nil {
		return nil, err
	}
	g := &Garbler{
		id:   id,
		cfg:  tcfg,
		log:  cfg.GetLogger().With(zap.Stringer("party", id)),
		peer: peer,
		ev:   ev,
	}

	switch tcfg.Verification {
	case AlternatingHash:
		key := make([]byte, tcfg.Hash.KeySize)
		if _, err := cfg.GetRandom().Read(key); err != nil {
			return nil, errors.Wrap(err, "hash key")
		}
		if err := ev.WriteBytes(key); err != nil {
			return nil, err
		}
		if err := ev.Flush(); err != nil {
			return nil, err
		}
		h, err := tcfg.Hash.New(key)
		if err != nil {
			return nil, err
		}
		g.sender = newHashSender(ev, h, tcfg.AlternateEvery, id)
	default:
		g.sender = &equalitySender{
			ch: ev,
		}
	}

	var seed ot.Label
	if id == IDGarbler1 {
		seed, err = ot.NewLabel(cfg.GetRandom())
		if err != nil {
			return nil, errors.Wrap(err, "seed")
		}
		if err := peer.WriteBlock(seed); err != nil {
			return nil, err
		}
		if err := peer.Flush(); err != nil {
			return nil, err
		}
	} else {
		seed, err = peer.ReadBlock()
		if err != nil {
			return nil, err
		}
	}
	g.Garbler = garble.NewGarbler(channel.New(g.sender), env.NewPRG(seed))

	g.log.Debug("garbler initialized",
		zap.Stringer("verification", tcfg.Verification))

	return g, nil
}

// ID returns the garbler's party ID.
func (g *Garbler) ID() PartyID {
	return g.id
}

func (g *Garbler) sendHash() error {
	if err := g.sender.SendHash(); err != nil {
		return err
	}
	g.log.Debug("hash sent")
	return nil
}

// sendCommitments commits to all labels of the wire zero. The
// commitment of the label with color c is H(label, tweak2(c,2)) and
// the commitments are sent in ascending color order.
func (g *Garbler) sendCommitments(zero garble.Wire) error {
	q := zero.Modulus()
	delta, err := g.Delta(q)
	if err != nil {
		return err
	}
	label := zero.Minus(delta.Cmul(zero.Color()))
	for i := uint16(0); i < q; i++ {
		if i > 0 {
			label = label.Plus(delta)
		}
		h := label.Hash(ot.NewTweak2(uint64(i), 2))
		if err := g.Channel().WriteBlock(h); err != nil {
			return err
		}
	}
	return nil
}

// EncodeMany implements fancy.Input.EncodeMany. The garbler sends its
// values' labels to the evaluator and both garblers commit to the
// wires' labels.
func (g *Garbler) EncodeMany(values, moduli []uint16) ([]garble.Wire, error) {
	if err := checkInputs(values, moduli); err != nil {
		return nil, errors.Mark(err, garble.ErrGarbler)
	}
	result := make([]garble.Wire, len(values))
	for i, v := range values {
		mine, theirs, err := g.EncodeWire(v, moduli[i])
		if err != nil {
			return nil, err
		}
		if err := g.ev.WriteBlock(theirs.Block()); err != nil {
			return nil, err
		}
		result[i] = mine
	}
	for _, w := range result {
		if err := g.sendCommitments(w); err != nil {
			return nil, err
		}
	}
	if err := g.sendHash(); err != nil {
		return nil, err
	}
	g.log.Debug("inputs committed", zap.Int("wires", len(result)))
	return result, nil
}

// ReceiveMany implements fancy.Input.ReceiveMany.
func (g *Garbler) ReceiveMany(from PartyID, moduli []uint16) (
	[]garble.Wire, error) {

	switch from {
	case IDEvaluator:
		return g.receiveEvaluator(moduli)

	case IDGarbler1, IDGarbler2:
		if from == g.id {
			break
		}
		result := make([]garble.Wire, len(moduli))
		for i, q := range moduli {
			w, err := g.CreateWire(q)
			if err != nil {
				return nil, err
			}
			result[i] = w
		}
		for _, w := range result {
			if err := g.sendCommitments(w); err != nil {
				return nil, err
			}
		}
		if err := g.sendHash(); err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, errors.Mark(errors.Wrapf(ErrUnexpectedParty, "%s", from),
		garble.ErrGarbler)
}

// receiveEvaluator receives the evaluator's input shares. The
// evaluator splits its value x into shares p1 and p2 = p1 + x. Each
// garbler encodes its share and the wire of x is the difference of
// the shares' wires.
func (g *Garbler) receiveEvaluator(moduli []uint16) ([]garble.Wire, error) {
	if err := g.sender.Flush(); err != nil {
		return nil, err
	}
	shares := make([]uint16, len(moduli))
	for i, q := range moduli {
		if q < 2 {
			return nil, errors.Mark(errors.Wrapf(garble.ErrInvalidModulus,
				"input %d", i), garble.ErrGarbler)
		}
		v, err := g.ev.ReadU16()
		if err != nil {
			return nil, err
		}
		shares[i] = v % q
	}

	var w1, w2 []garble.Wire
	var err error
	if g.id == IDGarbler1 {
		w1, err = g.EncodeMany(shares, moduli)
		if err == nil {
			w2, err = g.ReceiveMany(IDGarbler2, moduli)
		}
	} else {
		w1, err = g.ReceiveMany(IDGarbler1, moduli)
		if err == nil {
			w2, err = g.EncodeMany(shares, moduli)
		}
	}
	if err != nil {
		return nil, err
	}
	result := make([]garble.Wire, len(moduli))
	for i := range result {
		result[i], err = g.Sub(w2[i], w1[i])
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Output implements fancy.Fancy.Output.
func (g *Garbler) Output(x garble.Wire) (uint16, bool, error) {
	if _, _, err := g.Garbler.Output(x); err != nil {
		return 0, false, err
	}
	return 0, false, g.sendHash()
}

// Reveal implements fancy.Reveal.Reveal.
func (g *Garbler) Reveal(x garble.Wire) (uint16, error) {
	result, err := g.RevealMany([]garble.Wire{x})
	if err != nil {
		return 0, err
	}
	return result[0], nil
}

// RevealMany outputs the wires and reads the evaluator's output
// labels. Each label must be a valid label of its wire.
func (g *Garbler) RevealMany(xs []garble.Wire) ([]uint16, error) {
	for _, x := range xs {
		if _, _, err := g.Garbler.Output(x); err != nil {
			return nil, err
		}
	}
	if err := g.sendHash(); err != nil {
		return nil, err
	}
	if err := g.sender.Flush(); err != nil {
		return nil, err
	}
	result := make([]uint16, len(xs))
	for i, x := range xs {
		q := x.Modulus()
		b, err := g.ev.ReadBlock()
		if err != nil {
			return nil, err
		}
		ev := garble.FromBlock(b, q)
		v := uint16((uint32(q) + uint32(ev.Color()) - uint32(x.Color())) %
			uint32(q))

		delta, err := g.Delta(q)
		if err != nil {
			return nil, err
		}
		if !x.Plus(delta.Cmul(v)).Equal(ev) {
			return nil, errors.Mark(errors.Wrapf(ErrInvalidResult,
				"output %d", i), garble.ErrGarbler)
		}
		result[i] = v
	}
	g.log.Debug("outputs revealed", zap.Int("wires", len(xs)))
	return result, nil
}
