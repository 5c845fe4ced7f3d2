//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package garble

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/circuit"
	"github.com/markkurossi/gcmpc/ot"
)

// Encoder encodes input values into the input wires of a statically
// garbled circuit.
type Encoder struct {
	GarblerInputs   []Wire
	EvaluatorInputs []Wire
	Deltas          map[uint16]Wire
}

type encoderData Encoder

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

func (e *Encoder) encode(inputs []Wire, values []uint16) ([]Wire, error) {
	if len(values) != len(inputs) {
		return nil, errors.Newf("got %d values for %d inputs",
			len(values), len(inputs))
	}
	result := make([]Wire, len(values))
	for i, v := range values {
		zero := inputs[i]
		delta, ok := e.Deltas[zero.q]
		if !ok {
			return nil, errors.Newf("no delta for modulus %d", zero.q)
		}
		result[i] = zero.Plus(delta.Cmul(v))
	}
	return result, nil
}

// EncodeGarblerInputs encodes the garbler's input values.
func (e *Encoder) EncodeGarblerInputs(values []uint16) ([]Wire, error) {
	return e.encode(e.GarblerInputs, values)
}

// EncodeEvaluatorInputs encodes the evaluator's input values.
func (e *Encoder) EncodeEvaluatorInputs(values []uint16) ([]Wire, error) {
	return e.encode(e.EvaluatorInputs, values)
}

// MarshalBinary encodes the encoder in CBOR.
func (e *Encoder) MarshalBinary() ([]byte, error) {
	return encMode.Marshal((*encoderData)(e))
}

// UnmarshalBinary decodes the CBOR encoding of the encoder.
func (e *Encoder) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*encoderData)(e))
}

// GarbledCircuit holds the gate tables and output decoding rows of a
// statically garbled circuit.
type GarbledCircuit struct {
	Blocks []ot.Label
}

type garbledData struct {
	Blocks [][]byte
}

// MarshalBinary encodes the garbled circuit in CBOR.
func (gc *GarbledCircuit) MarshalBinary() ([]byte, error) {
	data := garbledData{
		Blocks: make([][]byte, len(gc.Blocks)),
	}
	for i, b := range gc.Blocks {
		var ld ot.LabelData
		data.Blocks[i] = append([]byte(nil), b.Bytes(&ld)...)
	}
	return encMode.Marshal(&data)
}

// UnmarshalBinary decodes the CBOR encoding of the garbled circuit.
func (gc *GarbledCircuit) UnmarshalBinary(buf []byte) error {
	var data garbledData
	if err := cbor.Unmarshal(buf, &data); err != nil {
		return err
	}
	gc.Blocks = make([]ot.Label, len(data.Blocks))
	for i, b := range data.Blocks {
		if len(b) != len(ot.LabelData{}) {
			return errors.Newf("block %d: invalid length %d", i, len(b))
		}
		gc.Blocks[i].SetBytes(b)
	}
	return nil
}

type nopFlush struct {
	io.Reader
	io.Writer
}

func (s *nopFlush) Flush() error {
	return nil
}

// Garble garbles the Boolean circuit. The garbled tables are collected
// into the returned GarbledCircuit and the input zero-labels and the
// deltas into the Encoder.
func Garble(circ *circuit.Circuit, rand io.Reader) (
	*Encoder, *GarbledCircuit, error) {

	if len(circ.Inputs) == 0 {
		return nil, nil, garblerError(errors.New("circuit has no inputs"))
	}

	var buf bytes.Buffer
	g := NewGarbler(channel.New(&nopFlush{
		Reader: &bytes.Buffer{},
		Writer: &buf,
	}), rand)

	ng := circ.Inputs[0].Size
	ne := circ.Inputs.Size() - ng

	gb := make([]Wire, ng)
	ev := make([]Wire, ne)
	var err error
	for i := range gb {
		gb[i], err = g.CreateWire(2)
		if err != nil {
			return nil, nil, err
		}
	}
	for i := range ev {
		ev[i], err = g.CreateWire(2)
		if err != nil {
			return nil, nil, err
		}
	}

	if _, _, err := circuit.Eval[Wire](circ, g, gb, ev); err != nil {
		return nil, nil, err
	}

	gc := &GarbledCircuit{
		Blocks: make([]ot.Label, buf.Len()/len(ot.LabelData{})),
	}
	for i := range gc.Blocks {
		gc.Blocks[i].SetBytes(buf.Next(len(ot.LabelData{})))
	}

	return &Encoder{
		GarblerInputs:   gb,
		EvaluatorInputs: ev,
		Deltas:          g.Deltas(),
	}, gc, nil
}

// Eval evaluates the garbled circuit with the encoded inputs and
// returns the output values.
func (gc *GarbledCircuit) Eval(circ *circuit.Circuit, gb, ev []Wire) (
	[]uint16, error) {

	var buf bytes.Buffer
	ch := channel.New(&nopFlush{
		Reader: &buf,
		Writer: &buf,
	})
	if err := ch.WriteBlocks(gc.Blocks); err != nil {
		return nil, err
	}
	e := NewEvaluator(ch)
	out, ok, err := circuit.Eval[Wire](circ, e, gb, ev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, evaluatorError(ErrDecodingFailed)
	}
	return out, nil
}
