//
// np.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// Naor Pinkas OT - Efficient Oblivious Transfer Protocols.
//  - https://dl.acm.org/doi/10.5555/365411.365502

package ot

import (
	"crypto/rand"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/zeebo/blake3"
)

const (
	npCurveName = "secp256k1"
)

var (
	_ OT = &NaorPinkas{}
)

// NaorPinkas implements the Naor-Pinkas OT over the secp256k1 curve
// as the OT interface.
type NaorPinkas struct {
	rand io.Reader
	io   IO
}

// NewNaorPinkas creates a new Naor-Pinkas OT. The rand is the source
// of the protocol's random scalars; if nil, the crypto/rand.Reader is
// used.
func NewNaorPinkas(r io.Reader) *NaorPinkas {
	if r == nil {
		r = rand.Reader
	}
	return &NaorPinkas{
		rand: r,
	}
}

// InitSender initializes the OT sender.
func (np *NaorPinkas) InitSender(io IO) error {
	np.io = io
	if err := SendString(io, npCurveName); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (np *NaorPinkas) InitReceiver(io IO) error {
	np.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != npCurveName {
		return errors.Newf("invalid curve %s, expected %s", name, npCurveName)
	}
	return nil
}

// Send sends the wire labels with OT.
func (np *NaorPinkas) Send(wires []Wire) error {
	c, err := npScalar(np.rand)
	if err != nil {
		return err
	}
	var C secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(c, &C)
	if err := np.writePoint(&C); err != nil {
		return err
	}
	if err := np.io.Flush(); err != nil {
		return err
	}

	for i := range wires {
		var pk0, pk1, R, k0, k1 secp256k1.JacobianPoint

		if err := np.readPoint(&pk0); err != nil {
			return err
		}
		npSub(&C, &pk0, &pk1)

		r, err := npScalar(np.rand)
		if err != nil {
			return err
		}
		secp256k1.ScalarBaseMultNonConst(r, &R)
		if err := np.writePoint(&R); err != nil {
			return err
		}
		secp256k1.ScalarMultNonConst(r, &pk0, &k0)
		secp256k1.ScalarMultNonConst(r, &pk1, &k1)

		e0 := npKDF(&k0, uint64(i))
		e0.Xor(wires[i].L0)
		e1 := npKDF(&k1, uint64(i))
		e1.Xor(wires[i].L1)

		if err := np.io.WriteBlock(e0); err != nil {
			return err
		}
		if err := np.io.WriteBlock(e1); err != nil {
			return err
		}
	}
	return np.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (np *NaorPinkas) Receive(flags []bool, result []Label) error {
	var C secp256k1.JacobianPoint
	if err := np.readPoint(&C); err != nil {
		return err
	}

	ks := make([]*secp256k1.ModNScalar, len(flags))
	for i, flag := range flags {
		k, err := npScalar(np.rand)
		if err != nil {
			return err
		}
		ks[i] = k

		var pkb, pk0 secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(k, &pkb)
		if flag {
			npSub(&C, &pkb, &pk0)
		} else {
			pk0.Set(&pkb)
		}
		if err := np.writePoint(&pk0); err != nil {
			return err
		}
	}
	if err := np.io.Flush(); err != nil {
		return err
	}

	for i, flag := range flags {
		var R, kr secp256k1.JacobianPoint
		if err := np.readPoint(&R); err != nil {
			return err
		}
		e0, err := np.io.ReadBlock()
		if err != nil {
			return err
		}
		e1, err := np.io.ReadBlock()
		if err != nil {
			return err
		}
		secp256k1.ScalarMultNonConst(ks[i], &R, &kr)
		key := npKDF(&kr, uint64(i))
		if flag {
			key.Xor(e1)
		} else {
			key.Xor(e0)
		}
		result[i] = key
	}
	return nil
}

func (np *NaorPinkas) writePoint(p *secp256k1.JacobianPoint) error {
	return np.io.WriteData(npMarshal(p))
}

func (np *NaorPinkas) readPoint(p *secp256k1.JacobianPoint) error {
	data, err := np.io.ReadData()
	if err != nil {
		return err
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return err
	}
	pub.AsJacobian(p)
	return nil
}

func npScalar(r io.Reader) (*secp256k1.ModNScalar, error) {
	var buf [32]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		s := new(secp256k1.ModNScalar)
		if s.SetBytes(&buf) == 0 && !s.IsZero() {
			return s, nil
		}
	}
}

func npMarshal(p *secp256k1.JacobianPoint) []byte {
	var pt secp256k1.JacobianPoint
	pt.Set(p)
	pt.ToAffine()
	return secp256k1.NewPublicKey(&pt.X, &pt.Y).SerializeCompressed()
}

// npSub computes result = a - b.
func npSub(a, b, result *secp256k1.JacobianPoint) {
	var neg secp256k1.JacobianPoint
	neg.Set(b)
	neg.ToAffine()
	neg.Y.Negate(1)
	neg.Y.Normalize()
	secp256k1.AddNonConst(a, &neg, result)
}

func npKDF(p *secp256k1.JacobianPoint, id uint64) Label {
	h := blake3.New()
	h.Write(npMarshal(p))

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	h.Write(tmp[:])

	var sum [32]byte
	h.Sum(sum[:0])

	var result Label
	result.SetBytes(sum[:16])
	return result
}
