//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"hash"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"
)

var (
	_ OT = &CO{}
)

// CO implements CO OT as the OT interface. The curve points are sent
// in the compressed form and the encrypted labels as 128-bit blocks.
type CO struct {
	curve  elliptic.Curve
	hash   hash.Hash
	digest []byte
	rand   io.Reader
	io     IO
}

// NewCO creates a new CO OT implementing the OT interface. The rand
// is the source of the protocol's random scalars; if nil, the
// crypto/rand.Reader is used.
func NewCO(r io.Reader) *CO {
	if r == nil {
		r = rand.Reader
	}
	return &CO{
		curve:  elliptic.P256(),
		hash:   sha256.New(),
		digest: make([]byte, sha256.Size),
		rand:   r,
	}
}

// kdf derives the pad of the OT id from the shared point (x, y).
func (co *CO) kdf(x, y *big.Int, id uint64) Label {
	co.hash.Reset()
	co.hash.Write(elliptic.MarshalCompressed(co.curve, x, y))

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	co.hash.Write(tmp[:])

	var pad Label
	pad.SetBytes(co.hash.Sum(co.digest[:0]))
	return pad
}

func (co *CO) writePoint(x, y *big.Int) error {
	return co.io.WriteData(elliptic.MarshalCompressed(co.curve, x, y))
}

func (co *CO) readPoint() (*big.Int, *big.Int, error) {
	data, err := co.io.ReadData()
	if err != nil {
		return nil, nil, err
	}
	x, y := elliptic.UnmarshalCompressed(co.curve, data)
	if x == nil {
		return nil, nil, errors.New("invalid curve point")
	}
	return x, y, nil
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.curve.Params().Name); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.curve.Params().Name {
		return errors.Newf("invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

// Send sends the wire labels with OT.
func (co *CO) Send(wires []Wire) error {
	params := co.curve.Params()

	// a <- Zp
	a, err := rand.Int(co.rand, params.N)
	if err != nil {
		return err
	}
	aBytes := a.Bytes()

	// A = G^a
	Ax, Ay := co.curve.ScalarBaseMult(aBytes)
	if err := co.writePoint(Ax, Ay); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// -(A^a) = {x, p-y}
	AaX, AaY := co.curve.ScalarMult(Ax, Ay, aBytes)
	AaY.Sub(params.P, AaY)

	for i := range wires {
		Bx, By, err := co.readPoint()
		if err != nil {
			return errors.Wrapf(err, "OT %d", i)
		}
		k0x, k0y := co.curve.ScalarMult(Bx, By, aBytes)
		k1x, k1y := co.curve.Add(k0x, k0y, AaX, AaY)

		e0 := co.kdf(k0x, k0y, uint64(i))
		e0.Xor(wires[i].L0)
		e1 := co.kdf(k1x, k1y, uint64(i))
		e1.Xor(wires[i].L1)

		if err := co.io.WriteBlock(e0); err != nil {
			return err
		}
		if err := co.io.WriteBlock(e1); err != nil {
			return err
		}
	}
	return co.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Label) error {
	params := co.curve.Params()

	Ax, Ay, err := co.readPoint()
	if err != nil {
		return errors.Wrap(err, "OT sender point")
	}

	bs := make([][]byte, len(flags))
	for i, flag := range flags {
		// b <- Zp
		b, err := rand.Int(co.rand, params.N)
		if err != nil {
			return err
		}
		bs[i] = b.Bytes()

		Bx, By := co.curve.ScalarBaseMult(bs[i])
		if flag {
			Bx, By = co.curve.Add(Bx, By, Ax, Ay)
		}
		if err := co.writePoint(Bx, By); err != nil {
			return err
		}
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	for i, flag := range flags {
		kx, ky := co.curve.ScalarMult(Ax, Ay, bs[i])
		pad := co.kdf(kx, ky, uint64(i))

		e0, err := co.io.ReadBlock()
		if err != nil {
			return err
		}
		e1, err := co.io.ReadBlock()
		if err != nil {
			return err
		}
		if flag {
			result[i] = pad.Xored(e1)
		} else {
			result[i] = pad.Xored(e0)
		}
	}
	return nil
}
