//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package threepac

import (
	"crypto/subtle"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/gcmpc/garble"
)

// verifier implements the evaluator's stream from the garblers.
type verifier interface {
	channel.Stream

	// CheckHashes verifies that the garblers sent the same data since
	// the previous check.
	CheckHashes() error
}

var (
	_ verifier = &VerifyChannel{}
	_ verifier = &EqualityChannel{}
)

func mismatch(format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(ErrGarblerMismatch, format, args...),
		garble.ErrEvaluator)
}

// VerifyChannel implements the evaluator's side of the alternating
// hash verification. It reads the first AlternateEvery bytes from
// Garbler¹, the next AlternateEvery bytes from Garbler², and so on.
// The bytes read from Garbler¹ are hashed with Garbler²'s key and
// compared with Garbler²'s digest and vice versa.
type VerifyChannel struct {
	p1          *channel.Channel
	p2          *channel.Channel
	h1          channel.UniversalHash
	h2          channel.UniversalHash
	every       int
	bytesHashed int
}

// NewVerifyChannel creates a new verify channel for the garbler
// channels p1 and p2. The hash h1 accumulates data read from p1 and
// h2 data read from p2.
func NewVerifyChannel(p1, p2 *channel.Channel, h1, h2 channel.UniversalHash,
	every int) *VerifyChannel {

	return &VerifyChannel{
		p1:    p1,
		p2:    p2,
		h1:    h1,
		h2:    h2,
		every: every,
	}
}

// Read implements io.Reader.
func (v *VerifyChannel) Read(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var n int
	var err error
	if v.bytesHashed < v.every {
		n, err = v.p1.Read(data[:min(v.every-v.bytesHashed, len(data))])
		v.h1.Write(data[:n])
	} else {
		n, err = v.p2.Read(data[:min(2*v.every-v.bytesHashed, len(data))])
		v.h2.Write(data[:n])
	}
	v.bytesHashed += n
	if v.bytesHashed == 2*v.every {
		v.bytesHashed = 0
	}
	return n, err
}

// Write implements io.Writer. The data is written to both garblers.
func (v *VerifyChannel) Write(data []byte) (int, error) {
	if _, err := v.p1.Write(data); err != nil {
		return 0, err
	}
	return v.p2.Write(data)
}

// Flush implements channel.Stream.Flush.
func (v *VerifyChannel) Flush() error {
	if err := v.p1.Flush(); err != nil {
		return err
	}
	return v.p2.Flush()
}

// CheckHashes reads the garblers' digests and compares them with the
// digests of the data read from the other garbler.
func (v *VerifyChannel) CheckHashes() error {
	d1, err := v.p1.ReadBytes(v.h2.Size())
	if err != nil {
		return err
	}
	d2, err := v.p2.ReadBytes(v.h1.Size())
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(d1, v.h2.Sum()) != 1 {
		return mismatch("%s data", IDGarbler2)
	}
	if subtle.ConstantTimeCompare(d2, v.h1.Sum()) != 1 {
		return mismatch("%s data", IDGarbler1)
	}
	v.h1.Reset()
	v.h2.Reset()
	return nil
}

// EqualityChannel implements the evaluator's side of the equality
// verification. Both garblers send all data and the channel compares
// them as they are read.
type EqualityChannel struct {
	p1  *channel.Channel
	p2  *channel.Channel
	buf []byte
}

// NewEqualityChannel creates a new equality channel for the garbler
// channels p1 and p2.
func NewEqualityChannel(p1, p2 *channel.Channel) *EqualityChannel {
	return &EqualityChannel{
		p1: p1,
		p2: p2,
	}
}

// Read implements io.Reader. It fills data from both garblers and
// returns ErrGarblerMismatch if they differ.
func (e *EqualityChannel) Read(data []byte) (int, error) {
	if err := e.p1.ReadBytesInto(data); err != nil {
		return 0, err
	}
	if cap(e.buf) < len(data) {
		e.buf = make([]byte, len(data))
	}
	buf := e.buf[:len(data)]
	if err := e.p2.ReadBytesInto(buf); err != nil {
		return 0, err
	}
	if subtle.ConstantTimeCompare(data, buf) != 1 {
		return 0, mismatch("garbler data differs")
	}
	return len(data), nil
}

// Write implements io.Writer. The data is written to both garblers.
func (e *EqualityChannel) Write(data []byte) (int, error) {
	if _, err := e.p1.Write(data); err != nil {
		return 0, err
	}
	return e.p2.Write(data)
}

// Flush implements channel.Stream.Flush.
func (e *EqualityChannel) Flush() error {
	if err := e.p1.Flush(); err != nil {
		return err
	}
	return e.p2.Flush()
}

// CheckHashes implements verifier.CheckHashes. The data was already
// compared when it was read.
func (e *EqualityChannel) CheckHashes() error {
	return nil
}
