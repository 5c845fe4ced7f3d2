//
// label.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Wire implements a pair of labels; the OT sender offers L0 and L1
// and the receiver learns one of them.
type Wire struct {
	L0 Label
	L1 Label
}

func (w Wire) String() string {
	return fmt.Sprintf("%s/%s", w.L0, w.L1)
}

// Label implements a 128 bit block. D0 holds the high-order and D1
// the low-order 64 bits.
type Label struct {
	D0 uint64
	D1 uint64
}

// LabelData contains lable data as byte array.
type LabelData [16]byte

func (l Label) String() string {
	return fmt.Sprintf("%016x%016x", l.D0, l.D1)
}

// Equal test if the labels are equal.
func (l Label) Equal(o Label) bool {
	return l.D0 == o.D0 && l.D1 == o.D1
}

// NewLabel creates a new random label.
func NewLabel(rand io.Reader) (Label, error) {
	var buf LabelData
	var label Label

	if _, err := io.ReadFull(rand, buf[:]); err != nil {
		return label, err
	}
	label.SetData(&buf)
	return label, nil
}

// NewTweak creates a new label from the tweak value.
func NewTweak(tweak uint64) Label {
	return Label{
		D1: tweak,
	}
}

// NewTweak2 creates a tweak label with i in the high-order and j in
// the low-order word.
func NewTweak2(i, j uint64) Label {
	return Label{
		D0: i,
		D1: j,
	}
}

// Lsb returns the least significant bit of the label.
func (l Label) Lsb() uint {
	return uint(l.D1 & 1)
}

// Bit returns the label's bit i, counting from the least significant
// bit.
func (l Label) Bit(i int) uint {
	if i < 64 {
		return uint((l.D1 >> i) & 1)
	}
	return uint((l.D0 >> (i - 64)) & 1)
}

// Xor xors the label with the argument label.
func (l *Label) Xor(o Label) {
	l.D0 ^= o.D0
	l.D1 ^= o.D1
}

// Xored returns l ⊕ o.
func (l Label) Xored(o Label) Label {
	return Label{
		D0: l.D0 ^ o.D0,
		D1: l.D1 ^ o.D1,
	}
}

// GetData gets the labels as label data.
func (l Label) GetData(buf *LabelData) {
	binary.BigEndian.PutUint64(buf[0:8], l.D0)
	binary.BigEndian.PutUint64(buf[8:16], l.D1)
}

// SetData sets the labels from label data.
func (l *Label) SetData(data *LabelData) {
	l.D0 = binary.BigEndian.Uint64((*data)[0:8])
	l.D1 = binary.BigEndian.Uint64((*data)[8:16])
}

// Bytes returns the label data as bytes.
func (l Label) Bytes(buf *LabelData) []byte {
	l.GetData(buf)
	return buf[:]
}

// SetBytes sets the label data from bytes.
func (l *Label) SetBytes(data []byte) {
	l.D0 = binary.BigEndian.Uint64(data[0:8])
	l.D1 = binary.BigEndian.Uint64(data[8:16])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (l Label) MarshalBinary() ([]byte, error) {
	var buf LabelData
	l.GetData(&buf)
	return buf[:], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (l *Label) UnmarshalBinary(data []byte) error {
	if len(data) != len(LabelData{}) {
		return fmt.Errorf("invalid label length %d", len(data))
	}
	l.SetBytes(data)
	return nil
}
