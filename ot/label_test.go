//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func TestLabel(t *testing.T) {
	label := Label{
		D0: 0x8000000000000000,
		D1: 0x0000000000000001,
	}
	if label.Lsb() != 1 {
		t.Fatalf("Lsb: got %v, expected 1", label.Lsb())
	}
	if label.Bit(127) != 1 || label.Bit(64) != 0 || label.Bit(1) != 0 {
		t.Fatalf("Bit: invalid bits in %v", label)
	}

	var data LabelData
	var l2 Label
	l2.SetBytes(label.Bytes(&data))
	if !l2.Equal(label) {
		t.Fatalf("SetBytes: got %v, expected %v", l2, label)
	}

	tweak := NewTweak2(3, 5)
	if tweak.D0 != 3 || tweak.D1 != 5 {
		t.Fatalf("NewTweak2: got %v", tweak)
	}
}

func TestHash(t *testing.T) {
	l, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	h0 := l.Hash(NewTweak(0))
	if !h0.Equal(l.Hash(NewTweak(0))) {
		t.Fatalf("Hash is not deterministic")
	}
	if h0.Equal(l.Hash(NewTweak(1))) {
		t.Fatalf("Hash ignores tweak")
	}
	l.Xor(Label{D1: 1})
	if h0.Equal(l.Hash(NewTweak(0))) {
		t.Fatalf("Hash ignores input")
	}
}
